// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() should not return nil")
	}
	if cfg.Server.Port == 0 {
		t.Error("Server.Port should have default value")
	}
	if cfg.Server.ReadTimeout == 0 {
		t.Error("Server.ReadTimeout should have default value")
	}
	if cfg.Server.ShutdownTimeout == 0 {
		t.Error("Server.ShutdownTimeout should have default value")
	}
	if cfg.Storage.Backend == "" {
		t.Error("Storage.Backend should have default value")
	}
	if !cfg.Auth.LocalMode {
		t.Error("Auth.LocalMode should default to true")
	}
	if cfg.Logging.Level == "" {
		t.Error("Logging.Level should have default value")
	}
	if cfg.Logging.Format == "" {
		t.Error("Logging.Format should have default value")
	}
}

func TestConfig_Validate_Success(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil for default config", err)
	}
}

func TestConfig_Validate_ServerPort(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an out-of-range port")
	}
}

func TestConfig_Validate_StorageBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "postgres"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an unknown storage backend")
	}
}

func TestConfig_Validate_RemoteBackendRequiresURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "remote"
	cfg.Storage.Remote.Namespace = "acme"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject a remote backend with no URL")
	}
}

func TestConfig_Validate_NonLocalModeRequiresJWTSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.LocalMode = false

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject non-local mode without a JWT secret")
	}

	cfg.Auth.JWTSecret = "a-secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil once a JWT secret is set", err)
	}
}

func TestConfig_Validate_ProxyRequiresTargetURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Proxy.Enabled = true

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an enabled proxy with no target URL")
	}

	cfg.Proxy.TargetURL = "https://api.anthropic.com"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil once target_url is set", err)
	}
}

func TestConfig_Validate_ProxyCaptureMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Proxy.Enabled = true
	cfg.Proxy.TargetURL = "https://api.anthropic.com"
	cfg.Proxy.CaptureMode = "everything"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an unknown capture mode")
	}
}

func TestConfig_Validate_LoggingLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "verbose"

	if err := cfg.Validate(); err == nil {
		t.Error("Validate() should reject an unknown logging level")
	}
}
