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

import "testing"

func TestValidateServer_NegativeTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.ReadTimeout = 0
	if err := cfg.validateServer(); err == nil {
		t.Error("validateServer() should reject a zero read timeout")
	}

	cfg = DefaultConfig()
	cfg.Server.WriteTimeout = -1
	if err := cfg.validateServer(); err == nil {
		t.Error("validateServer() should reject a negative write timeout")
	}
}

func TestValidateStorage_SQLiteRequiresPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.SQLite.Path = ""
	if err := cfg.validateStorage(); err == nil {
		t.Error("validateStorage() should reject an empty sqlite path")
	}
}

func TestValidateStorage_RemoteRequiresNamespace(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "remote"
	cfg.Storage.Remote.URL = "https://backend.internal"
	if err := cfg.validateStorage(); err == nil {
		t.Error("validateStorage() should reject a remote backend with no namespace")
	}
}

func TestValidateAuth_LocalModeSkipsSecretCheck(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Auth.LocalMode = true
	cfg.Auth.JWTSecret = ""
	if err := cfg.validateAuth(); err != nil {
		t.Errorf("validateAuth() error = %v, want nil in local mode", err)
	}
}

func TestValidateProxy_DisabledSkipsChecks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Proxy.Enabled = false
	cfg.Proxy.TargetURL = ""
	if err := cfg.validateProxy(); err != nil {
		t.Errorf("validateProxy() error = %v, want nil when disabled", err)
	}
}

func TestValidateLogging_Format(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.validateLogging(); err == nil {
		t.Error("validateLogging() should reject an unknown format")
	}
}
