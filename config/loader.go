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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile loads configuration from a file (YAML or JSON), applies the
// environment overlay on top, and validates the result. The file format is
// determined by the file extension (.yaml, .yml, or .json).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	cfg.LoadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadEnv applies the daemon's environment surface on top of c. Every
// variable is optional; an unset variable leaves the existing value (file
// overlay or default) untouched.
func (c *Config) LoadEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.ShutdownTimeout = time.Duration(secs) * time.Second
		}
	}

	if v := os.Getenv("STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Storage.SQLite.Path = v
	}
	if v := os.Getenv("REMOTE_BACKEND_URL"); v != "" {
		c.Storage.Remote.URL = v
	}
	if v := os.Getenv("REMOTE_BACKEND_API_KEY"); v != "" {
		c.Storage.Remote.APIKey = v
	}
	if v := os.Getenv("REMOTE_BACKEND_NAMESPACE"); v != "" {
		c.Storage.Remote.Namespace = v
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
		c.Auth.LocalMode = false
	}
	if v := os.Getenv("API_KEYS"); v != "" {
		c.Auth.APIKeys = strings.Split(v, ",")
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		c.EventBus.RedisURL = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv("PROXY_TARGET_URL"); v != "" {
		c.Proxy.Enabled = true
		c.Proxy.TargetURL = v
	}
	if v := os.Getenv("PROXY_CAPTURE_MODE"); v != "" {
		c.Proxy.CaptureMode = v
	}

	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit.Enabled = true
			c.RateLimit.Rate = rate
		}
	}
}
