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
	"time"
)

// Config is the daemon's complete runtime configuration, assembled from
// defaults, an optional file overlay, and an environment-variable overlay
// applied last.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Proxy     ProxyConfig
	Logging   LoggingConfig
	Metrics   MetricsConfig
	EventBus  EventBusConfig
	RateLimit RateLimitConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSHosts       []string
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend string // "sqlite" or "remote"
	SQLite  SQLiteConfig
	Remote  RemoteConfig
}

// SQLiteConfig configures the embedded relational backend.
type SQLiteConfig struct {
	Path string
}

// RemoteConfig configures the hosted, row-oriented backend.
type RemoteConfig struct {
	URL       string
	APIKey    string
	Namespace string
	Timeout   time.Duration
}

// AuthConfig configures the request-auth pipeline.
type AuthConfig struct {
	LocalMode   bool
	JWTSecret   string
	APIKeys     []string // comma-separated full keys accepted for env-based lookup
	AllowSignup bool
}

// ProxyConfig configures the optional intercepting LLM reverse proxy.
// Enabled is false unless TargetURL is set.
type ProxyConfig struct {
	Enabled      bool
	TargetURL    string
	CaptureMode  string // "off", "preview", "full"
	PreviewChars int
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string // "debug", "info", "warn", "error"
	Format string // "json", "pretty"
}

// MetricsConfig contains metrics export configuration.
type MetricsConfig struct {
	Enabled bool
}

// EventBusConfig configures the event bus, including its optional
// cross-node Redis variant.
type EventBusConfig struct {
	RedisURL string // empty means local-only broadcast
}

// RateLimitConfig configures the per-namespace API request limiter.
// Enabled defaults to false: a fresh local-mode daemon imposes no limit.
type RateLimitConfig struct {
	Enabled  bool
	Rate     float64 // requests per second
	Capacity int     // burst capacity
}

// DefaultConfig returns a configuration with sane defaults for running the
// daemon in local mode against the embedded SQLite backend.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSHosts:       []string{"*"},
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			SQLite: SQLiteConfig{
				Path: "sentryd.db",
			},
			Remote: RemoteConfig{
				Timeout: 30 * time.Second,
			},
		},
		Auth: AuthConfig{
			LocalMode: true,
		},
		Proxy: ProxyConfig{
			Enabled:      false,
			CaptureMode:  "preview",
			PreviewChars: 200,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		EventBus: EventBusConfig{},
		RateLimit: RateLimitConfig{
			Enabled:  false,
			Rate:     50,
			Capacity: 100,
		},
	}
}
