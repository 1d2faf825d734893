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

// Command sentryd runs the tracing daemon: the persistent store, the
// event bus, the HTTP API, and (optionally) the intercepting LLM proxy.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagelabs-oss/sentryd/auth"
	"github.com/sagelabs-oss/sentryd/config"
	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/eventbus"
	"github.com/sagelabs-oss/sentryd/observability/health"
	"github.com/sagelabs-oss/sentryd/observability/logging"
	"github.com/sagelabs-oss/sentryd/observability/metrics"
	"github.com/sagelabs-oss/sentryd/proxy"
	"github.com/sagelabs-oss/sentryd/ratelimit"
	"github.com/sagelabs-oss/sentryd/storage"
	"github.com/sagelabs-oss/sentryd/store"
	"github.com/sagelabs-oss/sentryd/api"
)

var (
	configPath string
	version    = "dev"
)

func main() {
	root := &cobra.Command{
		Use:   "sentryd",
		Short: "sentryd traces LLM application activity",
		Long:  "sentryd is a daemon that records traces, spans, and datasets produced by LLM-driven applications, and optionally intercepts LLM API calls to capture token usage.",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE:  runServe,
	}
	serve.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML or JSON config file (optional; defaults + env vars are used otherwise)")
	root.AddCommand(serve)

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the daemon version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
	root.AddCommand(versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := newLogger(cfg.Logging)
	ctx := context.Background()

	log.Info(ctx, "starting sentryd",
		logging.String("storage_backend", cfg.Storage.Backend),
		logging.String("version", version))

	var collector *metrics.PrometheusCollector
	if cfg.Metrics.Enabled {
		collector = metrics.NewPrometheusCollector()
	}

	backend, err := newBackend(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage backend: %w", err)
	}

	bus := newEventBus(cfg.EventBus, log)

	st, err := store.Open(ctx, backend, bus, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if collector != nil {
		st.SetMetrics(metrics.NewDaemonMetrics(collector))
	}

	extractor, users, sessions := newAuth(cfg.Auth, log)
	if collector != nil {
		extractor.Metrics = metrics.NewDaemonMetrics(collector)
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{
			Rate:     cfg.RateLimit.Rate,
			Capacity: cfg.RateLimit.Capacity,
		})
		log.Info(ctx, "rate limiting enabled",
			logging.Float64("rate", cfg.RateLimit.Rate),
			logging.Int("capacity", cfg.RateLimit.Capacity))
	}

	var lp *proxy.Proxy
	if cfg.Proxy.Enabled {
		lp, err = proxy.New(st, proxy.Config{
			TargetURL:    cfg.Proxy.TargetURL,
			CaptureMode:  proxy.CaptureMode(cfg.Proxy.CaptureMode),
			PreviewChars: cfg.Proxy.PreviewChars,
		}, log)
		if err != nil {
			return fmt.Errorf("init proxy: %w", err)
		}
		if collector != nil {
			lp.SetMetrics(metrics.NewLLMMetrics(collector))
		}
		log.Info(ctx, "LLM proxy enabled",
			logging.String("target", cfg.Proxy.TargetURL),
			logging.String("capture_mode", cfg.Proxy.CaptureMode))
	}

	healthCheckers := []health.Checker{
		health.NewLivenessChecker(),
		store.NewHealthChecker(st),
	}

	var requestMetrics *metrics.DaemonMetrics
	if collector != nil {
		requestMetrics = metrics.NewDaemonMetrics(collector)
	}

	srv := &api.Server{
		Store:          st,
		Bus:            bus,
		Auth:           extractor,
		HealthCheckers: healthCheckers,
		Metrics:        collector,
		Proxy:          lp,
		Log:            log,
		CORSHosts:      cfg.Server.CORSHosts,
		StartedAt:      time.Now(),
		Users:          users,
		Sessions:       sessions,
		Version:        version,
		AllowSignup:    cfg.Auth.AllowSignup,
		RateLimiter:    limiter,
		RequestMetrics: requestMetrics,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", logging.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigCh:
		log.Info(ctx, "shutting down", logging.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn(ctx, "forced shutdown", logging.Error(err))
	}
	if err := st.Close(); err != nil {
		log.Warn(ctx, "error closing store", logging.Error(err))
	}
	log.Info(ctx, "shutdown complete")
	return nil
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	cfg := config.DefaultConfig()
	cfg.LoadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig) logging.Logger {
	level := logging.LevelInfo
	switch cfg.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	return logging.NewStructuredLogger(level)
}

func newBackend(ctx context.Context, cfg config.StorageConfig) (storage.Backend, error) {
	switch cfg.Backend {
	case "remote":
		return storage.NewRemoteBackend(&storage.RemoteConfig{
			BaseURL:   cfg.Remote.URL,
			APIKey:    cfg.Remote.APIKey,
			Namespace: cfg.Remote.Namespace,
			Timeout:   cfg.Remote.Timeout,
		})
	default:
		return storage.NewSQLiteBackend(ctx, &storage.SQLiteConfig{Path: cfg.SQLite.Path})
	}
}

func newEventBus(cfg config.EventBusConfig, log logging.Logger) eventbus.Publisher {
	if cfg.RedisURL == "" {
		return eventbus.New()
	}
	redisCfg := eventbus.DefaultRedisConfig()
	redisCfg.Address = cfg.RedisURL
	return eventbus.NewRedisBus(redisCfg, log)
}

// newAuth builds the request-auth pipeline. In local mode every request
// is trusted implicitly. In every mode, each entry in cfg.APIKeys is
// seeded into an in-process key store as a full-access administrative
// key, under the org "env".
func newAuth(cfg config.AuthConfig, log logging.Logger) (*auth.Extractor, auth.UserStore, *auth.SessionSigner) {
	keys := auth.NewMemoryKeyStore()
	users := auth.NewMemoryUserStore()

	secret := cfg.JWTSecret
	if secret == "" {
		secret = "local-development-only-secret"
	}
	sessions := auth.NewSessionSigner(secret)

	for _, plain := range cfg.APIKeys {
		if plain == "" {
			continue
		}
		hash, err := auth.HashAPIKey(plain)
		if err != nil {
			log.Warn(context.Background(), "failed to seed API key", logging.Error(err))
			continue
		}
		keys.Add(auth.APIKey{
			ID:        uuid.NewString(),
			Org:       domain.OrgID("env"),
			Name:      "env-seeded",
			KeyPrefix: auth.Prefix(plain),
			KeyHash:   hash,
			Scopes:    auth.AllScopes,
			CreatedAt: time.Now(),
		})
	}

	extractor := &auth.Extractor{
		Keys:      keys,
		Sessions:  sessions,
		LocalMode: cfg.LocalMode,
	}
	return extractor, users, sessions
}
