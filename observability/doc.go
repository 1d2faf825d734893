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

// Package observability provides monitoring, logging, and health-check
// capabilities for the sentryd daemon.
//
// # Overview
//
// This package enables comprehensive observability for the daemon through:
//   - Metrics collection (Prometheus), in the metrics subpackage
//   - Structured logging, in the logging subpackage
//   - Liveness/readiness health checks, in the health subpackage
//   - An HTTP middleware tying request logging and metrics together
//
// # Metrics
//
// Collect and expose metrics for monitoring:
//
//	collector := metrics.NewPrometheusCollector()
//	daemonMetrics := metrics.NewDaemonMetrics(collector)
//
//	// Record store/auth/bus activity
//	daemonMetrics.RecordSpanCreated("llm-call")
//	daemonMetrics.RecordAuthFailure("invalid_api_key")
//
//	// Expose metrics
//	http.Handle("/metrics", collector.Handler())
//
// # Logging
//
// Structured logging with context propagation:
//
//	logger := logging.NewStructuredLogger(logging.LevelInfo)
//
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logger.Info(ctx, "span completed",
//	    logging.String("kind", "llm-call"),
//	    logging.Int("duration_ms", 42),
//	)
//
// # Health Checks
//
// Liveness and readiness probes:
//
//	liveness := health.NewLivenessChecker()
//	readiness := health.NewReadinessChecker(
//	    store.NewHealthChecker(st),
//	)
//
//	http.Handle("/health/live", health.Handler(liveness))
//	http.Handle("/health/ready", health.Handler(readiness))
//
// # Request middleware
//
// NewMiddleware wires a logger and a *metrics.DaemonMetrics into a single
// HTTP middleware that logs every request and records its outcome:
//
//	mw := observability.NewMiddleware(logger, daemonMetrics)
//	router.Use(mw.Handler)
package observability
