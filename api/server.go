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

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/sagelabs-oss/sentryd/auth"
	"github.com/sagelabs-oss/sentryd/eventbus"
	"github.com/sagelabs-oss/sentryd/observability"
	"github.com/sagelabs-oss/sentryd/observability/health"
	"github.com/sagelabs-oss/sentryd/observability/logging"
	"github.com/sagelabs-oss/sentryd/observability/metrics"
	"github.com/sagelabs-oss/sentryd/proxy"
	"github.com/sagelabs-oss/sentryd/ratelimit"
	"github.com/sagelabs-oss/sentryd/store"
)

// Server holds everything an HTTP handler needs: the persistent store, the
// event bus subscribers read from, the auth extractor, a health checker and
// a metrics collector. Proxy is nil when the intercepting LLM proxy is
// disabled for this deployment.
type Server struct {
	Store          *store.Store
	Bus            eventbus.Publisher
	Auth           *auth.Extractor
	HealthCheckers []health.Checker
	Metrics        *metrics.PrometheusCollector
	Proxy          *proxy.Proxy
	Log            logging.Logger
	CORSHosts      []string
	StartedAt      time.Time
	Users          auth.UserStore
	Sessions       *auth.SessionSigner
	Version        string
	AllowSignup    bool
	Shutdown       func()

	// RateLimiter bounds request volume per organisation namespace. Nil
	// disables rate limiting (the default for local mode).
	RateLimiter ratelimit.Limiter

	// RequestMetrics records per-method, per-status-class HTTP activity.
	// Nil disables HTTP-level metrics recording.
	RequestMetrics *metrics.DaemonMetrics
}

// Router builds the full mux.Router: public routes first, then the
// auth-gated /api tree, wrapped in CORS and a request-id/logging
// middleware.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(observability.NewMiddleware(s.Log, s.RequestMetrics).Handler)

	s.registerPublicRoutes(r)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(s.Auth.Middleware)
	protected.Use(ratelimit.Middleware(s.RateLimiter, s.rateLimitKey))
	s.registerProtectedRoutes(protected)

	if s.Proxy != nil {
		r.PathPrefix("/").Handler(s.Proxy)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   s.CORSHosts,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// rateLimitKey keys the rate limiter by the caller's tenant namespace, so
// one noisy organisation cannot exhaust another's budget. It runs after
// auth.Middleware, which always populates the request context.
func (s *Server) rateLimitKey(r *http.Request) string {
	if c, ok := auth.FromContext(r.Context()); ok {
		return c.Namespace()
	}
	return "default"
}

