// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package ratelimit

import (
	"encoding/json"
	"net/http"

	adkerrors "github.com/sagelabs-oss/sentryd/pkg/errors"
)

// HTTPKeyFunc derives a rate-limit key from an inbound request.
type HTTPKeyFunc func(r *http.Request) string

// Middleware rejects requests over limiter's configured rate with the
// status adkerrors.HTTPStatus maps ErrRateLimitExceeded to (429), keyed
// by keyFn. A nil limiter disables the middleware (local mode, or a
// deployment that declined to configure one).
func Middleware(limiter Limiter, keyFn HTTPKeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)
			if !limiter.Allow(key) {
				err := adkerrors.ErrRateLimitExceeded
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(adkerrors.HTTPStatus(err))
				_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
