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

package auth

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/sagelabs-oss/sentryd/observability/metrics"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

// sessionCookieName is the cookie the web UI sets after login.
const sessionCookieName = "session"

// Extractor runs the request-auth pipeline: Authorization Bearer
// header first, then the session cookie, then a "token" query parameter
// (for the SSE endpoint, which cannot set headers). In local mode
// extraction is skipped entirely and every request gets LocalContext().
type Extractor struct {
	Keys      KeyStore
	Sessions  *SessionSigner
	LocalMode bool

	// Metrics records auth outcomes. Nil disables recording.
	Metrics *metrics.DaemonMetrics
}

// Extract runs the pipeline over r, returning the first successful
// Context or the first extraction error encountered.
func (e *Extractor) Extract(r *http.Request) (Context, error) {
	c, err := e.extract(r)
	if err != nil {
		e.Metrics.RecordAuthFailure(errorCode(err))
	} else if !e.LocalMode {
		e.Metrics.RecordAuthSuccess(authMethod(c))
	}
	return c, err
}

func (e *Extractor) extract(r *http.Request) (Context, error) {
	if e.LocalMode {
		return LocalContext(), nil
	}

	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return Context{}, errors.ErrAuthInvalidFormat
		}
		return e.authenticate(token)
	}

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return e.Sessions.Verify(cookie.Value)
	}

	if token := r.URL.Query().Get("token"); token != "" {
		return e.authenticate(token)
	}

	return Context{}, errors.ErrMissingAuth
}

// authMethod reports which credential kind a resolved Context came from,
// for auth-success metric labelling.
func authMethod(c Context) string {
	if c.FromAPIKey {
		return "api_key"
	}
	return "session"
}

// errorCode extracts the machine-readable code from err for metric
// labelling, falling back to a generic label for non-*errors.Error values.
func errorCode(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return "unknown"
}

// authenticate routes token to the API-key or session verifier based on
// its prefix: key store if it matches the key prefix, else session.
func (e *Extractor) authenticate(token string) (Context, error) {
	if strings.HasPrefix(token, KeyPrefix) {
		return AuthenticateAPIKey(e.Keys, token)
	}
	return e.Sessions.Verify(token)
}

type ctxKey struct{}

// WithContext attaches an auth Context to ctx.
func WithContext(ctx context.Context, c Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext retrieves the auth Context attached by WithContext. ok is
// false if none is present.
func FromContext(ctx context.Context) (Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(Context)
	return c, ok
}

// RequireScope returns an http.Handler middleware that rejects requests
// whose extracted Context lacks any scope in required, mapping to
// InsufficientScope (403). Extraction itself must already have
// populated the request context via Middleware before this runs.
func RequireScope(required ...Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := FromContext(r.Context())
			if !ok {
				writeAuthError(w, errors.ErrMissingAuth)
				return
			}
			if !c.HasAllScopes(required...) {
				writeAuthError(w, errors.ErrInsufficientScope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Middleware extracts a Context for every request and attaches it, or
// short-circuits with the mapped HTTP status on extraction failure.
func (e *Extractor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := e.Extract(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), c)))
	})
}

func writeAuthError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + err.Error() + `"}`))
}
