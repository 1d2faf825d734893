// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package ratelimit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fixedKey(key string) HTTPKeyFunc {
	return func(r *http.Request) string { return key }
}

func TestMiddleware_NilLimiterDisabled(t *testing.T) {
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	wrapped := Middleware(nil, fixedKey("default"))(handler)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if !called {
		t.Error("expected next handler to run when limiter is nil")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMiddleware_AllowsUnderLimit(t *testing.T) {
	limiter := NewTokenBucket(TokenBucketConfig{Rate: 10, Capacity: 10})
	defer limiter.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := Middleware(limiter, fixedKey("default"))(handler)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMiddleware_RejectsOverLimit(t *testing.T) {
	limiter := NewTokenBucket(TokenBucketConfig{Rate: 1, Capacity: 1})
	defer limiter.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	wrapped := Middleware(limiter, fixedKey("default"))(handler)

	// First request consumes the single token.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec.Code)
	}

	// Second immediate request should be rejected.
	req2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec2 := httptest.NewRecorder()
	wrapped.ServeHTTP(rec2, req2)

	if rec2.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", rec2.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec2.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Error("expected non-empty error message")
	}
}

func TestMiddleware_KeysAreIndependent(t *testing.T) {
	limiter := NewTokenBucket(TokenBucketConfig{Rate: 1, Capacity: 1})
	defer limiter.Close()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	keyFn := func(r *http.Request) string {
		return r.Header.Get("X-Tenant")
	}
	wrapped := Middleware(limiter, keyFn)(handler)

	reqA := httptest.NewRequest(http.MethodGet, "/x", nil)
	reqA.Header.Set("X-Tenant", "org-a")
	recA := httptest.NewRecorder()
	wrapped.ServeHTTP(recA, reqA)
	if recA.Code != http.StatusOK {
		t.Fatalf("expected org-a first request to succeed, got %d", recA.Code)
	}

	reqB := httptest.NewRequest(http.MethodGet, "/x", nil)
	reqB.Header.Set("X-Tenant", "org-b")
	recB := httptest.NewRecorder()
	wrapped.ServeHTTP(recB, reqB)
	if recB.Code != http.StatusOK {
		t.Errorf("expected org-b to have its own budget, got %d", recB.Code)
	}
}
