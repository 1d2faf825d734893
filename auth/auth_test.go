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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

func TestIssueAndAuthenticateAPIKey(t *testing.T) {
	store := NewMemoryKeyStore()
	_, plain, err := IssueAPIKey(store, domain.OrgID("org1"), "ci", []Scope{ScopeTracesRead}, nil)
	if err != nil {
		t.Fatalf("IssueAPIKey() error = %v", err)
	}

	ctx, err := AuthenticateAPIKey(store, plain)
	if err != nil {
		t.Fatalf("AuthenticateAPIKey() error = %v", err)
	}
	if !ctx.HasScope(ScopeTracesRead) {
		t.Fatal("authenticated context missing traces-read scope")
	}
	if ctx.HasScope(ScopeAnalyticsRead) {
		t.Fatal("authenticated context should not have analytics-read")
	}
}

func TestAuthenticateAPIKey_Tampered(t *testing.T) {
	store := NewMemoryKeyStore()
	_, plain, _ := IssueAPIKey(store, domain.OrgID("org1"), "ci", []Scope{ScopeTracesRead}, nil)
	tampered := plain[:len(plain)-1] + "x"

	if _, err := AuthenticateAPIKey(store, tampered); err != errors.ErrInvalidAPIKey {
		t.Fatalf("AuthenticateAPIKey(tampered) error = %v, want ErrInvalidAPIKey", err)
	}
}

func TestAuthenticateAPIKey_Expired(t *testing.T) {
	store := NewMemoryKeyStore()
	past := time.Now().Add(-time.Hour)
	_, plain, _ := IssueAPIKey(store, domain.OrgID("org1"), "ci", []Scope{ScopeTracesRead}, &past)

	if _, err := AuthenticateAPIKey(store, plain); err != errors.ErrExpiredAPIKey {
		t.Fatalf("AuthenticateAPIKey(expired) error = %v, want ErrExpiredAPIKey", err)
	}
}

func TestSessionSigner_IssueAndVerify(t *testing.T) {
	signer := NewSessionSigner("test-secret")
	token, err := signer.Issue("alice", domain.OrgID("org1"), []Scope{ScopeAdmin})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	ctx, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ctx.User == nil || *ctx.User != "alice" {
		t.Fatalf("ctx.User = %v, want alice", ctx.User)
	}
	if !ctx.HasScope(ScopeTracesWrite) {
		t.Fatal("admin scope should imply traces-write")
	}
}

func TestSessionSigner_RejectsForgedSecret(t *testing.T) {
	good := NewSessionSigner("real-secret")
	bad := NewSessionSigner("wrong-secret")

	token, _ := good.Issue("alice", domain.OrgID("org1"), []Scope{ScopeAdmin})
	if _, err := bad.Verify(token); err == nil {
		t.Fatal("Verify() with wrong secret should fail")
	}
}

func TestExtractor_LocalModeBypasses(t *testing.T) {
	e := &Extractor{LocalMode: true}
	req := httptest.NewRequest(http.MethodGet, "/api/spans", nil)
	ctx, err := e.Extract(req)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !ctx.Local || !ctx.HasScope(ScopeAdmin) {
		t.Fatal("local mode context should be local and all-scoped")
	}
}

func TestExtractor_BearerAPIKey(t *testing.T) {
	store := NewMemoryKeyStore()
	_, plain, _ := IssueAPIKey(store, domain.OrgID("org1"), "ci", []Scope{ScopeTracesRead}, nil)
	e := &Extractor{Keys: store, Sessions: NewSessionSigner("secret")}

	req := httptest.NewRequest(http.MethodGet, "/api/spans", nil)
	req.Header.Set("Authorization", "Bearer "+plain)

	ctx, err := e.Extract(req)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !ctx.FromAPIKey {
		t.Fatal("expected FromAPIKey = true")
	}
}

func TestExtractor_MissingAuth(t *testing.T) {
	e := &Extractor{Keys: NewMemoryKeyStore(), Sessions: NewSessionSigner("secret")}
	req := httptest.NewRequest(http.MethodGet, "/api/spans", nil)

	if _, err := e.Extract(req); err != errors.ErrMissingAuth {
		t.Fatalf("Extract() error = %v, want ErrMissingAuth", err)
	}
}

func TestExtractor_QueryParamToken(t *testing.T) {
	store := NewMemoryKeyStore()
	_, plain, _ := IssueAPIKey(store, domain.OrgID("org1"), "ci", []Scope{ScopeTracesRead}, nil)
	e := &Extractor{Keys: store, Sessions: NewSessionSigner("secret")}

	req := httptest.NewRequest(http.MethodGet, "/api/events?token="+plain, nil)
	ctx, err := e.Extract(req)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !ctx.HasScope(ScopeTracesRead) {
		t.Fatal("missing expected scope from query-param token")
	}
}
