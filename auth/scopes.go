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

// Package auth implements the request-auth pipeline:
// API-key hashing and verification, signed session tokens, a request
// extractor honoring a fixed precedence order, and scope enforcement. A
// local-mode Context bypasses extraction entirely and carries every scope.
package auth

import (
	"github.com/sagelabs-oss/sentryd/domain"
)

// Scope is a coarse-grained permission attached to sessions and keys.
type Scope string

const (
	ScopeTracesRead    Scope = "traces-read"
	ScopeTracesWrite   Scope = "traces-write"
	ScopeDatasetsRead  Scope = "datasets-read"
	ScopeDatasetsWrite Scope = "datasets-write"
	ScopeAnalyticsRead Scope = "analytics-read"
	ScopeAdmin         Scope = "admin"
)

// AllScopes is every scope a local-mode Context is granted.
var AllScopes = []Scope{ScopeTracesRead, ScopeTracesWrite, ScopeDatasetsRead, ScopeDatasetsWrite, ScopeAnalyticsRead, ScopeAdmin}

// Context is the caller identity attached to a request once extraction
// succeeds. A local Context has Local=true, a nil Org, and every scope.
type Context struct {
	Local     bool
	Org       *domain.OrgID
	User      *string
	Scopes    []Scope
	FromAPIKey bool
}

// LocalContext returns the all-scopes, no-org context injected when the
// daemon runs in local mode, where extraction is skipped entirely.
func LocalContext() Context {
	return Context{Local: true, Scopes: AllScopes}
}

// HasScope reports whether c carries scope, directly or via admin.
func (c Context) HasScope(scope Scope) bool {
	for _, s := range c.Scopes {
		if s == scope || s == ScopeAdmin {
			return true
		}
	}
	return false
}

// HasAllScopes reports whether c carries every scope in required, per the
// scope-monotonicity property: a context's scopes never grow after issuance.
func (c Context) HasAllScopes(required ...Scope) bool {
	for _, r := range required {
		if !c.HasScope(r) {
			return false
		}
	}
	return true
}

// Namespace returns the remote-backend tenant namespace for c:
// "default" for local/no-org contexts, "tw_{org_id}" otherwise.
func (c Context) Namespace() string {
	if c.Org == nil {
		return "default"
	}
	return "tw_" + string(*c.Org)
}
