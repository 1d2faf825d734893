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

package domain

import (
	"strings"
	"time"
)

// Filter is the one query shape the system supports: every field is
// optional, and a populated field narrows the match. A zero-value Filter
// matches everything. Backends only ever see a Filter during initial
// load; the persistent store applies it in memory on every other read.
type Filter struct {
	Kind         *SpanKindType
	Model        *string
	Provider     *string
	Status       *string
	TraceID      *TraceID
	Since        *time.Time
	Until        *time.Time
	NameContains *string
	Path         *string
	Limit        *int
}

// Matches reports whether span satisfies every populated field of f.
func (f Filter) Matches(s Span) bool {
	if f.Kind != nil && s.Kind.Type != *f.Kind {
		return false
	}
	if f.Model != nil && s.Kind.Model() != *f.Model {
		return false
	}
	if f.Provider != nil && s.Kind.Provider() != *f.Provider {
		return false
	}
	if f.Status != nil && s.Status.State != *f.Status {
		return false
	}
	if f.TraceID != nil && s.TraceID != *f.TraceID {
		return false
	}
	if f.Since != nil && s.StartedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && s.StartedAt.After(*f.Until) {
		return false
	}
	if f.NameContains != nil && !strings.Contains(s.Name, *f.NameContains) {
		return false
	}
	if f.Path != nil && s.Kind.Path() != *f.Path {
		return false
	}
	return true
}

// Apply returns a new slice holding the spans that match f, in their
// input order, truncated to Limit if set. The input slice is not
// modified.
func Apply(spans []Span, f Filter) []Span {
	out := make([]Span, 0, len(spans))
	for _, s := range spans {
		if f.Matches(s) {
			out = append(out, s)
		}
	}
	if f.Limit != nil && len(out) > *f.Limit {
		out = out[:*f.Limit]
	}
	return out
}
