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

import "testing"

func llmSpan(model string) Span {
	kind := SpanKind{Type: SpanKindLLMCall, LLMCall: &LLMCallKind{Model: model}}
	return NewSpanBuilder(NewTraceID(), "call", kind).Build()
}

func TestFilter_MatchesByModel(t *testing.T) {
	a := llmSpan("gpt-4")
	b := llmSpan("claude")
	model := "gpt-4"
	f := Filter{Model: &model}

	if !f.Matches(a) {
		t.Error("expected a to match")
	}
	if f.Matches(b) {
		t.Error("expected b not to match")
	}
}

func TestFilter_ZeroValueMatchesEverything(t *testing.T) {
	spans := []Span{llmSpan("gpt-4"), llmSpan("claude")}
	got := Apply(spans, Filter{})
	if len(got) != len(spans) {
		t.Fatalf("Apply() returned %d spans, want %d", len(got), len(spans))
	}
}

func TestFilter_Limit(t *testing.T) {
	spans := []Span{llmSpan("a"), llmSpan("b"), llmSpan("c")}
	limit := 2
	got := Apply(spans, Filter{Limit: &limit})
	if len(got) != 2 {
		t.Fatalf("Apply() returned %d spans, want 2", len(got))
	}
}

func TestFilter_IndependentOfInsertionOrder(t *testing.T) {
	a, b, c := llmSpan("a"), llmSpan("b"), llmSpan("c")
	model := "b"
	f := Filter{Model: &model}

	forward := Apply([]Span{a, b, c}, f)
	reversed := Apply([]Span{c, b, a}, f)

	if len(forward) != 1 || len(reversed) != 1 {
		t.Fatalf("expected exactly one match in each order, got %d and %d", len(forward), len(reversed))
	}
	if forward[0].ID != reversed[0].ID {
		t.Fatalf("filter result depended on insertion order")
	}
}
