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
	"encoding/json"
	"testing"
)

func TestSpanKind_RoundTrip_Custom(t *testing.T) {
	kind := SpanKind{
		Type: SpanKindCustom,
		Custom: &CustomKind{
			Kind:       "tool",
			Attributes: map[string]json.RawMessage{"x": json.RawMessage(`1`)},
		},
	}

	data, err := json.Marshal(kind)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got SpanKind
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.Type != SpanKindCustom {
		t.Fatalf("Type = %v, want custom", got.Type)
	}
	if got.Custom == nil || got.Custom.Kind != "tool" {
		t.Fatalf("Custom = %+v, want kind=tool", got.Custom)
	}
}

func TestSpanKind_RoundTrip_LLMCall(t *testing.T) {
	provider := "anthropic"
	in, out := int64(10), int64(20)
	kind := SpanKind{
		Type: SpanKindLLMCall,
		LLMCall: &LLMCallKind{
			Model:        "claude",
			Provider:     &provider,
			InputTokens:  &in,
			OutputTokens: &out,
		},
	}

	data, err := json.Marshal(kind)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got SpanKind
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if got.LLMCall == nil || got.LLMCall.Model != "claude" {
		t.Fatalf("LLMCall = %+v, want model=claude", got.LLMCall)
	}
	total := got.LLMCall.TotalTokens()
	if total == nil || *total != 30 {
		t.Fatalf("TotalTokens() = %v, want 30", total)
	}
}

func TestSpan_IsTerminalForCompletedAndFailed(t *testing.T) {
	kind := SpanKind{Type: SpanKindCustom, Custom: &CustomKind{Kind: "tool"}}
	s := NewSpanBuilder(NewTraceID(), "n", kind).Build()

	if s.IsTerminal() {
		t.Fatal("freshly built span must not be terminal")
	}
	if s.EndedAt != nil {
		t.Fatal("freshly built span must have nil EndedAt")
	}

	s.Status = StatusCompleted()
	if !s.IsTerminal() {
		t.Fatal("completed span must be terminal")
	}

	// A second terminal transition is a decision made by the store's state
	// machine (CompleteSpan/FailSpan), not by the domain type itself; the
	// domain type only guarantees IsTerminal() answers correctly either way.
	s.Status = StatusFailed("boom")
	if !s.IsTerminal() {
		t.Fatal("failed span must remain terminal")
	}
}

func TestSpan_DurationMS(t *testing.T) {
	kind := SpanKind{Type: SpanKindCustom, Custom: &CustomKind{Kind: "tool"}}
	s := NewSpanBuilder(NewTraceID(), "n", kind).Build()

	if got := s.DurationMS(); got != 0 {
		t.Fatalf("DurationMS() on running span = %d, want 0", got)
	}

	ended := s.StartedAt.Add(0)
	s.EndedAt = &ended
	if got := s.DurationMS(); got < 0 {
		t.Fatalf("DurationMS() = %d, want >= 0", got)
	}
}
