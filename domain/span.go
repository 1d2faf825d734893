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
	"fmt"
	"time"
)

// SpanKindType discriminates the four shapes a Span's Kind can take.
type SpanKindType string

const (
	SpanKindFsRead   SpanKindType = "fs_read"
	SpanKindFsWrite  SpanKindType = "fs_write"
	SpanKindLLMCall  SpanKindType = "llm_call"
	SpanKindCustom   SpanKindType = "custom"
)

// SpanKind is a tagged union over the four span shapes the system knows how
// to synthesize or record. Exactly one of the typed payload fields is
// populated, selected by Type. Marshaling flattens the active payload's
// fields alongside "type" so the wire shape matches a Rust-style internally
// tagged enum; unmarshaling routes on "type" back into the right payload.
type SpanKind struct {
	Type SpanKindType

	FsRead  *FsReadKind
	FsWrite *FsWriteKind
	LLMCall *LLMCallKind
	Custom  *CustomKind
}

// FsReadKind describes a file-system read span.
type FsReadKind struct {
	Path      string  `json:"path"`
	Hash      *string `json:"hash,omitempty"`
	BytesRead int64   `json:"bytes_read"`
}

// FsWriteKind describes a file-system write span. Hash is required: a
// write always produces a content-addressed version.
type FsWriteKind struct {
	Path         string `json:"path"`
	Hash         string `json:"hash"`
	BytesWritten int64  `json:"bytes_written"`
}

// LLMCallKind describes an LLM request/response span, whether synthesized
// by user code or by the intercepting proxy.
type LLMCallKind struct {
	Model         string   `json:"model"`
	Provider      *string  `json:"provider,omitempty"`
	InputTokens   *int64   `json:"input_tokens,omitempty"`
	OutputTokens  *int64   `json:"output_tokens,omitempty"`
	Cost          *float64 `json:"cost,omitempty"`
	InputPreview  *string  `json:"input_preview,omitempty"`
	OutputPreview *string  `json:"output_preview,omitempty"`
}

// TotalTokens returns InputTokens + OutputTokens, or nil if either is unset.
func (k *LLMCallKind) TotalTokens() *int64 {
	if k.InputTokens == nil || k.OutputTokens == nil {
		return nil
	}
	total := *k.InputTokens + *k.OutputTokens
	return &total
}

// CustomKind describes user-defined work with a free-form sub-kind string
// and an arbitrary JSON attribute bag.
type CustomKind struct {
	Kind       string                     `json:"kind"`
	Attributes map[string]json.RawMessage `json:"attributes"`
}

type spanKindWire struct {
	Type string `json:"type"`
	FsReadKind
	FsWriteKind
	LLMCallKind
	CustomKind
}

// MarshalJSON flattens the active payload alongside the discriminator.
func (k SpanKind) MarshalJSON() ([]byte, error) {
	switch k.Type {
	case SpanKindFsRead:
		if k.FsRead == nil {
			return nil, fmt.Errorf("domain: span kind %q missing fs_read payload", k.Type)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			FsReadKind
		}{string(k.Type), *k.FsRead})
	case SpanKindFsWrite:
		if k.FsWrite == nil {
			return nil, fmt.Errorf("domain: span kind %q missing fs_write payload", k.Type)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			FsWriteKind
		}{string(k.Type), *k.FsWrite})
	case SpanKindLLMCall:
		if k.LLMCall == nil {
			return nil, fmt.Errorf("domain: span kind %q missing llm_call payload", k.Type)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			LLMCallKind
		}{string(k.Type), *k.LLMCall})
	case SpanKindCustom:
		if k.Custom == nil {
			return nil, fmt.Errorf("domain: span kind %q missing custom payload", k.Type)
		}
		return json.Marshal(struct {
			Type string `json:"type"`
			CustomKind
		}{string(k.Type), *k.Custom})
	default:
		return nil, fmt.Errorf("domain: unknown span kind %q", k.Type)
	}
}

// UnmarshalJSON routes on "type" back into the matching payload.
func (k *SpanKind) UnmarshalJSON(data []byte) error {
	var disc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &disc); err != nil {
		return err
	}

	k.Type = SpanKindType(disc.Type)
	switch k.Type {
	case SpanKindFsRead:
		var v FsReadKind
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		k.FsRead = &v
	case SpanKindFsWrite:
		var v FsWriteKind
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		k.FsWrite = &v
	case SpanKindLLMCall:
		var v LLMCallKind
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		k.LLMCall = &v
	case SpanKindCustom:
		var v CustomKind
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		k.Custom = &v
	default:
		return fmt.Errorf("domain: unknown span kind %q", disc.Type)
	}
	return nil
}

// Path returns the path carried by fs_read/fs_write kinds, for filter
// matching against Filter.Path; other kinds return "".
func (k SpanKind) Path() string {
	switch k.Type {
	case SpanKindFsRead:
		if k.FsRead != nil {
			return k.FsRead.Path
		}
	case SpanKindFsWrite:
		if k.FsWrite != nil {
			return k.FsWrite.Path
		}
	}
	return ""
}

// Model returns the model carried by an llm_call kind, or "" otherwise.
func (k SpanKind) Model() string {
	if k.Type == SpanKindLLMCall && k.LLMCall != nil {
		return k.LLMCall.Model
	}
	return ""
}

// Provider returns the provider carried by an llm_call kind, or "" otherwise.
func (k SpanKind) Provider() string {
	if k.Type == SpanKindLLMCall && k.LLMCall != nil && k.LLMCall.Provider != nil {
		return *k.LLMCall.Provider
	}
	return ""
}

// SpanStatus is one of {running, completed, failed}. Failed carries an
// error message.
type SpanStatus struct {
	State string `json:"state"` // "running" | "completed" | "failed"
	Error string `json:"error,omitempty"`
}

// StatusRunning, StatusCompleted and FailedStatus construct the three
// states a span can be in.
func StatusRunning() SpanStatus          { return SpanStatus{State: "running"} }
func StatusCompleted() SpanStatus        { return SpanStatus{State: "completed"} }
func StatusFailed(msg string) SpanStatus { return SpanStatus{State: "failed", Error: msg} }

// IsTerminal reports whether no further transition is permitted.
func (s SpanStatus) IsTerminal() bool {
	return s.State == "completed" || s.State == "failed"
}

// Span is one unit of work with a kind, a status, timings, and optional
// JSON payloads. A Span is immutable after construction; CompleteSpan,
// FailSpan, and CompleteSpanWithKind in the store package never mutate an
// existing value, they always build and return a new one.
type Span struct {
	ID        SpanID          `json:"id"`
	TraceID   TraceID         `json:"trace_id"`
	ParentID  *SpanID         `json:"parent_id,omitempty"`
	OrgID     *OrgID          `json:"org_id,omitempty"`
	Name      string          `json:"name"`
	Kind      SpanKind        `json:"kind"`
	Status    SpanStatus      `json:"status"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	Output    json.RawMessage `json:"output,omitempty"`
}

// DurationMS returns the span's duration in milliseconds. It is only
// meaningful once the span is terminal; callers should check IsTerminal
// first (or Status.IsTerminal()).
func (s *Span) DurationMS() int64 {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt).Milliseconds()
}

// IsTerminal reports whether the span has reached completed or failed.
func (s *Span) IsTerminal() bool {
	return s.Status.IsTerminal()
}

// SpanBuilder constructs a new running Span with a generated id and
// StartedAt = now.
type SpanBuilder struct {
	span Span
}

// NewSpanBuilder starts building a span for the given trace.
func NewSpanBuilder(traceID TraceID, name string, kind SpanKind) *SpanBuilder {
	return &SpanBuilder{span: Span{
		ID:        NewSpanID(),
		TraceID:   traceID,
		Name:      name,
		Kind:      kind,
		Status:    StatusRunning(),
		StartedAt: time.Now().UTC(),
	}}
}

// Parent sets the parent span id.
func (b *SpanBuilder) Parent(id SpanID) *SpanBuilder {
	b.span.ParentID = &id
	return b
}

// Org sets the owning organisation.
func (b *SpanBuilder) Org(id OrgID) *SpanBuilder {
	b.span.OrgID = &id
	return b
}

// Input attaches the input payload.
func (b *SpanBuilder) Input(payload json.RawMessage) *SpanBuilder {
	b.span.Input = payload
	return b
}

// Build returns the constructed span.
func (b *SpanBuilder) Build() Span {
	return b.span
}
