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

package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/eventbus"
	"github.com/sagelabs-oss/sentryd/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), storage.NewMemoryBackend(), eventbus.New(), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestStore_CreateAndCompleteSpan(t *testing.T) {
	s := newTestStore(t)
	trace := s.CreateTrace(context.Background(), domain.NewTrace("t"))

	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "tool", Attributes: map[string]json.RawMessage{}}}
	span := domain.NewSpanBuilder(trace.ID, "n", kind).Build()
	created := s.CreateSpan(context.Background(), span)

	completed, ok := s.CompleteSpan(context.Background(), created.ID, json.RawMessage(`{"ok":true}`))
	if !ok {
		t.Fatal("CompleteSpan() ok = false, want true")
	}
	if completed.Status.State != "completed" {
		t.Fatalf("status = %q, want completed", completed.Status.State)
	}
	if completed.EndedAt == nil {
		t.Fatal("EndedAt is nil after completion")
	}
	if completed.DurationMS() < 0 {
		t.Fatalf("DurationMS() = %d, want >= 0", completed.DurationMS())
	}
}

func TestStore_TerminalReTransitionIsConflict(t *testing.T) {
	s := newTestStore(t)
	trace := s.CreateTrace(context.Background(), domain.NewTrace("t"))
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "tool", Attributes: map[string]json.RawMessage{}}}
	span := s.CreateSpan(context.Background(), domain.NewSpanBuilder(trace.ID, "n", kind).Build())

	if _, ok := s.CompleteSpan(context.Background(), span.ID, nil); !ok {
		t.Fatal("first CompleteSpan() should succeed")
	}
	if _, ok := s.FailSpan(context.Background(), span.ID, "boom"); ok {
		t.Fatal("FailSpan() on a completed span should fail")
	}

	got, _ := s.GetSpan(span.ID)
	if got.Status.State != "completed" {
		t.Fatalf("status after rejected transition = %q, want completed", got.Status.State)
	}
}

func TestStore_DeleteTraceCascadesSpans(t *testing.T) {
	s := newTestStore(t)
	trace := s.CreateTrace(context.Background(), domain.NewTrace("t"))
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "tool", Attributes: map[string]json.RawMessage{}}}
	span := s.CreateSpan(context.Background(), domain.NewSpanBuilder(trace.ID, "n", kind).Build())

	if !s.DeleteTrace(context.Background(), trace.ID) {
		t.Fatal("DeleteTrace() = false, want true")
	}
	if _, ok := s.GetTrace(trace.ID); ok {
		t.Fatal("trace still present after delete")
	}
	if _, ok := s.GetSpan(span.ID); ok {
		t.Fatal("span still present after owning trace deleted")
	}
}

func TestStore_ClearTracesLeavesSpans(t *testing.T) {
	s := newTestStore(t)
	trace := s.CreateTrace(context.Background(), domain.NewTrace("t"))
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "tool", Attributes: map[string]json.RawMessage{}}}
	span := s.CreateSpan(context.Background(), domain.NewSpanBuilder(trace.ID, "n", kind).Build())

	s.ClearTraces(context.Background())

	if _, ok := s.GetTrace(trace.ID); ok {
		t.Fatal("trace still present after ClearTraces")
	}
	if len(s.ListTraces()) != 0 {
		t.Fatalf("ListTraces() len = %d, want 0", len(s.ListTraces()))
	}
	if _, ok := s.GetSpan(span.ID); !ok {
		t.Fatal("span removed by ClearTraces, want untouched")
	}
}

func TestStore_QueueItemTransitions(t *testing.T) {
	s := newTestStore(t)
	ds := s.CreateDataset(context.Background(), domain.NewDataset("d", ""))
	dp := s.CreateDatapoint(context.Background(), domain.NewDatapoint(ds.ID, domain.DatapointKind{
		Type:    domain.DatapointKindGeneric,
		Generic: &domain.GenericKind{Input: json.RawMessage(`{}`)},
	}, domain.DatapointSourceManual))
	qi := s.CreateQueueItem(context.Background(), domain.NewQueueItem(ds.ID, dp.ID, json.RawMessage(`{}`)))

	if _, ok := s.CompleteQueueItem(context.Background(), qi.ID, nil); ok {
		t.Fatal("completing a pending item should fail")
	}
	claimed, ok := s.ClaimQueueItem(context.Background(), qi.ID, "alice")
	if !ok || claimed.Status != domain.QueueItemClaimed {
		t.Fatalf("ClaimQueueItem() = %+v, %v", claimed, ok)
	}
	if _, ok := s.ClaimQueueItem(context.Background(), qi.ID, "bob"); ok {
		t.Fatal("claiming an already-claimed item should fail")
	}
	completed, ok := s.CompleteQueueItem(context.Background(), qi.ID, json.RawMessage(`{"edited":true}`))
	if !ok || completed.Status != domain.QueueItemCompleted {
		t.Fatalf("CompleteQueueItem() = %+v, %v", completed, ok)
	}
}

func TestStore_DatasetDeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ds := s.CreateDataset(context.Background(), domain.NewDataset("d", ""))
	dp := s.CreateDatapoint(context.Background(), domain.NewDatapoint(ds.ID, domain.DatapointKind{
		Type:    domain.DatapointKindGeneric,
		Generic: &domain.GenericKind{Input: json.RawMessage(`{}`)},
	}, domain.DatapointSourceManual))
	s.CreateQueueItem(context.Background(), domain.NewQueueItem(ds.ID, dp.ID, json.RawMessage(`{}`)))

	if !s.DeleteDataset(context.Background(), ds.ID) {
		t.Fatal("DeleteDataset() = false")
	}
	if len(s.ListDatapoints(ds.ID)) != 0 {
		t.Fatal("datapoints survived dataset deletion")
	}
	if len(s.ListQueueItems(ds.ID)) != 0 {
		t.Fatal("queue items survived dataset deletion")
	}
}

func TestStore_FileVersionIdempotentContent(t *testing.T) {
	s := newTestStore(t)
	fv, err := s.RecordFileVersion(context.Background(), "/a.txt", []byte("hello"), nil)
	if err != nil {
		t.Fatalf("RecordFileVersion() error = %v", err)
	}
	if _, err := s.RecordFileVersion(context.Background(), "/a.txt", []byte("hello"), nil); err != nil {
		t.Fatalf("second RecordFileVersion() error = %v", err)
	}

	content, err := s.FileContent(context.Background(), fv.Hash)
	if err != nil {
		t.Fatalf("FileContent() error = %v", err)
	}
	if string(content) != "hello" {
		t.Fatalf("content = %q, want %q", content, "hello")
	}
}

func TestStore_AnalyzeTotals(t *testing.T) {
	s := newTestStore(t)
	trace := s.CreateTrace(context.Background(), domain.NewTrace("t"))

	costs := []float64{0.1, 0.2, 0.3}
	for _, cost := range costs {
		c := cost
		kind := domain.SpanKind{Type: domain.SpanKindLLMCall, LLMCall: &domain.LLMCallKind{Model: "gpt-4", Cost: &c}}
		sp := s.CreateSpan(context.Background(), domain.NewSpanBuilder(trace.ID, "llm", kind).Build())
		if _, ok := s.CompleteSpan(context.Background(), sp.ID, nil); !ok {
			t.Fatal("CompleteSpan() failed")
		}
	}

	result := s.Analyze(Query{})
	if diff := result.Totals.TotalCost - 0.6; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("TotalCost = %v, want 0.6", result.Totals.TotalCost)
	}
}

func TestStore_ListSpansFilterOrderIndependent(t *testing.T) {
	s := newTestStore(t)
	trace := s.CreateTrace(context.Background(), domain.NewTrace("t"))
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "tool", Attributes: map[string]json.RawMessage{}}}

	for i := 0; i < 5; i++ {
		s.CreateSpan(context.Background(), domain.NewSpanBuilder(trace.ID, "n", kind).Build())
	}
	filter := domain.Filter{TraceID: &trace.ID}
	got := s.ListSpans(filter)
	if len(got) != 5 {
		t.Fatalf("len(ListSpans()) = %d, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID > got[i].ID {
			t.Fatal("results not ascending by id")
		}
	}
}
