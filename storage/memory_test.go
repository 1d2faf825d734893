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

package storage

import (
	"context"
	"testing"

	"github.com/sagelabs-oss/sentryd/domain"
)

func newTestSpan(t *testing.T, traceID domain.TraceID, name string) domain.Span {
	t.Helper()
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "note"}}
	return domain.NewSpanBuilder(traceID, name, kind).Build()
}

func TestMemoryBackend_SpanRoundTrip(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	traceID := domain.NewTraceID()
	span := newTestSpan(t, traceID, "read-config")

	if err := b.SaveSpan(ctx, span); err != nil {
		t.Fatalf("SaveSpan: %v", err)
	}

	got, found, err := b.GetSpan(ctx, span.ID)
	if err != nil || !found {
		t.Fatalf("GetSpan: found=%v err=%v", found, err)
	}
	if got.Name != "read-config" {
		t.Fatalf("expected name 'read-config', got %q", got.Name)
	}

	deleted, err := b.DeleteSpan(ctx, span.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteSpan: deleted=%v err=%v", deleted, err)
	}
	if _, found, _ := b.GetSpan(ctx, span.ID); found {
		t.Fatal("expected span to be gone after delete")
	}
}

func TestMemoryBackend_ListSpansAppliesFilter(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	traceA := domain.NewTraceID()
	traceB := domain.NewTraceID()

	_ = b.SaveSpan(ctx, newTestSpan(t, traceA, "a1"))
	_ = b.SaveSpan(ctx, newTestSpan(t, traceA, "a2"))
	_ = b.SaveSpan(ctx, newTestSpan(t, traceB, "b1"))

	spans, err := b.ListSpans(ctx, domain.Filter{TraceID: &traceA})
	if err != nil {
		t.Fatalf("ListSpans: %v", err)
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans for traceA, got %d", len(spans))
	}
}

func TestMemoryBackend_DeleteTraceCascadesSpans(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()
	trace := domain.NewTrace("session")
	if err := b.SaveTrace(ctx, trace); err != nil {
		t.Fatalf("SaveTrace: %v", err)
	}
	_ = b.SaveSpan(ctx, newTestSpan(t, trace.ID, "s1"))
	_ = b.SaveSpan(ctx, newTestSpan(t, trace.ID, "s2"))

	deleted, err := b.DeleteTrace(ctx, trace.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteTrace: deleted=%v err=%v", deleted, err)
	}

	spans, err := b.LoadAllSpans(ctx)
	if err != nil {
		t.Fatalf("LoadAllSpans: %v", err)
	}
	if len(spans) != 0 {
		t.Fatalf("expected spans to be cascaded away, got %d", len(spans))
	}
}

func TestMemoryBackend_FileContentDedup(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	if err := b.SaveFileContent(ctx, "hash1", []byte("first")); err != nil {
		t.Fatalf("SaveFileContent: %v", err)
	}
	if err := b.SaveFileContent(ctx, "hash1", []byte("second")); err != nil {
		t.Fatalf("SaveFileContent (dup): %v", err)
	}

	content, err := b.LoadFileContent(ctx, "hash1")
	if err != nil {
		t.Fatalf("LoadFileContent: %v", err)
	}
	if string(content) != "first" {
		t.Fatalf("expected dedup to keep first write, got %q", string(content))
	}
}

func TestMemoryBackend_DeleteDatasetCascades(t *testing.T) {
	b := NewMemoryBackend()
	ctx := context.Background()

	ds := domain.NewDataset("golden-set", "")
	if err := b.SaveDataset(ctx, ds); err != nil {
		t.Fatalf("SaveDataset: %v", err)
	}

	kind := domain.DatapointKind{Type: domain.DatapointKindGeneric, Generic: &domain.GenericKind{Input: []byte(`{}`)}}
	dp := domain.NewDatapoint(ds.ID, kind, domain.DatapointSourceManual)
	if err := b.SaveDatapoint(ctx, dp); err != nil {
		t.Fatalf("SaveDatapoint: %v", err)
	}

	qi := domain.NewQueueItem(ds.ID, dp.ID, nil)
	if err := b.SaveQueueItem(ctx, qi); err != nil {
		t.Fatalf("SaveQueueItem: %v", err)
	}

	deleted, err := b.DeleteDataset(ctx, ds.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteDataset: deleted=%v err=%v", deleted, err)
	}

	dps, err := b.ListDatapoints(ctx, ds.ID)
	if err != nil {
		t.Fatalf("ListDatapoints: %v", err)
	}
	if len(dps) != 0 {
		t.Fatalf("expected datapoints to cascade-delete, got %d", len(dps))
	}

	qis, err := b.ListQueueItems(ctx, ds.ID)
	if err != nil {
		t.Fatalf("ListQueueItems: %v", err)
	}
	if len(qis) != 0 {
		t.Fatalf("expected queue items to cascade-delete, got %d", len(qis))
	}
}
