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
	"sort"
	"time"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/observability/logging"
)

// CreateSpan inserts a new running span. The span's StartedAt/ID must
// already be set by the caller (domain.NewSpanBuilder does this); CreateSpan
// does not mint identifiers itself so callers that need to know the id
// before insertion (the proxy does) can hold onto it.
func (s *Store) CreateSpan(ctx context.Context, span domain.Span) domain.Span {
	s.mu.Lock()
	s.spans[span.ID] = span
	s.traceIndex[span.TraceID] = insertSorted(s.traceIndex[span.TraceID], span.ID)
	s.mu.Unlock()

	if err := s.backend.SaveSpan(ctx, span); err != nil {
		s.log.Error(ctx, "failed to persist span", logging.String("span_id", string(span.ID)), logging.Error(err))
	}
	s.publish(ctx, domain.EventSpanCreated, map[string]interface{}{"span": span})
	s.metrics.RecordSpanCreated(string(span.Kind.Type))
	return span
}

// GetSpan looks up a span by id.
func (s *Store) GetSpan(id domain.SpanID) (domain.Span, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.spans[id]
	return sp, ok
}

// ListSpans applies filter in memory over the span index.
func (s *Store) ListSpans(filter domain.Filter) []domain.Span {
	s.mu.RLock()
	all := make([]domain.Span, 0, len(s.spans))
	for _, sp := range s.spans {
		all = append(all, sp)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return domain.Apply(all, filter)
}

// SpansForTrace returns every span belonging to traceID, in creation
// order.
func (s *Store) SpansForTrace(traceID domain.TraceID) []domain.Span {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.traceIndex[traceID]
	out := make([]domain.Span, 0, len(ids))
	for _, id := range ids {
		if sp, ok := s.spans[id]; ok {
			out = append(out, sp)
		}
	}
	return out
}

// CompleteSpan transitions id to completed. ok is false if the
// span does not exist or is already terminal.
func (s *Store) CompleteSpan(ctx context.Context, id domain.SpanID, output json.RawMessage) (domain.Span, bool) {
	return s.completeOrFail(ctx, id, func(sp domain.Span) domain.Span {
		sp.Status = domain.StatusCompleted()
		sp.Output = output
		return sp
	}, domain.EventSpanCompleted)
}

// FailSpan transitions id to failed with errMsg, symmetric to CompleteSpan.
func (s *Store) FailSpan(ctx context.Context, id domain.SpanID, errMsg string) (domain.Span, bool) {
	return s.completeOrFail(ctx, id, func(sp domain.Span) domain.Span {
		sp.Status = domain.StatusFailed(errMsg)
		return sp
	}, domain.EventSpanFailed)
}

// CompleteSpanWithKind transitions id to completed while also replacing
// its Kind, used by the proxy once token counts are known only at
// response time. It shares the same terminal-state guard as
// CompleteSpan.
func (s *Store) CompleteSpanWithKind(ctx context.Context, id domain.SpanID, kind domain.SpanKind, output json.RawMessage) (domain.Span, bool) {
	return s.completeOrFail(ctx, id, func(sp domain.Span) domain.Span {
		sp.Status = domain.StatusCompleted()
		sp.Kind = kind
		sp.Output = output
		return sp
	}, domain.EventSpanCompleted)
}

// completeOrFail is the shared terminal-transition guard: look up,
// reject if absent or already terminal, mutate, persist, publish.
func (s *Store) completeOrFail(ctx context.Context, id domain.SpanID, mutate func(domain.Span) domain.Span, evt domain.EventType) (domain.Span, bool) {
	s.mu.Lock()
	sp, ok := s.spans[id]
	if !ok || sp.IsTerminal() {
		s.mu.Unlock()
		return domain.Span{}, false
	}
	now := time.Now().UTC()
	sp = mutate(sp)
	sp.EndedAt = &now
	s.spans[id] = sp
	s.mu.Unlock()

	if err := s.backend.SaveSpan(ctx, sp); err != nil {
		s.log.Error(ctx, "failed to persist span transition", logging.String("span_id", string(id)), logging.Error(err))
	}
	s.publish(ctx, evt, map[string]interface{}{"span": sp})
	if evt == domain.EventSpanCompleted {
		s.metrics.RecordSpanCompleted(string(sp.Kind.Type))
	} else {
		s.metrics.RecordSpanFailed(string(sp.Kind.Type))
	}
	return sp, true
}

// DeleteSpan removes a span from both indices and the backend.
func (s *Store) DeleteSpan(ctx context.Context, id domain.SpanID) bool {
	s.mu.Lock()
	sp, ok := s.spans[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.spans, id)
	s.traceIndex[sp.TraceID] = removeID(s.traceIndex[sp.TraceID], id)
	s.mu.Unlock()

	if _, err := s.backend.DeleteSpan(ctx, id); err != nil {
		s.log.Error(ctx, "failed to delete span from backend", logging.String("span_id", string(id)), logging.Error(err))
	}
	s.publish(ctx, domain.EventSpanDeleted, map[string]interface{}{"span_id": id})
	return true
}

// ClearSpans truncates every span from the memory index and the backend,
// without touching traces.
func (s *Store) ClearSpans(ctx context.Context) {
	s.mu.Lock()
	s.spans = make(map[domain.SpanID]domain.Span)
	s.traceIndex = make(map[domain.TraceID][]domain.SpanID)
	s.mu.Unlock()

	if err := s.backend.ClearSpans(ctx); err != nil {
		s.log.Error(ctx, "failed to clear spans in backend", logging.Error(err))
	}
	s.publish(ctx, domain.EventCleared, map[string]interface{}{"scope": "spans"})
}

func insertSorted(ids []domain.SpanID, id domain.SpanID) []domain.SpanID {
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func removeID(ids []domain.SpanID, id domain.SpanID) []domain.SpanID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
