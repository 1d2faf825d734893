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
	"sort"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/observability/logging"
)

// CreateTrace inserts a new trace, memory first then backend, per the
// write-through order used throughout the store.
func (s *Store) CreateTrace(ctx context.Context, trace domain.Trace) domain.Trace {
	s.mu.Lock()
	s.traces[trace.ID] = trace
	if _, ok := s.traceIndex[trace.ID]; !ok {
		s.traceIndex[trace.ID] = nil
	}
	s.mu.Unlock()

	if err := s.backend.SaveTrace(ctx, trace); err != nil {
		s.log.Error(ctx, "failed to persist trace", logging.String("trace_id", string(trace.ID)), logging.Error(err))
	}
	s.publish(ctx, domain.EventTraceCreated, map[string]interface{}{"trace": trace})
	s.metrics.RecordTraceCreated()
	return trace
}

// GetTrace looks up a trace by id.
func (s *Store) GetTrace(id domain.TraceID) (domain.Trace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.traces[id]
	return t, ok
}

// ListTraces returns every known trace, ascending by id (= creation time).
func (s *Store) ListTraces() []domain.Trace {
	s.mu.RLock()
	out := make([]domain.Trace, 0, len(s.traces))
	for _, t := range s.traces {
		out = append(out, t)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CompleteTrace sets EndedAt on a trace. ok is false if the trace is
// unknown or already ended.
func (s *Store) CompleteTrace(ctx context.Context, id domain.TraceID) (domain.Trace, bool) {
	s.mu.Lock()
	t, ok := s.traces[id]
	if !ok || t.EndedAt != nil {
		s.mu.Unlock()
		return domain.Trace{}, false
	}
	t = t.Complete()
	s.traces[id] = t
	s.mu.Unlock()

	if err := s.backend.SaveTrace(ctx, t); err != nil {
		s.log.Error(ctx, "failed to persist trace completion", logging.String("trace_id", string(id)), logging.Error(err))
	}
	s.publish(ctx, domain.EventTraceCompleted, map[string]interface{}{"trace": t})
	return t, true
}

// DeleteTrace removes the trace and every span belonging to it, per the
// cascade rule: deleting a trace deletes its spans.
func (s *Store) DeleteTrace(ctx context.Context, id domain.TraceID) bool {
	s.mu.Lock()
	_, ok := s.traces[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	for _, spanID := range s.traceIndex[id] {
		delete(s.spans, spanID)
	}
	delete(s.traceIndex, id)
	delete(s.traces, id)
	s.mu.Unlock()

	if _, err := s.backend.DeleteTrace(ctx, id); err != nil {
		s.log.Error(ctx, "failed to delete spans for trace in backend", logging.String("trace_id", string(id)), logging.Error(err))
	}
	if _, err := s.backend.DeleteTraceMeta(ctx, id); err != nil {
		s.log.Error(ctx, "failed to delete trace metadata in backend", logging.String("trace_id", string(id)), logging.Error(err))
	}
	s.publish(ctx, domain.EventTraceDeleted, map[string]interface{}{"trace_id": id})
	return true
}

// ClearTraces truncates every trace from the memory index and the
// backend, without touching spans.
func (s *Store) ClearTraces(ctx context.Context) {
	s.mu.Lock()
	s.traces = make(map[domain.TraceID]domain.Trace)
	s.mu.Unlock()

	if err := s.backend.ClearTraces(ctx); err != nil {
		s.log.Error(ctx, "failed to clear traces in backend", logging.Error(err))
	}
	s.publish(ctx, domain.EventCleared, map[string]interface{}{"scope": "traces"})
}

// LatestTrace returns the most recently started trace, used by the
// /traces/_latest route.
func (s *Store) LatestTrace() (domain.Trace, bool) {
	traces := s.ListTraces()
	if len(traces) == 0 {
		return domain.Trace{}, false
	}
	latest := traces[0]
	for _, t := range traces[1:] {
		if t.StartedAt.After(latest.StartedAt) {
			latest = t
		}
	}
	return latest, true
}
