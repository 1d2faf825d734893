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
	"sync"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

// MemoryBackend is an in-process Backend used by the storage and store
// tests that must not touch a file or a network. It has no persistence
// guarantees across process restarts.
type MemoryBackend struct {
	mu sync.RWMutex

	spans        map[domain.SpanID]domain.Span
	traces       map[domain.TraceID]domain.Trace
	files        map[string]domain.FileVersion // keyed by path+":"+hash
	fileContents map[string][]byte
	datasets     map[domain.DatasetID]domain.Dataset
	datapoints   map[domain.DatapointID]domain.Datapoint
	queueItems   map[domain.QueueItemID]domain.QueueItem
}

// NewMemoryBackend constructs an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		spans:        make(map[domain.SpanID]domain.Span),
		traces:       make(map[domain.TraceID]domain.Trace),
		files:        make(map[string]domain.FileVersion),
		fileContents: make(map[string][]byte),
		datasets:     make(map[domain.DatasetID]domain.Dataset),
		datapoints:   make(map[domain.DatapointID]domain.Datapoint),
		queueItems:   make(map[domain.QueueItemID]domain.QueueItem),
	}
}

// BackendType implements Backend.
func (b *MemoryBackend) BackendType() string { return "memory" }

// Close implements Backend.
func (b *MemoryBackend) Close() error { return nil }

// --- spans ---

func (b *MemoryBackend) SaveSpan(ctx context.Context, span domain.Span) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spans[span.ID] = span
	return nil
}

func (b *MemoryBackend) GetSpan(ctx context.Context, id domain.SpanID) (domain.Span, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	span, ok := b.spans[id]
	return span, ok, nil
}

func (b *MemoryBackend) ListSpans(ctx context.Context, filter domain.Filter) ([]domain.Span, error) {
	all, err := b.LoadAllSpans(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Apply(all, filter), nil
}

func (b *MemoryBackend) DeleteSpan(ctx context.Context, id domain.SpanID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.spans[id]; !ok {
		return false, nil
	}
	delete(b.spans, id)
	return true, nil
}

func (b *MemoryBackend) SaveSpansBatch(ctx context.Context, spans []domain.Span) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range spans {
		b.spans[s.ID] = s
	}
	return nil
}

func (b *MemoryBackend) LoadAllSpans(ctx context.Context) ([]domain.Span, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Span, 0, len(b.spans))
	for _, s := range b.spans {
		out = append(out, s)
	}
	return out, nil
}

func (b *MemoryBackend) DeleteTrace(ctx context.Context, id domain.TraceID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	deleted := false
	for spanID, s := range b.spans {
		if s.TraceID == id {
			delete(b.spans, spanID)
			deleted = true
		}
	}
	if _, ok := b.traces[id]; ok {
		delete(b.traces, id)
		deleted = true
	}
	return deleted, nil
}

func (b *MemoryBackend) ClearSpans(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spans = make(map[domain.SpanID]domain.Span)
	return nil
}

// --- traces ---

func (b *MemoryBackend) SaveTrace(ctx context.Context, trace domain.Trace) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.traces[trace.ID] = trace
	return nil
}

func (b *MemoryBackend) GetTrace(ctx context.Context, id domain.TraceID) (domain.Trace, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	trace, ok := b.traces[id]
	return trace, ok, nil
}

func (b *MemoryBackend) ListTraces(ctx context.Context) ([]domain.Trace, error) {
	return b.LoadAllTraces(ctx)
}

func (b *MemoryBackend) DeleteTraceMeta(ctx context.Context, id domain.TraceID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.traces[id]; !ok {
		return false, nil
	}
	delete(b.traces, id)
	return true, nil
}

func (b *MemoryBackend) LoadAllTraces(ctx context.Context) ([]domain.Trace, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Trace, 0, len(b.traces))
	for _, t := range b.traces {
		out = append(out, t)
	}
	return out, nil
}

// ClearTraces truncates every trace from the backend, without touching
// spans.
func (b *MemoryBackend) ClearTraces(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.traces = make(map[domain.TraceID]domain.Trace)
	return nil
}

// --- file versions & content ---

func fileKey(path, hash string) string { return path + ":" + hash }

func (b *MemoryBackend) SaveFileVersion(ctx context.Context, fv domain.FileVersion) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.files[fileKey(fv.Path, fv.Hash)] = fv
	return nil
}

func (b *MemoryBackend) ListFileVersions(ctx context.Context, pathPrefix string) ([]domain.FileVersion, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domain.FileVersion
	for _, fv := range b.files {
		if pathPrefix == "" || (len(fv.Path) >= len(pathPrefix) && fv.Path[:len(pathPrefix)] == pathPrefix) {
			out = append(out, fv)
		}
	}
	return out, nil
}

func (b *MemoryBackend) LoadAllFileVersions(ctx context.Context) ([]domain.FileVersion, error) {
	return b.ListFileVersions(ctx, "")
}

func (b *MemoryBackend) SaveFileContent(ctx context.Context, hash string, content []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.fileContents[hash]; ok {
		return nil
	}
	b.fileContents[hash] = content
	return nil
}

func (b *MemoryBackend) LoadFileContent(ctx context.Context, hash string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	content, ok := b.fileContents[hash]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return content, nil
}

// --- datasets / datapoints / queue items ---

func (b *MemoryBackend) SaveDataset(ctx context.Context, ds domain.Dataset) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.datasets[ds.ID] = ds
	return nil
}

func (b *MemoryBackend) GetDataset(ctx context.Context, id domain.DatasetID) (domain.Dataset, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ds, ok := b.datasets[id]
	return ds, ok, nil
}

func (b *MemoryBackend) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	return b.LoadAllDatasets(ctx)
}

func (b *MemoryBackend) DeleteDataset(ctx context.Context, id domain.DatasetID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.datasets[id]; !ok {
		return false, nil
	}
	delete(b.datasets, id)
	for dpID, dp := range b.datapoints {
		if dp.DatasetID == id {
			delete(b.datapoints, dpID)
		}
	}
	for qiID, qi := range b.queueItems {
		if qi.DatasetID == id {
			delete(b.queueItems, qiID)
		}
	}
	return true, nil
}

func (b *MemoryBackend) LoadAllDatasets(ctx context.Context) ([]domain.Dataset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Dataset, 0, len(b.datasets))
	for _, ds := range b.datasets {
		out = append(out, ds)
	}
	return out, nil
}

func (b *MemoryBackend) SaveDatapoint(ctx context.Context, dp domain.Datapoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.datapoints[dp.ID] = dp
	return nil
}

func (b *MemoryBackend) GetDatapoint(ctx context.Context, id domain.DatapointID) (domain.Datapoint, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	dp, ok := b.datapoints[id]
	return dp, ok, nil
}

func (b *MemoryBackend) ListDatapoints(ctx context.Context, datasetID domain.DatasetID) ([]domain.Datapoint, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domain.Datapoint
	for _, dp := range b.datapoints {
		if dp.DatasetID == datasetID {
			out = append(out, dp)
		}
	}
	return out, nil
}

func (b *MemoryBackend) SaveDatapointsBatch(ctx context.Context, dps []domain.Datapoint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, dp := range dps {
		b.datapoints[dp.ID] = dp
	}
	return nil
}

func (b *MemoryBackend) LoadAllDatapoints(ctx context.Context) ([]domain.Datapoint, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Datapoint, 0, len(b.datapoints))
	for _, dp := range b.datapoints {
		out = append(out, dp)
	}
	return out, nil
}

func (b *MemoryBackend) SaveQueueItem(ctx context.Context, qi domain.QueueItem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queueItems[qi.ID] = qi
	return nil
}

func (b *MemoryBackend) GetQueueItem(ctx context.Context, id domain.QueueItemID) (domain.QueueItem, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	qi, ok := b.queueItems[id]
	return qi, ok, nil
}

func (b *MemoryBackend) ListQueueItems(ctx context.Context, datasetID domain.DatasetID) ([]domain.QueueItem, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domain.QueueItem
	for _, qi := range b.queueItems {
		if qi.DatasetID == datasetID {
			out = append(out, qi)
		}
	}
	return out, nil
}

func (b *MemoryBackend) LoadAllQueueItems(ctx context.Context) ([]domain.QueueItem, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.QueueItem, 0, len(b.queueItems))
	for _, qi := range b.queueItems {
		out = append(out, qi)
	}
	return out, nil
}

var _ Backend = (*MemoryBackend)(nil)
