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

// Package store hosts the persistent store: the in-memory dual index over
// spans/traces/files/datasets, its write-through dispatch to a
// storage.Backend, the span and queue-item state machines, and the
// analytics engine. It is the one logical object every HTTP handler and
// the proxy mutate through; concurrency is a single sync.RWMutex per
// Store.
package store

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sagelabs-oss/sentryd/cache"
	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/eventbus"
	"github.com/sagelabs-oss/sentryd/observability/logging"
	"github.com/sagelabs-oss/sentryd/observability/metrics"
	"github.com/sagelabs-oss/sentryd/storage"
)

// Store is the persistent store backing the daemon. One Store exists per
// organisation namespace, for per-tenant isolation; the zero value is
// not usable, construct with Open.
type Store struct {
	mu sync.RWMutex

	backend storage.Backend
	bus     eventbus.Publisher
	log     logging.Logger
	metrics *metrics.DaemonMetrics

	analytics   cache.Cache
	generation  int64 // bumped on every write, folded into analytics cache keys

	spans       map[domain.SpanID]domain.Span
	traceIndex  map[domain.TraceID][]domain.SpanID
	traces      map[domain.TraceID]domain.Trace
	datasets    map[domain.DatasetID]domain.Dataset
	datapoints  map[domain.DatapointID]domain.Datapoint
	queueItems  map[domain.QueueItemID]domain.QueueItem
	fileVersion []domain.FileVersion
}

// Open constructs a Store, populating every index from backend via its
// LoadAllX methods. Span and trace loads are required: a failure there is
// returned. File versions and datasets are optional collections — a
// backend error loading them is logged at warning level and the store
// still opens empty for that collection.
func Open(ctx context.Context, backend storage.Backend, bus eventbus.Publisher, log logging.Logger) (*Store, error) {
	if log == nil {
		log = logging.NewStructuredLogger(logging.LevelInfo)
	}
	s := &Store{
		backend:    backend,
		bus:        bus,
		log:        log,
		analytics:  cache.NewMemoryCache(cache.DefaultCacheConfig()),
		spans:      make(map[domain.SpanID]domain.Span),
		traceIndex: make(map[domain.TraceID][]domain.SpanID),
		traces:     make(map[domain.TraceID]domain.Trace),
		datasets:   make(map[domain.DatasetID]domain.Dataset),
		datapoints: make(map[domain.DatapointID]domain.Datapoint),
		queueItems: make(map[domain.QueueItemID]domain.QueueItem),
	}

	var required errgroup.Group
	var spans []domain.Span
	var traces []domain.Trace
	required.Go(func() error {
		var err error
		spans, err = backend.LoadAllSpans(ctx)
		return err
	})
	required.Go(func() error {
		var err error
		traces, err = backend.LoadAllTraces(ctx)
		return err
	})
	if err := required.Wait(); err != nil {
		return nil, err
	}

	for _, sp := range spans {
		s.spans[sp.ID] = sp
		s.traceIndex[sp.TraceID] = append(s.traceIndex[sp.TraceID], sp.ID)
	}
	for _, tr := range traces {
		s.traces[tr.ID] = tr
	}
	for _, idx := range s.traceIndex {
		sort.Slice(idx, func(i, j int) bool { return idx[i] < idx[j] })
	}
	log.Warn(ctx, "store opened core collections",
		logging.Int("spans", len(s.spans)), logging.Int("traces", len(s.traces)))

	if fvs, err := backend.LoadAllFileVersions(ctx); err != nil {
		log.Warn(ctx, "file versions did not load, starting empty", logging.Error(err))
	} else {
		s.fileVersion = fvs
	}
	if dsets, err := backend.LoadAllDatasets(ctx); err != nil {
		log.Warn(ctx, "datasets did not load, starting empty", logging.Error(err))
	} else {
		for _, d := range dsets {
			s.datasets[d.ID] = d
		}
	}
	if dps, err := backend.LoadAllDatapoints(ctx); err != nil {
		log.Warn(ctx, "datapoints did not load, starting empty", logging.Error(err))
	} else {
		for _, d := range dps {
			s.datapoints[d.ID] = d
		}
	}
	if qis, err := backend.LoadAllQueueItems(ctx); err != nil {
		log.Warn(ctx, "queue items did not load, starting empty", logging.Error(err))
	} else {
		for _, q := range qis {
			s.queueItems[q.ID] = q
		}
	}

	return s, nil
}

// Close releases the backend's resources. It does not touch the bus.
func (s *Store) Close() error {
	if s.analytics != nil {
		s.analytics.Close()
	}
	return s.backend.Close()
}

// BackendType reports the concrete backend's name, for /api/stats.
func (s *Store) BackendType() string {
	return s.backend.BackendType()
}

// SetMetrics wires a metrics recorder into the store. Optional: an
// unset recorder leaves every RecordX call a no-op.
func (s *Store) SetMetrics(m *metrics.DaemonMetrics) {
	s.metrics = m
}

// publish broadcasts event on the bus if one is configured. Called only
// after the write lock has been released — every caller in this package
// already follows that discipline; publish itself never takes s.mu.
func (s *Store) publish(ctx context.Context, t domain.EventType, payload interface{}) {
	atomic.AddInt64(&s.generation, 1)
	if s.bus == nil {
		return
	}
	ev, err := domain.NewEvent(t, payload)
	if err != nil {
		s.log.Error(ctx, "failed to encode event", logging.String("event_type", string(t)), logging.Error(err))
		return
	}
	s.bus.Publish(ev)
	s.metrics.RecordBusPublish(s.bus.SubscriberCount())
}
