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

	"github.com/sagelabs-oss/sentryd/domain"
)

// MaxBatchSize is the largest number of entities a single batch call
// accepts; callers that exceed it chunk their own calls.
const MaxBatchSize = 1000

// Backend is the storage-backend contract. Both the local relational
// backend and the remote row-store backend satisfy it; the persistent
// store holds a Backend value and never branches on its concrete type.
// Every method returns errors drawn from the pkg/errors persistence
// taxonomy (NotFound, Database, Serialization, Io, Network, Configuration,
// Backend) — implementations translate failures, they never panic.
type Backend interface {
	// BackendType names the concrete backend, for logging and the stats
	// endpoint (e.g. "sqlite", "remote").
	BackendType() string

	SaveSpan(ctx context.Context, span domain.Span) error
	GetSpan(ctx context.Context, id domain.SpanID) (domain.Span, bool, error)
	ListSpans(ctx context.Context, filter domain.Filter) ([]domain.Span, error)
	DeleteSpan(ctx context.Context, id domain.SpanID) (bool, error)
	SaveSpansBatch(ctx context.Context, spans []domain.Span) error
	LoadAllSpans(ctx context.Context) ([]domain.Span, error)
	DeleteTrace(ctx context.Context, id domain.TraceID) (bool, error)
	ClearSpans(ctx context.Context) error

	SaveTrace(ctx context.Context, trace domain.Trace) error
	GetTrace(ctx context.Context, id domain.TraceID) (domain.Trace, bool, error)
	ListTraces(ctx context.Context) ([]domain.Trace, error)
	DeleteTraceMeta(ctx context.Context, id domain.TraceID) (bool, error)
	LoadAllTraces(ctx context.Context) ([]domain.Trace, error)
	ClearTraces(ctx context.Context) error

	SaveFileVersion(ctx context.Context, fv domain.FileVersion) error
	ListFileVersions(ctx context.Context, pathPrefix string) ([]domain.FileVersion, error)
	LoadAllFileVersions(ctx context.Context) ([]domain.FileVersion, error)
	SaveFileContent(ctx context.Context, hash string, content []byte) error
	LoadFileContent(ctx context.Context, hash string) ([]byte, error)

	SaveDataset(ctx context.Context, ds domain.Dataset) error
	GetDataset(ctx context.Context, id domain.DatasetID) (domain.Dataset, bool, error)
	ListDatasets(ctx context.Context) ([]domain.Dataset, error)
	DeleteDataset(ctx context.Context, id domain.DatasetID) (bool, error)
	LoadAllDatasets(ctx context.Context) ([]domain.Dataset, error)

	SaveDatapoint(ctx context.Context, dp domain.Datapoint) error
	GetDatapoint(ctx context.Context, id domain.DatapointID) (domain.Datapoint, bool, error)
	ListDatapoints(ctx context.Context, datasetID domain.DatasetID) ([]domain.Datapoint, error)
	SaveDatapointsBatch(ctx context.Context, dps []domain.Datapoint) error
	LoadAllDatapoints(ctx context.Context) ([]domain.Datapoint, error)

	SaveQueueItem(ctx context.Context, qi domain.QueueItem) error
	GetQueueItem(ctx context.Context, id domain.QueueItemID) (domain.QueueItem, bool, error)
	ListQueueItems(ctx context.Context, datasetID domain.DatasetID) ([]domain.QueueItem, error)
	LoadAllQueueItems(ctx context.Context) ([]domain.QueueItem, error)

	// Close releases any underlying connection or client resources.
	Close() error
}
