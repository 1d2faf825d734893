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

// Package domain defines the canonical span/trace/dataset data model shared
// by the storage backends, the persistent store, the HTTP API, and the
// intercepting proxy.
package domain

import (
	"github.com/google/uuid"
)

// SpanID, TraceID, DatasetID, DatapointID, and QueueItemID are all
// time-ordered 128-bit identifiers in canonical 36-character string form.
// They embed creation time in the high bits (UUIDv7) so ascending string
// order already gives ascending creation order without a separate
// timestamp column to sort by. OrgID is an opaque organisation name
// (e.g. "env", "default", or a session claim) with no fixed format.
type (
	SpanID      string
	TraceID     string
	DatasetID   string
	DatapointID string
	QueueItemID string
	OrgID       string
)

// NewSpanID generates a fresh time-ordered span identifier.
func NewSpanID() SpanID { return SpanID(newID()) }

// NewTraceID generates a fresh time-ordered trace identifier.
func NewTraceID() TraceID { return TraceID(newID()) }

// NewDatasetID generates a fresh time-ordered dataset identifier.
func NewDatasetID() DatasetID { return DatasetID(newID()) }

// NewDatapointID generates a fresh time-ordered datapoint identifier.
func NewDatapointID() DatapointID { return DatapointID(newID()) }

// NewQueueItemID generates a fresh time-ordered queue item identifier.
func NewQueueItemID() QueueItemID { return QueueItemID(newID()) }

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the entropy source is broken; fall back
		// to a random v4 rather than panicking in a hot path.
		return uuid.NewString()
	}
	return id.String()
}
