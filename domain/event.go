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

import "encoding/json"

// EventType is one variant in the store's event taxonomy. Every mutation
// the persistent store makes publishes exactly one of these after its
// write lock is released.
type EventType string

const (
	EventSpanCreated        EventType = "span_created"
	EventSpanCompleted      EventType = "span_completed"
	EventSpanFailed         EventType = "span_failed"
	EventTraceCreated       EventType = "trace_created"
	EventTraceCompleted     EventType = "trace_completed"
	EventSpanDeleted        EventType = "span_deleted"
	EventTraceDeleted       EventType = "trace_deleted"
	EventFileVersionCreated EventType = "file_version_created"
	EventDatasetCreated     EventType = "dataset_created"
	EventDatasetDeleted     EventType = "dataset_deleted"
	EventDatapointCreated   EventType = "datapoint_created"
	EventQueueItemUpdated   EventType = "queue_item_updated"
	EventCleared            EventType = "cleared"
)

// Event is the envelope published on the event bus and streamed to SSE
// subscribers verbatim as its JSON encoding.
type Event struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"-"`
}

// MarshalJSON flattens Data's fields alongside "type", mirroring the span
// and datapoint kind wire shape: `{"type": "...", <data fields>}`.
func (e Event) MarshalJSON() ([]byte, error) {
	if len(e.Data) == 0 {
		return json.Marshal(struct {
			Type EventType `json:"type"`
		}{e.Type})
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e.Data, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]json.RawMessage{}
	}
	typeJSON, err := json.Marshal(e.Type)
	if err != nil {
		return nil, err
	}
	fields["type"] = typeJSON
	return json.Marshal(fields)
}

// NewEvent builds an Event by marshaling payload as the data fields.
func NewEvent(t EventType, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: t, Data: data}, nil
}
