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

import "time"

// Trace is a logical grouping of spans produced by one end-to-end run. A
// trace's existence does not depend on any span having been stored for it.
type Trace struct {
	ID        TraceID    `json:"id"`
	OrgID     *OrgID     `json:"org_id,omitempty"`
	Name      *string    `json:"name,omitempty"`
	Tags      []string   `json:"tags"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	MachineID *string    `json:"machine_id,omitempty"`
}

// NewTrace starts a new, unended trace.
func NewTrace(name string) Trace {
	t := Trace{
		ID:        NewTraceID(),
		Tags:      []string{},
		StartedAt: time.Now().UTC(),
	}
	if name != "" {
		t.Name = &name
	}
	return t
}

// WithTags returns a copy of the trace with the given tags attached.
func (t Trace) WithTags(tags []string) Trace {
	t.Tags = tags
	return t
}

// Complete returns a copy of the trace with EndedAt set to now.
func (t Trace) Complete() Trace {
	now := time.Now().UTC()
	t.EndedAt = &now
	return t
}
