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

package api

import (
	"time"

	"github.com/sagelabs-oss/sentryd/domain"
)

// filterRequest is the JSON-body shape of domain.Filter, used by the
// analytics query endpoint where filters travel in a POST body instead of
// query parameters.
type filterRequest struct {
	Kind         *string `json:"kind,omitempty"`
	Model        *string `json:"model,omitempty"`
	Provider     *string `json:"provider,omitempty"`
	Status       *string `json:"status,omitempty"`
	TraceID      *string `json:"trace_id,omitempty"`
	Since        *string `json:"since,omitempty"`
	Until        *string `json:"until,omitempty"`
	NameContains *string `json:"name_contains,omitempty"`
	Path         *string `json:"path,omitempty"`
	Limit        *int    `json:"limit,omitempty"`
}

func (f filterRequest) toDomainFilter() (domain.Filter, error) {
	var out domain.Filter
	if f.Kind != nil {
		kt := domain.SpanKindType(*f.Kind)
		out.Kind = &kt
	}
	out.Model = f.Model
	out.Provider = f.Provider
	out.Status = f.Status
	if f.TraceID != nil {
		tid := domain.TraceID(*f.TraceID)
		out.TraceID = &tid
	}
	out.NameContains = f.NameContains
	out.Path = f.Path
	out.Limit = f.Limit

	if f.Since != nil {
		t, err := time.Parse(time.RFC3339, *f.Since)
		if err != nil {
			return out, errInvalidTimestamp("since", *f.Since)
		}
		out.Since = &t
	}
	if f.Until != nil {
		t, err := time.Parse(time.RFC3339, *f.Until)
		if err != nil {
			return out, errInvalidTimestamp("until", *f.Until)
		}
		out.Until = &t
	}
	return out, nil
}
