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
	"net/http"

	"github.com/sagelabs-oss/sentryd/store"
)

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.Store.Summarize())
}

type analyticsRequest struct {
	Filter  filterRequest    `json:"filter"`
	GroupBy []store.GroupBy  `json:"group_by,omitempty"`
}

func (s *Server) handleAnalyticsQuery(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	filter, err := req.Filter.toDomainFilter()
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeOK(w, s.Store.Analyze(store.Query{Filter: filter, GroupBy: req.GroupBy}))
}
