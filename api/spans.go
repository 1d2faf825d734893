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
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/sagelabs-oss/sentryd/domain"
)

type createSpanRequest struct {
	TraceID  domain.TraceID  `json:"trace_id"`
	ParentID *domain.SpanID  `json:"parent_id,omitempty"`
	Name     string          `json:"name"`
	Kind     domain.SpanKind `json:"kind"`
	Input    json.RawMessage `json:"input,omitempty"`
}

func (s *Server) handleCreateSpan(w http.ResponseWriter, r *http.Request) {
	var req createSpanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TraceID == "" || req.Name == "" {
		writeBadRequest(w, "trace_id and name are required")
		return
	}

	builder := domain.NewSpanBuilder(req.TraceID, req.Name, req.Kind)
	if req.ParentID != nil {
		builder.Parent(*req.ParentID)
	}
	if req.Input != nil {
		builder.Input(req.Input)
	}
	span := s.Store.CreateSpan(r.Context(), builder.Build())
	writeCreated(w, span)
}

func (s *Server) handleListSpans(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSpanFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	writeOK(w, s.Store.ListSpans(filter))
}

func (s *Server) handleGetSpan(w http.ResponseWriter, r *http.Request) {
	id := domain.SpanID(mux.Vars(r)["id"])
	span, ok := s.Store.GetSpan(id)
	if !ok {
		writeNotFound(w, "span not found")
		return
	}
	writeOK(w, span)
}

func (s *Server) handleDeleteSpan(w http.ResponseWriter, r *http.Request) {
	id := domain.SpanID(mux.Vars(r)["id"])
	if !s.Store.DeleteSpan(r.Context(), id) {
		writeNotFound(w, "span not found")
		return
	}
	writeOK(w, map[string]bool{"deleted": true})
}

type completeSpanRequest struct {
	Output json.RawMessage `json:"output,omitempty"`
}

func (s *Server) handleCompleteSpan(w http.ResponseWriter, r *http.Request) {
	id := domain.SpanID(mux.Vars(r)["id"])
	var req completeSpanRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	if _, ok := s.Store.GetSpan(id); !ok {
		writeNotFound(w, "span not found")
		return
	}
	span, ok := s.Store.CompleteSpan(r.Context(), id, req.Output)
	if !ok {
		writeConflict(w, "span already reached a terminal state")
		return
	}
	writeOK(w, span)
}

type failSpanRequest struct {
	Error string `json:"error"`
}

func (s *Server) handleFailSpan(w http.ResponseWriter, r *http.Request) {
	id := domain.SpanID(mux.Vars(r)["id"])
	var req failSpanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Error == "" {
		writeBadRequest(w, "error is required")
		return
	}

	if _, ok := s.Store.GetSpan(id); !ok {
		writeNotFound(w, "span not found")
		return
	}
	span, ok := s.Store.FailSpan(r.Context(), id, req.Error)
	if !ok {
		writeConflict(w, "span already reached a terminal state")
		return
	}
	writeOK(w, span)
}

// parseSpanFilter builds a domain.Filter from the span list query
// parameters.
func parseSpanFilter(r *http.Request) (domain.Filter, error) {
	q := r.URL.Query()
	var f domain.Filter

	if v := q.Get("kind"); v != "" {
		kt := domain.SpanKindType(v)
		f.Kind = &kt
	}
	if v := q.Get("model"); v != "" {
		f.Model = &v
	}
	if v := q.Get("provider"); v != "" {
		f.Provider = &v
	}
	if v := q.Get("status"); v != "" {
		f.Status = &v
	}
	if v := q.Get("trace_id"); v != "" {
		tid := domain.TraceID(v)
		f.TraceID = &tid
	}
	if v := q.Get("name_contains"); v != "" {
		f.NameContains = &v
	}
	if v := q.Get("path"); v != "" {
		f.Path = &v
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errInvalidTimestamp("since", v)
		}
		f.Since = &t
	}
	if v := q.Get("until"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, errInvalidTimestamp("until", v)
		}
		f.Until = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, errInvalidLimit(v)
		}
		f.Limit = &n
	}
	return f, nil
}
