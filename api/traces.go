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

	"github.com/gorilla/mux"

	"github.com/sagelabs-oss/sentryd/domain"
)

type createTraceRequest struct {
	Name      string   `json:"name"`
	Tags      []string `json:"tags,omitempty"`
	MachineID *string  `json:"machine_id,omitempty"`
}

func (s *Server) handleCreateTrace(w http.ResponseWriter, r *http.Request) {
	var req createTraceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	trace := domain.NewTrace(req.Name)
	if req.Tags != nil {
		trace = trace.WithTags(req.Tags)
	}
	trace.MachineID = req.MachineID
	writeCreated(w, s.Store.CreateTrace(r.Context(), trace))
}

func (s *Server) handleListTraces(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.Store.ListTraces())
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	id := domain.TraceID(mux.Vars(r)["id"])
	trace, ok := s.Store.GetTrace(id)
	if !ok {
		writeNotFound(w, "trace not found")
		return
	}
	writeOK(w, trace)
}

func (s *Server) handleLatestTrace(w http.ResponseWriter, r *http.Request) {
	trace, ok := s.Store.LatestTrace()
	if !ok {
		writeNotFound(w, "no traces recorded yet")
		return
	}
	writeOK(w, trace)
}

func (s *Server) handleTraceSpans(w http.ResponseWriter, r *http.Request) {
	id := domain.TraceID(mux.Vars(r)["id"])
	if _, ok := s.Store.GetTrace(id); !ok {
		writeNotFound(w, "trace not found")
		return
	}
	writeOK(w, s.Store.SpansForTrace(id))
}

func (s *Server) handleCompleteTrace(w http.ResponseWriter, r *http.Request) {
	id := domain.TraceID(mux.Vars(r)["id"])
	trace, ok := s.Store.CompleteTrace(r.Context(), id)
	if !ok {
		if _, exists := s.Store.GetTrace(id); !exists {
			writeNotFound(w, "trace not found")
			return
		}
		writeConflict(w, "trace already ended")
		return
	}
	writeOK(w, trace)
}

func (s *Server) handleDeleteTrace(w http.ResponseWriter, r *http.Request) {
	id := domain.TraceID(mux.Vars(r)["id"])
	if !s.Store.DeleteTrace(r.Context(), id) {
		writeNotFound(w, "trace not found")
		return
	}
	writeOK(w, map[string]bool{"deleted": true})
}

// handleClearTraces truncates every recorded trace, without touching
// spans. It is the bulk counterpart to handleDeleteTrace.
func (s *Server) handleClearTraces(w http.ResponseWriter, r *http.Request) {
	s.Store.ClearTraces(r.Context())
	writeOK(w, map[string]bool{"cleared": true})
}
