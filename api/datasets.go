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

	"github.com/gorilla/mux"

	"github.com/sagelabs-oss/sentryd/domain"
)

type createDatasetRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleCreateDataset(w http.ResponseWriter, r *http.Request) {
	var req createDatasetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		writeBadRequest(w, "name is required")
		return
	}
	writeCreated(w, s.Store.CreateDataset(r.Context(), domain.NewDataset(req.Name, req.Description)))
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	writeOK(w, s.Store.ListDatasets())
}

func (s *Server) handleGetDataset(w http.ResponseWriter, r *http.Request) {
	id := domain.DatasetID(mux.Vars(r)["id"])
	ds, ok := s.Store.GetDataset(id)
	if !ok {
		writeNotFound(w, "dataset not found")
		return
	}
	writeOK(w, ds)
}

func (s *Server) handleDeleteDataset(w http.ResponseWriter, r *http.Request) {
	id := domain.DatasetID(mux.Vars(r)["id"])
	if !s.Store.DeleteDataset(r.Context(), id) {
		writeNotFound(w, "dataset not found")
		return
	}
	writeOK(w, map[string]bool{"deleted": true})
}

type createDatapointRequest struct {
	Kind       domain.DatapointKind   `json:"kind"`
	Source     domain.DatapointSource `json:"source"`
	SourceSpan *domain.SpanID         `json:"source_span,omitempty"`
}

func (s *Server) handleCreateDatapoint(w http.ResponseWriter, r *http.Request) {
	datasetID := domain.DatasetID(mux.Vars(r)["id"])
	if _, ok := s.Store.GetDataset(datasetID); !ok {
		writeNotFound(w, "dataset not found")
		return
	}

	var req createDatapointRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Source == "" {
		req.Source = domain.DatapointSourceManual
	}

	dp := domain.NewDatapoint(datasetID, req.Kind, req.Source)
	if req.SourceSpan != nil {
		dp = dp.WithSourceSpan(*req.SourceSpan)
	}
	writeCreated(w, s.Store.CreateDatapoint(r.Context(), dp))
}

// handleImportDatapoints serves POST /api/datasets/{id}/import, bulk-loading
// an array of datapoint bodies in one write-through pass.
func (s *Server) handleImportDatapoints(w http.ResponseWriter, r *http.Request) {
	datasetID := domain.DatasetID(mux.Vars(r)["id"])
	if _, ok := s.Store.GetDataset(datasetID); !ok {
		writeNotFound(w, "dataset not found")
		return
	}

	var reqs []createDatapointRequest
	if err := decodeJSON(r, &reqs); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	dps := make([]domain.Datapoint, 0, len(reqs))
	for _, req := range reqs {
		if req.Source == "" {
			req.Source = domain.DatapointSourceFileUpload
		}
		dp := domain.NewDatapoint(datasetID, req.Kind, req.Source)
		if req.SourceSpan != nil {
			dp = dp.WithSourceSpan(*req.SourceSpan)
		}
		dps = append(dps, dp)
	}
	writeCreated(w, s.Store.CreateDatapointsBatch(r.Context(), dps))
}

// handleExportDatapoints serves GET /api/datasets/{id}/export, returning
// every datapoint belonging to the dataset as a JSON array.
func (s *Server) handleExportDatapoints(w http.ResponseWriter, r *http.Request) {
	datasetID := domain.DatasetID(mux.Vars(r)["id"])
	if _, ok := s.Store.GetDataset(datasetID); !ok {
		writeNotFound(w, "dataset not found")
		return
	}
	writeOK(w, s.Store.ListDatapoints(datasetID))
}

func (s *Server) handleListDatapoints(w http.ResponseWriter, r *http.Request) {
	datasetID := domain.DatasetID(mux.Vars(r)["id"])
	if _, ok := s.Store.GetDataset(datasetID); !ok {
		writeNotFound(w, "dataset not found")
		return
	}
	writeOK(w, s.Store.ListDatapoints(datasetID))
}

func (s *Server) handleGetDatapoint(w http.ResponseWriter, r *http.Request) {
	id := domain.DatapointID(mux.Vars(r)["datapoint_id"])
	dp, ok := s.Store.GetDatapoint(id)
	if !ok {
		writeNotFound(w, "datapoint not found")
		return
	}
	writeOK(w, dp)
}

func (s *Server) handleListQueueItems(w http.ResponseWriter, r *http.Request) {
	datasetID := domain.DatasetID(mux.Vars(r)["id"])
	if _, ok := s.Store.GetDataset(datasetID); !ok {
		writeNotFound(w, "dataset not found")
		return
	}
	writeOK(w, s.Store.ListQueueItems(datasetID))
}

func (s *Server) handleGetQueueItem(w http.ResponseWriter, r *http.Request) {
	id := domain.QueueItemID(mux.Vars(r)["queue_item_id"])
	qi, ok := s.Store.GetQueueItem(id)
	if !ok {
		writeNotFound(w, "queue item not found")
		return
	}
	writeOK(w, qi)
}

type claimQueueItemRequest struct {
	By string `json:"by"`
}

func (s *Server) handleClaimQueueItem(w http.ResponseWriter, r *http.Request) {
	id := domain.QueueItemID(mux.Vars(r)["queue_item_id"])
	var req claimQueueItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.By == "" {
		writeBadRequest(w, "by is required")
		return
	}

	qi, ok := s.Store.ClaimQueueItem(r.Context(), id, req.By)
	if !ok {
		if _, exists := s.Store.GetQueueItem(id); !exists {
			writeNotFound(w, "queue item not found")
			return
		}
		writeConflict(w, "queue item is not pending")
		return
	}
	writeOK(w, qi)
}

type completeQueueItemRequest struct {
	EditedData json.RawMessage `json:"edited_data,omitempty"`
}

func (s *Server) handleCompleteQueueItem(w http.ResponseWriter, r *http.Request) {
	id := domain.QueueItemID(mux.Vars(r)["queue_item_id"])
	var req completeQueueItemRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeBadRequest(w, "invalid request body")
			return
		}
	}

	qi, ok := s.Store.CompleteQueueItem(r.Context(), id, req.EditedData)
	if !ok {
		if _, exists := s.Store.GetQueueItem(id); !exists {
			writeNotFound(w, "queue item not found")
			return
		}
		writeConflict(w, "queue item is not claimed")
		return
	}
	writeOK(w, qi)
}
