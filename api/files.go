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
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// maxFileUploadSize caps a single file-version upload body.
const maxFileUploadSize = 10 << 20

// handleListFileVersions serves GET /api/files?path_prefix, returning every
// recorded FileVersion whose path starts with path_prefix.
func (s *Server) handleListFileVersions(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("path_prefix")
	writeOK(w, s.Store.ListFileVersions(prefix))
}

// handleFileContent serves GET /api/files/content/{hash}, streaming the raw
// blob bytes for a content hash.
func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	content, err := s.Store.FileContent(r.Context(), hash)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// handleLatestFileByPath serves GET /api/files/*path, resolving to the
// latest recorded version's content for a path.
func (s *Server) handleLatestFileByPath(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	fv, ok := s.Store.LatestFileVersion(path)
	if !ok {
		writeNotFound(w, "no version recorded for path")
		return
	}
	content, err := s.Store.FileContent(r.Context(), fv.Hash)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// handleUploadFileVersion serves POST /api/files/*path, recording a new
// content-addressed version of the uploaded body at path.
func (s *Server) handleUploadFileVersion(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["path"]
	content, err := io.ReadAll(io.LimitReader(r.Body, maxFileUploadSize))
	if err != nil {
		writeBadRequest(w, "failed to read upload body")
		return
	}

	fv, err := s.Store.RecordFileVersion(r.Context(), path, content, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCreated(w, fv)
}
