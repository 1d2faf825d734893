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

// Package api wires the persistent store, auth extractor, event bus, and
// proxy behind HTTP routes. Handlers translate store and auth errors to
// status codes strictly through pkg/errors.HTTPStatus — no handler
// hand-rolls a status code from a raw error.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sagelabs-oss/sentryd/pkg/errors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCreated(w http.ResponseWriter, v interface{}) { writeJSON(w, http.StatusCreated, v) }
func writeOK(w http.ResponseWriter, v interface{})      { writeJSON(w, http.StatusOK, v) }

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeNotFound(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": msg})
}

func writeConflict(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusConflict, map[string]string{"error": msg})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

func errInvalidTimestamp(param, value string) error {
	return fmt.Errorf("invalid %s %q: want RFC3339", param, value)
}

func errInvalidLimit(value string) error {
	return fmt.Errorf("invalid limit %q: want integer", value)
}
