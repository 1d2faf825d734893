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

	"github.com/sagelabs-oss/sentryd/auth"
	"github.com/sagelabs-oss/sentryd/observability/health"
)

// registerPublicRoutes wires the handful of routes that never go through
// the auth extractor: health probes, metrics export, the OpenAPI document,
// and the auth endpoints a caller needs before it has credentials.
func (s *Server) registerPublicRoutes(r *mux.Router) {
	r.HandleFunc("/api/health", health.MultiHandler(s.HealthCheckers...)).Methods(http.MethodGet)
	r.HandleFunc("/api/ready", health.MultiHandler(s.HealthCheckers...)).Methods(http.MethodGet)
	r.HandleFunc("/api/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	if s.Metrics != nil {
		r.Handle("/api/metrics", s.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/api/openapi.json", s.handleOpenAPI).Methods(http.MethodGet)

	r.HandleFunc("/api/auth/config", s.handleAuthConfig).Methods(http.MethodGet)
	r.HandleFunc("/api/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/signup", s.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/password-reset", s.handlePasswordReset).Methods(http.MethodPost)
}

// registerProtectedRoutes wires everything behind the auth extractor:
// traces, spans, files, datasets, analytics, the event stream, and the
// deployment-config/shutdown endpoints.
func (s *Server) registerProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/traces", s.handleListTraces).Methods(http.MethodGet)
	r.HandleFunc("/traces", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleCreateTrace)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/traces", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleClearTraces)).ServeHTTP).Methods(http.MethodDelete)
	r.HandleFunc("/traces/_latest", s.handleLatestTrace).Methods(http.MethodGet)
	r.HandleFunc("/traces/{id}", s.handleGetTrace).Methods(http.MethodGet)
	r.HandleFunc("/traces/{id}", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleDeleteTrace)).ServeHTTP).Methods(http.MethodDelete)
	r.HandleFunc("/traces/{id}/spans", s.handleTraceSpans).Methods(http.MethodGet)
	r.HandleFunc("/traces/{id}/complete", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleCompleteTrace)).ServeHTTP).Methods(http.MethodPost)

	r.HandleFunc("/spans", s.handleListSpans).Methods(http.MethodGet)
	r.HandleFunc("/spans", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleCreateSpan)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/spans/{id}", s.handleGetSpan).Methods(http.MethodGet)
	r.HandleFunc("/spans/{id}", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleDeleteSpan)).ServeHTTP).Methods(http.MethodDelete)
	r.HandleFunc("/spans/{id}/complete", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleCompleteSpan)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/spans/{id}/fail", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleFailSpan)).ServeHTTP).Methods(http.MethodPost)

	r.HandleFunc("/files", s.handleListFileVersions).Methods(http.MethodGet)
	r.HandleFunc("/files/content/{hash}", s.handleFileContent).Methods(http.MethodGet)
	r.HandleFunc("/files/{path:.*}", auth.RequireScope(auth.ScopeTracesWrite)(http.HandlerFunc(s.handleUploadFileVersion)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/files/{path:.*}", s.handleLatestFileByPath).Methods(http.MethodGet)

	r.HandleFunc("/datasets", s.handleListDatasets).Methods(http.MethodGet)
	r.HandleFunc("/datasets", auth.RequireScope(auth.ScopeDatasetsWrite)(http.HandlerFunc(s.handleCreateDataset)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/datasets/{id}", s.handleGetDataset).Methods(http.MethodGet)
	r.HandleFunc("/datasets/{id}", auth.RequireScope(auth.ScopeDatasetsWrite)(http.HandlerFunc(s.handleDeleteDataset)).ServeHTTP).Methods(http.MethodDelete)
	r.HandleFunc("/datasets/{id}/datapoints", s.handleListDatapoints).Methods(http.MethodGet)
	r.HandleFunc("/datasets/{id}/datapoints", auth.RequireScope(auth.ScopeDatasetsWrite)(http.HandlerFunc(s.handleCreateDatapoint)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/datasets/{id}/import", auth.RequireScope(auth.ScopeDatasetsWrite)(http.HandlerFunc(s.handleImportDatapoints)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/datasets/{id}/export", s.handleExportDatapoints).Methods(http.MethodGet)
	r.HandleFunc("/datasets/{id}/queue", s.handleListQueueItems).Methods(http.MethodGet)
	r.HandleFunc("/datapoints/{datapoint_id}", s.handleGetDatapoint).Methods(http.MethodGet)
	r.HandleFunc("/queue/{queue_item_id}", s.handleGetQueueItem).Methods(http.MethodGet)
	r.HandleFunc("/queue/{queue_item_id}/claim", auth.RequireScope(auth.ScopeDatasetsWrite)(http.HandlerFunc(s.handleClaimQueueItem)).ServeHTTP).Methods(http.MethodPost)
	r.HandleFunc("/queue/{queue_item_id}/complete", auth.RequireScope(auth.ScopeDatasetsWrite)(http.HandlerFunc(s.handleCompleteQueueItem)).ServeHTTP).Methods(http.MethodPost)

	r.HandleFunc("/analytics/summary", s.handleAnalyticsSummary).Methods(http.MethodGet)
	r.HandleFunc("/analytics", s.handleAnalyticsQuery).Methods(http.MethodPost)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/events/ws", s.handleEventsWS).Methods(http.MethodGet)

	r.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)
	r.HandleFunc("/shutdown", auth.RequireScope(auth.ScopeAdmin)(http.HandlerFunc(s.handleShutdown)).ServeHTTP).Methods(http.MethodPost)
}
