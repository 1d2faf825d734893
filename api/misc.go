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
	"time"

	"github.com/sagelabs-oss/sentryd/domain"
)

type statsResponse struct {
	Backend       string `json:"backend"`
	Traces        int    `json:"traces"`
	Spans         int    `json:"spans"`
	Datasets      int    `json:"datasets"`
	EventSubs     int    `json:"event_subscribers"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{
		Backend:  s.Store.BackendType(),
		Traces:   len(s.Store.ListTraces()),
		Spans:    len(s.Store.ListSpans(domain.Filter{})),
		Datasets: len(s.Store.ListDatasets()),
	}
	if s.Bus != nil {
		resp.EventSubs = s.Bus.SubscriberCount()
	}
	if !s.StartedAt.IsZero() {
		resp.UptimeSeconds = int64(time.Since(s.StartedAt).Seconds())
	}
	writeOK(w, resp)
}

type configResponse struct {
	Backend     string   `json:"backend"`
	LocalMode   bool     `json:"local_mode"`
	ProxyActive bool     `json:"proxy_active"`
	Version     string   `json:"version"`
	CORSHosts   []string `json:"cors_hosts"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeOK(w, configResponse{
		Backend:     s.Store.BackendType(),
		LocalMode:   s.Auth.LocalMode,
		ProxyActive: s.Proxy != nil,
		Version:     s.Version,
		CORSHosts:   s.CORSHosts,
	})
}

// handleShutdown triggers a graceful server shutdown. It is scoped to
// auth.ScopeAdmin and responds 404 Not Found if the Server was built
// without a Shutdown callback (e.g. in tests).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if s.Shutdown == nil {
		writeNotFound(w, "shutdown is not wired for this deployment")
		return
	}
	w.WriteHeader(http.StatusAccepted)
	go s.Shutdown()
}

// handleOpenAPI serves a minimal OpenAPI 3.0 document describing the
// resource surface, enough for API clients to generate stubs against.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	doc := map[string]interface{}{
		"openapi": "3.0.3",
		"info": map[string]interface{}{
			"title":   "sentryd",
			"version": s.Version,
		},
		"paths": openAPIPaths,
	}
	writeOK(w, doc)
}

var openAPIPaths = map[string]interface{}{
	"/api/traces":                     map[string]interface{}{"get": "list traces", "post": "create trace", "delete": "clear all traces"},
	"/api/traces/{id}":                map[string]interface{}{"get": "get trace", "delete": "delete trace"},
	"/api/traces/{id}/spans":          map[string]interface{}{"get": "list spans for trace"},
	"/api/traces/{id}/complete":       map[string]interface{}{"post": "complete trace"},
	"/api/spans":                      map[string]interface{}{"get": "list spans", "post": "create span"},
	"/api/spans/{id}":                 map[string]interface{}{"get": "get span", "delete": "delete span"},
	"/api/spans/{id}/complete":        map[string]interface{}{"post": "complete span"},
	"/api/spans/{id}/fail":            map[string]interface{}{"post": "fail span"},
	"/api/files":                      map[string]interface{}{"get": "list file versions"},
	"/api/files/content/{hash}":       map[string]interface{}{"get": "get file content by hash"},
	"/api/files/{path}":               map[string]interface{}{"get": "latest file version by path", "post": "record file version"},
	"/api/datasets":                   map[string]interface{}{"get": "list datasets", "post": "create dataset"},
	"/api/datasets/{id}":              map[string]interface{}{"get": "get dataset", "delete": "delete dataset"},
	"/api/datasets/{id}/datapoints":   map[string]interface{}{"get": "list datapoints", "post": "create datapoint"},
	"/api/datasets/{id}/import":       map[string]interface{}{"post": "bulk import datapoints"},
	"/api/datasets/{id}/export":       map[string]interface{}{"get": "export datapoints"},
	"/api/datasets/{id}/queue":        map[string]interface{}{"get": "list queue items"},
	"/api/analytics/summary":         map[string]interface{}{"get": "aggregate summary"},
	"/api/analytics":                  map[string]interface{}{"post": "grouped analytics query"},
	"/api/events":                     map[string]interface{}{"get": "server-sent event stream"},
	"/api/stats":                      map[string]interface{}{"get": "runtime stats"},
	"/api/config":                     map[string]interface{}{"get": "sanitized runtime config"},
}
