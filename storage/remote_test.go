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

package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
	"github.com/sagelabs-oss/sentryd/resilience"
)

// fakeRowStore is a minimal in-memory stand-in for the hosted row-store
// service RemoteBackend talks to: it keeps every upserted row per
// namespace and answers queries by id.
type fakeRowStore struct {
	rows map[string]map[string]json.RawMessage // namespace -> id -> row JSON
}

func newFakeRowStore() *fakeRowStore {
	return &fakeRowStore{rows: make(map[string]map[string]json.RawMessage)}
}

func (f *fakeRowStore) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/namespaces/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case len(path) > len("/query") && path[len(path)-len("/query"):] == "/query":
			f.handleQuery(w, r, path[:len(path)-len("/query")])
		default:
			f.handleUpsertOrDelete(w, r, path)
		}
	})
	return httptest.NewServer(mux)
}

func (f *fakeRowStore) namespaceFor(path string) string {
	const prefix = "/v2/namespaces/"
	return path[len(prefix):]
}

func (f *fakeRowStore) handleUpsertOrDelete(w http.ResponseWriter, r *http.Request, path string) {
	ns := f.namespaceFor(path)
	if f.rows[ns] == nil {
		f.rows[ns] = make(map[string]json.RawMessage)
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if raw, ok := body["upsert_rows"]; ok {
		var rows []map[string]interface{}
		_ = json.Unmarshal(raw, &rows)
		for _, row := range rows {
			id, _ := row["id"].(string)
			encoded, _ := json.Marshal(row)
			f.rows[ns][id] = encoded
		}
	}
	if raw, ok := body["deletes"]; ok {
		var ids []string
		_ = json.Unmarshal(raw, &ids)
		for _, id := range ids {
			delete(f.rows[ns], id)
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{}`))
}

func (f *fakeRowStore) handleQuery(w http.ResponseWriter, r *http.Request, path string) {
	ns := f.namespaceFor(path)

	var req struct {
		Filters interface{} `json:"filters"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	type outRow struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	}
	var out []outRow

	wantID, wantIDOK := filterEqID(req.Filters)
	for id, raw := range f.rows[ns] {
		if wantIDOK && id != wantID {
			continue
		}
		var row map[string]interface{}
		_ = json.Unmarshal(raw, &row)
		data, _ := row["data"].(string)
		out = append(out, outRow{ID: id, Data: data})
	}

	resp := struct {
		Rows []outRow `json:"rows"`
	}{Rows: out}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// filterEqID extracts an ["id","Eq",value] triple if that's what the
// query's filter expression is, so the fake can answer point lookups.
func filterEqID(filters interface{}) (string, bool) {
	triple, ok := filters.([]interface{})
	if !ok || len(triple) != 3 {
		return "", false
	}
	attr, _ := triple[0].(string)
	op, _ := triple[1].(string)
	if attr != "id" || op != "Eq" {
		return "", false
	}
	val, _ := triple[2].(string)
	return val, true
}

func newTestRemoteBackend(t *testing.T, baseURL string) *RemoteBackend {
	t.Helper()
	b, err := NewRemoteBackend(&RemoteConfig{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		Namespace: "default",
		Timeout:   2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewRemoteBackend: %v", err)
	}
	return b
}

func TestRemoteBackend_SpanRoundTrip(t *testing.T) {
	store := newFakeRowStore()
	srv := store.server()
	defer srv.Close()

	b := newTestRemoteBackend(t, srv.URL)
	ctx := context.Background()

	traceID := domain.NewTraceID()
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "note"}}
	span := domain.NewSpanBuilder(traceID, "remote-span", kind).Build()

	if err := b.SaveSpan(ctx, span); err != nil {
		t.Fatalf("SaveSpan: %v", err)
	}

	got, found, err := b.GetSpan(ctx, span.ID)
	if err != nil {
		t.Fatalf("GetSpan: %v", err)
	}
	if !found {
		t.Fatal("expected span to be found after save")
	}
	if got.ID != span.ID || got.TraceID != span.TraceID {
		t.Errorf("round-tripped span mismatch: got %+v, want %+v", got, span)
	}
}

func TestRemoteBackend_GetSpan_NotFound(t *testing.T) {
	store := newFakeRowStore()
	srv := store.server()
	defer srv.Close()

	b := newTestRemoteBackend(t, srv.URL)
	ctx := context.Background()

	_, found, err := b.GetSpan(ctx, domain.SpanID("missing"))
	if err != nil {
		t.Fatalf("GetSpan: %v", err)
	}
	if found {
		t.Error("expected found=false for a missing span")
	}
}

func TestRemoteBackend_UpstreamFailureMapsToBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	b := newTestRemoteBackend(t, srv.URL)
	ctx := context.Background()

	traceID := domain.NewTraceID()
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "note"}}
	span := domain.NewSpanBuilder(traceID, "remote-span", kind).Build()

	err := b.SaveSpan(ctx, span)
	if err == nil {
		t.Fatal("expected an error from a 500 upstream response")
	}
	if errors.HTTPStatus(err) != http.StatusInternalServerError {
		t.Errorf("expected upstream 500 to map to HTTP 500, got %d", errors.HTTPStatus(err))
	}
}

func TestRemoteBackend_CircuitBreakerOpensAfterRepeatedFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	srv.Close() // closed immediately: every call now fails at the transport level

	b := newTestRemoteBackend(t, srv.URL)
	ctx := context.Background()

	traceID := domain.NewTraceID()
	kind := domain.SpanKind{Type: domain.SpanKindCustom, Custom: &domain.CustomKind{Kind: "note"}}
	span := domain.NewSpanBuilder(traceID, "remote-span", kind).Build()

	const maxFailures = 5
	for i := 0; i < maxFailures; i++ {
		if err := b.SaveSpan(ctx, span); err == nil {
			t.Fatalf("expected call %d against a closed server to fail", i)
		}
	}

	err := b.SaveSpan(ctx, span)
	if err == nil {
		t.Fatal("expected the breaker-open call to fail")
	}
	if !errors.Is(err, errors.ErrBackend) {
		t.Errorf("expected a backend error once the circuit breaker opens, got %v (%T)", err, err)
	}
	_ = resilience.ErrCircuitBreakerOpen
}
