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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/pkg/errors"
	"github.com/sagelabs-oss/sentryd/resilience"
)

// RemoteConfig configures the row-store backend.
type RemoteConfig struct {
	// BaseURL is the row-store service's base URL, e.g.
	// "https://api.row-store.example.com".
	BaseURL string

	// APIKey authenticates every request via a Bearer header.
	APIKey string

	// Namespace is the tenant namespace prefix applied to every
	// collection name: "{Namespace}_{collection}". Use "default" for a
	// single-tenant deployment, or "tw_{org_id}" per organisation.
	Namespace string

	// Timeout bounds every outbound HTTP call.
	Timeout time.Duration
}

// DefaultRemoteConfig returns sane remote-backend defaults; BaseURL and
// APIKey must still be supplied by the caller.
func DefaultRemoteConfig() *RemoteConfig {
	return &RemoteConfig{
		Namespace: "default",
		Timeout:   30 * time.Second,
	}
}

// RemoteBackend is the row-oriented attribute-store backend for the
// hosted deployment. Every entity collection lives in its own per-tenant
// namespace; filtering happens via triples translated from a domain.Filter.
type RemoteBackend struct {
	config     *RemoteConfig
	httpClient *http.Client
	breaker    *resilience.CircuitBreaker
}

// NewRemoteBackend constructs a RemoteBackend. It performs no I/O; the
// first request validates reachability.
func NewRemoteBackend(config *RemoteConfig) (*RemoteBackend, error) {
	if config == nil || config.BaseURL == "" {
		return nil, errors.ErrConfigurationError.WithMessage("remote backend requires a base URL")
	}
	if config.Namespace == "" {
		config.Namespace = "default"
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &RemoteBackend{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		breaker: resilience.NewCircuitBreaker(&resilience.CircuitBreakerConfig{
			MaxFailures:         5,
			Timeout:             30 * time.Second,
			MaxHalfOpenRequests: 1,
		}),
	}, nil
}

// BackendType implements Backend.
func (b *RemoteBackend) BackendType() string { return "remote" }

// Close implements Backend.
func (b *RemoteBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

func (b *RemoteBackend) namespace(collection string) string {
	return fmt.Sprintf("%s_%s", b.config.Namespace, collection)
}

// row is one upserted record: the full entity as a JSON string under
// "data", plus flat attributes the row-store can filter and sort on.
type row struct {
	ID         string                 `json:"id"`
	Data       string                 `json:"data"`
	Attributes map[string]interface{} `json:"-"`
}

// MarshalJSON flattens Attributes alongside id/data, matching the
// row-store's upsert wire shape.
func (r row) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"id": r.ID, "data": r.Data}
	for k, v := range r.Attributes {
		out[k] = v
	}
	return json.Marshal(out)
}

type upsertRequest struct {
	UpsertRows []row `json:"upsert_rows"`
}

type deleteRequest struct {
	Deletes []string `json:"deletes"`
}

// filterTriple is one [attr, op, value] clause; op is one of
// Eq/Glob/Gte/Lte.
type filterTriple [3]interface{}

type queryRequest struct {
	RankBy            [2]string     `json:"rank_by"`
	Filters           interface{}   `json:"filters,omitempty"`
	TopK              int           `json:"top_k"`
	IncludeAttributes bool          `json:"include_attributes"`
}

type queryResponse struct {
	Rows []struct {
		ID   string `json:"id"`
		Data string `json:"data"`
	} `json:"rows"`
}

func (b *RemoteBackend) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		reader = bytes.NewReader(encoded)
	}

	url := strings.TrimSuffix(b.config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return errors.ErrUpstreamFailure.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.config.APIKey)

	var resp *http.Response
	breakerErr := b.breaker.Execute(ctx, func(ctx context.Context) error {
		var doErr error
		resp, doErr = b.httpClient.Do(req)
		return doErr
	})
	if breakerErr != nil {
		if errors.Is(breakerErr, resilience.ErrCircuitBreakerOpen) {
			return errors.ErrBackend.WithMessage("row-store circuit breaker is open")
		}
		if ctx.Err() != nil {
			return errors.ErrUpstreamTimeout.Wrap(breakerErr)
		}
		return errors.ErrNetworkUnavailable.Wrap(breakerErr)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.ErrIO.Wrap(err)
	}

	if resp.StatusCode >= 400 {
		return errors.ErrBackend.WithMessage(fmt.Sprintf("row-store returned %d: %s", resp.StatusCode, string(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
	}
	return nil
}

func (b *RemoteBackend) upsert(ctx context.Context, collection string, rows []row) error {
	path := fmt.Sprintf("/v2/namespaces/%s", b.namespace(collection))
	return b.doJSON(ctx, http.MethodPost, path, upsertRequest{UpsertRows: rows}, nil)
}

func (b *RemoteBackend) deleteByID(ctx context.Context, collection string, ids ...string) error {
	path := fmt.Sprintf("/v2/namespaces/%s", b.namespace(collection))
	return b.doJSON(ctx, http.MethodPost, path, deleteRequest{Deletes: ids}, nil)
}

func (b *RemoteBackend) query(ctx context.Context, collection string, filters interface{}, topK int) (queryResponse, error) {
	if topK <= 0 {
		topK = 100000
	}
	path := fmt.Sprintf("/v2/namespaces/%s/query", b.namespace(collection))
	req := queryRequest{
		RankBy:            [2]string{"id", "asc"},
		Filters:           filters,
		TopK:              topK,
		IncludeAttributes: true,
	}
	var resp queryResponse
	err := b.doJSON(ctx, http.MethodPost, path, req, &resp)
	return resp, err
}

// filterToTriples translates a domain.Filter into the row-store's
// conjunctive triple expression. A nil result means "no filter".
func filterToTriples(f domain.Filter) interface{} {
	var triples []filterTriple
	if f.Kind != nil {
		triples = append(triples, filterTriple{"kind", "Eq", string(*f.Kind)})
	}
	if f.Model != nil {
		triples = append(triples, filterTriple{"model", "Eq", *f.Model})
	}
	if f.Status != nil {
		triples = append(triples, filterTriple{"status", "Eq", *f.Status})
	}
	if f.TraceID != nil {
		triples = append(triples, filterTriple{"trace_id", "Eq", string(*f.TraceID)})
	}
	if f.Since != nil {
		triples = append(triples, filterTriple{"started_at", "Gte", f.Since.Format(time.RFC3339Nano)})
	}
	if f.Until != nil {
		triples = append(triples, filterTriple{"started_at", "Lte", f.Until.Format(time.RFC3339Nano)})
	}
	if f.Path != nil {
		triples = append(triples, filterTriple{"path", "Glob", *f.Path + "*"})
	}
	if len(triples) == 0 {
		return nil
	}
	if len(triples) == 1 {
		return triples[0]
	}
	return []interface{}{"And", triples}
}

// --- spans ---

func (b *RemoteBackend) SaveSpan(ctx context.Context, span domain.Span) error {
	data, err := json.Marshal(span)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	attrs := map[string]interface{}{
		"trace_id":   string(span.TraceID),
		"status":     span.Status.State,
		"started_at": span.StartedAt.Format(time.RFC3339Nano),
	}
	if k := span.Kind.Model(); k != "" {
		attrs["model"] = k
	}
	if k := span.Kind.Path(); k != "" {
		attrs["path"] = k
	}
	attrs["kind"] = string(span.Kind.Type)
	return b.upsert(ctx, "spans", []row{{ID: string(span.ID), Data: string(data), Attributes: attrs}})
}

func (b *RemoteBackend) GetSpan(ctx context.Context, id domain.SpanID) (domain.Span, bool, error) {
	resp, err := b.query(ctx, "spans", filterTriple{"id", "Eq", string(id)}, 1)
	if err != nil {
		return domain.Span{}, false, err
	}
	if len(resp.Rows) == 0 {
		return domain.Span{}, false, nil
	}
	var span domain.Span
	if err := json.Unmarshal([]byte(resp.Rows[0].Data), &span); err != nil {
		return domain.Span{}, false, errors.ErrSerialization.Wrap(err)
	}
	return span, true, nil
}

func (b *RemoteBackend) ListSpans(ctx context.Context, filter domain.Filter) ([]domain.Span, error) {
	resp, err := b.query(ctx, "spans", filterToTriples(filter), 0)
	if err != nil {
		return nil, err
	}
	spans := make([]domain.Span, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var span domain.Span
		if err := json.Unmarshal([]byte(r.Data), &span); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		spans = append(spans, span)
	}
	// The row-store filters attributes it indexes; Limit and any
	// predicate it doesn't carry as an attribute are re-applied locally.
	return domain.Apply(spans, domain.Filter{Limit: filter.Limit, NameContains: filter.NameContains, Provider: filter.Provider, Path: filter.Path}), nil
}

func (b *RemoteBackend) DeleteSpan(ctx context.Context, id domain.SpanID) (bool, error) {
	if _, found, err := b.GetSpan(ctx, id); err != nil || !found {
		return false, err
	}
	return true, b.deleteByID(ctx, "spans", string(id))
}

func (b *RemoteBackend) SaveSpansBatch(ctx context.Context, spans []domain.Span) error {
	rows := make([]row, 0, len(spans))
	for _, span := range spans {
		data, err := json.Marshal(span)
		if err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		rows = append(rows, row{
			ID:   string(span.ID),
			Data: string(data),
			Attributes: map[string]interface{}{
				"trace_id":   string(span.TraceID),
				"status":     span.Status.State,
				"started_at": span.StartedAt.Format(time.RFC3339Nano),
				"kind":       string(span.Kind.Type),
			},
		})
	}
	for start := 0; start < len(rows); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := b.upsert(ctx, "spans", rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (b *RemoteBackend) LoadAllSpans(ctx context.Context) ([]domain.Span, error) {
	return b.ListSpans(ctx, domain.Filter{})
}

func (b *RemoteBackend) DeleteTrace(ctx context.Context, id domain.TraceID) (bool, error) {
	spans, err := b.ListSpans(ctx, domain.Filter{TraceID: &id})
	if err != nil {
		return false, err
	}
	ids := make([]string, 0, len(spans))
	for _, s := range spans {
		ids = append(ids, string(s.ID))
	}
	if len(ids) > 0 {
		if err := b.deleteByID(ctx, "spans", ids...); err != nil {
			return false, err
		}
	}
	metaDeleted, err := b.DeleteTraceMeta(ctx, id)
	if err != nil {
		return false, err
	}
	return len(ids) > 0 || metaDeleted, nil
}

func (b *RemoteBackend) ClearSpans(ctx context.Context) error {
	spans, err := b.LoadAllSpans(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(spans))
	for _, s := range spans {
		ids = append(ids, string(s.ID))
	}
	if len(ids) == 0 {
		return nil
	}
	return b.deleteByID(ctx, "spans", ids...)
}

// --- traces ---

func (b *RemoteBackend) SaveTrace(ctx context.Context, trace domain.Trace) error {
	data, err := json.Marshal(trace)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	return b.upsert(ctx, "traces", []row{{
		ID:   string(trace.ID),
		Data: string(data),
		Attributes: map[string]interface{}{
			"started_at": trace.StartedAt.Format(time.RFC3339Nano),
		},
	}})
}

func (b *RemoteBackend) GetTrace(ctx context.Context, id domain.TraceID) (domain.Trace, bool, error) {
	resp, err := b.query(ctx, "traces", filterTriple{"id", "Eq", string(id)}, 1)
	if err != nil {
		return domain.Trace{}, false, err
	}
	if len(resp.Rows) == 0 {
		return domain.Trace{}, false, nil
	}
	var trace domain.Trace
	if err := json.Unmarshal([]byte(resp.Rows[0].Data), &trace); err != nil {
		return domain.Trace{}, false, errors.ErrSerialization.Wrap(err)
	}
	return trace, true, nil
}

func (b *RemoteBackend) ListTraces(ctx context.Context) ([]domain.Trace, error) {
	return b.LoadAllTraces(ctx)
}

func (b *RemoteBackend) DeleteTraceMeta(ctx context.Context, id domain.TraceID) (bool, error) {
	if _, found, err := b.GetTrace(ctx, id); err != nil || !found {
		return false, err
	}
	return true, b.deleteByID(ctx, "traces", string(id))
}

func (b *RemoteBackend) LoadAllTraces(ctx context.Context) ([]domain.Trace, error) {
	resp, err := b.query(ctx, "traces", nil, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Trace, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var trace domain.Trace
		if err := json.Unmarshal([]byte(r.Data), &trace); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, trace)
	}
	return out, nil
}

// ClearTraces truncates every trace from the backend, without touching
// spans.
func (b *RemoteBackend) ClearTraces(ctx context.Context) error {
	traces, err := b.LoadAllTraces(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(traces))
	for _, t := range traces {
		ids = append(ids, string(t.ID))
	}
	if len(ids) == 0 {
		return nil
	}
	return b.deleteByID(ctx, "traces", ids...)
}

// --- file versions & content ---

func (b *RemoteBackend) SaveFileVersion(ctx context.Context, fv domain.FileVersion) error {
	data, err := json.Marshal(fv)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	id := fv.Path + ":" + fv.Hash
	return b.upsert(ctx, "files", []row{{
		ID:   id,
		Data: string(data),
		Attributes: map[string]interface{}{
			"path": fv.Path,
			"hash": fv.Hash,
		},
	}})
}

func (b *RemoteBackend) ListFileVersions(ctx context.Context, pathPrefix string) ([]domain.FileVersion, error) {
	var filters interface{}
	if pathPrefix != "" {
		filters = filterTriple{"path", "Glob", pathPrefix + "*"}
	}
	resp, err := b.query(ctx, "files", filters, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FileVersion, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var fv domain.FileVersion
		if err := json.Unmarshal([]byte(r.Data), &fv); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, fv)
	}
	return out, nil
}

func (b *RemoteBackend) LoadAllFileVersions(ctx context.Context) ([]domain.FileVersion, error) {
	return b.ListFileVersions(ctx, "")
}

func (b *RemoteBackend) SaveFileContent(ctx context.Context, hash string, content []byte) error {
	path := fmt.Sprintf("/v2/namespaces/%s/blobs/%s", b.namespace("file_contents"), hash)
	return b.doJSON(ctx, http.MethodPut, path, map[string]string{"content": string(content)}, nil)
}

func (b *RemoteBackend) LoadFileContent(ctx context.Context, hash string) ([]byte, error) {
	path := fmt.Sprintf("/v2/namespaces/%s/blobs/%s", b.namespace("file_contents"), hash)
	var out struct {
		Content string `json:"content"`
	}
	if err := b.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Content == "" {
		return nil, errors.ErrNotFound
	}
	return []byte(out.Content), nil
}

// --- datasets / datapoints / queue items ---

func (b *RemoteBackend) SaveDataset(ctx context.Context, ds domain.Dataset) error {
	data, err := json.Marshal(ds)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	return b.upsert(ctx, "datasets", []row{{ID: string(ds.ID), Data: string(data)}})
}

func (b *RemoteBackend) GetDataset(ctx context.Context, id domain.DatasetID) (domain.Dataset, bool, error) {
	resp, err := b.query(ctx, "datasets", filterTriple{"id", "Eq", string(id)}, 1)
	if err != nil {
		return domain.Dataset{}, false, err
	}
	if len(resp.Rows) == 0 {
		return domain.Dataset{}, false, nil
	}
	var ds domain.Dataset
	if err := json.Unmarshal([]byte(resp.Rows[0].Data), &ds); err != nil {
		return domain.Dataset{}, false, errors.ErrSerialization.Wrap(err)
	}
	return ds, true, nil
}

func (b *RemoteBackend) ListDatasets(ctx context.Context) ([]domain.Dataset, error) {
	return b.LoadAllDatasets(ctx)
}

func (b *RemoteBackend) DeleteDataset(ctx context.Context, id domain.DatasetID) (bool, error) {
	dps, err := b.ListDatapoints(ctx, id)
	if err != nil {
		return false, err
	}
	dpIDs := make([]string, 0, len(dps))
	for _, dp := range dps {
		dpIDs = append(dpIDs, string(dp.ID))
	}
	if len(dpIDs) > 0 {
		if err := b.deleteByID(ctx, "datapoints", dpIDs...); err != nil {
			return false, err
		}
	}

	qis, err := b.ListQueueItems(ctx, id)
	if err != nil {
		return false, err
	}
	qiIDs := make([]string, 0, len(qis))
	for _, qi := range qis {
		qiIDs = append(qiIDs, string(qi.ID))
	}
	if len(qiIDs) > 0 {
		if err := b.deleteByID(ctx, "queue_items", qiIDs...); err != nil {
			return false, err
		}
	}

	if _, found, err := b.GetDataset(ctx, id); err != nil || !found {
		return false, err
	}
	return true, b.deleteByID(ctx, "datasets", string(id))
}

func (b *RemoteBackend) LoadAllDatasets(ctx context.Context) ([]domain.Dataset, error) {
	resp, err := b.query(ctx, "datasets", nil, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Dataset, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var ds domain.Dataset
		if err := json.Unmarshal([]byte(r.Data), &ds); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, ds)
	}
	return out, nil
}

func (b *RemoteBackend) SaveDatapoint(ctx context.Context, dp domain.Datapoint) error {
	data, err := json.Marshal(dp)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	return b.upsert(ctx, "datapoints", []row{{
		ID:         string(dp.ID),
		Data:       string(data),
		Attributes: map[string]interface{}{"dataset_id": string(dp.DatasetID)},
	}})
}

func (b *RemoteBackend) GetDatapoint(ctx context.Context, id domain.DatapointID) (domain.Datapoint, bool, error) {
	resp, err := b.query(ctx, "datapoints", filterTriple{"id", "Eq", string(id)}, 1)
	if err != nil {
		return domain.Datapoint{}, false, err
	}
	if len(resp.Rows) == 0 {
		return domain.Datapoint{}, false, nil
	}
	var dp domain.Datapoint
	if err := json.Unmarshal([]byte(resp.Rows[0].Data), &dp); err != nil {
		return domain.Datapoint{}, false, errors.ErrSerialization.Wrap(err)
	}
	return dp, true, nil
}

func (b *RemoteBackend) ListDatapoints(ctx context.Context, datasetID domain.DatasetID) ([]domain.Datapoint, error) {
	resp, err := b.query(ctx, "datapoints", filterTriple{"dataset_id", "Eq", string(datasetID)}, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Datapoint, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var dp domain.Datapoint
		if err := json.Unmarshal([]byte(r.Data), &dp); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, dp)
	}
	return out, nil
}

func (b *RemoteBackend) SaveDatapointsBatch(ctx context.Context, dps []domain.Datapoint) error {
	rows := make([]row, 0, len(dps))
	for _, dp := range dps {
		data, err := json.Marshal(dp)
		if err != nil {
			return errors.ErrSerialization.Wrap(err)
		}
		rows = append(rows, row{
			ID:         string(dp.ID),
			Data:       string(data),
			Attributes: map[string]interface{}{"dataset_id": string(dp.DatasetID)},
		})
	}
	for start := 0; start < len(rows); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := b.upsert(ctx, "datapoints", rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (b *RemoteBackend) LoadAllDatapoints(ctx context.Context) ([]domain.Datapoint, error) {
	resp, err := b.query(ctx, "datapoints", nil, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Datapoint, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var dp domain.Datapoint
		if err := json.Unmarshal([]byte(r.Data), &dp); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, dp)
	}
	return out, nil
}

func (b *RemoteBackend) SaveQueueItem(ctx context.Context, qi domain.QueueItem) error {
	data, err := json.Marshal(qi)
	if err != nil {
		return errors.ErrSerialization.Wrap(err)
	}
	return b.upsert(ctx, "queue_items", []row{{
		ID:         string(qi.ID),
		Data:       string(data),
		Attributes: map[string]interface{}{"dataset_id": string(qi.DatasetID)},
	}})
}

func (b *RemoteBackend) GetQueueItem(ctx context.Context, id domain.QueueItemID) (domain.QueueItem, bool, error) {
	resp, err := b.query(ctx, "queue_items", filterTriple{"id", "Eq", string(id)}, 1)
	if err != nil {
		return domain.QueueItem{}, false, err
	}
	if len(resp.Rows) == 0 {
		return domain.QueueItem{}, false, nil
	}
	var qi domain.QueueItem
	if err := json.Unmarshal([]byte(resp.Rows[0].Data), &qi); err != nil {
		return domain.QueueItem{}, false, errors.ErrSerialization.Wrap(err)
	}
	return qi, true, nil
}

func (b *RemoteBackend) ListQueueItems(ctx context.Context, datasetID domain.DatasetID) ([]domain.QueueItem, error) {
	resp, err := b.query(ctx, "queue_items", filterTriple{"dataset_id", "Eq", string(datasetID)}, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QueueItem, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var qi domain.QueueItem
		if err := json.Unmarshal([]byte(r.Data), &qi); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, qi)
	}
	return out, nil
}

func (b *RemoteBackend) LoadAllQueueItems(ctx context.Context) ([]domain.QueueItem, error) {
	resp, err := b.query(ctx, "queue_items", nil, 0)
	if err != nil {
		return nil, err
	}
	out := make([]domain.QueueItem, 0, len(resp.Rows))
	for _, r := range resp.Rows {
		var qi domain.QueueItem
		if err := json.Unmarshal([]byte(r.Data), &qi); err != nil {
			return nil, errors.ErrSerialization.Wrap(err)
		}
		out = append(out, qi)
	}
	return out, nil
}

var _ Backend = (*RemoteBackend)(nil)
