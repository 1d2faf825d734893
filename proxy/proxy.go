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

// Package proxy is the transparent reverse proxy that sits in front of an
// LLM provider endpoint: every request becomes a trace and an llm-call
// span, forwarded byte-for-byte to the configured target and completed (or
// failed) once the upstream responds.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/observability/logging"
	"github.com/sagelabs-oss/sentryd/observability/metrics"
	adkerrors "github.com/sagelabs-oss/sentryd/pkg/errors"
	"github.com/sagelabs-oss/sentryd/store"
)

// CaptureMode controls how much of a request/response body the proxy
// records on the synthesized span.
type CaptureMode string

const (
	CaptureOff     CaptureMode = "off"
	CapturePreview CaptureMode = "preview"
	CaptureFull    CaptureMode = "full"
)

// maxBodySize caps the bytes read from either side of a proxied exchange.
const maxBodySize = 10 << 20

// defaultPreviewChars is used when Config.PreviewChars is left at zero.
const defaultPreviewChars = 200

// Config describes one proxy's target and capture policy.
type Config struct {
	TargetURL    string
	CaptureMode  CaptureMode
	PreviewChars int
}

// Proxy forwards arbitrary HTTP traffic to a single upstream target,
// synthesizing one trace and one llm-call span per request.
type Proxy struct {
	store        *store.Store
	target       *url.URL
	provider     string
	captureMode  CaptureMode
	previewChars int
	log          logging.Logger
	rp           *httputil.ReverseProxy
	metrics      *metrics.LLMMetrics
}

// SetMetrics wires an LLM call metrics recorder into the proxy. Optional:
// an unset recorder leaves every RecordX call a no-op on the nil
// receiver.
func (p *Proxy) SetMetrics(m *metrics.LLMMetrics) {
	p.metrics = m
}

// New constructs a Proxy over target, validating the URL up front.
func New(st *store.Store, cfg Config, log logging.Logger) (*Proxy, error) {
	target, err := url.Parse(cfg.TargetURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("proxy: invalid target url %q: %w", cfg.TargetURL, err)
	}

	previewChars := cfg.PreviewChars
	if previewChars <= 0 {
		previewChars = defaultPreviewChars
	}
	mode := cfg.CaptureMode
	if mode == "" {
		mode = CapturePreview
	}

	p := &Proxy{
		store:        st,
		target:       target,
		provider:     detectProvider(target),
		captureMode:  mode,
		previewChars: previewChars,
		log:          log,
	}

	rp := httputil.NewSingleHostReverseProxy(target)
	originalDirector := rp.Director
	rp.Director = func(req *http.Request) {
		originalDirector(req)
		req.Host = target.Host
	}
	p.rp = rp
	return p, nil
}

// ServeHTTP implements step 1-9 of the intercepting proxy: read and cap the
// body, synthesize a trace/span, forward the request, extract tokens from
// the response, and complete or fail the span before returning the
// upstream response to the caller.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readCapped(r.Body, maxBodySize)
	if err != nil {
		writeProxyError(w, adkerrors.ErrBodyTooLarge.Wrap(err))
		return
	}

	model := extractModel(body)
	trace := p.store.CreateTrace(ctx, domain.NewTrace(fmt.Sprintf("proxy %s %s", r.Method, r.URL.Path)))

	reqInput, reqPreview := p.captured(body)
	kind := domain.SpanKind{
		Type: domain.SpanKindLLMCall,
		LLMCall: &domain.LLMCallKind{
			Model:        model,
			Provider:     &p.provider,
			InputPreview: reqPreview,
		},
	}
	builder := domain.NewSpanBuilder(trace.ID, fmt.Sprintf("%s %s", r.Method, r.URL.Path), kind)
	if reqInput != nil {
		builder.Input(reqInput)
	}
	span := p.store.CreateSpan(ctx, builder.Build())

	r.Body = io.NopCloser(bytes.NewReader(body))
	r.ContentLength = int64(len(body))

	start := time.Now()
	rp := *p.rp
	rp.ModifyResponse = func(resp *http.Response) error {
		return p.onResponse(ctx, span.ID, model, start, resp)
	}
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		p.failUpstream(ctx, span.ID, model, start, w, err)
	}
	rp.ServeHTTP(w, r)
}

// onResponse runs once the upstream has replied: it reads and re-buffers
// the body, extracts token counts per provider, and completes or fails the
// span depending on the status code.
func (p *Proxy) onResponse(ctx context.Context, spanID domain.SpanID, model string, start time.Time, resp *http.Response) error {
	latency := time.Since(start).Seconds()
	body, err := readCapped(resp.Body, maxBodySize)
	resp.Body.Close()
	if err != nil {
		p.store.FailSpan(ctx, spanID, "failed to read upstream response")
		p.metrics.RecordError(p.provider, model, "read_failed")
		return err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.store.FailSpan(ctx, spanID, fmt.Sprintf("http %d", resp.StatusCode))
		p.metrics.RecordError(p.provider, model, fmt.Sprintf("http_%d", resp.StatusCode))
		return nil
	}

	inputTokens, outputTokens := extractTokens(body, p.provider)
	output, outPreview := p.captured(body)
	kind := domain.SpanKind{
		Type: domain.SpanKindLLMCall,
		LLMCall: &domain.LLMCallKind{
			Model:         model,
			Provider:      &p.provider,
			InputTokens:   inputTokens,
			OutputTokens:  outputTokens,
			OutputPreview: outPreview,
		},
	}
	p.store.CompleteSpanWithKind(ctx, spanID, kind, output)

	var in, out int
	if inputTokens != nil {
		in = int(*inputTokens)
	}
	if outputTokens != nil {
		out = int(*outputTokens)
	}
	p.metrics.RecordCallWithTokens(p.provider, model, latency, in, out)
	return nil
}

// failUpstream fails the span and maps the transport error onto the 502/504
// the client sees, per the proxy's error table.
func (p *Proxy) failUpstream(ctx context.Context, spanID domain.SpanID, model string, start time.Time, w http.ResponseWriter, err error) {
	p.store.FailSpan(ctx, spanID, fmt.Sprintf("upstream unreachable: %v", err))
	p.metrics.RecordCall(p.provider, model, time.Since(start).Seconds())
	p.metrics.RecordError(p.provider, model, "upstream_unreachable")

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		writeProxyError(w, adkerrors.ErrUpstreamTimeout.Wrap(err))
		return
	}
	writeProxyError(w, adkerrors.ErrUpstreamFailure.Wrap(err))
}

// captured builds the (payload, preview) pair for body under the proxy's
// capture mode: nil/nil in off mode, a truncated preview in preview mode,
// the full body in full mode.
func (p *Proxy) captured(body []byte) (json.RawMessage, *string) {
	switch p.captureMode {
	case CaptureFull:
		return toRawMessage(body), nil
	case CapturePreview:
		preview := truncate(string(body), p.previewChars)
		return toRawMessage([]byte(preview)), &preview
	default:
		return nil, nil
	}
}

func toRawMessage(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	encoded, err := json.Marshal(string(b))
	if err != nil {
		return nil
	}
	return json.RawMessage(encoded)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// extractModel reads the top-level "model" field out of a JSON request
// body. A non-JSON or model-less body yields "".
func extractModel(body []byte) string {
	var payload struct {
		Model string `json:"model"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Model
}

// detectProvider heuristically names the provider family from the target
// host, per the step-7 token-extraction table. Unknown hosts (self-hosted
// gateways, arbitrary local servers) fall back to "default".
func detectProvider(target *url.URL) string {
	host := strings.ToLower(target.Hostname())
	switch {
	case strings.Contains(host, "anthropic"):
		return "anthropic"
	case strings.Contains(host, "ollama") || target.Port() == "11434" || host == "localhost" || host == "127.0.0.1":
		return "ollama"
	default:
		return "default"
	}
}

// extractTokens reads token counts out of a JSON response body according
// to the per-provider shape named in the proxy's step 7.
func extractTokens(body []byte, provider string) (input, output *int64) {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, nil
	}

	switch provider {
	case "anthropic":
		usage, _ := payload["usage"].(map[string]interface{})
		return numberPtr(usage["input_tokens"]), numberPtr(usage["output_tokens"])
	case "ollama":
		return numberPtr(payload["prompt_eval_count"]), numberPtr(payload["eval_count"])
	default:
		usage, _ := payload["usage"].(map[string]interface{})
		return numberPtr(usage["prompt_tokens"]), numberPtr(usage["completion_tokens"])
	}
}

func numberPtr(v interface{}) *int64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int64(f)
	return &n
}

func readCapped(r io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(r, limit+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("proxy: body exceeds %d byte cap", limit)
	}
	return body, nil
}

func writeProxyError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(adkerrors.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
