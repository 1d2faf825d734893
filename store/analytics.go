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

package store

import (
	"context"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/sagelabs-oss/sentryd/cache"
	"github.com/sagelabs-oss/sentryd/domain"
)

// GroupBy names one dimension analytics results can be bucketed by.
type GroupBy string

const (
	GroupByModel    GroupBy = "model"
	GroupByProvider GroupBy = "provider"
	GroupByKind     GroupBy = "kind"
	GroupByStatus   GroupBy = "status"
	GroupByTrace    GroupBy = "trace"
	GroupByDay      GroupBy = "day"
	GroupByHour     GroupBy = "hour"
)

// Metrics is one accumulator's running totals.
type Metrics struct {
	TotalCost         float64 `json:"total_cost"`
	TotalInputTokens  int64   `json:"total_input_tokens"`
	TotalOutputTokens int64   `json:"total_output_tokens"`
	TotalTokens       int64   `json:"total_tokens"`
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
	SpanCount         int64   `json:"span_count"`
	ErrorCount        int64   `json:"error_count"`

	latencySum   int64
	latencyCount int64
}

func (m *Metrics) add(sp domain.Span) {
	m.SpanCount++
	if sp.Status.State == "failed" {
		m.ErrorCount++
	}
	if sp.Kind.Type == domain.SpanKindLLMCall && sp.Kind.LLMCall != nil {
		call := sp.Kind.LLMCall
		if call.Cost != nil {
			m.TotalCost += *call.Cost
		}
		if call.InputTokens != nil {
			m.TotalInputTokens += *call.InputTokens
		}
		if call.OutputTokens != nil {
			m.TotalOutputTokens += *call.OutputTokens
		}
		if total := call.TotalTokens(); total != nil {
			m.TotalTokens += *total
		}
	}
	if sp.Status.State == "completed" && sp.EndedAt != nil {
		m.latencySum += sp.DurationMS()
		m.latencyCount++
		m.AvgLatencyMS = float64(m.latencySum) / float64(m.latencyCount)
	}
}

// Query describes one analytics request for the two-pass engine below.
type Query struct {
	Filter  domain.Filter
	GroupBy []GroupBy
}

// Result is the analytics engine's output: the totals accumulator plus
// one entry per distinct group key, sorted for deterministic output.
type Result struct {
	Totals Metrics            `json:"totals"`
	Groups []GroupResult      `json:"groups,omitempty"`
}

// GroupResult is one group's key/metrics pair.
type GroupResult struct {
	Key     map[string]string `json:"key"`
	Metrics Metrics           `json:"metrics"`
}

// Analyze runs the two-pass grouped-metrics engine over q.Filter's matches:
// one pass to bucket spans by q.GroupBy, one to accumulate Metrics per bucket.
// Results are cached for a short TTL keyed on the query plus the store's
// write generation, so a burst of identical dashboard queries between
// writes costs one scan instead of one per request.
func (s *Store) Analyze(q Query) Result {
	ctx := context.Background()
	if s.analytics != nil {
		key := cache.KeyFor("analyze", struct {
			Q   Query
			Gen int64
		}{q, atomic.LoadInt64(&s.generation)})
		if v, found := s.analytics.Get(ctx, key); found {
			if result, ok := v.(Result); ok {
				return result
			}
		}
		result := s.analyze(q)
		s.analytics.Set(ctx, key, result, 0)
		return result
	}
	return s.analyze(q)
}

func (s *Store) analyze(q Query) Result {
	spans := s.ListSpans(q.Filter)

	totals := Metrics{}
	groups := map[string]*GroupResult{}
	var order []string

	fields := append([]GroupBy(nil), q.GroupBy...)
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	for _, sp := range spans {
		totals.add(sp)
		if len(fields) == 0 {
			continue
		}
		key := groupKey(sp, fields)
		keyStr := keyString(key)
		g, ok := groups[keyStr]
		if !ok {
			g = &GroupResult{Key: key}
			groups[keyStr] = g
			order = append(order, keyStr)
		}
		g.Metrics.add(sp)
	}

	sort.Strings(order)
	result := Result{Totals: totals}
	for _, k := range order {
		result.Groups = append(result.Groups, *groups[k])
	}
	return result
}

func groupKey(sp domain.Span, fields []GroupBy) map[string]string {
	key := make(map[string]string, len(fields))
	for _, f := range fields {
		switch f {
		case GroupByModel:
			key["model"] = sp.Kind.Model()
		case GroupByProvider:
			key["provider"] = sp.Kind.Provider()
		case GroupByKind:
			key["kind"] = string(sp.Kind.Type)
		case GroupByStatus:
			key["status"] = sp.Status.State
		case GroupByTrace:
			key["trace"] = string(sp.TraceID)
		case GroupByDay:
			key["day"] = sp.StartedAt.Format("2006-01-02")
		case GroupByHour:
			key["hour"] = sp.StartedAt.Format("2006-01-02T15")
		}
	}
	return key
}

func keyString(key map[string]string) string {
	names := make([]string, 0, len(key))
	for k := range key {
		names = append(names, k)
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteByte('=')
		b.WriteString(key[n])
		b.WriteByte(';')
	}
	return b.String()
}

// Summary is the aggregate model/provider roll-up over every llm-call
// span: a cheap summary variant of the full query engine.
type Summary struct {
	TotalLLMCalls    int64              `json:"total_llm_calls"`
	TotalCost        float64            `json:"total_cost"`
	TotalInputTokens int64              `json:"total_input_tokens"`
	TotalOutputTokens int64             `json:"total_output_tokens"`
	CostPerModel     map[string]float64 `json:"cost_per_model"`
	ModelsUsed       []string           `json:"models_used"`
	ProvidersUsed    []string           `json:"providers_used"`
}

// Summarize computes Summary over every span currently in the store.
func (s *Store) Summarize() Summary {
	spans := s.ListSpans(domain.Filter{})

	sum := Summary{CostPerModel: map[string]float64{}}
	models := map[string]struct{}{}
	providers := map[string]struct{}{}

	for _, sp := range spans {
		if sp.Kind.Type != domain.SpanKindLLMCall || sp.Kind.LLMCall == nil {
			continue
		}
		call := sp.Kind.LLMCall
		sum.TotalLLMCalls++
		if call.Cost != nil {
			sum.TotalCost += *call.Cost
			sum.CostPerModel[call.Model] += *call.Cost
		}
		if call.InputTokens != nil {
			sum.TotalInputTokens += *call.InputTokens
		}
		if call.OutputTokens != nil {
			sum.TotalOutputTokens += *call.OutputTokens
		}
		if call.Model != "" {
			models[call.Model] = struct{}{}
		}
		if call.Provider != nil && *call.Provider != "" {
			providers[*call.Provider] = struct{}{}
		}
	}

	for m := range models {
		sum.ModelsUsed = append(sum.ModelsUsed, m)
	}
	for p := range providers {
		sum.ProvidersUsed = append(sum.ProvidersUsed, p)
	}
	sort.Strings(sum.ModelsUsed)
	sort.Strings(sum.ProvidersUsed)
	return sum
}
