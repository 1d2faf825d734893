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

// Package metrics provides Prometheus-backed metrics collection and
// export for the sentryd daemon: store, auth, and event-bus activity,
// plus per-call LLM token and cost counters from the intercepting proxy.
//
// # Overview
//
// This package provides a Prometheus-based metrics collector with support for:
//   - Counters (monotonic increasing values)
//   - Gauges (arbitrary values)
//   - Histograms (distribution of values)
//   - Summaries (quantiles)
//
// # Basic Usage
//
//	collector := metrics.NewPrometheusCollector()
//
//	// Increment counter
//	collector.IncrementCounter("requests_total", map[string]string{
//	    "method": "POST",
//	    "status": "200",
//	})
//
//	// Set gauge
//	collector.SetGauge("active_connections", 42, nil)
//
//	// Observe histogram
//	collector.ObserveHistogram("request_duration_seconds", 0.042, map[string]string{
//	    "endpoint": "/api/chat",
//	})
//
//	// Expose metrics
//	http.Handle("/metrics", collector.Handler())
//
// # Daemon Metrics
//
// Pre-defined metrics for store, auth, and event-bus activity:
//
//	daemonMetrics := metrics.NewDaemonMetrics(collector)
//
//	// Record a span transition
//	daemonMetrics.RecordSpanCreated("llm-call")
//	daemonMetrics.RecordSpanCompleted("llm-call")
//
//	// Record an auth outcome
//	daemonMetrics.RecordAuthFailure("invalid_api_key")
//
// # LLM Metrics
//
//	llmMetrics := metrics.NewLLMMetrics(collector)
//
//	// Record LLM call
//	llmMetrics.RecordCall("openai", "gpt-4", 0.523)
//
//	// Record token usage
//	llmMetrics.RecordTokens("openai", "gpt-4", 150, 450)
//
// # Custom Metrics
//
// Create custom metric collectors:
//
//	type CustomMetrics struct {
//	    collector metrics.Collector
//	}
//
//	func (m *CustomMetrics) RecordCustomEvent(name string) {
//	    m.collector.IncrementCounter("custom_events_total", map[string]string{
//	        "event": name,
//	    })
//	}
package metrics
