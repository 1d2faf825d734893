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

package metrics

const (
	// Store activity
	MetricSpansCreated   = "sentryd_spans_created_total"
	MetricSpansCompleted = "sentryd_spans_completed_total"
	MetricSpansFailed    = "sentryd_spans_failed_total"
	MetricTracesCreated  = "sentryd_traces_created_total"
	MetricQueueEnqueued  = "sentryd_queue_items_enqueued_total"
	MetricQueueCompleted = "sentryd_queue_items_completed_total"

	// Auth activity
	MetricAuthSuccess = "sentryd_auth_success_total"
	MetricAuthFailure = "sentryd_auth_failure_total"

	// Event bus activity
	MetricBusPublished   = "sentryd_bus_events_published_total"
	MetricBusSubscribers = "sentryd_bus_subscribers"

	// HTTP surface activity
	MetricHTTPRequests = "sentryd_http_requests_total"
	MetricHTTPDuration = "sentryd_http_request_duration_seconds"
)

// DaemonMetrics records store, auth, and event-bus activity. A nil
// *DaemonMetrics is safe to call methods on: every method no-ops when m
// is nil, so callers needn't guard every call site with an enabled
// check.
type DaemonMetrics struct {
	collector Collector
}

// NewDaemonMetrics creates a daemon metrics recorder backed by collector.
func NewDaemonMetrics(collector Collector) *DaemonMetrics {
	return &DaemonMetrics{collector: collector}
}

// RecordSpanCreated records a new span by kind.
func (m *DaemonMetrics) RecordSpanCreated(kind string) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricSpansCreated, NewLabels("kind", kind))
}

// RecordSpanCompleted records a span reaching the completed terminal state.
func (m *DaemonMetrics) RecordSpanCompleted(kind string) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricSpansCompleted, NewLabels("kind", kind))
}

// RecordSpanFailed records a span reaching the failed terminal state.
func (m *DaemonMetrics) RecordSpanFailed(kind string) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricSpansFailed, NewLabels("kind", kind))
}

// RecordTraceCreated records a new trace.
func (m *DaemonMetrics) RecordTraceCreated() {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricTracesCreated, NoLabels())
}

// RecordQueueEnqueued records a queue item entering the pending state.
func (m *DaemonMetrics) RecordQueueEnqueued(datasetID string) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricQueueEnqueued, NewLabels("dataset_id", datasetID))
}

// RecordQueueCompleted records a queue item reaching the completed state.
func (m *DaemonMetrics) RecordQueueCompleted(datasetID string) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricQueueCompleted, NewLabels("dataset_id", datasetID))
}

// RecordAuthSuccess records a successful request authentication.
func (m *DaemonMetrics) RecordAuthSuccess(method string) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricAuthSuccess, NewLabels("method", method))
}

// RecordAuthFailure records a rejected request authentication.
func (m *DaemonMetrics) RecordAuthFailure(reason string) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricAuthFailure, NewLabels("reason", reason))
}

// RecordBusPublish records an event bus broadcast and the current
// subscriber count at the time of publish.
func (m *DaemonMetrics) RecordBusPublish(subscriberCount int) {
	if m == nil {
		return
	}
	m.collector.IncrementCounter(MetricBusPublished, NoLabels())
	m.collector.SetGauge(MetricBusSubscribers, float64(subscriberCount), NoLabels())
}

// RecordHTTPRequest records one handled HTTP request by method and status
// class (e.g. "2xx", "4xx"), plus its duration.
func (m *DaemonMetrics) RecordHTTPRequest(method string, status int, durationSeconds float64) {
	if m == nil {
		return
	}
	labels := NewLabels("method", method, "status_class", statusClass(status))
	m.collector.IncrementCounter(MetricHTTPRequests, labels)
	m.collector.ObserveHistogram(MetricHTTPDuration, durationSeconds, labels)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
