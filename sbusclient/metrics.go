// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package sbusclient

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics is a prometheus.Collector tracking a Client's multiplexer
// activity: requests currently awaiting a reply, requests completed by
// outcome, and receiver-fatal decode or socket failures. It holds no reference to
// the Client itself; a Client calls its record* methods as requests
// progress.
type ClientMetrics struct {
	inFlight              int64
	completedOk           uint64
	completedNak          uint64
	completedTimeout      uint64
	completedIOError      uint64
	completedInvalidReply uint64
	receiverFatal         uint64

	inFlightDesc      *prometheus.Desc
	completedDesc     *prometheus.Desc
	receiverFatalDesc *prometheus.Desc
}

// NewClientMetrics constructs a ClientMetrics labeled with component,
// ready to be registered with a prometheus.Registry.
func NewClientMetrics(component string) *ClientMetrics {
	constLabels := prometheus.Labels{"component": component}
	return &ClientMetrics{
		inFlightDesc: prometheus.NewDesc(
			"sbus_client_requests_in_flight",
			"Number of requests awaiting a reply.",
			nil, constLabels,
		),
		completedDesc: prometheus.NewDesc(
			"sbus_client_requests_completed_total",
			"Number of requests completed, by outcome.",
			[]string{"outcome"}, constLabels,
		),
		receiverFatalDesc: prometheus.NewDesc(
			"sbus_client_receiver_fatal_total",
			"Number of times the background receiver terminated on a decode or socket failure.",
			nil, constLabels,
		),
	}
}

func (m *ClientMetrics) recordSent() { atomic.AddInt64(&m.inFlight, 1) }
func (m *ClientMetrics) recordDone() { atomic.AddInt64(&m.inFlight, -1) }

func (m *ClientMetrics) recordOk()            { m.recordDone(); atomic.AddUint64(&m.completedOk, 1) }
func (m *ClientMetrics) recordNak()           { m.recordDone(); atomic.AddUint64(&m.completedNak, 1) }
func (m *ClientMetrics) recordTimeout()       { m.recordDone(); atomic.AddUint64(&m.completedTimeout, 1) }
func (m *ClientMetrics) recordIOError()       { m.recordDone(); atomic.AddUint64(&m.completedIOError, 1) }
func (m *ClientMetrics) recordInvalidReply()  { m.recordDone(); atomic.AddUint64(&m.completedInvalidReply, 1) }
func (m *ClientMetrics) recordReceiverFatal() { atomic.AddUint64(&m.receiverFatal, 1) }

// Describe implements prometheus.Collector.
func (m *ClientMetrics) Describe(descs chan<- *prometheus.Desc) {
	descs <- m.inFlightDesc
	descs <- m.completedDesc
	descs <- m.receiverFatalDesc
}

// Collect implements prometheus.Collector.
func (m *ClientMetrics) Collect(metrics chan<- prometheus.Metric) {
	metrics <- prometheus.MustNewConstMetric(
		m.inFlightDesc, prometheus.GaugeValue, float64(atomic.LoadInt64(&m.inFlight)),
	)
	metrics <- prometheus.MustNewConstMetric(
		m.completedDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&m.completedOk)), "ok",
	)
	metrics <- prometheus.MustNewConstMetric(
		m.completedDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&m.completedNak)), "nak",
	)
	metrics <- prometheus.MustNewConstMetric(
		m.completedDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&m.completedTimeout)), "timeout",
	)
	metrics <- prometheus.MustNewConstMetric(
		m.completedDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&m.completedIOError)), "io_error",
	)
	metrics <- prometheus.MustNewConstMetric(
		m.completedDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&m.completedInvalidReply)), "invalid_response",
	)
	metrics <- prometheus.MustNewConstMetric(
		m.receiverFatalDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&m.receiverFatal)),
	)
}

var _ prometheus.Collector = (*ClientMetrics)(nil)
