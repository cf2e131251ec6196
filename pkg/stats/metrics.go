// Package stats exposes transport counters as prometheus metrics.
package stats

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/robotalks/datalink.go/pkg/channel"
)

// Drop reasons.
const (
	ReasonMalformed = "malformed"
	ReasonOversize  = "oversize"
	ReasonOverflow  = "queue_overflow"
	ReasonEncode    = "encode"
)

// Metrics counts frames of one transport. A nil *Metrics is valid and
// counts nothing.
type Metrics struct {
	FramesReceived prometheus.Counter
	FramesSent     prometheus.Counter
	FramesDropped  *prometheus.CounterVec
	ValuesQueued   *prometheus.CounterVec
}

// New creates Metrics labeled with the transport name and registers them
// with reg if not nil. Collectors already registered under the same
// transport name are reused.
func New(transport string, reg prometheus.Registerer) *Metrics {
	labels := prometheus.Labels{"transport": transport}
	m := &Metrics{
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "datalink",
			Name:        "frames_received_total",
			Help:        "Frames or datagrams received.",
			ConstLabels: labels,
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "datalink",
			Name:        "frames_sent_total",
			Help:        "Frames or datagrams sent, counted per destination.",
			ConstLabels: labels,
		}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "datalink",
			Name:        "frames_dropped_total",
			Help:        "Frames or values dropped, by reason.",
			ConstLabels: labels,
		}, []string{"reason"}),
		ValuesQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "datalink",
			Name:        "values_queued_total",
			Help:        "Decoded values delivered to channel queues.",
			ConstLabels: labels,
		}, []string{"channel"}),
	}
	if reg != nil {
		m.FramesReceived = register(reg, m.FramesReceived).(prometheus.Counter)
		m.FramesSent = register(reg, m.FramesSent).(prometheus.Counter)
		m.FramesDropped = register(reg, m.FramesDropped).(*prometheus.CounterVec)
		m.ValuesQueued = register(reg, m.ValuesQueued).(*prometheus.CounterVec)
	}
	return m
}

// Default creates Metrics registered with the default prometheus registry.
func Default(transport string) *Metrics {
	return New(transport, prometheus.DefaultRegisterer)
}

func register(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
		panic(err)
	}
	return c
}

// Received counts an incoming frame.
func (m *Metrics) Received() {
	if m != nil {
		m.FramesReceived.Inc()
	}
}

// Sent counts an outgoing frame.
func (m *Metrics) Sent() {
	if m != nil {
		m.FramesSent.Inc()
	}
}

// Dropped counts a dropped frame or value.
func (m *Metrics) Dropped(reason string) {
	if m != nil {
		m.FramesDropped.WithLabelValues(reason).Inc()
	}
}

// Queued counts a value delivered to a channel queue.
func (m *Metrics) Queued(id channel.ID) {
	if m != nil {
		m.ValuesQueued.WithLabelValues(strconv.Itoa(int(id))).Inc()
	}
}
