package stats

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("udp", reg)
	m.Received()
	m.Received()
	m.Sent()
	m.Dropped(ReasonMalformed)
	m.Queued(3)

	require.Equal(t, 2.0, testutil.ToFloat64(m.FramesReceived))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FramesSent))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FramesDropped.WithLabelValues(ReasonMalformed)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ValuesQueued.WithLabelValues("3")))

	// same transport registered twice shares collectors.
	again := New("udp", reg)
	again.Received()
	require.Equal(t, 3.0, testutil.ToFloat64(m.FramesReceived))

	other := New("serial", reg)
	other.Received()
	require.Equal(t, 3.0, testutil.ToFloat64(m.FramesReceived))
	require.Equal(t, 1.0, testutil.ToFloat64(other.FramesReceived))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Received()
	m.Sent()
	m.Dropped(ReasonOversize)
	m.Queued(0)
}
