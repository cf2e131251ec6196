package serial

import (
	"context"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	xws "golang.org/x/net/websocket"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/framing"
	"github.com/robotalks/datalink.go/pkg/framing/cobs"
	"github.com/robotalks/datalink.go/pkg/framing/websocket"
	"github.com/robotalks/datalink.go/pkg/stats"
)

func newPipeLink(t *testing.T) (*Link, *cobs.ReadWriter) {
	local, remote := net.Pipe()
	t.Cleanup(func() {
		local.Close()
		remote.Close()
	})
	l := NewLink(func() (io.ReadWriteCloser, error) { return local, nil })
	return l, cobs.New(remote, DefaultMaxFrameSize)
}

type closeTracker struct {
	net.Conn
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return c.Conn.Close()
}

func sendValue(t *testing.T, peer *cobs.ReadWriter, v data.Value) {
	encoded, err := data.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, peer.WriteFrame(encoded))
}

func TestLinkLifecycle(t *testing.T) {
	l, peer := newPipeLink(t)
	require.ErrorIs(t, l.End(), ErrNotRunning)
	require.NoError(t, l.Begin())
	require.True(t, l.Running())
	require.ErrorIs(t, l.Begin(), ErrRunning)
	require.ErrorIs(t, l.BeginWith(&net.TCPConn{}), ErrRunning)
	require.NoError(t, l.End())
	require.False(t, l.Running())
	require.ErrorIs(t, l.End(), ErrNotRunning)

	// owned stream is closed by End.
	_, err := peer.ReadFrame()
	require.Equal(t, io.EOF, err)

	require.ErrorIs(t, l.Write(data.Null()), ErrNotRunning)
}

func TestLinkNoDevice(t *testing.T) {
	l := NewLink(nil)
	require.ErrorIs(t, l.Begin(), ErrNoDevice)
	conf := NewConfig()
	conf.Device = ""
	require.ErrorIs(t, NewLink(conf.Opener()).Begin(), ErrNoDevice)
	require.False(t, l.Running())
}

func TestLinkReceive(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()
	reg := prometheus.NewRegistry()
	l := NewLink(nil)
	l.Metrics = stats.New("serial", reg)
	var hooked []data.Value
	hookCh := make(chan struct{}, 8)
	l.OnReceive = func(v data.Value) {
		hooked = append(hooked, v)
		hookCh <- struct{}{}
	}
	conn := &closeTracker{Conn: local}
	require.NoError(t, l.BeginWith(conn))

	v, ok := l.Read()
	require.False(t, ok)
	require.True(t, v.IsNull())

	peer := cobs.New(remote, DefaultMaxFrameSize)
	sendValue(t, peer, data.String("ab"))
	require.NoError(t, peer.WriteFrame([]byte{0xff}))
	require.NoError(t, peer.WriteFrame([]byte{byte(data.TagInt8), 5, 0}))
	sendValue(t, peer, data.Array(data.Int8(5), data.Bool(true)))
	sendValue(t, peer, data.UInt16(7))

	require.Eventually(t, func() bool { return l.Available() == 3 }, time.Second, time.Millisecond)
	v, ok = l.Read()
	require.True(t, ok)
	require.True(t, data.String("ab").Equal(v))
	buf := make([]data.Value, 4)
	require.Equal(t, 2, l.ReadBatch(buf))
	require.True(t, data.Array(data.Int8(5), data.Bool(true)).Equal(buf[0]))
	require.True(t, data.UInt16(7).Equal(buf[1]))
	require.Zero(t, l.Available())

	for i := 0; i < 3; i++ {
		<-hookCh
	}
	require.Len(t, hooked, 3)
	require.Equal(t, 5.0, testutil.ToFloat64(l.Metrics.FramesReceived))
	require.Equal(t, 2.0, testutil.ToFloat64(l.Metrics.FramesDropped.WithLabelValues(stats.ReasonMalformed)))

	require.NoError(t, l.End())
	require.False(t, conn.closed)
}

func TestLinkRebeginWith(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()
	l := NewLink(nil)
	require.NoError(t, l.BeginWith(local))
	require.NoError(t, l.End())
	require.NoError(t, l.BeginWith(local))
	defer l.End()

	peer := cobs.New(remote, DefaultMaxFrameSize)
	for i := 0; i < 4; i++ {
		sendValue(t, peer, data.UInt8(uint8(i)))
	}
	require.Eventually(t, func() bool { return l.Available() == 4 }, time.Second, time.Millisecond)
	buf := make([]data.Value, 4)
	require.Equal(t, 4, l.ReadBatch(buf))
	for i, v := range buf {
		require.True(t, data.UInt8(uint8(i)).Equal(v))
	}
}

func TestLinkQueueDropNewest(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()
	l := NewLink(nil)
	l.Metrics = stats.New("serial", prometheus.NewRegistry())
	l.QueueCapacity = 1
	l.DropPolicy = channel.DropNewest
	require.NoError(t, l.BeginWith(local))
	defer l.End()

	peer := cobs.New(remote, DefaultMaxFrameSize)
	sendValue(t, peer, data.String("kept"))
	sendValue(t, peer, data.String("dropped"))
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(l.Metrics.FramesDropped.WithLabelValues(stats.ReasonOverflow)) == 1
	}, time.Second, time.Millisecond)
	require.Equal(t, 1.0, testutil.ToFloat64(l.Metrics.ValuesQueued.WithLabelValues("0")))
	v, ok := l.Read()
	require.True(t, ok)
	require.True(t, data.String("kept").Equal(v))
}

func TestLinkWrite(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()
	l := NewLink(nil)
	l.MaxFrameSize = 16
	require.NoError(t, l.BeginWith(local))
	defer l.End()

	peer := cobs.New(remote, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.WriteBatch([]data.Value{
			data.Int32(-2),
			data.String("this string is far too long"),
			data.Array(data.Null(), data.String("x")),
		})
	}()
	for _, expected := range []data.Value{
		data.Int32(-2),
		data.Array(data.Null(), data.String("x")),
	} {
		frame, err := peer.ReadFrame()
		require.NoError(t, err)
		v, err := data.Unmarshal(frame)
		require.NoError(t, err)
		require.True(t, expected.Equal(v), "got %v", v)
	}
	require.ErrorIs(t, <-errCh, framing.ErrFrameTooLarge)
}

func TestLinkReadWait(t *testing.T) {
	local, remote := net.Pipe()
	defer local.Close()
	defer remote.Close()
	l := NewLink(nil)
	require.NoError(t, l.BeginWith(local))
	defer l.End()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	_, err := l.ReadWait(ctx)
	cancel()
	require.ErrorIs(t, err, context.DeadlineExceeded)

	go sendValue(t, cobs.New(remote, DefaultMaxFrameSize), data.UInt8(9))
	ctx, cancel = context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	v, err := l.ReadWait(ctx)
	require.NoError(t, err)
	require.True(t, data.UInt8(9).Equal(v))
}

func TestConfigFraming(t *testing.T) {
	conf := NewConfig()
	f, err := conf.FramingFactory()
	require.NoError(t, err)
	require.IsType(t, &cobs.ReadWriter{}, f(&net.TCPConn{}))
	conf.Framing = FramingStream
	_, err = conf.FramingFactory()
	require.NoError(t, err)
	conf.Framing = "slip"
	_, err = conf.FramingFactory()
	require.Error(t, err)
}

func TestLinkOverWebsocket(t *testing.T) {
	server := httptest.NewServer(xws.Handler(func(conn *xws.Conn) {
		rw := websocket.New(conn, DefaultMaxFrameSize)
		frame, err := rw.ReadFrame()
		if err != nil {
			return
		}
		// echo back twice.
		rw.WriteFrame(frame)
		rw.WriteFrame(frame)
		rw.ReadFrame()
	}))
	defer server.Close()

	conf := NewConfig()
	conf.Device = "ws" + strings.TrimPrefix(server.URL, "http")
	l, err := conf.NewLink()
	require.NoError(t, err)
	l.Metrics = nil
	require.NoError(t, l.Begin())
	require.NoError(t, l.Write(data.String("ws")))
	require.Eventually(t, func() bool { return l.Available() == 2 }, time.Second, time.Millisecond)
	v, ok := l.Read()
	require.True(t, ok)
	require.Equal(t, "ws", v.AsString())
	require.NoError(t, l.End())
}
