package websocket

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/datalink.go/pkg/framing"
	"github.com/robotalks/datalink.go/pkg/framing/stream"
)

func TestEcho(t *testing.T) {
	server := httptest.NewServer(websocket.Handler(func(conn *websocket.Conn) {
		rw := New(conn, 1024)
		for {
			frame, err := rw.ReadFrame()
			if err != nil {
				return
			}
			if rw.WriteFrame(frame) != nil {
				return
			}
		}
	}))
	defer server.Close()

	conn, err := Dial("ws" + strings.TrimPrefix(server.URL, "http"))
	require.NoError(t, err)
	rw := Factory(4)(conn)
	defer conn.Close()

	require.NoError(t, rw.WriteFrame([]byte{3, 0, 0, 0}))
	frame, err := rw.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, []byte{3, 0, 0, 0}, frame)

	require.ErrorIs(t, rw.WriteFrame([]byte{1, 2, 3, 4, 5}), framing.ErrFrameTooLarge)
}

func TestFactoryFallback(t *testing.T) {
	require.IsType(t, &stream.ReadWriter{}, Factory(4)(&bytes.Buffer{}))
}
