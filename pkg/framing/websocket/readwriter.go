// Package websocket carries one frame per binary websocket message.
package websocket

import (
	"io"

	"golang.org/x/net/websocket"

	"github.com/robotalks/datalink.go/pkg/framing"
	"github.com/robotalks/datalink.go/pkg/framing/stream"
)

// ReadWriter implements framing.FrameReadWriter.
type ReadWriter struct {
	Conn *websocket.Conn
	// MaxSize rejects longer frames when positive.
	MaxSize int
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn, maxSize int) *ReadWriter {
	conn.PayloadType = websocket.BinaryFrame
	conn.MaxPayloadBytes = maxSize
	return &ReadWriter{Conn: conn, MaxSize: maxSize}
}

// Factory returns a framing.Factory for streams opened by Dial. Other
// streams fall back to length prefixed framing.
func Factory(maxSize int) framing.Factory {
	return func(s io.ReadWriter) framing.FrameReadWriter {
		if conn, ok := s.(*websocket.Conn); ok {
			return New(conn, maxSize)
		}
		return stream.Factory(maxSize)(s)
	}
}

// Dial connects to a ws:// or wss:// URL.
func Dial(url string) (*websocket.Conn, error) {
	return websocket.Dial(url, "", "http://localhost/")
}

// ReadFrame implements framing.FrameReader.
func (p *ReadWriter) ReadFrame() (frame []byte, err error) {
	err = websocket.Message.Receive(p.Conn, &frame)
	if err == websocket.ErrFrameTooLarge {
		err = framing.ErrFrameTooLarge
	}
	return
}

// WriteFrame implements framing.FrameWriter.
func (p *ReadWriter) WriteFrame(frame []byte) error {
	if p.MaxSize > 0 && len(frame) > p.MaxSize {
		return framing.ErrFrameTooLarge
	}
	return websocket.Message.Send(p.Conn, frame)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.Conn.Close()
}
