// Package stream frames by length prefix, for reliable byte streams such
// as TCP or pipes.
package stream

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/robotalks/datalink.go/pkg/framing"
)

// ReadWriter implements framing.FrameReadWriter.
// Each frame is prefixed by 4-byte (little-endian) indicate the length.
type ReadWriter struct {
	io.ReadWriter
	// MaxSize rejects longer frames when positive.
	MaxSize int

	writeLock sync.Mutex
}

// New creates a ReadWriter with io.ReadWriter.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{ReadWriter: s}
}

// Factory returns a framing.Factory limiting frames to maxSize.
func Factory(maxSize int) framing.Factory {
	return func(s io.ReadWriter) framing.FrameReadWriter {
		return &ReadWriter{ReadWriter: s, MaxSize: maxSize}
	}
}

// ReadFrame implements framing.FrameReader.
// An oversized frame is consumed from the stream before
// framing.ErrFrameTooLarge is returned, so the stream stays in sync.
func (p *ReadWriter) ReadFrame() ([]byte, error) {
	var head [4]byte
	if _, err := io.ReadFull(p, head[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(head[:])
	if p.MaxSize > 0 && size > uint32(p.MaxSize) {
		if _, err := io.CopyN(io.Discard, p, int64(size)); err != nil {
			return nil, err
		}
		return nil, framing.ErrFrameTooLarge
	}
	frame := make([]byte, size)
	_, err := io.ReadFull(p, frame)
	return frame, err
}

// WriteFrame implements framing.FrameWriter.
func (p *ReadWriter) WriteFrame(frame []byte) error {
	if p.MaxSize > 0 && len(frame) > p.MaxSize {
		return framing.ErrFrameTooLarge
	}
	buf := make([]byte, 4+len(frame))
	binary.LittleEndian.PutUint32(buf, uint32(len(frame)))
	copy(buf[4:], frame)
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	_, err := p.Write(buf)
	return err
}
