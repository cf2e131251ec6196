package cobs

import (
	"bufio"
	"io"
	"sync"

	"github.com/robotalks/datalink.go/pkg/framing"
)

var errFrameTooLarge = framing.ErrFrameTooLarge

// ReadWriter implements framing.FrameReadWriter over a byte stream.
type ReadWriter struct {
	Parser Parser

	reader    io.ByteReader
	writer    io.Writer
	writeLock sync.Mutex
}

// New wraps a byte stream, limiting decoded frames to maxSize bytes.
func New(s io.ReadWriter, maxSize int) *ReadWriter {
	rw := &ReadWriter{Parser: Parser{MaxSize: maxSize}, writer: s}
	if br, ok := s.(io.ByteReader); ok {
		rw.reader = br
	} else {
		rw.reader = bufio.NewReader(s)
	}
	return rw
}

// Factory returns a framing.Factory limiting frames to maxSize.
func Factory(maxSize int) framing.Factory {
	return func(s io.ReadWriter) framing.FrameReadWriter {
		return New(s, maxSize)
	}
}

// ReadFrame implements framing.FrameReader. Malformed and oversized
// frames are reported as errors so the caller can count them; the stream
// is resynchronized on the next delimiter. Empty frames are skipped.
func (rw *ReadWriter) ReadFrame() ([]byte, error) {
	for {
		b, err := rw.reader.ReadByte()
		if err != nil {
			return nil, err
		}
		if pr := rw.Parser.Parse(b); pr.Err != nil {
			return nil, pr.Err
		} else if pr.Ready() {
			return pr.Frame, nil
		}
	}
}

// WriteFrame implements framing.FrameWriter.
func (rw *ReadWriter) WriteFrame(frame []byte) error {
	if rw.Parser.MaxSize > 0 && len(frame) > rw.Parser.MaxSize {
		return framing.ErrFrameTooLarge
	}
	buf := Encode(make([]byte, 0, MaxEncodedLen(len(frame))+1), frame)
	buf = append(buf, Delimiter)
	rw.writeLock.Lock()
	defer rw.writeLock.Unlock()
	_, err := rw.writer.Write(buf)
	return err
}
