// Package framing defines how whole frames are delimited on a byte stream.
// A frame carries exactly one encoded value.
package framing

import (
	"errors"
	"io"
)

// FrameReader reads whole frames.
type FrameReader interface {
	ReadFrame() ([]byte, error)
}

// FrameWriter writes whole frames.
type FrameWriter interface {
	WriteFrame([]byte) error
}

// FrameReadWriter reads/writes whole frames.
type FrameReadWriter interface {
	FrameReader
	FrameWriter
}

// Factory wraps a byte stream with a framing.
type Factory func(io.ReadWriter) FrameReadWriter

var (
	// ErrFrameTooLarge indicates a frame exceeds the agreed maximum size.
	ErrFrameTooLarge = errors.New("frame too large")
	// ErrMalformed indicates a frame whose delimiting is corrupted.
	ErrMalformed = errors.New("malformed frame")
)

// IsRecoverable tells whether a reader can continue after err: the bad
// frame was consumed and the stream is in sync again.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrFrameTooLarge) || errors.Is(err, ErrMalformed)
}
