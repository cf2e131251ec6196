package data

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow indicates the value doesn't fit in the buffer, or a string
	// or array exceeds MaxLength, or nesting exceeds MaxDepth.
	ErrOverflow = errors.New("encode overflow")
	// ErrTruncated indicates the input ends before the value is complete.
	ErrTruncated = errors.New("truncated input")
	// ErrTrailingBytes indicates extra bytes after a complete value.
	ErrTrailingBytes = errors.New("trailing bytes")
	// ErrTooDeep indicates arrays are nested deeper than MaxDepth.
	ErrTooDeep = errors.New("nesting too deep")
	// ErrLengthTooLarge indicates a length field above MaxLength.
	ErrLengthTooLarge = errors.New("length too large")
)

// UnknownTagError indicates an unrecognized tag byte.
type UnknownTagError struct {
	Tag    byte
	Offset int
}

// Error implements error.
func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag 0x%02x at offset %d", e.Tag, e.Offset)
}
