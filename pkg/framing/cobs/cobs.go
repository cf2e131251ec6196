// Package cobs implements Consistent Overhead Byte Stuffing framing.
// Each frame is COBS encoded and terminated by a single 0x00 byte, which
// is what the PacketSerial library on microcontrollers expects.
package cobs

import (
	"fmt"

	"github.com/robotalks/datalink.go/pkg/framing"
)

// Delimiter terminates every encoded frame.
const Delimiter byte = 0

var (
	// ErrZeroByte indicates a 0x00 inside an encoded block.
	ErrZeroByte = fmt.Errorf("cobs: unexpected zero byte: %w", framing.ErrMalformed)
	// ErrOverrun indicates a code byte pointing past the end of the frame.
	ErrOverrun = fmt.Errorf("cobs: code overruns frame: %w", framing.ErrMalformed)
)

// MaxEncodedLen returns the worst case encoded size of n bytes, excluding
// the delimiter.
func MaxEncodedLen(n int) int {
	return n + n/254 + 1
}

// Encode appends the COBS encoding of src to dst, without delimiter.
func Encode(dst, src []byte) []byte {
	codeAt := len(dst)
	dst = append(dst, 0)
	code := byte(1)
	for _, b := range src {
		if b != 0 {
			dst = append(dst, b)
			code++
		}
		if b == 0 || code == 0xff {
			dst[codeAt] = code
			codeAt = len(dst)
			dst = append(dst, 0)
			code = 1
		}
	}
	dst[codeAt] = code
	return dst
}

// Decode appends the decoding of an encoded frame (without delimiter)
// to dst.
func Decode(dst, src []byte) ([]byte, error) {
	for i := 0; i < len(src); {
		code := src[i]
		if code == 0 {
			return dst, ErrZeroByte
		}
		i++
		end := i + int(code) - 1
		if end > len(src) {
			return dst, ErrOverrun
		}
		for ; i < end; i++ {
			if src[i] == 0 {
				return dst, ErrZeroByte
			}
			dst = append(dst, src[i])
		}
		if code < 0xff && i < len(src) {
			dst = append(dst, 0)
		}
	}
	return dst, nil
}
