package data

// Wire tags. These byte values are shared with firmware peers.
const (
	TagNull   byte = 0
	TagTrue   byte = 1
	TagFalse  byte = 2
	TagString byte = 3
	TagArray  byte = 4
	TagInt8   byte = 5
	TagInt16  byte = 6
	TagInt32  byte = 7
	TagInt64  byte = 8
	TagUInt8  byte = 9
	TagUInt16 byte = 10
	TagUInt32 byte = 11
	TagUInt64 byte = 12
)

const (
	// MaxLength is the largest string length or array count encodable.
	MaxLength = 0xffff
	// MaxDepth is the deepest array nesting accepted by the codec.
	// A scalar at top level has depth 0.
	MaxDepth = 32

	lengthSize = 4
)

var intTags = [...]byte{
	KindInt8:   TagInt8,
	KindInt16:  TagInt16,
	KindInt32:  TagInt32,
	KindInt64:  TagInt64,
	KindUInt8:  TagUInt8,
	KindUInt16: TagUInt16,
	KindUInt32: TagUInt32,
	KindUInt64: TagUInt64,
}

// EncodedLen returns the number of bytes Encode writes for v, or -1 if v
// can't be encoded regardless of buffer size.
func EncodedLen(v Value) int {
	return encodedLen(v, 0)
}

func encodedLen(v Value, depth int) int {
	switch v.kind {
	case KindNull, KindBool:
		return 1
	case KindString:
		if len(v.str) > MaxLength {
			return -1
		}
		return 1 + lengthSize + len(v.str)
	case KindArray:
		if len(v.arr) > MaxLength || depth >= MaxDepth {
			return -1
		}
		size := 1 + lengthSize
		for _, elem := range v.arr {
			n := encodedLen(elem, depth+1)
			if n < 0 {
				return -1
			}
			size += n
		}
		return size
	}
	return 1 + v.kind.Width()
}

// Encode writes v into buf and returns the number of bytes written.
// It returns 0 if buf is too small or v can't be encoded. Bytes already
// written are not rolled back on failure, so the whole buffer must be
// discarded then.
func Encode(buf []byte, v Value) int {
	e := encoder{buf: buf}
	if !e.encode(v, 0) {
		return 0
	}
	return e.off
}

// Marshal encodes v into a newly allocated buffer.
func Marshal(v Value) ([]byte, error) {
	size := EncodedLen(v)
	if size < 0 {
		return nil, ErrOverflow
	}
	buf := make([]byte, size)
	if Encode(buf, v) != size {
		return nil, ErrOverflow
	}
	return buf, nil
}

type encoder struct {
	buf []byte
	off int
}

func (e *encoder) fits(n int) bool {
	return len(e.buf)-e.off >= n
}

func (e *encoder) putUint(x uint64, width int) {
	for i := 0; i < width; i++ {
		e.buf[e.off] = byte(x >> (uint(i) << 3))
		e.off++
	}
}

func (e *encoder) encode(v Value, depth int) bool {
	switch v.kind {
	case KindNull:
		if !e.fits(1) {
			return false
		}
		e.buf[e.off] = TagNull
		e.off++
	case KindBool:
		if !e.fits(1) {
			return false
		}
		if v.bits != 0 {
			e.buf[e.off] = TagTrue
		} else {
			e.buf[e.off] = TagFalse
		}
		e.off++
	case KindString:
		l := len(v.str)
		if l > MaxLength || !e.fits(1+lengthSize+l) {
			return false
		}
		e.buf[e.off] = TagString
		e.off++
		e.putUint(uint64(l), lengthSize)
		e.off += copy(e.buf[e.off:], v.str)
	case KindArray:
		l := len(v.arr)
		if l > MaxLength || depth >= MaxDepth || !e.fits(1+lengthSize) {
			return false
		}
		e.buf[e.off] = TagArray
		e.off++
		e.putUint(uint64(l), lengthSize)
		for _, elem := range v.arr {
			if !e.encode(elem, depth+1) {
				return false
			}
		}
	default:
		width := v.kind.Width()
		if width == 0 || !e.fits(1+width) {
			return false
		}
		e.buf[e.off] = intTags[v.kind]
		e.off++
		e.putUint(v.bits, width)
	}
	return true
}
