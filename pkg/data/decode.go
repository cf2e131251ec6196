package data

// Unmarshal decodes exactly one value which must span the whole buf.
func Unmarshal(buf []byte) (Value, error) {
	d := decoder{buf: buf}
	v, err := d.decode(0)
	if err != nil {
		return Value{}, err
	}
	if d.off != len(buf) {
		return Value{}, ErrTrailingBytes
	}
	return v, nil
}

// Decode is Unmarshal reporting success as a bool.
func Decode(buf []byte) (Value, bool) {
	v, err := Unmarshal(buf)
	return v, err == nil
}

type decoder struct {
	buf []byte
	off int
}

func (d *decoder) remains() int {
	return len(d.buf) - d.off
}

func (d *decoder) uint(width int) uint64 {
	var x uint64
	for i := 0; i < width; i++ {
		x |= uint64(d.buf[d.off]) << (uint(i) << 3)
		d.off++
	}
	return x
}

func (d *decoder) length() (int, error) {
	if d.remains() < lengthSize {
		return 0, ErrTruncated
	}
	l := d.uint(lengthSize)
	if l > MaxLength {
		return 0, ErrLengthTooLarge
	}
	return int(l), nil
}

func (d *decoder) decode(depth int) (Value, error) {
	if d.remains() < 1 {
		return Value{}, ErrTruncated
	}
	tag := d.buf[d.off]
	d.off++
	switch tag {
	case TagNull:
		return Value{}, nil
	case TagTrue:
		return Bool(true), nil
	case TagFalse:
		return Bool(false), nil
	case TagString:
		l, err := d.length()
		if err != nil {
			return Value{}, err
		}
		if d.remains() < l {
			return Value{}, ErrTruncated
		}
		v := Bytes(d.buf[d.off : d.off+l])
		d.off += l
		return v, nil
	case TagArray:
		if depth >= MaxDepth {
			return Value{}, ErrTooDeep
		}
		l, err := d.length()
		if err != nil {
			return Value{}, err
		}
		// every element takes at least one byte.
		if d.remains() < l {
			return Value{}, ErrTruncated
		}
		arr := make([]Value, l)
		for n := range arr {
			if arr[n], err = d.decode(depth + 1); err != nil {
				return Value{}, err
			}
		}
		return Value{kind: KindArray, arr: arr}, nil
	}
	kind, ok := intKind(tag)
	if !ok {
		return Value{}, &UnknownTagError{Tag: tag, Offset: d.off - 1}
	}
	width := kind.Width()
	if d.remains() < width {
		return Value{}, ErrTruncated
	}
	bits := d.uint(width)
	if kind.IsSigned() {
		// sign-extend to keep the canonical representation.
		shift := uint(64 - width*8)
		bits = uint64(int64(bits<<shift) >> shift)
	}
	return Value{kind: kind, bits: bits}, nil
}

func intKind(tag byte) (Kind, bool) {
	switch tag {
	case TagInt8:
		return KindInt8, true
	case TagInt16:
		return KindInt16, true
	case TagInt32:
		return KindInt32, true
	case TagInt64:
		return KindInt64, true
	case TagUInt8:
		return KindUInt8, true
	case TagUInt16:
		return KindUInt16, true
	case TagUInt32:
		return KindUInt32, true
	case TagUInt64:
		return KindUInt64, true
	}
	return KindNull, false
}
