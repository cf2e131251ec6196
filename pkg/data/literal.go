package data

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse parses the representation produced by Value.String, e.g.
// [i8(5), true, "ab", null]. A bare integer is an i32, or an i64 if it
// doesn't fit.
func Parse(s string) (Value, error) {
	p := &literalParser{s: s}
	v, err := p.value(0)
	if err != nil {
		return Value{}, err
	}
	p.skipSpace()
	if p.pos < len(p.s) {
		return Value{}, p.errorf("unexpected %q", p.s[p.pos:])
	}
	return v, nil
}

type literalParser struct {
	s   string
	pos int
}

func (p *literalParser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("at %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.s) && strings.IndexByte(" \t\r\n", p.s[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *literalParser) value(depth int) (Value, error) {
	p.skipSpace()
	if p.pos >= len(p.s) {
		return Value{}, p.errorf("value expected")
	}
	switch p.s[p.pos] {
	case '[':
		return p.array(depth)
	case '"':
		return p.quoted()
	}
	return p.word()
}

func (p *literalParser) array(depth int) (Value, error) {
	if depth >= MaxDepth {
		return Value{}, ErrTooDeep
	}
	p.pos++
	var elems []Value
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ']' {
		p.pos++
		return Array(), nil
	}
	for {
		elem, err := p.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, elem)
		p.skipSpace()
		if p.pos >= len(p.s) {
			return Value{}, p.errorf("unterminated array")
		}
		switch p.s[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return Value{kind: KindArray, arr: elems}, nil
		default:
			return Value{}, p.errorf("',' or ']' expected")
		}
	}
}

func (p *literalParser) quoted() (Value, error) {
	end := p.pos + 1
	for end < len(p.s) && p.s[end] != '"' {
		if p.s[end] == '\\' {
			end++
		}
		end++
	}
	if end >= len(p.s) {
		return Value{}, p.errorf("unterminated string")
	}
	str, err := strconv.Unquote(p.s[p.pos : end+1])
	if err != nil {
		return Value{}, p.errorf("%v", err)
	}
	p.pos = end + 1
	return String(str), nil
}

func (p *literalParser) word() (Value, error) {
	start := p.pos
	for p.pos < len(p.s) && strings.IndexByte(" \t\r\n,[]()", p.s[p.pos]) < 0 {
		p.pos++
	}
	word := p.s[start:p.pos]
	switch word {
	case "null":
		return Null(), nil
	case "true":
		return Bool(true), nil
	case "false":
		return Bool(false), nil
	case "":
		return Value{}, p.errorf("value expected")
	}
	if p.pos < len(p.s) && p.s[p.pos] == '(' {
		end := strings.IndexByte(p.s[p.pos:], ')')
		if end < 0 {
			return Value{}, p.errorf("')' expected")
		}
		num := strings.TrimSpace(p.s[p.pos+1 : p.pos+end])
		p.pos += end + 1
		return integer(word, num)
	}
	i, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid value %q", word)
	}
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return Int32(int32(i)), nil
	}
	return Int64(i), nil
}

func integer(kindName, num string) (Value, error) {
	var kind Kind
	for k := KindInt8; k <= KindUInt64; k++ {
		if k.String() == kindName {
			kind = k
		}
	}
	if !kind.IsInteger() {
		return Value{}, fmt.Errorf("unknown integer kind %q", kindName)
	}
	bits := kind.Width() * 8
	if kind.IsSigned() {
		i, err := strconv.ParseInt(num, 0, bits)
		if err != nil {
			return Value{}, fmt.Errorf("invalid %s: %v", kind, err)
		}
		return Value{kind: kind, bits: uint64(i)}, nil
	}
	u, err := strconv.ParseUint(num, 0, bits)
	if err != nil {
		return Value{}, fmt.Errorf("invalid %s: %v", kind, err)
	}
	return Value{kind: kind, bits: u}, nil
}
