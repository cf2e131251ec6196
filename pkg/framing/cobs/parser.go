package cobs

import "github.com/golang/glog"

// Parser splits a byte stream into encoded frames on Delimiter.
// An oversized frame is discarded up to the next delimiter.
type Parser struct {
	// MaxSize is the maximum encoded length of a frame, 0 for unlimited.
	MaxSize int

	buf      []byte
	overflow bool
}

// ParseResult is the result of consuming one byte.
type ParseResult struct {
	// Frame is the decoded frame once a delimiter completes it.
	Frame []byte
	// Err is set when a completed frame was oversized or malformed.
	Err error
}

// Ready tells whether the result carries a frame.
func (r ParseResult) Ready() bool {
	return r.Frame != nil && r.Err == nil
}

// Reset drops any partially received frame.
func (p *Parser) Reset() {
	p.buf, p.overflow = p.buf[:0], false
}

// Parse consumes one byte.
func (p *Parser) Parse(b byte) (pr ParseResult) {
	if b != Delimiter {
		if p.overflow {
			return
		}
		if p.MaxSize > 0 && len(p.buf) >= MaxEncodedLen(p.MaxSize) {
			p.overflow = true
			return
		}
		p.buf = append(p.buf, b)
		return
	}
	defer p.Reset()
	if p.overflow {
		pr.Err = errFrameTooLarge
		return
	}
	if len(p.buf) == 0 {
		return
	}
	frame, err := Decode(make([]byte, 0, len(p.buf)), p.buf)
	if err != nil {
		glog.V(2).Infof("cobs: drop frame of %d bytes: %v", len(p.buf), err)
		pr.Err = err
		return
	}
	if p.MaxSize > 0 && len(frame) > p.MaxSize {
		pr.Err = errFrameTooLarge
		return
	}
	pr.Frame = frame
	return
}
