package cobs

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/datalink.go/pkg/framing"
)

func TestEncodeDecode(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = byte(i%255) + 1
	}
	tests := []struct {
		name    string
		decoded []byte
		encoded []byte
	}{
		{"empty", []byte{}, []byte{0x01}},
		{"zero", []byte{0x00}, []byte{0x01, 0x01}},
		{"zeros", []byte{0x00, 0x00}, []byte{0x01, 0x01, 0x01}},
		{"mixed", []byte{0x11, 0x22, 0x00, 0x33}, []byte{0x03, 0x11, 0x22, 0x02, 0x33}},
		{"no zero", []byte{0x11, 0x22, 0x33, 0x44}, []byte{0x05, 0x11, 0x22, 0x33, 0x44}},
		{"trailing zero", []byte{0x11, 0x00}, []byte{0x02, 0x11, 0x01}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enc := Encode(nil, tc.decoded)
			require.Equal(t, tc.encoded, enc)
			dec, err := Decode(nil, enc)
			require.NoError(t, err)
			require.Equal(t, tc.decoded, append([]byte{}, dec...))
		})
	}

	enc := Encode(nil, long)
	require.NotContains(t, enc, byte(0))
	require.LessOrEqual(t, len(enc), MaxEncodedLen(len(long)))
	require.Equal(t, byte(0xff), enc[0])
	dec, err := Decode(nil, enc)
	require.NoError(t, err)
	require.Equal(t, long, dec)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode(nil, []byte{0x05, 0x11})
	require.ErrorIs(t, err, ErrOverrun)
	require.True(t, framing.IsRecoverable(err))
	_, err = Decode(nil, []byte{0x03, 0x00, 0x11})
	require.ErrorIs(t, err, ErrZeroByte)
	require.ErrorIs(t, err, framing.ErrMalformed)
}

func TestParserResync(t *testing.T) {
	p := &Parser{MaxSize: 4}
	feed := func(in []byte) (frames [][]byte, errs []error) {
		for _, b := range in {
			pr := p.Parse(b)
			if pr.Err != nil {
				errs = append(errs, pr.Err)
			} else if pr.Ready() {
				frames = append(frames, pr.Frame)
			}
		}
		return
	}

	var in []byte
	in = append(in, Encode(nil, []byte{1, 2, 3, 4, 5, 6, 7, 8})...)
	in = append(in, Delimiter, Delimiter)
	in = append(in, Encode(nil, []byte{9, 0})...)
	in = append(in, Delimiter)
	frames, errs := feed(in)
	require.Equal(t, [][]byte{{9, 0}}, frames)
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], framing.ErrFrameTooLarge)
}

type pipeStream struct {
	io.Reader
	io.Writer
}

func TestReadWriter(t *testing.T) {
	var wire bytes.Buffer
	w := New(&pipeStream{Writer: &wire}, 8)
	require.NoError(t, w.WriteFrame([]byte{0x03, 0x00, 0x61}))
	require.NoError(t, w.WriteFrame([]byte{0x01}))
	require.ErrorIs(t, w.WriteFrame(make([]byte, 9)), framing.ErrFrameTooLarge)
	raw := append([]byte{}, wire.Bytes()...)
	require.Equal(t, Delimiter, raw[len(raw)-1])

	// garbage before the first frame is dropped on the first delimiter.
	in := append([]byte{0x05, 0x11, Delimiter}, raw...)
	r := New(&pipeStream{Reader: bytes.NewReader(in)}, 8)
	_, err := r.ReadFrame()
	require.ErrorIs(t, err, ErrOverrun)
	frame, err := r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, []byte{0x03, 0x00, 0x61}, frame)
	frame, err = r.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, frame)
	_, err = r.ReadFrame()
	require.Equal(t, io.EOF, err)
}
