package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/datalink.go/pkg/framing"
)

type bufStream struct {
	bytes.Buffer
}

func TestReadWriter(t *testing.T) {
	s := &bufStream{}
	rw := Factory(4)(s)
	require.NoError(t, rw.WriteFrame([]byte{1, 2}))
	require.ErrorIs(t, rw.WriteFrame([]byte{1, 2, 3, 4, 5}), framing.ErrFrameTooLarge)
	require.Equal(t, []byte{2, 0, 0, 0, 1, 2}, s.Bytes())

	// oversized frame written by an unlimited peer.
	require.NoError(t, New(s).WriteFrame([]byte{1, 2, 3, 4, 5}))
	require.NoError(t, rw.WriteFrame(nil))

	frame, err := rw.ReadFrame()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, frame)
	_, err = rw.ReadFrame()
	require.ErrorIs(t, err, framing.ErrFrameTooLarge)
	require.True(t, framing.IsRecoverable(err))
	frame, err = rw.ReadFrame()
	require.NoError(t, err)
	require.Empty(t, frame)
	_, err = rw.ReadFrame()
	require.Equal(t, io.EOF, err)
}
