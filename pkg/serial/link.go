// Package serial transports values over a framed byte stream, one
// encoded value per frame, on a single default channel.
package serial

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/framework"
	"github.com/robotalks/datalink.go/pkg/framing"
	"github.com/robotalks/datalink.go/pkg/framing/cobs"
	"github.com/robotalks/datalink.go/pkg/stats"
)

// DefaultMaxFrameSize is the frame size agreed with PacketSerial peers.
const DefaultMaxFrameSize = 256

// Opener opens the stream owned by a link.
type Opener func() (io.ReadWriteCloser, error)

// Link is a serial transport. The zero value is not usable, use NewLink
// or Config.NewLink.
type Link struct {
	// MaxFrameSize bounds encoded values in both directions.
	MaxFrameSize int
	// Framing wraps the stream, cobs framing if nil.
	Framing framing.Factory
	// Open provides the stream for Begin.
	Open Opener
	// QueueCapacity bounds the inbound queue, 0 for unbounded.
	QueueCapacity int
	DropPolicy    channel.DropPolicy
	Metrics       *stats.Metrics
	// OnReceive is called outside the lock after a value is queued.
	OnReceive func(data.Value)

	// runLock serializes Begin and End, including the join.
	runLock sync.Mutex
	task    *framework.Task
	owned   io.Closer

	// lock guards frames and inbox.
	lock   sync.Mutex
	frames framing.FrameReadWriter
	inbox  *channel.Inbox
}

// NewLink creates a Link opening its stream with open.
func NewLink(open Opener) *Link {
	return &Link{MaxFrameSize: DefaultMaxFrameSize, Open: open}
}

// Begin opens the owned stream and starts receiving.
func (l *Link) Begin() error {
	l.runLock.Lock()
	defer l.runLock.Unlock()
	if l.task != nil {
		return ErrRunning
	}
	if l.Open == nil {
		return ErrNoDevice
	}
	s, err := l.Open()
	if err != nil {
		return err
	}
	l.owned = s
	l.start(s)
	return nil
}

// BeginWith starts receiving from a caller supplied stream. The stream is
// not closed by End. If the stream has SetReadDeadline, as net.Conn does,
// End interrupts the pending read and waits for the reader, so the stream
// can be passed to BeginWith again; a frame split across End is lost.
// Without it the pending read can't be interrupted and the frame it
// returns after End is discarded.
func (l *Link) BeginWith(s io.ReadWriter) error {
	l.runLock.Lock()
	defer l.runLock.Unlock()
	if l.task != nil {
		return ErrRunning
	}
	l.start(s)
	return nil
}

// End stops receiving and closes the stream if opened by Begin.
// Values already queued stay readable. A receive error which ended the
// pump early is logged, not returned.
func (l *Link) End() error {
	l.runLock.Lock()
	defer l.runLock.Unlock()
	if l.task == nil {
		return ErrNotRunning
	}
	l.lock.Lock()
	l.frames = nil
	l.lock.Unlock()

	task, owned := l.task, l.owned
	l.task, l.owned = nil, nil
	task.Stop()
	if owned != nil {
		return owned.Close()
	}
	return nil
}

// Running tells whether the link is between Begin and End.
func (l *Link) Running() bool {
	l.runLock.Lock()
	defer l.runLock.Unlock()
	return l.task != nil
}

func (l *Link) start(s io.ReadWriter) {
	factory := l.Framing
	if factory == nil {
		factory = cobs.Factory(l.maxFrameSize())
	}
	frames := factory(s)
	l.lock.Lock()
	l.frames = frames
	l.inboxLocked()
	l.lock.Unlock()
	l.task = framework.Go(context.Background(), &pump{link: l, stream: s, frames: frames})
}

func (l *Link) maxFrameSize() int {
	if l.MaxFrameSize > 0 {
		return l.MaxFrameSize
	}
	return DefaultMaxFrameSize
}

func (l *Link) inboxLocked() *channel.Inbox {
	if l.inbox == nil {
		l.inbox = channel.NewInbox(l.QueueCapacity, l.DropPolicy)
	}
	return l.inbox
}

// Write sends one value as one frame. A value whose encoding exceeds
// MaxFrameSize is dropped with framing.ErrFrameTooLarge.
func (l *Link) Write(v data.Value) error {
	buf := make([]byte, l.maxFrameSize())
	n := data.Encode(buf, v)
	if n == 0 {
		l.Metrics.Dropped(stats.ReasonEncode)
		glog.V(1).Infof("serial: drop value %v: encoding exceeds %d bytes", v, len(buf))
		return framing.ErrFrameTooLarge
	}
	l.lock.Lock()
	frames := l.frames
	l.lock.Unlock()
	if frames == nil {
		return ErrNotRunning
	}
	if err := frames.WriteFrame(buf[:n]); err != nil {
		return err
	}
	l.Metrics.Sent()
	return nil
}

// WriteBatch writes values in order, one frame each. Values that can't be
// encoded are skipped; the first error is returned.
func (l *Link) WriteBatch(vs []data.Value) error {
	var first error
	for _, v := range vs {
		err := l.Write(v)
		if err == ErrNotRunning {
			return err
		}
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Available returns the number of queued values.
func (l *Link) Available() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.inboxLocked().Len(channel.Default)
}

// Read pops the oldest received value. It never blocks and returns
// (Null, false) when nothing is queued.
func (l *Link) Read() (data.Value, bool) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.inboxLocked().Pop(channel.Default)
}

// ReadBatch pops up to len(buf) values and returns the count.
func (l *Link) ReadBatch(buf []data.Value) int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.inboxLocked().PopN(channel.Default, buf)
}

// ReadWait pops the oldest value, waiting until one arrives or ctx is done.
func (l *Link) ReadWait(ctx context.Context) (data.Value, error) {
	l.lock.Lock()
	in := l.inboxLocked()
	l.lock.Unlock()
	return channel.Wait(ctx, &l.lock, in, channel.Default)
}

func (l *Link) receive(frame []byte) {
	l.Metrics.Received()
	v, err := data.Unmarshal(frame)
	if err != nil {
		l.Metrics.Dropped(stats.ReasonMalformed)
		glog.V(2).Infof("serial: drop frame of %d bytes: %v", len(frame), err)
		return
	}
	l.lock.Lock()
	admitted := l.inboxLocked().Push(channel.Default, v)
	l.lock.Unlock()
	if !admitted {
		l.Metrics.Dropped(stats.ReasonOverflow)
	}
	if admitted || l.DropPolicy == channel.DropOldest {
		l.Metrics.Queued(channel.Default)
	}
	if fn := l.OnReceive; fn != nil {
		fn(v)
	}
}
