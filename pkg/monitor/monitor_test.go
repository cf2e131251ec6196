package monitor

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/datalink.go/pkg/channel"
	"github.com/robotalks/datalink.go/pkg/data"
	"github.com/robotalks/datalink.go/pkg/framework"
)

type fakeSource struct {
	inbox *channel.Inbox
}

func (s *fakeSource) ReadBatch(buf []data.Value, ch channel.ID) int {
	return s.inbox.PopN(ch, buf)
}

type fakeControl struct {
	ctx       context.Context
	triggered int
}

func (c *fakeControl) Context() context.Context { return c.ctx }
func (c *fakeControl) Time() time.Time          { return time.Date(2020, 1, 1, 10, 20, 30, 0, time.UTC) }
func (c *fakeControl) Iteration() uint64        { return 1 }
func (c *fakeControl) TriggerNext()             { c.triggered++ }

func TestMonitor(t *testing.T) {
	src := &fakeSource{inbox: channel.NewInbox(0, channel.DropOldest)}
	src.inbox.Push(1, data.String("ab"))
	src.inbox.Push(1, data.Int8(-1))
	src.inbox.Push(1, data.Null())
	src.inbox.Push(2, data.Array(data.UInt8(3)))

	var out bytes.Buffer
	m := &Monitor{Source: src, Channels: []channel.ID{1, 2}, Output: &out, BatchSize: 2}
	cc := &fakeControl{ctx: context.Background()}
	require.NoError(t, m.Control(cc))
	require.Equal(t, 1, cc.triggered)
	require.Equal(t, []string{
		`10:20:30.000 [1] "ab"`,
		`10:20:30.000 [1] i8(-1)`,
		`10:20:30.000 [2] [u8(3)]`,
	}, strings.Split(strings.TrimSpace(out.String()), "\n"))

	out.Reset()
	m.JSON = true
	require.NoError(t, m.Control(cc))
	require.JSONEq(t, `{"time":"10:20:30.000","channel":1,"value":null}`, strings.TrimSpace(out.String()))
}

type syncBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func TestMonitorLoop(t *testing.T) {
	src := &fakeSource{inbox: channel.NewInbox(0, channel.DropOldest)}
	for i := 0; i < 10; i++ {
		src.inbox.Push(0, data.Int32(int32(i)))
	}
	var out syncBuffer
	m := &Monitor{Source: src, Channels: []channel.ID{channel.Default}, Output: &out, BatchSize: 3}
	loop := framework.NewLoop()
	loop.Interval = time.Hour
	loop.Add(m)
	loop.TriggerNext()

	ctx, cancel := context.WithCancel(context.Background())
	task := framework.Go(ctx, loop)
	defer cancel()
	// batches of 3 keep triggering the next iteration until drained.
	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "\n") >= 10
	}, time.Second, time.Millisecond)
	require.NoError(t, task.Stop())
	require.Contains(t, out.String(), "i32(9)")
}
