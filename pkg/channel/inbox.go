package channel

import (
	"context"
	"sync"

	"github.com/robotalks/datalink.go/pkg/data"
)

// Inbox holds one Queue per channel, created on first reference and
// kept for the lifetime of the Inbox.
type Inbox struct {
	Capacity int
	Policy   DropPolicy

	queues map[ID]*Queue
}

// NewInbox creates an Inbox whose queues use the given bound and policy.
func NewInbox(capacity int, policy DropPolicy) *Inbox {
	return &Inbox{Capacity: capacity, Policy: policy}
}

// Queue returns the queue of a channel, creating it if needed.
func (b *Inbox) Queue(id ID) *Queue {
	if b.queues == nil {
		b.queues = make(map[ID]*Queue)
	}
	q := b.queues[id]
	if q == nil {
		q = NewQueue(b.Capacity, b.Policy)
		b.queues[id] = q
	}
	return q
}

// Push appends v to the queue of a channel.
func (b *Inbox) Push(id ID, v data.Value) bool {
	return b.Queue(id).Push(v)
}

// Pop removes the head value of a channel.
func (b *Inbox) Pop(id ID) (data.Value, bool) {
	return b.Queue(id).Pop()
}

// PopN pops up to len(buf) values of a channel.
func (b *Inbox) PopN(id ID, buf []data.Value) int {
	return b.Queue(id).PopN(buf)
}

// Len returns the queue depth of a channel.
func (b *Inbox) Len(id ID) int {
	return b.Queue(id).Len()
}

// Wait pops the head value of a channel, blocking until one arrives or
// ctx is done. locker must be the lock guarding in; it is only held while
// inspecting the queue, never while blocked.
func Wait(ctx context.Context, locker sync.Locker, in *Inbox, id ID) (data.Value, error) {
	for {
		locker.Lock()
		q := in.Queue(id)
		v, ok := q.Pop()
		readyCh := q.Ready()
		locker.Unlock()
		if ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			return data.Value{}, ctx.Err()
		case <-readyCh:
		}
	}
}
