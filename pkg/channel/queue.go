// Package channel provides logical channel IDs and the per-channel inbound
// queues transports deliver decoded values into.
//
// Queue and Inbox are not safe for concurrent use by themselves: each
// transport guards its inbox with the same lock that guards its registry.
package channel

import (
	"container/list"

	"github.com/robotalks/datalink.go/pkg/data"
)

// ID identifies a logical channel.
type ID uint8

// Default is the channel used when none is specified.
const Default ID = 0

// DropPolicy decides which value is discarded when a bounded queue is full.
type DropPolicy int

const (
	// DropOldest discards the head of the queue to admit the new value.
	DropOldest DropPolicy = iota
	// DropNewest discards the incoming value.
	DropNewest
)

// Queue is a FIFO of values. Capacity 0 means unbounded.
type Queue struct {
	Capacity int
	Policy   DropPolicy

	items   list.List
	dropped uint64
	readyCh chan struct{}
}

// NewQueue creates a Queue.
func NewQueue(capacity int, policy DropPolicy) *Queue {
	return &Queue{
		Capacity: capacity,
		Policy:   policy,
		readyCh:  make(chan struct{}, 1),
	}
}

// Push appends v. It returns false if a value was discarded to respect Capacity.
func (q *Queue) Push(v data.Value) bool {
	admitted := true
	if q.Capacity > 0 && q.items.Len() >= q.Capacity {
		q.dropped++
		admitted = false
		if q.Policy == DropNewest {
			return false
		}
		q.items.Remove(q.items.Front())
	}
	q.items.PushBack(v)
	q.signal()
	return admitted
}

// Pop removes the head value. ok is false if the queue is empty.
func (q *Queue) Pop() (v data.Value, ok bool) {
	elm := q.items.Front()
	if elm == nil {
		return
	}
	q.items.Remove(elm)
	if q.items.Len() > 0 {
		// pass the wake-up on to other waiters.
		q.signal()
	}
	return elm.Value.(data.Value), true
}

// PopN pops up to len(buf) values into buf and returns the count.
func (q *Queue) PopN(buf []data.Value) int {
	n := 0
	for ; n < len(buf); n++ {
		elm := q.items.Front()
		if elm == nil {
			break
		}
		q.items.Remove(elm)
		buf[n] = elm.Value.(data.Value)
	}
	if q.items.Len() > 0 {
		q.signal()
	}
	return n
}

// Len returns the number of queued values.
func (q *Queue) Len() int {
	return q.items.Len()
}

// Dropped returns the number of values discarded so far.
func (q *Queue) Dropped() uint64 {
	return q.dropped
}

// Ready returns a chan which receives after values are pushed.
// It's a wake-up hint; the queue may be empty again when it fires.
func (q *Queue) Ready() <-chan struct{} {
	return q.readyCh
}

func (q *Queue) signal() {
	select {
	case q.readyCh <- struct{}{}:
	default:
	}
}
