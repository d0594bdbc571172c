// Package kernel runs deferred work off the main loop, the way the second
// core of the RP2040 takes display redraws away from the scan loop.
package kernel

import (
	"context"
	"runtime"
	"sync/atomic"
)

// Task is one unit of deferred work.
type Task func()

const queueSlots = 8

type slot struct {
	ready atomic.Bool
	task  Task
}

// Queue is a fixed-size multi-producer, single-consumer task queue.
// It does not allocate after construction.
type Queue struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint32
	tail  atomic.Uint32
	slots [queueSlots]slot
	wake  chan struct{}
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// TryPost enqueues t, returning false if the queue is full.
func (q *Queue) TryPost(t Task) bool {
	if t == nil {
		return false
	}
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		if head-tail >= queueSlots {
			return false
		}
		if q.head.CompareAndSwap(head, head+1) {
			s := &q.slots[head%queueSlots]
			s.task = t
			s.ready.Store(true)
			q.signal()
			return true
		}
	}
}

// Post enqueues t, yielding until there is room.
func (q *Queue) Post(t Task) {
	if t == nil {
		return
	}
	for !q.TryPost(t) {
		runtime.Gosched()
	}
}

// TryNext dequeues one task, returning false if none is ready.
func (q *Queue) TryNext() (Task, bool) {
	tail := q.tail.Load()
	if tail == q.head.Load() {
		return nil, false
	}
	s := &q.slots[tail%queueSlots]
	if !s.ready.Load() {
		// Reserved by a producer that has not stored yet.
		return nil, false
	}
	t := s.task
	s.task = nil
	s.ready.Store(false)
	q.tail.Store(tail + 1)
	return t, true
}

// Next blocks until a task is ready or ctx is done.
func (q *Queue) Next(ctx context.Context) (Task, error) {
	for {
		if t, ok := q.TryNext(); ok {
			return t, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.wake:
		}
	}
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int { return int(q.head.Load() - q.tail.Load()) }

func (q *Queue) signal() {
	if q.wake == nil {
		return
	}
	select {
	case q.wake <- struct{}{}:
	default:
	}
}
