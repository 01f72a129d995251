// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import "code.hybscloud.com/atomix"

// wakeCause says why a blocked task resumed. Causes are mutually
// exclusive; every waiter observes exactly one.
type wakeCause uint8

const (
	wakeNormal wakeCause = iota + 1
	wakeTimeout
	wakeInterrupt
	wakeRemoved
)

// directMsg is the rendezvous handle a receiver publishes before it
// sleeps. A sender that wakes the receiver copies the payload into buf
// and flips used with release ordering; the receiver checks it with
// acquire ordering after waking. The wake signal itself provides the
// happens-before edge, the atomic flag keeps the handshake explicit.
type directMsg struct {
	buf  []byte
	n    *int
	prio *uint
	used atomix.Bool
}

// waiter is one task blocked on a queue.
type waiter struct {
	task   *Task
	prio   int
	ch     chan wakeCause
	direct *directMsg // receivers only
	next   *waiter
	prev   *waiter
	wq     *waitQueue // non-nil while enqueued
}

func newWaiter(task *Task, direct *directMsg) *waiter {
	w := &waiter{ch: make(chan wakeCause, 1), direct: direct, task: task}
	if task != nil {
		w.prio = task.prio
	}
	return w
}

// signal delivers the wake cause. Each waiter is signalled at most once,
// so the buffered channel never blocks the waker.
func (w *waiter) signal(cause wakeCause) {
	w.ch <- cause
}

// waitQueue is a priority-ordered list of blocked tasks: descending
// priority, FIFO within a band. The head is the next waiter woken.
type waitQueue struct {
	head *waiter
	tail *waiter
	n    int
}

// enqueue inserts w behind every waiter of priority >= w.prio.
func (q *waitQueue) enqueue(w *waiter) {
	var after *waiter
	for cur := q.tail; cur != nil; cur = cur.prev {
		if cur.prio >= w.prio {
			after = cur
			break
		}
	}
	if after == nil {
		w.prev = nil
		w.next = q.head
		if q.head != nil {
			q.head.prev = w
		} else {
			q.tail = w
		}
		q.head = w
	} else {
		w.prev = after
		w.next = after.next
		if after.next != nil {
			after.next.prev = w
		} else {
			q.tail = w
		}
		after.next = w
	}
	w.wq = q
	q.n++
}

// removeOne detaches the highest-priority waiter without signalling it,
// so the caller can fill the rendezvous handle first. Returns nil when
// empty.
func (q *waitQueue) removeOne() *waiter {
	w := q.head
	if w == nil {
		return nil
	}
	q.remove(w)
	return w
}

// remove unlinks w from the queue.
func (q *waitQueue) remove(w *waiter) {
	if w.prev != nil {
		w.prev.next = w.next
	} else {
		q.head = w.next
	}
	if w.next != nil {
		w.next.prev = w.prev
	} else {
		q.tail = w.prev
	}
	w.next = nil
	w.prev = nil
	w.wq = nil
	q.n--
}

// flush wakes every waiter with the given cause. Reports whether any
// task was made runnable.
func (q *waitQueue) flush(cause wakeCause) bool {
	woke := false
	for {
		w := q.removeOne()
		if w == nil {
			return woke
		}
		w.signal(cause)
		woke = true
	}
}

// count returns the number of blocked tasks.
func (q *waitQueue) count() int {
	return q.n
}
