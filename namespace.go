// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Namespace is one instance of the queue subsystem: the name registry,
// the list of live queues and the memory accounting. All queue state is
// guarded by a single lock, sized for short critical sections; the lock
// is released only around queue initialization, queue teardown and the
// parked phase of a blocking operation.
type Namespace struct {
	mu       sync.Mutex
	nodes    map[string]*node
	live     *queue // head of the live-queue list
	liveLast *queue
	fdSeq    int
	closed   bool

	clock    func() time.Time
	memLimit int
	_        pad
	memUsed  atomix.Int64
}

// NewNamespace creates an empty queue namespace.
func NewNamespace(opts ...Option) *Namespace {
	var o Options
	for _, f := range opts {
		f(&o)
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	return &Namespace{
		nodes:    make(map[string]*node),
		fdSeq:    1,
		clock:    o.clock,
		memLimit: o.memLimit,
	}
}

// Open returns a descriptor for the named queue, creating the queue
// when flags contains [Create] and the name is not linked. attr sizes a
// newly created queue and is ignored otherwise; nil means [DefaultAttr].
func (ns *Namespace) Open(name string, flags OpenFlag, attr *Attr) (*Descriptor, error) {
	if name == "" || flags&permMask == permMask {
		return nil, ErrInvalid
	}

	ns.mu.Lock()
	if ns.closed {
		ns.mu.Unlock()
		return nil, ErrInvalid
	}

	n, err := ns.nodeGet(name, typeMQ, flags)
	if err != nil {
		ns.mu.Unlock()
		return nil, err
	}

	var q *queue
	if n != nil {
		q = n.owner
	} else {
		// The name must be created. Publish a partial node, then build
		// the queue with the lock released; same-name openers park on
		// the node meanwhile.
		q = &queue{}
		if err = ns.nodeAddStart(&q.nb, name, typeMQ); err != nil {
			ns.mu.Unlock()
			return nil, err
		}
		ns.mu.Unlock()

		err = ns.initQueue(q, attr)

		ns.mu.Lock()
		ns.nodeAddFinished(&q.nb, err)
		if err != nil {
			ns.mu.Unlock()
			return nil, err
		}
		ns.liveAppend(q)
	}

	d := &Descriptor{
		ns:    ns,
		q:     q,
		fd:    ns.fdSeq,
		flags: flags & descMask,
	}
	ns.fdSeq++
	ns.mu.Unlock()
	return d, nil
}

// Unlink removes name from the registry. The queue object survives while
// descriptors remain open and is destroyed when the last one is closed;
// with none open it is destroyed here.
func (ns *Namespace) Unlink(name string) error {
	ns.mu.Lock()
	n, err := ns.nodeRemove(name, typeMQ)
	if err != nil {
		ns.mu.Unlock()
		return err
	}
	q := n.owner
	destroy := n.nodeRemoved() && !q.dead
	ns.mu.Unlock()

	if destroy {
		ns.destroyQueue(q)
	}
	return nil
}

// Destroy tears the namespace down, forcibly destroying every live queue
// whether or not it is still linked or open. Blocked tasks wake with
// ErrBadDescriptor; surviving descriptors fail all further queue
// operations the same way, while Close still releases them once.
func (ns *Namespace) Destroy() {
	sw := spin.Wait{}
	for {
		ns.mu.Lock()
		ns.closed = true
		q := ns.live
		if q == nil {
			ns.mu.Unlock()
			return
		}
		if !q.nb.unlinked {
			delete(ns.nodes, q.nb.name)
			q.nb.unlinked = true
		}
		busy := q.dead // another goroutine is already tearing it down
		ns.mu.Unlock()

		if busy {
			sw.Once()
			continue
		}
		ns.destroyQueue(q)
	}
}

// Snapshot returns the state of every live queue, taken atomically under
// the namespace lock.
func (ns *Namespace) Snapshot() []QueueStat {
	ns.mu.Lock()
	var out []QueueStat
	for q := ns.live; q != nil; q = q.next {
		out = append(out, q.stat())
	}
	ns.mu.Unlock()
	return out
}

// liveAppend links q on the live-queue list. Called with ns.mu held.
func (ns *Namespace) liveAppend(q *queue) {
	q.prev = ns.liveLast
	q.next = nil
	if ns.liveLast != nil {
		ns.liveLast.next = q
	} else {
		ns.live = q
	}
	ns.liveLast = q
}

// liveRemove unlinks q from the live-queue list. Called with ns.mu held.
func (ns *Namespace) liveRemove(q *queue) {
	if q.prev != nil {
		q.prev.next = q.next
	} else {
		ns.live = q.next
	}
	if q.next != nil {
		q.next.prev = q.prev
	} else {
		ns.liveLast = q.prev
	}
	q.next = nil
	q.prev = nil
}

// reserveMem charges size bytes against the memory limit. Reports false
// when the limit would be exceeded.
func (ns *Namespace) reserveMem(size int) bool {
	used := ns.memUsed.AddAcqRel(int64(size))
	if ns.memLimit > 0 && used > int64(ns.memLimit) {
		ns.memUsed.AddAcqRel(-int64(size))
		return false
	}
	return true
}

// releaseMem returns size bytes to the accounting.
func (ns *Namespace) releaseMem(size int) {
	ns.memUsed.AddAcqRel(-int64(size))
}

// now reads the namespace clock.
func (ns *Namespace) now() time.Time {
	return ns.clock()
}

// sleepOn parks the calling goroutine on wq until it is signalled, the
// absolute deadline passes, or done is closed. Entered with ns.mu held;
// returns with ns.mu held. A deadline already in the past times out
// without parking.
//
// A timeout or cancellation that races a concurrent wake loses: if the
// waiter is already off the queue, the signalled cause is consumed
// instead, so every wake is attributed to exactly one cause and a filled
// rendezvous handle is never abandoned.
func (ns *Namespace) sleepOn(wq *waitQueue, w *waiter, deadline *time.Time, done <-chan struct{}) wakeCause {
	if deadline != nil && !deadline.After(ns.now()) {
		return wakeTimeout
	}
	wq.enqueue(w)
	ns.mu.Unlock()

	var timerC <-chan time.Time
	if deadline != nil {
		t := time.NewTimer(deadline.Sub(ns.now()))
		defer t.Stop()
		timerC = t.C
	}

	var cause wakeCause
	select {
	case cause = <-w.ch:
		ns.mu.Lock()
	case <-timerC:
		ns.mu.Lock()
		if w.wq != nil {
			wq.remove(w)
			cause = wakeTimeout
		} else {
			cause = <-w.ch
		}
	case <-done:
		ns.mu.Lock()
		if w.wq != nil {
			wq.remove(w)
			cause = wakeInterrupt
		} else {
			cause = <-w.ch
		}
	}
	return cause
}
