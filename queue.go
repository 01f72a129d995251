// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import "code.hybscloud.com/atomix"

// queue is the message queue object: the slot pool, the priority-ordered
// pending list, one wait queue per direction, the notifier state and the
// registry anchor. All mutable state except the stat counters is guarded
// by the owning namespace's lock.
type queue struct {
	nb node

	maxMessages int
	messageSize int
	memSize     int

	pending   msgList
	pool      msgPool
	senders   waitQueue
	receivers waitQueue

	// mq_notify registration; target nil means unarmed.
	target *Task
	si     Siginfo

	dead bool

	// live-list link
	next *queue
	prev *queue

	_            pad
	statSends    atomix.Uint64
	statReceives atomix.Uint64
	statHandoffs atomix.Uint64
	statNotifies atomix.Uint64
}

// initQueue sizes and tiles the message arena. Runs with the namespace
// lock released, between nodeAddStart and nodeAddFinished; concurrent
// openers of the same name are parked meanwhile.
func (ns *Namespace) initQueue(q *queue, attr *Attr) error {
	if attr == nil {
		attr = &DefaultAttr
	}
	if attr.MaxMessages < 1 || attr.MessageSize < 0 {
		return ErrInvalid
	}
	memSize := pageAlign(align8(attr.MessageSize) * attr.MaxMessages)
	if !ns.reserveMem(memSize) {
		return ErrNoMemory
	}
	q.maxMessages = attr.MaxMessages
	q.messageSize = attr.MessageSize
	q.memSize = memSize
	q.pool.init(attr.MaxMessages, attr.MessageSize)
	q.nb.owner = q
	return nil
}

// attrSnapshot builds the caller-visible attribute view for one
// descriptor. Called with ns.mu held.
func (q *queue) attrSnapshot(flags OpenFlag) Attr {
	return Attr{
		MaxMessages:     q.maxMessages,
		MessageSize:     q.messageSize,
		Flags:           flags,
		CurrentMessages: q.pending.count(),
	}
}

// stat builds the introspection snapshot. Called with ns.mu held.
func (q *queue) stat() QueueStat {
	return QueueStat{
		Name:            q.nb.name,
		MaxMessages:     q.maxMessages,
		MessageSize:     q.messageSize,
		CurrentMessages: q.pending.count(),
		FreeSlots:       q.pool.avail,
		SenderWaiters:   q.senders.count(),
		ReceiverWaiters: q.receivers.count(),
		NotifierArmed:   q.target != nil,
		OpenDescriptors: q.nb.refs,
		Sends:           q.statSends.LoadRelaxed(),
		Receives:        q.statReceives.LoadRelaxed(),
		Handoffs:        q.statHandoffs.LoadRelaxed(),
		Notifications:   q.statNotifies.LoadRelaxed(),
	}
}

// destroyQueue tears the queue down: blocked tasks wake with a removed
// indication, the object leaves the live list and the arena is returned
// to the namespace's memory accounting. Must be entered with ns.mu
// released; teardown of the arena happens outside the lock. A queue that
// another caller has already torn down is left as it is.
func (ns *Namespace) destroyQueue(q *queue) {
	ns.mu.Lock()
	if q.dead {
		ns.mu.Unlock()
		return
	}
	q.dead = true
	q.senders.flush(wakeRemoved)
	q.receivers.flush(wakeRemoved)
	q.target = nil
	ns.liveRemove(q)
	ns.mu.Unlock()

	q.pool.release()
	ns.releaseMem(q.memSize)
}
