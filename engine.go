// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import (
	"context"
	"errors"
	"time"
)

// trySend is the non-blocking send primitive. Called with ns.mu held.
//
// A receiver already parked on the queue takes the payload by direct
// handoff: the bytes go straight into its published rendezvous handle,
// no slot is consumed, the message count is unchanged and the notifier
// is not considered. Otherwise the payload is staged in a pool slot and
// enqueued by priority; pool exhaustion is the queue-full condition.
func (ns *Namespace) trySend(d *Descriptor, q *queue, buf []byte, prio uint) error {
	if !d.flags.canSend() {
		return ErrPermission
	}
	if len(buf) > q.messageSize {
		return ErrMessageTooLarge
	}

	if w := q.receivers.removeOne(); w != nil {
		if dm := w.direct; dm != nil {
			copy(dm.buf, buf)
			*dm.n = len(buf)
			if dm.prio != nil {
				*dm.prio = prio
			}
			dm.used.StoreRelease(true)
		}
		w.signal(wakeNormal)
		q.statSends.AddAcqRel(1)
		q.statHandoffs.AddAcqRel(1)
		return nil
	}

	s := q.pool.get()
	if s == nil {
		return ErrWouldBlock
	}
	copy(s.data, buf)
	s.n = len(buf)
	q.pending.enqueue(s, prio)

	// First message, nobody was reading: one-shot arrival notification.
	if q.target != nil && q.pending.count() == 1 {
		ns.fireNotify(q)
	}
	q.statSends.AddAcqRel(1)
	return nil
}

// tryReceive is the non-blocking receive primitive. Called with ns.mu
// held. The caller's buffer must hold a maximal message, not merely the
// head message.
func (ns *Namespace) tryReceive(d *Descriptor, q *queue, buf []byte) (int, uint, error) {
	if !d.flags.canReceive() {
		return 0, 0, ErrPermission
	}
	if len(buf) < q.messageSize {
		return 0, 0, ErrMessageTooLarge
	}

	s := q.pending.dequeueHead()
	if s == nil {
		return 0, 0, ErrWouldBlock
	}
	n := s.n
	prio := s.prio
	copy(buf, s.data[:n])
	q.pool.put(s)

	// A freed slot unblocks the highest-priority parked sender.
	if w := q.senders.removeOne(); w != nil {
		w.signal(wakeNormal)
	}
	q.statReceives.AddAcqRel(1)
	return n, prio, nil
}

// sendInner runs the blocking send loop: attempt, park, re-attempt.
// Wakes re-enter the attempt only on a normal wake; timeout, cancellation
// and queue removal unwind with their own errors.
func (d *Descriptor) sendInner(ctx context.Context, buf []byte, prio uint, deadline *time.Time, block bool) error {
	ns := d.ns
	task := TaskFromContext(ctx)
	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}

	ns.mu.Lock()
	for {
		q, err := d.get()
		if err != nil {
			ns.mu.Unlock()
			return err
		}
		err = ns.trySend(d, q, buf, prio)
		if !errors.Is(err, ErrWouldBlock) {
			ns.mu.Unlock()
			return err
		}
		if !block || d.flags&NonBlock != 0 {
			ns.mu.Unlock()
			return err
		}
		if task != nil && task.noSleep {
			ns.mu.Unlock()
			return ErrPermission
		}

		w := newWaiter(task, nil)
		switch ns.sleepOn(&q.senders, w, deadline, done) {
		case wakeNormal:
			// Cancellation point; otherwise reconfirm progress is
			// possible (a higher-priority peer may have taken the slot).
			if ctx != nil && ctx.Err() != nil {
				ns.mu.Unlock()
				return ctxError(ctx)
			}
		case wakeRemoved:
			ns.mu.Unlock()
			return ErrBadDescriptor
		case wakeTimeout:
			ns.mu.Unlock()
			return ErrTimeout
		case wakeInterrupt:
			ns.mu.Unlock()
			return ctxError(ctx)
		}
	}
}

// recvInner runs the blocking receive loop. Before each park the
// receiver publishes a rendezvous handle so a sender can complete the
// transfer by direct handoff while the receiver is suspended.
func (d *Descriptor) recvInner(ctx context.Context, buf []byte, deadline *time.Time, block bool) (int, uint, error) {
	ns := d.ns
	task := TaskFromContext(ctx)
	var done <-chan struct{}
	if ctx != nil {
		done = ctx.Done()
	}

	var n int
	var prio uint

	ns.mu.Lock()
	for {
		q, err := d.get()
		if err != nil {
			ns.mu.Unlock()
			return 0, 0, err
		}
		n, prio, err = ns.tryReceive(d, q, buf)
		if !errors.Is(err, ErrWouldBlock) {
			ns.mu.Unlock()
			return n, prio, err
		}
		if !block || d.flags&NonBlock != 0 {
			ns.mu.Unlock()
			return 0, 0, err
		}
		if task != nil && task.noSleep {
			ns.mu.Unlock()
			return 0, 0, ErrPermission
		}

		dm := &directMsg{buf: buf, n: &n, prio: &prio}
		w := newWaiter(task, dm)
		cause := ns.sleepOn(&q.receivers, w, deadline, done)

		if dm.used.LoadAcquire() {
			// A sender completed the transfer while we slept.
			ns.mu.Unlock()
			return n, prio, nil
		}
		switch cause {
		case wakeNormal:
			if ctx != nil && ctx.Err() != nil {
				ns.mu.Unlock()
				return 0, 0, ctxError(ctx)
			}
		case wakeRemoved:
			ns.mu.Unlock()
			return 0, 0, ErrBadDescriptor
		case wakeTimeout:
			ns.mu.Unlock()
			return 0, 0, ErrTimeout
		case wakeInterrupt:
			ns.mu.Unlock()
			return 0, 0, ctxError(ctx)
		}
	}
}

// ctxError maps a finished context to the matching unwind error.
func ctxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return ErrInterrupted
}

// Send enqueues buf at the given message priority, blocking while the
// queue is full unless the descriptor was opened with NonBlock.
func (d *Descriptor) Send(buf []byte, prio uint) error {
	return d.sendInner(context.Background(), buf, prio, nil, true)
}

// SendContext is Send with cancellation: a canceled context unwinds with
// ErrInterrupted, an expired context deadline with ErrTimeout. The
// calling task, if any, is read from the context (see [WithTask]).
func (d *Descriptor) SendContext(ctx context.Context, buf []byte, prio uint) error {
	return d.sendInner(ctx, buf, prio, nil, true)
}

// TimedSend is Send bounded by an absolute deadline on the namespace
// clock. A deadline already in the past still attempts the send once and
// only then reports ErrTimeout.
func (d *Descriptor) TimedSend(buf []byte, prio uint, abs Timespec) error {
	if !abs.valid() {
		return ErrInvalid
	}
	deadline := abs.Time()
	return d.sendInner(context.Background(), buf, prio, &deadline, true)
}

// TimedSendContext combines TimedSend's deadline with SendContext's
// cancellation.
func (d *Descriptor) TimedSendContext(ctx context.Context, buf []byte, prio uint, abs Timespec) error {
	if !abs.valid() {
		return ErrInvalid
	}
	deadline := abs.Time()
	return d.sendInner(ctx, buf, prio, &deadline, true)
}

// TrySend never blocks, regardless of the descriptor's NonBlock flag.
// Returns ErrWouldBlock when every slot is in use and no receiver is
// waiting.
func (d *Descriptor) TrySend(buf []byte, prio uint) error {
	return d.sendInner(context.Background(), buf, prio, nil, false)
}

// Receive takes the highest-priority message into buf and returns its
// length and priority, blocking while the queue is empty unless the
// descriptor was opened with NonBlock. buf must be at least the queue's
// message size.
func (d *Descriptor) Receive(buf []byte) (int, uint, error) {
	return d.recvInner(context.Background(), buf, nil, true)
}

// ReceiveContext is Receive with cancellation: a canceled context
// unwinds with ErrInterrupted, an expired context deadline with
// ErrTimeout.
func (d *Descriptor) ReceiveContext(ctx context.Context, buf []byte) (int, uint, error) {
	return d.recvInner(ctx, buf, nil, true)
}

// TimedReceive is Receive bounded by an absolute deadline on the
// namespace clock.
func (d *Descriptor) TimedReceive(buf []byte, abs Timespec) (int, uint, error) {
	if !abs.valid() {
		return 0, 0, ErrInvalid
	}
	deadline := abs.Time()
	return d.recvInner(context.Background(), buf, &deadline, true)
}

// TimedReceiveContext combines TimedReceive's deadline with
// ReceiveContext's cancellation.
func (d *Descriptor) TimedReceiveContext(ctx context.Context, buf []byte, abs Timespec) (int, uint, error) {
	if !abs.valid() {
		return 0, 0, ErrInvalid
	}
	deadline := abs.Time()
	return d.recvInner(ctx, buf, &deadline, true)
}

// TryReceive never blocks, regardless of the descriptor's NonBlock flag.
// Returns ErrWouldBlock when the queue is empty.
func (d *Descriptor) TryReceive(buf []byte) (int, uint, error) {
	return d.recvInner(context.Background(), buf, nil, false)
}
