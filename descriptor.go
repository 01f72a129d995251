// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

// Descriptor is one opener's handle on a queue: a reference to the
// registry node plus the runtime-relevant subset of the open flags
// (permission bits and NonBlock). Descriptors are not safe to Close
// concurrently with themselves, but all queue operations through
// distinct descriptors may run concurrently.
type Descriptor struct {
	ns     *Namespace
	q      *queue
	fd     int
	flags  OpenFlag
	closed bool
}

// Fd returns the integer identifier assigned at Open.
func (d *Descriptor) Fd() int { return d.fd }

// get validates the descriptor against queue teardown. Called with
// ns.mu held.
func (d *Descriptor) get() (*queue, error) {
	if d.closed || d.q.dead {
		return nil, ErrBadDescriptor
	}
	return d.q, nil
}

// Close releases the descriptor. When the queue's name is already
// unlinked and this was the last descriptor, the queue object is
// destroyed.
func (d *Descriptor) Close() error {
	ns := d.ns
	ns.mu.Lock()
	if d.closed {
		ns.mu.Unlock()
		return ErrBadDescriptor
	}
	d.closed = true
	q := d.q
	ns.nodePut(&q.nb)
	destroy := q.nb.nodeRemoved() && !q.dead
	ns.mu.Unlock()

	if destroy {
		ns.destroyQueue(q)
	}
	return nil
}

// Attr returns the queue attributes together with this descriptor's
// flags and the current message count.
func (d *Descriptor) Attr() (Attr, error) {
	ns := d.ns
	ns.mu.Lock()
	q, err := d.get()
	if err != nil {
		ns.mu.Unlock()
		return Attr{}, err
	}
	attr := q.attrSnapshot(d.flags)
	ns.mu.Unlock()
	return attr, nil
}

// SetAttr updates the descriptor's non-permission flag bits (in effect,
// NonBlock); the permission bits fixed at Open are preserved. It returns
// the attribute snapshot from before the change.
func (d *Descriptor) SetAttr(flags OpenFlag) (Attr, error) {
	ns := d.ns
	ns.mu.Lock()
	q, err := d.get()
	if err != nil {
		ns.mu.Unlock()
		return Attr{}, err
	}
	prev := q.attrSnapshot(d.flags)
	d.flags = (d.flags & permMask) | (flags &^ permMask & descMask)
	ns.mu.Unlock()
	return prev, nil
}

// Stat returns the introspection snapshot of the descriptor's queue.
func (d *Descriptor) Stat() (QueueStat, error) {
	ns := d.ns
	ns.mu.Lock()
	q, err := d.get()
	if err != nil {
		ns.mu.Unlock()
		return QueueStat{}, err
	}
	st := q.stat()
	ns.mu.Unlock()
	return st, nil
}
