// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

// Notify registers task to be signalled when a message arrives at this
// queue while it is empty and no receiver is waiting. At most one
// registration exists per queue.
//
// A nil sev, or one with Notify set to SigevNone, clears the
// registration; clearing is permitted only for the registered task
// itself (a cleared queue tolerates repeated clears from anyone).
// Installing over another task's registration fails with ErrBusy;
// re-arming by the same task replaces the previous registration.
//
// Delivery is one-shot: firing pushes a [Siginfo] onto the task's signal
// channel and clears the registration.
func (d *Descriptor) Notify(task *Task, sev *Sigevent) error {
	if sev != nil && !sev.valid() {
		return ErrInvalid
	}
	if task == nil {
		return ErrPermission
	}

	ns := d.ns
	ns.mu.Lock()
	q, err := d.get()
	if err != nil {
		ns.mu.Unlock()
		return err
	}

	if q.target != nil && q.target != task {
		ns.mu.Unlock()
		return ErrBusy
	}

	if sev == nil || sev.Notify == SigevNone {
		// Here q.target is the calling task or nil.
		q.target = nil
	} else {
		q.target = task
		q.si = Siginfo{Signo: sev.Signo, Code: CodeMesgq, Value: sev.Value}
	}
	ns.mu.Unlock()
	return nil
}

// fireNotify delivers the armed notification and clears the
// registration. Called with ns.mu held, on the empty to non-empty
// transition with no waiting receiver.
func (ns *Namespace) fireNotify(q *queue) {
	q.target.deliver(q.si)
	q.target = nil
	q.statNotifies.AddAcqRel(1)
}
