// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rtmq provides named, priority-ordered, bounded message queues
// for real-time producer/consumer tasks sharing one address space.
//
// A queue is created with a fixed capacity (maximum message count and
// maximum message size) and reached by name through a [Namespace]. Every
// opener gets its own [Descriptor] carrying per-opener flags; the queue
// itself lives until its name is unlinked and the last descriptor is
// closed.
//
// # Quick Start
//
//	ns := rtmq.NewNamespace()
//	defer ns.Destroy()
//
//	d, err := ns.Open("/events", rtmq.ReadWrite|rtmq.Create,
//		&rtmq.Attr{MaxMessages: 64, MessageSize: 256})
//	if err != nil {
//		// Handle error
//	}
//	defer d.Close()
//
//	// Send (blocks while the queue is full)
//	err = d.Send([]byte("ping"), 5)
//
//	// Receive (blocks while the queue is empty)
//	buf := make([]byte, 256)
//	n, prio, err := d.Receive(buf)
//
// # Ordering
//
// Messages are delivered strictly by descending message priority, FIFO
// within a priority band. Blocked senders and receivers are likewise
// queued by task priority (FIFO per band) and woken highest-first.
//
// # Non-blocking Use
//
// TrySend and TryReceive never block and return ErrWouldBlock when the
// queue is full or empty. Opening with [NonBlock] makes Send and Receive
// behave the same way:
//
//	err := d.TrySend(payload, 0)
//	if rtmq.IsWouldBlock(err) {
//	    // Queue full - handle backpressure
//	}
//
// # Deadlines and Cancellation
//
// TimedSend and TimedReceive take an absolute [Timespec] deadline against
// the namespace clock and return ErrTimeout once it passes. SendContext
// and ReceiveContext honor context cancellation: a canceled context
// surfaces as ErrInterrupted, an expired context deadline as ErrTimeout.
//
// # Rendezvous Fast Path
//
// A send that finds a receiver already waiting copies the payload
// straight into the receiver's buffer. No pool slot is consumed and the
// queue count never changes; the pair rendezvous without touching queue
// storage.
//
// # Arrival Notification
//
// A task can register, at most one registration per queue, to be told
// when a message arrives at an otherwise-empty queue with no waiting
// receiver:
//
//	task := rtmq.NewTask("monitor", 10)
//	err := d.Notify(task, &rtmq.Sigevent{Notify: rtmq.SigevSignal, Signo: 40, Value: 7})
//	si := <-task.Signals() // fires once, then the registration is cleared
package rtmq
