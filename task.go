// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import "context"

// Task represents the calling thread of the hosting executive as the
// queue subsystem sees it: a wait priority, an optional no-sleep marker
// and a signal channel for notification deliveries.
//
// Blocking operations read the calling task from the context (see
// [WithTask]). Without one they wait at priority 0 in FIFO order.
type Task struct {
	name    string
	prio    int
	noSleep bool
	sig     chan Siginfo
}

// TaskOption mutates task construction.
type TaskOption func(*Task)

// TaskNoSleep marks the task as forbidden to block. A blocking send or
// receive reaching its sleep point on behalf of a no-sleep task fails
// with ErrPermission instead of suspending.
func TaskNoSleep() TaskOption {
	return func(t *Task) {
		t.noSleep = true
	}
}

// TaskSignalBuffer sets the capacity of the task's signal channel.
// The default is 16. Deliveries to a full channel are dropped.
func TaskSignalBuffer(n int) TaskOption {
	return func(t *Task) {
		if n < 1 {
			n = 1
		}
		t.sig = make(chan Siginfo, n)
	}
}

// NewTask creates a task handle with the given name and wait priority.
// Higher priorities are woken first from a queue's wait lists.
func NewTask(name string, prio int, opts ...TaskOption) *Task {
	t := &Task{
		name: name,
		prio: prio,
		sig:  make(chan Siginfo, 16),
	}
	for _, f := range opts {
		f(t)
	}
	return t
}

// Name returns the task's name.
func (t *Task) Name() string { return t.name }

// Priority returns the task's wait priority.
func (t *Task) Priority() int { return t.prio }

// Signals returns the channel notification deliveries arrive on.
func (t *Task) Signals() <-chan Siginfo { return t.sig }

// deliver hands a Siginfo to the task without blocking. Reports whether
// the delivery was accepted.
func (t *Task) deliver(si Siginfo) bool {
	select {
	case t.sig <- si:
		return true
	default:
		return false
	}
}

type taskKey struct{}

// WithTask attaches a task to the context so blocking operations wait at
// the task's priority and honor its no-sleep marker.
func WithTask(ctx context.Context, t *Task) context.Context {
	return context.WithValue(ctx, taskKey{}, t)
}

// TaskFromContext returns the task attached by [WithTask], or nil.
func TaskFromContext(ctx context.Context) *Task {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(taskKey{}).(*Task)
	return t
}
