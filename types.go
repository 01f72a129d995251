// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import "time"

// OpenFlag is the flag word passed to [Namespace.Open] and carried,
// reduced to its runtime-relevant bits, on every descriptor.
type OpenFlag int

const (
	// ReadOnly opens the queue for receiving only.
	ReadOnly OpenFlag = 0x0

	// WriteOnly opens the queue for sending only.
	WriteOnly OpenFlag = 0x1

	// ReadWrite opens the queue for both sending and receiving.
	ReadWrite OpenFlag = 0x2

	// Create creates the queue if the name is not linked.
	Create OpenFlag = 0x4

	// Exclusive makes Open fail with ErrExist if the name is linked.
	// Meaningful only together with Create.
	Exclusive OpenFlag = 0x8

	// NonBlock makes Send and Receive on the returned descriptor fail
	// with ErrWouldBlock instead of blocking.
	NonBlock OpenFlag = 0x10
)

// permMask covers the mutually exclusive permission bits.
const permMask OpenFlag = 0x3

// descMask covers the bits retained on a descriptor after Open.
const descMask = permMask | NonBlock

// canSend reports whether the permission bits allow sending.
func (f OpenFlag) canSend() bool {
	p := f & permMask
	return p == WriteOnly || p == ReadWrite
}

// canReceive reports whether the permission bits allow receiving.
func (f OpenFlag) canReceive() bool {
	p := f & permMask
	return p == ReadOnly || p == ReadWrite
}

// Attr describes a queue. MaxMessages and MessageSize are fixed at
// creation; Flags and CurrentMessages are filled per descriptor when an
// Attr is returned by [Descriptor.Attr] or [Descriptor.SetAttr].
type Attr struct {
	// MaxMessages is the queue capacity in messages. Must be >= 1.
	MaxMessages int

	// MessageSize is the maximum payload length in bytes.
	MessageSize int

	// Flags are the calling descriptor's flags (permission bits plus
	// NonBlock). Ignored on creation; Open's flag argument governs.
	Flags OpenFlag

	// CurrentMessages is the number of messages enqueued right now.
	// Ignored on creation.
	CurrentMessages int
}

// DefaultAttr is used when Open creates a queue with a nil attr.
var DefaultAttr = Attr{MaxMessages: 10, MessageSize: 1024}

// Timespec is an absolute point on the namespace clock, split into whole
// seconds and nanoseconds since the Unix epoch. Nsec must lie in
// [0, 1e9); operations taking a Timespec fail with ErrInvalid otherwise.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// TimespecOf converts a time.Time to a Timespec.
func TimespecOf(t time.Time) Timespec {
	return Timespec{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}

// Time converts the Timespec to a time.Time.
func (ts Timespec) Time() time.Time {
	return time.Unix(ts.Sec, ts.Nsec)
}

// valid reports whether the nanosecond field is in range.
func (ts Timespec) valid() bool {
	return ts.Nsec >= 0 && ts.Nsec < int64(time.Second)
}

// SigNotify selects the delivery mode of a [Sigevent].
type SigNotify int

const (
	// SigevSignal delivers a Siginfo to the target task's signal channel.
	SigevSignal SigNotify = iota

	// SigevNone registers no delivery; as an argument to Notify it clears
	// the current registration.
	SigevNone
)

// SigrtMax bounds the signal number space. A Sigevent's Signo must lie
// in [1, SigrtMax].
const SigrtMax = 64

// CodeMesgq marks a Siginfo as originating from message arrival.
const CodeMesgq = -3

// Sigevent specifies a notification registration: the delivery mode, the
// signal number and an opaque value handed back on delivery.
type Sigevent struct {
	Notify SigNotify
	Signo  int
	Value  int
}

// valid reports whether the sigevent's mode and signal number are
// acceptable. The signal number is checked regardless of mode.
func (sev *Sigevent) valid() bool {
	if sev.Notify != SigevSignal && sev.Notify != SigevNone {
		return false
	}
	return sev.Signo >= 1 && sev.Signo <= SigrtMax
}

// Siginfo is one notification delivery, as read from [Task.Signals].
type Siginfo struct {
	// Signo is the signal number the registration was armed with.
	Signo int

	// Code identifies the origin of the delivery; always CodeMesgq for
	// queue notifications.
	Code int

	// Value is the opaque value the registration was armed with.
	Value int
}

// QueueStat is a point-in-time snapshot of one live queue, taken under
// the namespace lock by [Namespace.Snapshot] or [Descriptor.Stat].
type QueueStat struct {
	Name            string `json:"name"`
	MaxMessages     int    `json:"max_messages"`
	MessageSize     int    `json:"message_size"`
	CurrentMessages int    `json:"current_messages"`
	FreeSlots       int    `json:"free_slots"`
	SenderWaiters   int    `json:"sender_waiters"`
	ReceiverWaiters int    `json:"receiver_waiters"`
	NotifierArmed   bool   `json:"notifier_armed"`
	OpenDescriptors int    `json:"open_descriptors"`
	Sends           uint64 `json:"sends"`
	Receives        uint64 `json:"receives"`
	Handoffs        uint64 `json:"handoffs"`
	Notifications   uint64 `json:"notifications"`
}
