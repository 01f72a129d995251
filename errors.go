// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For send: the queue is full (every pool slot is enqueued).
// For receive: the queue is empty.
//
// ErrWouldBlock is a control flow signal, not a failure. Non-blocking
// callers should retry later; blocking callers never observe it unless
// the descriptor was opened with [NonBlock].
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

var (
	// ErrInvalid is returned for malformed arguments: a zero or negative
	// queue capacity, an out-of-range deadline nanosecond field, an empty
	// name, a bad permission set, or an invalid signal specification.
	ErrInvalid = errors.New("rtmq: invalid argument")

	// ErrPermission is returned when a descriptor lacks the permission an
	// operation requires, or when a no-sleep task reaches a blocking path.
	ErrPermission = errors.New("rtmq: operation not permitted")

	// ErrMessageTooLarge is returned when a sent payload exceeds the
	// queue's message size, or a receive buffer is smaller than it.
	ErrMessageTooLarge = errors.New("rtmq: message too large")

	// ErrTimeout is returned when an absolute deadline passes before the
	// blocked operation can complete.
	ErrTimeout = errors.New("rtmq: deadline passed")

	// ErrInterrupted is returned when a blocked operation is broken by
	// context cancellation before it can complete.
	ErrInterrupted = errors.New("rtmq: interrupted")

	// ErrBadDescriptor is returned for a closed descriptor, or when the
	// queue is removed while the caller is blocked on it.
	ErrBadDescriptor = errors.New("rtmq: bad descriptor")

	// ErrBusy is returned by Notify when another task already holds the
	// queue's notification registration.
	ErrBusy = errors.New("rtmq: notification already registered")

	// ErrExist is returned by Open with Create|Exclusive when the name is
	// already linked.
	ErrExist = errors.New("rtmq: name already exists")

	// ErrNotFound is returned by Open without Create and by Unlink when
	// the name is not linked.
	ErrNotFound = errors.New("rtmq: name not found")

	// ErrNoMemory is returned by Open when creating the queue's message
	// arena would exceed the namespace memory limit.
	ErrNoMemory = errors.New("rtmq: out of queue memory")
)

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsTransient reports whether err is a transient condition after which
// the queue is still consistent and the call may simply be retried:
// ErrWouldBlock, ErrTimeout or ErrInterrupted.
func IsTransient(err error) bool {
	return iox.IsWouldBlock(err) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrInterrupted)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}
