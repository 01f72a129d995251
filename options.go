// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import "time"

// Options configures a [Namespace].
type Options struct {
	clock    func() time.Time
	memLimit int
}

// Option mutates namespace options.
type Option func(*Options)

// WithClock replaces the real-time clock deadlines are measured against.
// Intended for tests; the default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.clock = now
	}
}

// WithMemoryLimit caps the total bytes of message arena the namespace
// may hold across all live queues. Open fails with ErrNoMemory when
// creating a queue would exceed the limit. Zero (the default) means
// unlimited.
func WithMemoryLimit(bytes int) Option {
	return func(o *Options) {
		o.memLimit = bytes
	}
}

// wordSize aligns each message slot so payloads start on a natural
// boundary.
const wordSize = 8

// pageSize is the arena allocation granularity.
const pageSize = 4096

// align8 rounds n up to the next multiple of the word size.
func align8(n int) int {
	return (n + wordSize - 1) &^ (wordSize - 1)
}

// pageAlign rounds n up to the next multiple of the page size.
func pageAlign(n int) int {
	return (n + pageSize - 1) &^ (pageSize - 1)
}

// pad is cache line padding to prevent false sharing between the
// lock-free stat counters and lock-guarded queue state.
type pad [64]byte
