// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

// msgSlot is one fixed-size message cell. A slot is either linked on the
// pool's free list or enqueued on the priority list, never both.
type msgSlot struct {
	next *msgSlot
	prev *msgSlot
	prio uint
	n    int    // payload length
	data []byte // payload storage, len == message size, tiled from the arena
}

// msgPool is the fixed-count slot pool backing one queue. All slots are
// tiled over a single contiguous arena sized at creation; exhaustion is
// the sole source of "would block" on the send path.
type msgPool struct {
	free  *msgSlot // LIFO free list
	avail int
	arena []byte
}

// init tiles maxMessages slots of msgSize payload bytes over one
// arena and links them all free. Returns the page-aligned arena size.
func (p *msgPool) init(maxMessages, msgSize int) int {
	slotSize := align8(msgSize)
	memSize := pageAlign(slotSize * maxMessages)
	p.arena = make([]byte, memSize)
	for i := 0; i < maxMessages; i++ {
		s := &msgSlot{data: p.arena[i*slotSize : i*slotSize+msgSize : i*slotSize+slotSize]}
		p.put(s)
	}
	return memSize
}

// get pops the most-recently-freed slot, or nil when the pool is empty.
func (p *msgPool) get() *msgSlot {
	s := p.free
	if s == nil {
		return nil
	}
	p.free = s.next
	s.next = nil
	p.avail--
	return s
}

// put pushes a slot back on the free list head, for earliest re-use of
// the block.
func (p *msgPool) put(s *msgSlot) {
	s.prev = nil
	s.next = p.free
	p.free = s
	p.avail++
}

// release drops the arena so teardown returns the memory accounting.
func (p *msgPool) release() {
	p.free = nil
	p.avail = 0
	p.arena = nil
}
