package frame

import "sync/atomic"

// SeqCounter hands out header sequence numbers. One counter is shared by every
// sender on a transport so the link never sees duplicates; it wraps at 2^16.
type SeqCounter struct {
	next atomic.Uint32
}

func NewSeqCounter(start uint16) *SeqCounter {
	c := &SeqCounter{}
	c.next.Store(uint32(start))
	return c
}

// Next returns the current value and advances the counter.
func (c *SeqCounter) Next() uint16 {
	return uint16(c.next.Add(1) - 1)
}

// Peek returns the value the next call to Next will return.
func (c *SeqCounter) Peek() uint16 {
	return uint16(c.next.Load())
}
