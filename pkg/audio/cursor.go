// ABOUTME: Read cursor over a preloaded sample buffer
// ABOUTME: Owned by the real-time callback; never allocates while filling
package audio

// Cursor walks a preloaded sample slice block by block.
// It is not safe for concurrent use: exactly one callback context owns it.
type Cursor struct {
	samples []int16
	pos     int
}

// NewCursor creates a cursor positioned at the first sample
func NewCursor(samples []int16) *Cursor {
	return &Cursor{samples: samples}
}

// Fill copies the next len(out) samples into out and advances.
// When fewer samples remain, the remainder is copied, the rest of out is
// zeroed and exhausted is true.
func (c *Cursor) Fill(out []int16) (n int, exhausted bool) {
	n = copy(out, c.samples[c.pos:])
	c.pos += n

	if n < len(out) {
		clear(out[n:])
		return n, true
	}

	return n, false
}

// Remaining returns how many samples have not been consumed yet
func (c *Cursor) Remaining() int {
	return len(c.samples) - c.pos
}

// Position returns the number of samples consumed so far
func (c *Cursor) Position() int {
	return c.pos
}
