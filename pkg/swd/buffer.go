package swd

import "fmt"

// DefaultCapacity is the largest number of bytes held from a scan. Requests
// must stay strictly below it.
const DefaultCapacity = 1000

// Buffer is a fixed-capacity byte arena filled strictly in order.
type Buffer struct {
	data []byte
	n    int
}

// NewBuffer allocates a buffer that can hold capacity bytes.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{data: make([]byte, capacity)}
}

// Append copies p to the end of the buffer. Nothing is written when p does
// not fit.
func (b *Buffer) Append(p []byte) error {
	if len(p) > b.Free() {
		return fmt.Errorf("%w: append %d bytes, %d free", ErrCapacityExceeded, len(p), b.Free())
	}
	b.n += copy(b.data[b.n:], p)
	return nil
}

// Bytes returns the filled part of the buffer. The slice aliases the buffer
// and must not be modified; use Copy to hand data to other owners.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n]
}

// Copy returns a copy of the filled part of the buffer.
func (b *Buffer) Copy() []byte {
	return append([]byte(nil), b.data[:b.n]...)
}

func (b *Buffer) Len() int  { return b.n }
func (b *Buffer) Cap() int  { return len(b.data) }
func (b *Buffer) Free() int { return len(b.data) - b.n }

// Reset empties the buffer without releasing its storage.
func (b *Buffer) Reset() {
	b.n = 0
}
