package swd

import "math/bits"

// WriteBits emits the low n bits of value, least significant bit first.
// n must not exceed 32.
func (p *Port) WriteBits(value uint32, n int) {
	for i := 0; i < n; i++ {
		p.WriteBit((value>>uint(i))&1 == 1)
	}
}

// ReadBits reads n bits, least significant bit first, and assembles them
// into an integer. n must not exceed 32.
func (p *Port) ReadBits(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		if p.ReadBit() {
			v |= 1 << uint(i)
		}
	}
	return v
}

// WriteSequence emits each byte in order, each one LSB first.
func (p *Port) WriteSequence(seq []byte) {
	for _, b := range seq {
		p.WriteBits(uint32(b), 8)
	}
}

// Parity returns the even-parity bit for v: 1 when v has an odd number of
// set bits.
func Parity(v uint32) uint32 {
	return uint32(bits.OnesCount32(v) & 1)
}
