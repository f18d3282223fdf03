package swd

import (
	"fmt"
	"math/bits"
)

// Request is a decoded 8-bit SWD request header.
type Request struct {
	AP   bool  // access port (true) or debug port (false)
	Read bool  // RnW
	Addr uint8 // register address, only bits [3:2] are sent
}

// Request bit positions, LSB first on the wire.
const (
	reqStart  = 1 << 0
	reqAPnDP  = 1 << 1
	reqRnW    = 1 << 2
	reqA2     = 1 << 3
	reqA3     = 1 << 4
	reqParity = 1 << 5
	reqStop   = 1 << 6
	reqPark   = 1 << 7
)

// Encode builds the request byte: start, APnDP, RnW, A[2:3], parity over
// those four fields, stop and park.
func (r Request) Encode() byte {
	b := byte(reqStart | reqPark)
	if r.AP {
		b |= reqAPnDP
	}
	if r.Read {
		b |= reqRnW
	}
	if r.Addr&0x4 != 0 {
		b |= reqA2
	}
	if r.Addr&0x8 != 0 {
		b |= reqA3
	}
	if bits.OnesCount8(b&(reqAPnDP|reqRnW|reqA2|reqA3))&1 == 1 {
		b |= reqParity
	}
	return b
}

// DecodeRequest parses a request byte and checks its framing and parity.
func DecodeRequest(b byte) (Request, error) {
	if b&reqStart == 0 || b&reqStop != 0 || b&reqPark == 0 {
		return Request{}, fmt.Errorf("%w: bad framing in 0x%02X", ErrInvalidRequest, b)
	}
	if bits.OnesCount8(b&(reqAPnDP|reqRnW|reqA2|reqA3|reqParity))&1 != 0 {
		return Request{}, fmt.Errorf("%w: bad parity in 0x%02X", ErrInvalidRequest, b)
	}
	r := Request{
		AP:   b&reqAPnDP != 0,
		Read: b&reqRnW != 0,
	}
	if b&reqA2 != 0 {
		r.Addr |= 0x4
	}
	if b&reqA3 != 0 {
		r.Addr |= 0x8
	}
	return r, nil
}

func (r Request) String() string {
	port := "DP"
	if r.AP {
		port = "AP"
	}
	op := "write"
	if r.Read {
		op = "read"
	}
	return fmt.Sprintf("%s %s 0x%X", port, op, r.Addr)
}
