package swd

import "fmt"

// Ack is the 3-bit acknowledge returned after a request, assembled LSB
// first.
type Ack uint8

const (
	AckOK    Ack = 0b001
	AckWait  Ack = 0b010
	AckFault Ack = 0b100
)

// OK reports whether the target accepted the request.
func (a Ack) OK() bool {
	return a == AckOK
}

func (a Ack) String() string {
	switch a {
	case AckOK:
		return "OK"
	case AckWait:
		return "WAIT"
	case AckFault:
		return "FAULT"
	}
	return fmt.Sprintf("INVALID(0b%03b)", uint8(a)&0x7)
}
