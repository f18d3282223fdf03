package swd

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDevice means nothing acknowledged the IDCODE request.
	ErrNoDevice = errors.New("swd: no device found")

	// ErrTransferFailed means a transfer was refused and the single
	// recovery attempt did not help.
	ErrTransferFailed = errors.New("swd: transfer failed")

	// ErrCapacityExceeded means a dump would not fit below the buffer
	// ceiling. Nothing is sent to the target when it is returned.
	ErrCapacityExceeded = errors.New("swd: capacity exceeded")

	// ErrParity is only returned when strict parity checking is enabled.
	ErrParity = errors.New("swd: read parity mismatch")

	// ErrInvalidRequest means a request byte is malformed.
	ErrInvalidRequest = errors.New("swd: invalid request")
)

// AckError describes a failed transfer: the acknowledge to the original
// request and how far recovery got.
type AckError struct {
	Command byte
	Ack     Ack // acknowledge to the first attempt
	Abort   Ack // acknowledge to the ABORT write
	Retry   Ack // acknowledge to the reissued request
	Retried bool
}

func (e *AckError) Error() string {
	if !e.Retried {
		return fmt.Sprintf("swd: command 0x%02X: ACK %s, abort ACK %s", e.Command, e.Ack, e.Abort)
	}
	return fmt.Sprintf("swd: command 0x%02X: ACK %s, retry ACK %s", e.Command, e.Ack, e.Retry)
}

func (e *AckError) Unwrap() error {
	return ErrTransferFailed
}
