package swd

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
)

// Response is the outcome of one register transfer.
type Response struct {
	Command   byte
	Ack       Ack // final acknowledge; differs from the first one after recovery
	Data      uint32
	Parity    uint32
	Recovered bool
}

// Engine performs single register transfers over a Port.
type Engine struct {
	port *Port

	// StrictParity makes reads fail with ErrParity when the received parity
	// bit does not match the data. Off by default: read data is accepted
	// unchecked.
	StrictParity bool
}

// NewEngine returns an engine that talks through port.
func NewEngine(port *Port) *Engine {
	return &Engine{port: port}
}

// Port returns the underlying port.
func (e *Engine) Port() *Port {
	return e.port
}

// Read performs a read transfer and returns the data word.
func (e *Engine) Read(cmd byte) (uint32, error) {
	resp, err := e.Transact(cmd, 0)
	return resp.Data, err
}

// Write performs a write transfer of data.
func (e *Engine) Write(cmd byte, data uint32) error {
	_, err := e.Transact(cmd, data)
	return err
}

// Transact sends cmd and completes the transfer in the direction given by
// its RnW bit. data is ignored for reads.
//
// A refused request gets exactly one recovery attempt: the sticky error
// flags are cleared through ABORT and cmd is reissued once. If either step is
// refused the transfer fails with an *AckError and the line is left in write
// direction, ready for the next request.
func (e *Engine) Transact(cmd byte, data uint32) (Response, error) {
	resp := Response{Command: cmd}
	req, err := DecodeRequest(cmd)
	if err != nil {
		return resp, err
	}

	resp.Ack = e.request(cmd)
	if err := e.port.Err(); err != nil {
		return resp, err
	}
	if !resp.Ack.OK() {
		logger.Logf("swd", "command 0x%02X: ACK %s, clearing error flags and retrying", cmd, resp.Ack)
		ack, err := e.recover(cmd, resp.Ack)
		if err != nil {
			return resp, err
		}
		resp.Ack = ack
		resp.Recovered = true
	}

	if req.Read {
		resp.Data = e.port.ReadBits(32)
		resp.Parity = e.port.ReadBits(1)
		e.port.TurnAround(DirOut)
		e.port.WriteBits(0, IdleBits)
	} else {
		e.port.TurnAround(DirOut)
		e.port.WriteBits(data, 32)
		e.port.WriteBits(Parity(data), 1)
		e.port.WriteBits(0, IdleBits)
	}
	if err := e.port.Err(); err != nil {
		return resp, err
	}

	if req.Read {
		logger.Logf("swd", "command 0x%02X: read 0x%08X", cmd, resp.Data)
		if Parity(resp.Data) != resp.Parity {
			if e.StrictParity {
				return resp, fmt.Errorf("%w: command 0x%02X data 0x%08X parity %d", ErrParity, cmd, resp.Data, resp.Parity)
			}
			logger.Logf("swd", "command 0x%02X: parity mismatch ignored", cmd)
		}
	} else {
		logger.Logf("swd", "command 0x%02X: wrote 0x%08X", cmd, data)
	}
	return resp, nil
}

// request sends the request byte, turns the line around and reads the
// acknowledge. The line is left in read direction.
func (e *Engine) request(cmd byte) Ack {
	e.port.WriteBits(uint32(cmd), 8)
	e.port.TurnAround(DirIn)
	return Ack(e.port.ReadBits(3))
}

// recover runs the single recovery attempt after first was received for cmd.
func (e *Engine) recover(cmd byte, first Ack) (Ack, error) {
	e.port.TurnAround(DirOut)

	abort := e.request(CmdWriteAbort)
	if err := e.port.Err(); err != nil {
		return abort, err
	}
	if !abort.OK() {
		e.port.TurnAround(DirOut)
		return abort, &AckError{Command: cmd, Ack: first, Abort: abort}
	}
	e.port.TurnAround(DirOut)
	e.port.WriteBits(AbortClearAll, 32)
	e.port.WriteBits(Parity(AbortClearAll), 1)
	e.port.WriteBits(0, IdleBits)

	retry := e.request(cmd)
	if err := e.port.Err(); err != nil {
		return retry, err
	}
	if !retry.OK() {
		e.port.TurnAround(DirOut)
		return retry, &AckError{Command: cmd, Ack: first, Abort: abort, Retry: retry, Retried: true}
	}
	logger.Logf("swd", "command 0x%02X: recovered, ACK %s", cmd, retry)
	return retry, nil
}
