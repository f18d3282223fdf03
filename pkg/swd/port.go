package swd

import (
	"context"
	"time"
)

// Direction is the direction of the shared SWDIO line as seen from the host.
type Direction uint8

const (
	DirOut Direction = iota
	DirIn
)

func (d Direction) String() string {
	if d == DirIn {
		return "in"
	}
	return "out"
}

// Lines is the electrical interface to the target: one clock output and one
// bidirectional data line. Implementations are GPIO backends or simulators.
type Lines interface {
	SetClock(high bool) error
	SetData(high bool) error
	Data() (bool, error)
	SetDirection(dir Direction) error
}

// DelayFunc blocks for the given duration. time.Sleep in production, a no-op
// or recorder in tests.
type DelayFunc func(time.Duration)

// DefaultHalfPeriod is the delay after each clock edge. It is deliberately
// slow so that long wires and weak pull-ups still meet setup and hold times.
const DefaultHalfPeriod = 5 * time.Millisecond

// Port is the bit I/O primitive. The first line error (or context
// cancellation) is sticky: every later operation becomes a no-op and reads
// return zero until Bind is called again. Callers check Err once per
// transfer instead of once per bit.
type Port struct {
	lines      Lines
	halfPeriod time.Duration
	delay      DelayFunc

	ctx    context.Context
	dir    Direction
	err    error
	cycles uint64
}

// NewPort wraps lines. A nil delay uses time.Sleep.
func NewPort(lines Lines, halfPeriod time.Duration, delay DelayFunc) *Port {
	if delay == nil {
		delay = time.Sleep
	}
	return &Port{
		lines:      lines,
		halfPeriod: halfPeriod,
		delay:      delay,
		ctx:        context.Background(),
	}
}

// Bind attaches ctx to the port and clears any sticky error left by a
// previous operation. Every clock pulse checks ctx, so cancelling it stops a
// transfer at the next bit.
func (p *Port) Bind(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	p.ctx = ctx
	p.err = nil
}

// Err returns the first error seen since the last Bind.
func (p *Port) Err() error {
	return p.err
}

// Cycles reports the number of clock pulses issued since the port was
// created.
func (p *Port) Cycles() uint64 {
	return p.cycles
}

// Direction reports the current data line direction.
func (p *Port) Direction() Direction {
	return p.dir
}

// Sleep waits d through the port's delay function.
func (p *Port) Sleep(d time.Duration) {
	if d > 0 {
		p.delay(d)
	}
}

func (p *Port) fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

// PulseClock drives the clock low then high, waiting a half period after
// each edge.
func (p *Port) PulseClock() {
	if p.err != nil {
		return
	}
	if err := p.ctx.Err(); err != nil {
		p.fail(err)
		return
	}
	p.fail(p.lines.SetClock(false))
	p.delay(p.halfPeriod)
	p.fail(p.lines.SetClock(true))
	p.delay(p.halfPeriod)
	if p.err == nil {
		p.cycles++
	}
}

// ReadBit samples the data line and then pulses the clock.
func (p *Port) ReadBit() bool {
	if p.err != nil {
		return false
	}
	v, err := p.lines.Data()
	p.fail(err)
	p.PulseClock()
	return v && p.err == nil
}

// WriteBit drives the data line to v and then pulses the clock.
func (p *Port) WriteBit(v bool) {
	if p.err != nil {
		return
	}
	p.fail(p.lines.SetData(v))
	p.PulseClock()
}

// SetDirection switches the data line direction. It must be called before
// the first read or write in a new direction.
func (p *Port) SetDirection(dir Direction) {
	if p.err != nil {
		return
	}
	p.fail(p.lines.SetDirection(dir))
	p.dir = dir
}

// TurnAround switches direction and spends the one turn-around cycle the
// protocol requires between a write phase and a read phase.
func (p *Port) TurnAround(dir Direction) {
	p.SetDirection(dir)
	p.PulseClock()
}
