package swd

import (
	"context"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/idcode"
)

// State is a step of the connect handshake.
type State uint8

const (
	StateReset State = iota
	StateWake
	StateLineReset
	StateModeSwitch
	StateLineReset2
	StateIDRequest
	StateFound
	StateNotFound
)

var stateNames = map[State]string{
	StateReset:      "Reset",
	StateWake:       "Wake",
	StateLineReset:  "LineReset",
	StateModeSwitch: "ModeSwitch",
	StateLineReset2: "LineReset2",
	StateIDRequest:  "IDRequest",
	StateFound:      "Found",
	StateNotFound:   "NotFound",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", s)
}

// Session runs the connect handshake on a port. A session does not retry:
// a target that does not answer leaves it in StateNotFound and the caller
// decides whether to connect again.
type Session struct {
	port  *Port
	state State
	trace []State
}

// NewSession returns a session in StateReset.
func NewSession(port *Port) *Session {
	return &Session{port: port}
}

// State returns the state reached by the last Connect.
func (s *Session) State() State {
	return s.state
}

// Trace returns the states visited by the last Connect, in order.
func (s *Session) Trace() []State {
	return append([]State(nil), s.trace...)
}

func (s *Session) enter(st State) {
	s.state = st
	s.trace = append(s.trace, st)
}

// Connect wakes the target, switches it to SWD and reads its identification
// word. ErrNoDevice is returned when the IDCODE request is not acknowledged.
func (s *Session) Connect(ctx context.Context) (idcode.IDCode, error) {
	s.port.Bind(ctx)
	s.trace = s.trace[:0]

	s.enter(StateReset)
	s.port.TurnAround(DirOut)

	s.enter(StateWake)
	s.wake()

	s.enter(StateLineReset)
	s.lineReset()

	s.enter(StateModeSwitch)
	s.port.WriteBits(uint32(JTAGToSWD), 16)

	s.enter(StateLineReset2)
	s.lineReset()
	s.port.WriteBits(0, IdleBits)

	s.enter(StateIDRequest)
	s.port.WriteBits(uint32(CmdReadIDCode), 8)
	s.port.TurnAround(DirIn)
	ack := Ack(s.port.ReadBits(3))
	var raw uint32
	if ack.OK() {
		raw = s.port.ReadBits(32)
	}
	s.port.TurnAround(DirOut)
	s.port.WriteBits(0, IdleBits)

	if err := s.port.Err(); err != nil {
		s.enter(StateNotFound)
		return idcode.IDCode{}, fmt.Errorf("swd: connect: %w", err)
	}
	if !ack.OK() {
		s.enter(StateNotFound)
		logger.Logf("swd", "IDCODE request: ACK %s, no device", ack)
		return idcode.IDCode{}, fmt.Errorf("%w (IDCODE ACK %s)", ErrNoDevice, ack)
	}

	s.enter(StateFound)
	id := idcode.Parse(raw)
	logger.Logf("swd", "found device, IDCODE %s", id)
	return id, nil
}

// wake leaves the dormant state: at least eight high cycles, the selection
// alert, four idle cycles and the SWD activation code.
func (s *Session) wake() {
	s.port.WriteBits(0xFF, 8)
	s.port.WriteSequence(selectionAlert[:])
	s.port.WriteBits(0, IdleBits)
	s.port.WriteBits(ActivationCode, 8)
}

func (s *Session) lineReset() {
	for i := 0; i < LineResetCycles+LineResetMargin; i++ {
		s.port.WriteBit(true)
	}
}
