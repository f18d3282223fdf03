package swd

import "encoding/binary"

// simPhase is the simulated target's position in the protocol.
type simPhase uint8

const (
	phaseJTAG         simPhase = iota // SWJ-DP powered up in JTAG
	phaseDormant                      // waiting for the selection alert
	phaseLockout                      // SWD selected, waiting for a line reset
	phaseLineReset                    // line held high long enough
	phaseIdle                         // waiting for a start bit
	phaseRequest                      // collecting the 8 request bits
	phaseTurnToTarget                 // turn-around before the ACK
	phaseAck                          // target drives 3 ACK bits
	phaseReadData                     // target drives 32 data bits + parity
	phaseTurnToHost                   // turn-around back to the host
	phaseWriteData                    // host drives 32 data bits + parity
)

// minLineReset is the number of consecutive high cycles that resets the
// target's protocol state.
const minLineReset = 50

// SimCSWReset is the simulated CSW value after reset: 32-bit accesses with
// single auto-increment.
const SimCSWReset uint32 = 0x23000052

// SimConfig configures a SimTarget.
type SimConfig struct {
	IDCode  uint32
	Dormant bool // start in the dormant state (RP2040-style) instead of JTAG
	Absent  bool // nothing on the wire: every read sees the pull-up
}

// SimTarget implements Lines with a cycle-level model of a SW-DP and one
// MEM-AP. The target samples the host's data on each rising clock edge and
// presents its own bit before the next one, which matches how Port samples
// (read, then pulse).
//
// Faults behave like real hardware: a FAULT response sets a sticky error and
// every later access except IDCODE, CTRL/STAT reads and ABORT writes is
// answered with FAULT until ABORT clears it.
type SimTarget struct {
	cfg SimConfig

	// host side of the wire
	clk      bool
	hostData bool
	hostDir  Direction

	phase     simPhase
	next      simPhase
	onesRun   int
	history   []bool
	switchSR  uint32
	switchN   int
	switching bool

	req     byte
	reqBits int
	pending Request
	ack     Ack
	out     []bool
	wdata   uint64
	wbits   int

	sticky   bool
	wdataErr bool
	ctrlStat uint32
	sel      uint32
	csw      uint32
	tar      uint32
	rdbuff   uint32

	mem      map[uint32]uint32
	step     map[uint32]uint32
	injected map[byte][]Ack

	corruptParity bool
	cycles        uint64
	requests      []byte
}

// NewSimTarget returns a target in its power-on state.
func NewSimTarget(cfg SimConfig) *SimTarget {
	t := &SimTarget{
		cfg:      cfg,
		csw:      SimCSWReset,
		mem:      make(map[uint32]uint32),
		step:     make(map[uint32]uint32),
		injected: make(map[byte][]Ack),
	}
	if cfg.Dormant {
		t.phase = phaseDormant
	}
	return t
}

// LoadWords stores consecutive words starting at addr.
func (t *SimTarget) LoadWords(addr uint32, words ...uint32) {
	for i, w := range words {
		t.mem[addr+uint32(i)*4] = w
	}
}

// LoadBytes stores data starting at addr so that a dump of the same range
// returns the same bytes. A trailing partial word is zero padded.
func (t *SimTarget) LoadBytes(addr uint32, data []byte) {
	for i := 0; i < len(data); i += 4 {
		var w [4]byte
		copy(w[:], data[i:])
		t.mem[addr+uint32(i)] = binary.BigEndian.Uint32(w[:])
	}
}

// Word returns the memory word at addr.
func (t *SimTarget) Word(addr uint32) uint32 {
	return t.mem[addr&^3]
}

// SetStep makes the word at addr grow by delta after every read, like a
// free-running counter.
func (t *SimTarget) SetStep(addr, delta uint32) {
	t.step[addr&^3] = delta
}

// InjectAck queues acknowledges to answer the next requests equal to cmd.
func (t *SimTarget) InjectAck(cmd byte, acks ...Ack) {
	t.injected[cmd] = append(t.injected[cmd], acks...)
}

// CorruptParity flips the parity bit of every read response.
func (t *SimTarget) CorruptParity(on bool) {
	t.corruptParity = on
}

// Requests returns every well-formed request byte received, in order.
func (t *SimTarget) Requests() []byte {
	return append([]byte(nil), t.requests...)
}

// Count returns how many times cmd was received.
func (t *SimTarget) Count(cmd byte) int {
	n := 0
	for _, r := range t.requests {
		if r == cmd {
			n++
		}
	}
	return n
}

// Cycles returns the number of rising clock edges seen.
func (t *SimTarget) Cycles() uint64 {
	return t.cycles
}

// Sticky reports whether the sticky error flag is set.
func (t *SimTarget) Sticky() bool {
	return t.sticky
}

// TAR returns the transfer address register.
func (t *SimTarget) TAR() uint32 {
	return t.tar
}

func (t *SimTarget) SetClock(high bool) error {
	if high && !t.clk {
		t.cycle()
	}
	t.clk = high
	return nil
}

func (t *SimTarget) SetData(high bool) error {
	t.hostData = high
	return nil
}

func (t *SimTarget) SetDirection(dir Direction) error {
	t.hostDir = dir
	return nil
}

func (t *SimTarget) Data() (bool, error) {
	if t.hostDir == DirOut {
		return t.hostData, nil
	}
	if !t.cfg.Absent && len(t.out) > 0 {
		return t.out[0], nil
	}
	return true, nil
}

func (t *SimTarget) cycle() {
	t.cycles++
	if t.cfg.Absent {
		return
	}

	switch t.phase {
	case phaseTurnToTarget:
		t.phase = phaseAck
		t.out = wireBits(uint32(t.ack), 3)
		return
	case phaseAck:
		t.out = t.out[1:]
		if len(t.out) == 0 {
			t.afterAck()
		}
		return
	case phaseReadData:
		t.out = t.out[1:]
		if len(t.out) == 0 {
			t.phase = phaseTurnToHost
			t.next = phaseIdle
		}
		return
	case phaseTurnToHost:
		t.phase = t.next
		t.wdata, t.wbits = 0, 0
		return
	case phaseWriteData:
		if t.hostData {
			t.wdata |= 1 << uint(t.wbits)
		}
		t.wbits++
		if t.wbits == 33 {
			t.completeWrite()
			t.phase = phaseIdle
		}
		return
	}

	if t.hostDir != DirOut {
		t.onesRun = 0
		return
	}
	t.hostBit(t.hostData)
}

// hostBit handles a host-driven bit outside of a transfer.
func (t *SimTarget) hostBit(bit bool) {
	if t.phase == phaseDormant {
		t.history = append(t.history, bit)
		if len(t.history) > len(wakeSequence) {
			t.history = t.history[1:]
		}
		if equalBits(t.history, wakeSequence) {
			t.history = nil
			t.phase = phaseLockout
		}
		return
	}

	prevRun := t.onesRun
	if bit {
		t.onesRun++
	} else {
		t.onesRun = 0
	}

	if t.phase == phaseJTAG {
		t.jtagBit(bit, prevRun)
		return
	}
	if t.onesRun >= minLineReset {
		t.phase = phaseLineReset
		return
	}

	switch t.phase {
	case phaseLineReset:
		if !bit {
			t.phase = phaseIdle
		}
	case phaseIdle:
		if bit {
			t.phase = phaseRequest
			t.req = 1
			t.reqBits = 1
		}
	case phaseRequest:
		if bit {
			t.req |= 1 << uint(t.reqBits)
		}
		t.reqBits++
		if t.reqBits == 8 {
			t.decode()
		}
	}
}

// jtagBit watches for a line reset followed by the JTAG-to-SWD sequence.
func (t *SimTarget) jtagBit(bit bool, prevRun int) {
	if !t.switching {
		if !bit && prevRun >= minLineReset {
			t.switching = true
			t.switchSR, t.switchN = 0, 1
		}
		return
	}
	if bit {
		t.switchSR |= 1 << uint(t.switchN)
	}
	t.switchN++
	if t.switchN == 16 {
		t.switching = false
		if uint16(t.switchSR) == JTAGToSWD {
			t.phase = phaseLockout
		}
	}
}

func (t *SimTarget) decode() {
	req, err := DecodeRequest(t.req)
	if err != nil {
		t.phase = phaseLockout
		return
	}
	t.requests = append(t.requests, t.req)
	t.pending = req
	t.ack = t.respond(t.req, req)
	t.phase = phaseTurnToTarget
}

func (t *SimTarget) respond(cmd byte, req Request) Ack {
	if q := t.injected[cmd]; len(q) > 0 {
		t.injected[cmd] = q[1:]
		if q[0] == AckFault {
			t.sticky = true
		}
		return q[0]
	}
	if t.sticky && !stickyExempt(req) {
		return AckFault
	}
	return AckOK
}

func stickyExempt(req Request) bool {
	if req.AP {
		return false
	}
	return (req.Read && (req.Addr == RegIDCode || req.Addr == RegCtrlStat)) ||
		(!req.Read && req.Addr == RegAbort)
}

func (t *SimTarget) afterAck() {
	if !t.ack.OK() {
		t.phase = phaseTurnToHost
		t.next = phaseIdle
		return
	}
	if t.pending.Read {
		v := t.read(t.pending)
		p := Parity(v)
		if t.corruptParity {
			p ^= 1
		}
		t.out = append(wireBits(v, 32), p == 1)
		t.phase = phaseReadData
		return
	}
	t.phase = phaseTurnToHost
	t.next = phaseWriteData
}

func (t *SimTarget) completeWrite() {
	data := uint32(t.wdata)
	if uint32(t.wdata>>32)&1 != Parity(data) {
		t.sticky = true
		t.wdataErr = true
		return
	}
	t.write(t.pending, data)
}

func (t *SimTarget) apSelected() bool {
	return t.sel>>24 == 0 && (t.sel>>4)&0xF == 0
}

func (t *SimTarget) read(req Request) uint32 {
	if !req.AP {
		switch req.Addr {
		case RegIDCode:
			return t.cfg.IDCode
		case RegCtrlStat:
			v := t.ctrlStat
			if t.sticky {
				v |= 1 << 5
			}
			if t.wdataErr {
				v |= 1 << 7
			}
			return v
		case RegRDBuff:
			return t.rdbuff
		}
		return 0
	}

	// AP reads are posted: return the previous result and start this one.
	prev := t.rdbuff
	var v uint32
	if t.apSelected() {
		switch req.Addr {
		case RegCSW:
			v = t.csw
		case RegTAR:
			v = t.tar
		case RegDRW:
			addr := t.tar &^ 3
			v = t.mem[addr]
			if d, ok := t.step[addr]; ok {
				t.mem[addr] += d
			}
			t.advance()
		}
	}
	t.rdbuff = v
	return prev
}

func (t *SimTarget) write(req Request, data uint32) {
	if !req.AP {
		switch req.Addr {
		case RegAbort:
			if data&(1<<2) != 0 {
				t.sticky = false
			}
			if data&(1<<3) != 0 {
				t.wdataErr = false
			}
		case RegCtrlStat:
			t.ctrlStat = data
		case RegSelect:
			t.sel = data
		}
		return
	}
	if !t.apSelected() {
		return
	}
	switch req.Addr {
	case RegCSW:
		t.csw = data
	case RegTAR:
		t.tar = data
	case RegDRW:
		t.mem[t.tar&^3] = data
		t.advance()
	}
}

func (t *SimTarget) advance() {
	if (t.csw>>4)&0x3 != 0 {
		t.tar += 4
	}
}

// wakeSequence is the selection alert, four idle cycles and the activation
// code, as they appear on the wire.
var wakeSequence = func() []bool {
	var seq []bool
	for _, b := range selectionAlert {
		seq = append(seq, wireBits(uint32(b), 8)...)
	}
	seq = append(seq, wireBits(0, IdleBits)...)
	return append(seq, wireBits(ActivationCode, 8)...)
}()

func wireBits(v uint32, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = (v>>uint(i))&1 == 1
	}
	return out
}

func equalBits(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
