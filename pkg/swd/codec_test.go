package swd

import (
	"context"
	"errors"
	"math/bits"
	"testing"
)

func TestParity(t *testing.T) {
	tests := []struct {
		value uint32
		want  uint32
	}{
		{0x00000000, 0},
		{0x00000001, 1},
		{0x00000003, 0},
		{0x0000001E, 0},
		{0x80000000, 1},
		{0xFFFFFFFF, 0},
		{0x0BC12477, 0},
	}
	for _, tt := range tests {
		if got := Parity(tt.value); got != tt.want {
			t.Fatalf("Parity(0x%08X) = %d, want %d", tt.value, got, tt.want)
		}
	}

	for v := uint32(1); v < 1<<20; v = v*3 + 7 {
		if got, want := Parity(v), uint32(bits.OnesCount32(v)%2); got != want {
			t.Fatalf("Parity(0x%08X) = %d, want %d", v, got, want)
		}
	}
}

func TestWriteBitsLSBFirst(t *testing.T) {
	w := &wireRecorder{}
	port := NewPort(w, 0, noDelay)
	port.WriteBits(0xA5, 8)

	want := []bool{true, false, true, false, false, true, false, true}
	if len(w.written) != len(want) {
		t.Fatalf("wrote %d bits, want %d", len(w.written), len(want))
	}
	for i := range want {
		if w.written[i] != want[i] {
			t.Fatalf("bit %d = %v, want %v", i, w.written[i], want[i])
		}
	}
	if port.Cycles() != 8 {
		t.Fatalf("Cycles = %d, want 8", port.Cycles())
	}
}

func TestReadBitsAssemblesLSBFirst(t *testing.T) {
	for _, value := range []uint32{0, 1, 0x1E, 0xE79E, 0x0BC12477, 0xFFFFFFFF} {
		w := &wireRecorder{dir: DirIn, input: wireBits(value, 32)}
		port := NewPort(w, 0, noDelay)
		port.SetDirection(DirIn)
		if got := port.ReadBits(32); got != value {
			t.Fatalf("ReadBits = 0x%08X, want 0x%08X", got, value)
		}
	}
}

func TestBitsRoundTrip(t *testing.T) {
	for n := 1; n <= 32; n++ {
		mask := uint32(uint64(1)<<uint(n) - 1)
		for _, value := range []uint32{0, 1, 0xA5A5A5A5, 0x0BC12477, 0xFFFFFFFF} {
			w := &wireRecorder{}
			port := NewPort(w, 0, noDelay)
			port.WriteBits(value, n)
			if len(w.written) != n {
				t.Fatalf("WriteBits(0x%08X, %d) clocked %d bits", value, n, len(w.written))
			}

			w.input, w.written = w.written, nil
			port.SetDirection(DirIn)
			if got, want := port.ReadBits(n), value&mask; got != want {
				t.Fatalf("n=%d: read back 0x%08X, want 0x%08X", n, got, want)
			}
			if err := port.Err(); err != nil {
				t.Fatalf("n=%d: port error %v", n, err)
			}
		}
	}
}

func TestWriteSequence(t *testing.T) {
	w := &wireRecorder{}
	port := NewPort(w, 0, noDelay)
	port.WriteSequence(selectionAlert[:])
	if len(w.written) != 128 {
		t.Fatalf("wrote %d bits, want 128", len(w.written))
	}
	if !equalBits(w.written, wakeSequence[:128]) {
		t.Fatalf("selection alert bits differ from the wire order")
	}
}

type failingLines struct {
	wireRecorder
	after int
	calls int
}

var errLine = errors.New("line stuck")

func (f *failingLines) SetClock(high bool) error {
	f.calls++
	if f.calls > f.after {
		return errLine
	}
	return f.wireRecorder.SetClock(high)
}

func TestPortErrorIsSticky(t *testing.T) {
	lines := &failingLines{after: 4}
	port := NewPort(lines, 0, noDelay)
	port.WriteBits(0xFF, 8)

	if !errors.Is(port.Err(), errLine) {
		t.Fatalf("Err = %v, want %v", port.Err(), errLine)
	}
	if port.Cycles() != 2 {
		t.Fatalf("Cycles = %d, want 2", port.Cycles())
	}
	if got := port.ReadBits(8); got != 0 {
		t.Fatalf("ReadBits after error = 0x%X, want 0", got)
	}

	port.Bind(context.Background())
	if port.Err() != nil {
		t.Fatalf("Err after Bind = %v, want nil", port.Err())
	}
}
