package swd

import (
	"context"
	"testing"
	"time"
)

func noDelay(time.Duration) {}

// wireRecorder records every bit the host clocks out and replays queued bits
// when the host reads.
type wireRecorder struct {
	clk     bool
	data    bool
	dir     Direction
	written []bool
	input   []bool
}

func (w *wireRecorder) SetClock(high bool) error {
	if high && !w.clk {
		if w.dir == DirOut {
			w.written = append(w.written, w.data)
		} else if len(w.input) > 0 {
			w.input = w.input[1:]
		}
	}
	w.clk = high
	return nil
}

func (w *wireRecorder) SetData(high bool) error {
	w.data = high
	return nil
}

func (w *wireRecorder) Data() (bool, error) {
	if w.dir == DirIn && len(w.input) > 0 {
		return w.input[0], nil
	}
	return false, nil
}

func (w *wireRecorder) SetDirection(dir Direction) error {
	w.dir = dir
	return nil
}

func connectSim(t *testing.T, cfg SimConfig) (*SimTarget, *Engine) {
	t.Helper()
	sim := NewSimTarget(cfg)
	port := NewPort(sim, 0, noDelay)
	if _, err := NewSession(port).Connect(context.Background()); err != nil {
		t.Fatalf("Connect returned error: %v", err)
	}
	return sim, NewEngine(port)
}
