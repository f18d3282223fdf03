package scan

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/anomaly"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

type delayRecorder struct {
	waits []time.Duration
}

func (d *delayRecorder) delay(t time.Duration) {
	if t > 0 {
		d.waits = append(d.waits, t)
	}
}

func newScanner(t *testing.T, sim *swd.SimTarget, detect bool) (*Scanner, *delayRecorder) {
	t.Helper()
	rec := &delayRecorder{}
	engine, err := anomaly.New(anomaly.DefaultConfig())
	if err != nil {
		t.Fatalf("anomaly.New returned error: %v", err)
	}
	s := New(swd.NewPort(sim, 0, rec.delay), engine)
	s.Detect = detect
	return s, rec
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		ok   bool
	}{
		{"fits", Params{Address: 0x20000000, BytesPerDump: 100, Dumps: 9}, true},
		{"largest", Params{BytesPerDump: 999, Dumps: 1}, true},
		{"at threshold", Params{BytesPerDump: 100, Dumps: 10}, false},
		{"zero dumps", Params{BytesPerDump: 4}, false},
		{"zero bytes", Params{Dumps: 1}, false},
		{"unaligned", Params{Address: 0x20000002, BytesPerDump: 4, Dumps: 1}, false},
		{"negative width", Params{BytesPerDump: 4, Dumps: 1, Width: -1}, false},
	}
	for _, tt := range tests {
		err := tt.p.Validate(swd.DefaultCapacity)
		if (err == nil) != tt.ok {
			t.Fatalf("%s: Validate error = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}

	err := Params{BytesPerDump: 500, Dumps: 2}.Validate(swd.DefaultCapacity)
	if !errors.Is(err, swd.ErrCapacityExceeded) {
		t.Fatalf("Validate error = %v, want ErrCapacityExceeded", err)
	}
}

func TestScanRefusedBeforeHardware(t *testing.T) {
	sim := swd.NewSimTarget(swd.SimConfig{IDCode: 0x0BB11477})
	s, _ := newScanner(t, sim, false)

	_, err := s.Scan(context.Background(), Params{BytesPerDump: 100, Dumps: 10})
	if !errors.Is(err, swd.ErrCapacityExceeded) {
		t.Fatalf("Scan error = %v, want ErrCapacityExceeded", err)
	}
	if sim.Cycles() != 0 {
		t.Fatalf("target saw %d clock cycles, want 0", sim.Cycles())
	}
}

func TestScanNoDevice(t *testing.T) {
	sim := swd.NewSimTarget(swd.SimConfig{Absent: true})
	s, _ := newScanner(t, sim, true)

	report, err := s.Scan(context.Background(), Params{BytesPerDump: 8, Dumps: 3})
	if !errors.Is(err, swd.ErrNoDevice) {
		t.Fatalf("Scan error = %v, want ErrNoDevice", err)
	}
	if len(report.Data) != 0 || len(report.Windows) != 0 {
		t.Fatalf("report has %d bytes, %d windows, want none", len(report.Data), len(report.Windows))
	}
	if s.Engine.Filled() != 0 {
		t.Fatalf("baseline filled without a dump")
	}
}

func TestScanRepeatsDumps(t *testing.T) {
	sim := swd.NewSimTarget(swd.SimConfig{IDCode: 0x0BC12477, Dormant: true})
	sim.LoadBytes(0x20000000, []byte("SWD!dump"))
	s, rec := newScanner(t, sim, false)

	report, err := s.Scan(context.Background(), Params{Address: 0x20000000, BytesPerDump: 8, Dumps: 3})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if got := string(report.Data); got != "SWD!dumpSWD!dumpSWD!dump" {
		t.Fatalf("data = %q", got)
	}
	if report.Identity.Raw != 0x0BC12477 {
		t.Fatalf("identity = %s", report.Identity)
	}
	if n := sim.Count(swd.CmdReadIDCode); n != 3 {
		t.Fatalf("connects = %d, want 3", n)
	}
	if len(rec.waits) != 2 || rec.waits[0] != DefaultInterDumpDelay {
		t.Fatalf("waits = %v, want two of %v", rec.waits, DefaultInterDumpDelay)
	}
	if len(report.Windows) != 0 {
		t.Fatalf("windows classified with detection off")
	}

	cp := report.Copy()
	cp[0] = 'X'
	if report.Data[0] != 'S' {
		t.Fatalf("Copy aliases report data")
	}
}

func TestScanDetection(t *testing.T) {
	const addr = 0x20000100
	sim := swd.NewSimTarget(swd.SimConfig{IDCode: 0x0BB11477})
	sim.LoadWords(addr, 0x41420010)
	sim.SetStep(addr, 2)
	s, _ := newScanner(t, sim, true)
	s.InterDumpDelay = 0

	report, err := s.Scan(context.Background(), Params{Address: addr, BytesPerDump: 4, Dumps: 7})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(report.Windows) != 7 {
		t.Fatalf("windows = %d, want 7", len(report.Windows))
	}
	for i, w := range report.Windows {
		want := anomaly.Stored
		if i >= 5 {
			want = anomaly.Normal
		}
		if w.Result.Verdict != want {
			t.Fatalf("window %d verdict = %s, want %s", i, w.Result.Verdict, want)
		}
		if w.Offset != i*4 || w.Dump != i {
			t.Fatalf("window %d at dump %d offset %d", i, w.Dump, w.Offset)
		}
	}

	// A static byte changes and the counter jumps off its step.
	sim.LoadWords(addr, 0x41FF0023)
	report, err = s.Scan(context.Background(), Params{Address: addr, BytesPerDump: 4, Dumps: 1})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	anomalies := report.Anomalies()
	if len(anomalies) != 1 {
		t.Fatalf("anomalies = %d, want 1", len(anomalies))
	}
	if n := len(anomalies[0].Result.Findings); n != 2 {
		t.Fatalf("findings = %d, want 2", n)
	}

	var out bytes.Buffer
	if err := report.WriteSummary(&out); err != nil {
		t.Fatalf("WriteSummary returned error: %v", err)
	}
	if !strings.Contains(out.String(), "Anomaly detected in window 1") {
		t.Fatalf("summary = %q", out.String())
	}
}

func TestScanSkipsPartialWindow(t *testing.T) {
	sim := swd.NewSimTarget(swd.SimConfig{IDCode: 0x0BB11477})
	s, _ := newScanner(t, sim, true)
	s.InterDumpDelay = 0

	report, err := s.Scan(context.Background(), Params{BytesPerDump: 6, Dumps: 2})
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	if len(report.Data) != 12 {
		t.Fatalf("data = %d bytes, want 12", len(report.Data))
	}
	if len(report.Windows) != 2 {
		t.Fatalf("windows = %d, want 2", len(report.Windows))
	}
	if report.Windows[1].Offset != 6 {
		t.Fatalf("second window offset = %d, want 6", report.Windows[1].Offset)
	}
}

func TestScanCancelled(t *testing.T) {
	sim := swd.NewSimTarget(swd.SimConfig{IDCode: 0x0BB11477})
	s, _ := newScanner(t, sim, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Scan(ctx, Params{BytesPerDump: 4, Dumps: 2}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Scan error = %v, want context.Canceled", err)
	}
}

func TestFormatHex(t *testing.T) {
	var out bytes.Buffer
	if err := FormatHex(&out, []byte{0x01, 0xAB, 0x00, 0x10, 0xFF}, 2); err != nil {
		t.Fatalf("FormatHex returned error: %v", err)
	}
	want := "0x01 0xAB \n0x00 0x10 \n0xFF \n"
	if out.String() != want {
		t.Fatalf("FormatHex = %q, want %q", out.String(), want)
	}

	out.Reset()
	_ = FormatHex(&out, make([]byte, 20), 0)
	if lines := strings.Count(out.String(), "\n"); lines != 2 {
		t.Fatalf("default width gave %d lines, want 2", lines)
	}
}
