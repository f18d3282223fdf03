package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags puts every flag back to its default so runs do not leak into
// each other.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	resetFlags(rootCmd)
	cfg = nil
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done
	return buf.String(), err
}

// TestCommandsE2E runs the commands against the simulated target
func TestCommandsE2E(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "idcode",
			args: []string{"idcode", "--backend", "sim"},
			wantContain: []string{
				"[ Device 0 ]",
				"0x0BC12477",
				"SW-DP v2 (MINDP)",
				"RP2040",
			},
		},
		{
			name: "single dump",
			args: []string{"scan", "--backend", "sim", "--address", "20000000", "--bytes", "4"},
			wantContain: []string{
				"Dump count set to: 1",
				"Start address set to: 0x20000000",
				"Now starting dump operation...",
				"==== DUMPED DATA ====",
				"0x53 0x57 0x44 0x21",
			},
		},
		{
			name: "repeated dumps",
			args: []string{"scan", "--backend", "sim", "--bytes", "4", "--dumps", "3", "--width", "4"},
			wantContain: []string{
				"Total number of bytes: 12",
				"0x53 0x57 0x44 0x21 \n0x53 0x57 0x44 0x21 \n0x53 0x57 0x44 0x21",
			},
		},
		{
			name: "vector table",
			args: []string{"scan", "--backend", "sim", "--address", "0x10000100", "--bytes", "8"},
			wantContain: []string{
				"0x20 0x04 0x20 0x00 0x10 0x00 0x01 0xF7",
			},
		},
		{
			name:    "over capacity",
			args:    []string{"scan", "--backend", "sim", "--bytes", "500", "--dumps", "2"},
			wantErr: true,
			wantContain: []string{
				"Total number of bytes: 1000",
				"Operation not permitted. Current maximum number of bytes is 999.",
			},
		},
		{
			name:    "misaligned address",
			args:    []string{"scan", "--backend", "sim", "--address", "0x20000002"},
			wantErr: true,
		},
		{
			name:    "bad address",
			args:    []string{"scan", "--backend", "sim", "--address", "nowhere"},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			args:    []string{"idcode", "--backend", "ftdi"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "--store-path", t.TempDir())
			output, err := execute(t, args...)

			if tt.wantErr && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v\nOutput: %s", err, output)
				return
			}

			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

// TestSaveAndDetectE2E saves a dump to the file store and classifies it
func TestSaveAndDetectE2E(t *testing.T) {
	dir := t.TempDir()

	output, err := execute(t, "scan", "--backend", "sim", "--bytes", "16", "--save", "--store-path", dir)
	if err != nil {
		t.Fatalf("scan: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Saved 16 bytes to the file store.") {
		t.Errorf("Output missing save line\nGot:\n%s", output)
	}
	data, err := os.ReadFile(filepath.Join(dir, "dump"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 16 || string(data[:4]) != "SWD!" {
		t.Errorf("stored dump = % X", data)
	}

	output, err = execute(t, "detect", "--store-path", dir, "--width", "4", "--baselines", "4")
	if err != nil {
		t.Fatalf("detect: %v\n%s", err, output)
	}
	if !strings.Contains(output, "16 bytes, 4 windows of 4 bytes, 4 baselines") {
		t.Errorf("Output missing header\nGot:\n%s", output)
	}
	if strings.Count(output, "stored to baseline slot") != 4 {
		t.Errorf("expected 4 stored windows\nGot:\n%s", output)
	}
}

// TestDetectFileE2E classifies dump files with known content
func TestDetectFileE2E(t *testing.T) {
	dir := t.TempDir()
	normal := bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 6)
	tampered := append(bytes.Repeat([]byte{0x01, 0x02, 0x03, 0x04}, 5), 0x01, 0xFF, 0x03, 0x04, 0xAA, 0xBB)

	normalPath := filepath.Join(dir, "normal.bin")
	tamperedPath := filepath.Join(dir, "tampered.bin")
	if err := os.WriteFile(normalPath, normal, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tamperedPath, tampered, 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := execute(t, "detect", normalPath, "--width", "4", "--baselines", "5")
	if err != nil {
		t.Fatalf("detect normal: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Window 5: no anomaly detected") {
		t.Errorf("Output missing verdict\nGot:\n%s", output)
	}

	output, err = execute(t, "detect", tamperedPath, "--width", "4", "--baselines", "5", "--report")
	if !errors.Is(err, ErrAnomalyFound) {
		t.Fatalf("detect tampered: err = %v, want ErrAnomalyFound\n%s", err, output)
	}
	for _, want := range []string{
		"Ignoring 2 trailing bytes.",
		"Window 5: anomaly detected",
		"static @1: previously static byte 02 has changed to FF",
		"RULE 1: Static bytes",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Output missing %q\nGot:\n%s", want, output)
		}
	}

	if _, err := execute(t, "detect", filepath.Join(dir, "missing.bin")); err == nil {
		t.Error("Expected error for a missing file")
	}
}

// TestHistoryE2E saves two dumps to the sqlite store and lists them
func TestHistoryE2E(t *testing.T) {
	db := filepath.Join(t.TempDir(), "dumps.db")

	for i := 0; i < 2; i++ {
		output, err := execute(t, "scan", "--backend", "sim", "--bytes", "8", "--save", "--store", "sqlite", "--store-path", db)
		if err != nil {
			t.Fatalf("scan: %v\n%s", err, output)
		}
	}

	output, err := execute(t, "history", "--store", "sqlite", "--store-path", db)
	if err != nil {
		t.Fatalf("history: %v\n%s", err, output)
	}
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows\nGot:\n%s", output)
	}
	id := strings.Fields(lines[1])[0]

	output, err = execute(t, "history", "show", id, "--store", "sqlite", "--store-path", db)
	if err != nil {
		t.Fatalf("history show: %v\n%s", err, output)
	}
	if !strings.Contains(output, "(8 bytes)") || !strings.Contains(output, "0x53 0x57 0x44 0x21") {
		t.Errorf("unexpected dump listing\nGot:\n%s", output)
	}

	if _, err := execute(t, "history", "--store-path", t.TempDir()); err == nil {
		t.Error("Expected error for the file store")
	}
}
