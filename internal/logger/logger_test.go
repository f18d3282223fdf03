package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogCollapsesRepeats(t *testing.T) {
	Clear()
	Log("swd", "ACK OK")
	Log("swd", "ACK OK")
	Log("swd", "ACK FAULT")

	entries := Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(entries))
	}
	if entries[0].Repeated != 1 {
		t.Fatalf("Repeated = %d, want 1", entries[0].Repeated)
	}
	if got := entries[0].String(); got != "swd: ACK OK (repeat x2)\n" {
		t.Fatalf("String() = %q", got)
	}
}

func TestLogEchoAndTail(t *testing.T) {
	Clear()
	var echo bytes.Buffer
	SetEcho(&echo)
	defer SetEcho(nil)

	Logf("dump", "word %d = 0x%08X", 1, 0xCAFEF00D)
	Log("dump", "done\n")

	if !strings.Contains(echo.String(), "dump: word 1 = 0xCAFEF00D") {
		t.Fatalf("echo output missing entry: %q", echo.String())
	}

	var tail bytes.Buffer
	Tail(&tail, 10)
	if got := tail.String(); got != "dump: word 1 = 0xCAFEF00D\ndump: done\n" {
		t.Fatalf("Tail() = %q", got)
	}
}

func TestLogBounded(t *testing.T) {
	l := newLog(3)
	for _, d := range []string{"a", "b", "c", "d", "e"} {
		l.add("t", d)
	}
	if len(l.entries) != 3 || l.entries[0].Detail != "c" {
		t.Fatalf("entries = %+v, want last three", l.entries)
	}
}
