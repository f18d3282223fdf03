// Package logger keeps a single, bounded log of tagged entries for the whole
// process. Protocol and detection code log through the package level
// functions; the CLI decides whether entries are echoed as they arrive.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is a single line in the log. Identical consecutive entries are
// collapsed into one entry with a repeat count.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e Entry) String() string {
	var s strings.Builder
	fmt.Fprintf(&s, "%s: %s", e.Tag, e.Detail)
	if e.Repeated > 0 {
		fmt.Fprintf(&s, " (repeat x%d)", e.Repeated+1)
	}
	s.WriteString("\n")
	return s.String()
}

// DefaultMaxEntries bounds the central log.
const DefaultMaxEntries = 512

type log struct {
	mu         sync.Mutex
	maxEntries int
	entries    []Entry
	echo       io.Writer
}

var central = newLog(DefaultMaxEntries)

func newLog(maxEntries int) *log {
	return &log{maxEntries: maxEntries}
}

func (l *log) add(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	now := time.Now()
	if n := len(l.entries); n > 0 && l.entries[n-1].Tag == tag && l.entries[n-1].Detail == detail {
		l.entries[n-1].Repeated++
		l.entries[n-1].Timestamp = now
	} else {
		l.entries = append(l.entries, Entry{Timestamp: now, Tag: tag, Detail: detail})
	}

	if len(l.entries) > l.maxEntries {
		l.entries = append(l.entries[:0], l.entries[len(l.entries)-l.maxEntries:]...)
	}

	if l.echo != nil {
		io.WriteString(l.echo, Entry{Tag: tag, Detail: detail}.String())
	}
}

// Log adds an entry to the central log.
func Log(tag, detail string) {
	central.add(tag, detail)
}

// Logf adds a formatted entry to the central log.
func Logf(tag, format string, args ...interface{}) {
	central.add(tag, fmt.Sprintf(format, args...))
}

// SetEcho writes every new entry to w as it is logged. A nil writer turns
// echoing off.
func SetEcho(w io.Writer) {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.echo = w
}

// Clear removes all entries.
func Clear() {
	central.mu.Lock()
	defer central.mu.Unlock()
	central.entries = central.entries[:0]
}

// Entries returns a copy of the current log.
func Entries() []Entry {
	central.mu.Lock()
	defer central.mu.Unlock()
	return append([]Entry(nil), central.entries...)
}

// Write copies the whole log to w.
func Write(w io.Writer) {
	for _, e := range Entries() {
		io.WriteString(w, e.String())
	}
}

// Tail writes the last n entries to w.
func Tail(w io.Writer, n int) {
	entries := Entries()
	if n > len(entries) {
		n = len(entries)
	}
	for _, e := range entries[len(entries)-n:] {
		io.WriteString(w, e.String())
	}
}
