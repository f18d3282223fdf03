// Package scan runs complete scans: connect, dump memory one or more times
// and optionally classify the dumped bytes.
package scan

import (
	"context"
	"fmt"
	"time"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/anomaly"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

// DefaultInterDumpDelay is the pause between consecutive dumps.
const DefaultInterDumpDelay = time.Second

// Scanner owns the port for the duration of a scan.
type Scanner struct {
	Port *swd.Port

	// Engine classifies dumped bytes when Detect is set. Its population
	// persists across scans until it is reset.
	Engine *anomaly.Engine
	Detect bool

	Threshold      int // buffer ceiling; totals must stay below it
	InterDumpDelay time.Duration
	CSW            uint32 // see swd.Dumper.CSW
	StrictParity   bool
}

// New returns a scanner with the default threshold and inter-dump delay.
func New(port *swd.Port, engine *anomaly.Engine) *Scanner {
	return &Scanner{
		Port:           port,
		Engine:         engine,
		Threshold:      swd.DefaultCapacity,
		InterDumpDelay: DefaultInterDumpDelay,
	}
}

// Scan performs p.Dumps connect-and-dump cycles at p.Address. Every cycle
// starts with a fresh connect, so each dump is an independent snapshot of
// the same range.
//
// If a connect fails the scan stops and the error (swd.ErrNoDevice when
// nothing answered) is returned with the report collected so far.
func (s *Scanner) Scan(ctx context.Context, p Params) (*Report, error) {
	if err := p.Validate(s.Threshold); err != nil {
		return nil, err
	}
	detect := s.Detect && s.Engine != nil

	session := swd.NewSession(s.Port)
	engine := swd.NewEngine(s.Port)
	engine.StrictParity = s.StrictParity
	dumper := swd.NewDumper(engine)
	dumper.CSW = s.CSW

	buf := swd.NewBuffer(s.Threshold)
	report := &Report{Params: p}

	logger.Logf("scan", "%d dumps of %d bytes (%d total) from 0x%08X", p.Dumps, p.BytesPerDump, p.Total(), p.Address)
	for i := 0; i < p.Dumps; i++ {
		if i > 0 {
			s.Port.Sleep(s.InterDumpDelay)
		}
		if err := ctx.Err(); err != nil {
			report.Data = buf.Copy()
			return report, err
		}

		logger.Logf("scan", "dump %d of %d", i+1, p.Dumps)
		id, err := session.Connect(ctx)
		if err != nil {
			report.Data = buf.Copy()
			return report, err
		}
		report.Identity = id

		start := buf.Len()
		if err := dumper.Dump(ctx, p.Address, p.BytesPerDump, buf); err != nil {
			report.Data = buf.Copy()
			return report, fmt.Errorf("scan: dump %d: %w", i+1, err)
		}

		if detect {
			wins, err := s.classify(i, start, buf.Bytes()[start:])
			report.Windows = append(report.Windows, wins...)
			if err != nil {
				report.Data = buf.Copy()
				return report, err
			}
		}
	}

	report.Data = buf.Copy()
	return report, nil
}

// classify splits one dump into engine-width windows. A trailing partial
// window is skipped.
func (s *Scanner) classify(dump, offset int, data []byte) ([]WindowResult, error) {
	width := s.Engine.Config().Width
	var out []WindowResult
	for off := 0; off+width <= len(data); off += width {
		sample := append([]byte(nil), data[off:off+width]...)
		res, err := s.Engine.Classify(sample)
		if err != nil {
			return out, fmt.Errorf("scan: classify dump %d: %w", dump+1, err)
		}
		out = append(out, WindowResult{Dump: dump, Offset: offset + off, Sample: sample, Result: res})
	}
	if rest := len(data) % width; rest != 0 {
		logger.Logf("scan", "dump %d: last %d bytes shorter than the %d byte window, not classified", dump+1, rest, width)
	}
	return out, nil
}
