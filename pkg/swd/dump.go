package swd

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
)

// Dumper reads target memory through the first MEM-AP.
type Dumper struct {
	engine *Engine

	// CSW, when non-zero, is written to the AP control register before the
	// address is programmed. CSWAutoIncrement32 makes every DRW read advance
	// TAR by one word.
	CSW uint32
}

// NewDumper returns a dumper that issues its transfers through engine.
func NewDumper(engine *Engine) *Dumper {
	return &Dumper{engine: engine}
}

// Dump reads total bytes starting at addr and appends them to buf. The
// request is refused with ErrCapacityExceeded, before anything is sent, when
// it would not leave the buffer strictly below its capacity.
//
// Words are stored most significant byte first. AP reads are posted, so the
// first DRW read only returns stale data and is discarded: ceil(total/4)+1
// reads are issued in all.
func (d *Dumper) Dump(ctx context.Context, addr uint32, total int, buf *Buffer) error {
	if total <= 0 {
		return fmt.Errorf("swd: dump size must be positive, got %d", total)
	}
	if buf.Len()+total >= buf.Cap() {
		return fmt.Errorf("%w: %d bytes requested, ceiling is %d (%d used)",
			ErrCapacityExceeded, total, buf.Cap(), buf.Len())
	}

	d.engine.Port().Bind(ctx)

	logger.Log("dump", "clear error flags")
	if err := d.engine.Write(CmdWriteAbort, AbortClearAll); err != nil {
		return fmt.Errorf("swd: dump: clear errors: %w", err)
	}
	logger.Log("dump", "select AP 0, bank 0")
	if err := d.engine.Write(CmdWriteSelect, 0); err != nil {
		return fmt.Errorf("swd: dump: select: %w", err)
	}
	if d.CSW != 0 {
		logger.Logf("dump", "CSW = 0x%08X", d.CSW)
		if err := d.engine.Write(CmdWriteCSW, d.CSW); err != nil {
			return fmt.Errorf("swd: dump: csw: %w", err)
		}
	}
	logger.Logf("dump", "start address 0x%08X", addr)
	if err := d.engine.Write(CmdWriteTAR, addr); err != nil {
		return fmt.Errorf("swd: dump: tar: %w", err)
	}

	words := (total + 3) / 4
	remaining := total
	var word [4]byte
	for i := 0; i <= words; i++ {
		v, err := d.engine.Read(CmdReadDRW)
		if err != nil {
			return fmt.Errorf("swd: dump: read %d of %d: %w", i, words+1, err)
		}
		if i == 0 {
			continue
		}
		binary.BigEndian.PutUint32(word[:], v)
		n := 4
		if remaining < n {
			n = remaining
		}
		if err := buf.Append(word[:n]); err != nil {
			return err
		}
		remaining -= n
	}
	logger.Logf("dump", "dumped %d bytes from 0x%08X", total, addr)
	return nil
}
