package scan

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

// DefaultLineWidth is the number of bytes FormatHex puts on a line when the
// caller does not choose one.
const DefaultLineWidth = 16

// Params describes one scan: Dumps repeated reads of BytesPerDump bytes
// starting at Address.
type Params struct {
	Address      uint32
	BytesPerDump int
	Dumps        int
	Width        int // bytes per line in the hex listing
}

// Total is the number of bytes the scan collects.
func (p Params) Total() int {
	return p.BytesPerDump * p.Dumps
}

// Validate checks p against the buffer threshold. A scan whose total reaches
// the threshold is refused with swd.ErrCapacityExceeded.
func (p Params) Validate(threshold int) error {
	if p.Dumps <= 0 {
		return fmt.Errorf("scan: dump count must be positive, got %d", p.Dumps)
	}
	if p.BytesPerDump <= 0 {
		return fmt.Errorf("scan: bytes per dump must be positive, got %d", p.BytesPerDump)
	}
	if p.Width < 0 {
		return fmt.Errorf("scan: line width must not be negative, got %d", p.Width)
	}
	if p.Address&3 != 0 {
		return fmt.Errorf("scan: start address 0x%08X is not word aligned", p.Address)
	}
	if p.Total() >= threshold {
		return fmt.Errorf("%w: %d dumps of %d bytes is %d bytes, maximum is %d",
			swd.ErrCapacityExceeded, p.Dumps, p.BytesPerDump, p.Total(), threshold-1)
	}
	return nil
}
