package scan

import (
	"bufio"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/anomaly"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/idcode"
)

// WindowResult is the classification of one engine-width slice of a dump.
type WindowResult struct {
	Dump   int // zero-based dump index
	Offset int // offset of the window in Report.Data
	Sample []byte
	Result anomaly.Result
}

// Report is the outcome of a scan.
type Report struct {
	Identity idcode.IDCode
	Params   Params
	Data     []byte
	Windows  []WindowResult
}

// Copy returns a copy of the dumped bytes for hand-off to other owners.
func (r *Report) Copy() []byte {
	return append([]byte(nil), r.Data...)
}

// Anomalies returns the windows classified as anomalous.
func (r *Report) Anomalies() []WindowResult {
	var out []WindowResult
	for _, w := range r.Windows {
		if w.Result.Anomalous() {
			out = append(out, w)
		}
	}
	return out
}

// FormatHex writes data as 0xNN values, width to a line.
func FormatHex(w io.Writer, data []byte, width int) error {
	if width <= 0 {
		width = DefaultLineWidth
	}
	bw := bufio.NewWriter(w)
	for i, b := range data {
		if i != 0 && i%width == 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "0x%02X ", b)
	}
	if len(data) > 0 {
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// WriteSummary writes the device identity and one line per classified
// window.
func (r *Report) WriteSummary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "     [ Device 0 ]  %s\n", r.Identity)
	fmt.Fprintf(bw, "     %d bytes from 0x%08X in %d dumps\n", len(r.Data), r.Params.Address, r.Params.Dumps)
	for i, win := range r.Windows {
		switch win.Result.Verdict {
		case anomaly.Stored:
			fmt.Fprintf(bw, "Window %d (dump %d, offset %d): stored to baseline slot %d\n",
				i+1, win.Dump+1, win.Offset, win.Result.Slot)
		case anomaly.Anomalous:
			fmt.Fprintf(bw, "Anomaly detected in window %d (dump %d, offset %d)\n", i+1, win.Dump+1, win.Offset)
			for _, f := range win.Result.Findings {
				fmt.Fprintf(bw, "    %s\n", f)
			}
		default:
			fmt.Fprintf(bw, "No anomaly detected in window %d\n", i+1)
		}
	}
	return bw.Flush()
}
