package cmd

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/anomaly"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/idcode"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/idcode/deviceinfo"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/scan"
)

const noDeviceMessage = "     No devices found. Please try again."

// logTailEntries is how much of the central log a failure or the console
// log key shows.
const logTailEntries = 20

// printLogTail shows the latest log entries after a failed operation. With
// --verbose they were already echoed as they happened.
func printLogTail(w io.Writer) {
	if verbose {
		return
	}
	fmt.Fprintln(w, "---- log ----")
	logger.Tail(w, logTailEntries)
}

func printIdentity(w io.Writer, id idcode.IDCode) {
	fmt.Fprintf(w, "     [ Device 0 ]  %s\n", id)
	info := deviceinfo.Lookup(id.Raw)
	fmt.Fprintf(w, "     [   Port   ]  %s, %s", info.Name, info.Description)
	if info.Examples != "" {
		fmt.Fprintf(w, " (%s)", info.Examples)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "     [  Pinout  ]  SWDIO=%s SWCLK=%s\n\n", cfg.Data, cfg.Clock)
}

func printParams(w io.Writer, p scan.Params) {
	fmt.Fprintf(w, "Dump count set to: %d\n", p.Dumps)
	fmt.Fprintf(w, "Bytes per dump set to: %d\n", p.BytesPerDump)
	fmt.Fprintf(w, "Total number of bytes: %d\n", p.Total())
	fmt.Fprintf(w, "Number of bytes per line set to: %d\n", p.Width)
	fmt.Fprintf(w, "Start address set to: 0x%08X\n", p.Address)
}

// printReport writes the dumped data and, when windows were classified, the
// verdicts. detailed adds the per-rule tables of every checked window.
func printReport(w io.Writer, r *scan.Report, detailed bool) error {
	printIdentity(w, r.Identity)
	fmt.Fprintln(w, "==== DUMPED DATA ====")
	if err := scan.FormatHex(w, r.Data, r.Params.Width); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if len(r.Windows) == 0 {
		return nil
	}

	if detailed {
		for _, win := range r.Windows {
			if win.Result.Verdict == anomaly.Stored {
				continue
			}
			fmt.Fprintf(w, "---- window at offset %d ----\n", win.Offset)
			if err := anomaly.WriteReport(w, win.Sample, win.Result); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}
	}
	return r.WriteSummary(w)
}
