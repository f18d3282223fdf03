package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/anomaly"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/scan"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

var (
	scanAddress  string
	scanBytes    int
	scanDumps    int
	scanWidth    int
	scanDetect   bool
	scanSave     bool
	scanDetailed bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Connect and dump target memory",
	Long: `Connect to the target and dump --bytes bytes from --address, --dumps times.
Each dump starts with a fresh connect and reads the same range again, one
second apart. The total must stay below the buffer threshold (SWD_THRESHOLD,
1000 bytes by default).

With --detect, every dump is cut into windows of the detection width and
classified: the first windows form the baseline, later ones are checked
against it.

Examples:
  swd scan --backend sim --address 0x20000000 --bytes 16 --dumps 3
  swd scan --address 0x08000000 --bytes 4 --dumps 10 --detect --report
  swd scan --address 0x20000000 --bytes 256 --save`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&scanAddress, "address", "a", "0x20000000", "start address (hex)")
	scanCmd.Flags().IntVarP(&scanBytes, "bytes", "b", 16, "bytes per dump")
	scanCmd.Flags().IntVarP(&scanDumps, "dumps", "n", 1, "number of dumps")
	scanCmd.Flags().IntVarP(&scanWidth, "width", "w", scan.DefaultLineWidth, "bytes per line in the listing")
	scanCmd.Flags().BoolVarP(&scanDetect, "detect", "d", false, "classify the dumped bytes")
	scanCmd.Flags().BoolVar(&scanDetailed, "report", false, "print the rule tables of every checked window")
	scanCmd.Flags().BoolVarP(&scanSave, "save", "s", false, "write the dump to the store")
}

// parseAddress accepts a hex address with or without 0x.
func parseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(v), nil
}

// newScanner builds a scanner on port from the loaded configuration.
func newScanner(port *swd.Port) (*scan.Scanner, error) {
	engine, err := anomaly.New(cfg.Anomaly())
	if err != nil {
		return nil, err
	}
	s := scan.New(port, engine)
	s.Detect = cfg.Detect
	s.Threshold = cfg.Threshold
	s.InterDumpDelay = cfg.InterDumpDelay
	s.CSW = cfg.CSW()
	s.StrictParity = cfg.StrictParity
	return s, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	addr, err := parseAddress(scanAddress)
	if err != nil {
		return err
	}
	params := scan.Params{Address: addr, BytesPerDump: scanBytes, Dumps: scanDumps, Width: scanWidth}
	out := cmd.OutOrStdout()
	printParams(out, params)
	if err := params.Validate(cfg.Threshold); err != nil {
		if errors.Is(err, swd.ErrCapacityExceeded) {
			fmt.Fprintf(out, "Operation not permitted. Current maximum number of bytes is %d.\n", cfg.Threshold-1)
		}
		return err
	}

	port, release, err := openPort()
	if err != nil {
		return err
	}
	defer release()

	scanner, err := newScanner(port)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("detect") {
		scanner.Detect = scanDetect
	}

	fmt.Fprintln(out, "Now starting dump operation...")
	report, err := scanner.Scan(cmd.Context(), params)
	if errors.Is(err, swd.ErrNoDevice) {
		fmt.Fprintln(out, noDeviceMessage)
	}
	if err != nil {
		printLogTail(cmd.ErrOrStderr())
		return err
	}
	if err := printReport(out, report, scanDetailed); err != nil {
		return err
	}

	if scanSave {
		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Write(report.Copy()); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %d bytes to the %s store.\n", len(report.Data), cfg.Store)
	}
	return nil
}
