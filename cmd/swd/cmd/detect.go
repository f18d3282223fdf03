package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/anomaly"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/storage"
)

var (
	detectWidth     int
	detectBaselines int
	detectDetailed  bool
)

var detectCmd = &cobra.Command{
	Use:   "detect [FILE]",
	Short: "Classify saved dump data against a baseline",
	Long: `Cut a dump into windows of --width bytes and run them through the detector
in order: the first --baselines windows are learned, every later one is
checked. Without FILE the dump in the configured store is used. A trailing
window shorter than --width is ignored.

Examples:
  swd detect dump.bin --width 16 --baselines 10
  swd detect --store sqlite --store-path dumps.db --report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().IntVarP(&detectWidth, "width", "w", 0, "window width in bytes (default from SWD_WIDTH)")
	detectCmd.Flags().IntVar(&detectBaselines, "baselines", 0, "windows learned before checking (default from SWD_BASELINES)")
	detectCmd.Flags().BoolVar(&detectDetailed, "report", false, "print the rule tables of every checked window")
}

// ErrAnomalyFound is returned by detect when at least one window is
// anomalous, so scripts can test the exit status.
var ErrAnomalyFound = errors.New("anomaly detected")

func readDetectInput(args []string) ([]byte, error) {
	if len(args) == 1 {
		return os.ReadFile(args[0])
	}
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, cfg.Threshold)
	n, err := s.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func runDetect(cmd *cobra.Command, args []string) error {
	ac := cfg.Anomaly()
	if cmd.Flags().Changed("width") {
		ac.Width = detectWidth
	}
	if cmd.Flags().Changed("baselines") {
		ac.Baselines = detectBaselines
	}
	engine, err := anomaly.New(ac)
	if err != nil {
		return err
	}

	data, err := readDetectInput(args)
	if errors.Is(err, storage.ErrEmpty) {
		return errors.New("nothing stored yet; run scan --save first or name a file")
	}
	if err != nil {
		return err
	}

	anomalies, err := classifyWindows(cmd.OutOrStdout(), engine, data, detectDetailed)
	if err != nil {
		return err
	}
	if anomalies > 0 {
		return fmt.Errorf("%w in %d window(s)", ErrAnomalyFound, anomalies)
	}
	return nil
}

// classifyWindows runs every full window of data through e and prints one
// line per window. It returns the number of anomalous windows.
func classifyWindows(w io.Writer, e *anomaly.Engine, data []byte, detailed bool) (int, error) {
	width := e.Config().Width
	windows := len(data) / width
	fmt.Fprintf(w, "%d bytes, %d windows of %d bytes, %d baselines\n", len(data), windows, width, e.Config().Baselines)
	if windows*width < len(data) {
		fmt.Fprintf(w, "Ignoring %d trailing bytes.\n", len(data)-windows*width)
	}

	anomalies := 0
	for i := 0; i < windows; i++ {
		sample := data[i*width : (i+1)*width]
		r, err := e.Classify(sample)
		if err != nil {
			return anomalies, err
		}
		switch r.Verdict {
		case anomaly.Stored:
			fmt.Fprintf(w, "Window %d: stored to baseline slot %d\n", i, r.Slot)
			continue
		case anomaly.Anomalous:
			anomalies++
			fmt.Fprintf(w, "Window %d: anomaly detected\n", i)
			for _, f := range r.Findings {
				fmt.Fprintf(w, "  %s\n", f)
			}
		default:
			fmt.Fprintf(w, "Window %d: no anomaly detected\n", i)
		}
		for _, f := range r.Advisories {
			fmt.Fprintf(w, "  note: %s\n", f)
		}
		if detailed {
			if err := anomaly.WriteReport(w, sample, r); err != nil {
				return anomalies, err
			}
		}
	}
	return anomalies, nil
}
