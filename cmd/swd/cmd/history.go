package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/scan"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/storage"
)

var historyWidth int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List dumps kept in the sqlite store",
	Long: `List every dump saved to the sqlite store, newest first. The file store keeps
only the last dump, so history needs --store sqlite (or SWD_STORE=sqlite).

Examples:
  swd history --store sqlite --store-path dumps.db
  swd history show cn0v2k3vfa5c73b0l3rg --store sqlite`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print one stored dump",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyShowCmd.Flags().IntVarP(&historyWidth, "width", "w", scan.DefaultLineWidth, "bytes per line")
}

func openHistory() (*storage.SQLiteStore, error) {
	if cfg.Store != storage.KindSQLite {
		return nil, errors.New("history needs the sqlite store (--store sqlite)")
	}
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	return s.(*storage.SQLiteStore), nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	records, err := s.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No dumps stored.")
		return nil
	}
	fmt.Fprintf(out, "%-20s  %-25s  %s\n", "ID", "SAVED", "BYTES")
	for _, r := range records {
		fmt.Fprintf(out, "%-20s  %-25s  %d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05.000"), r.Size)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	s, err := openHistory()
	if err != nil {
		return err
	}
	data, err := s.Get(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "==== %s (%d bytes) ====\n", args[0], len(data))
	return scan.FormatHex(out, data, historyWidth)
}
