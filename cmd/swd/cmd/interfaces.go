package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/probe"
)

var interfacesCmd = &cobra.Command{
	Use:   "interfaces",
	Short: "List USB adapters that can drive SWD",
	Long: `Scan the host for USB adapters with usable pins (FTDI MPSSE parts through
periph.io) and for Raspberry Pi boards and CMSIS-DAP probes, and print a
summary. The simulator is always listed.`,
	Args: cobra.NoArgs,
	RunE: runInterfaces,
}

func init() {
	rootCmd.AddCommand(interfacesCmd)
}

func runInterfaces(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	infos, err := probe.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover interfaces: %w", err)
	}

	fmt.Println("Detected interfaces:")
	for _, info := range infos {
		backend := info.Backend
		if backend == "" {
			backend = "not usable for bit-banging"
		}
		if info.Kind == probe.KindSim {
			fmt.Printf("  - %s [%s] backend: %s\n", info.Label(), info.Kind, backend)
			continue
		}
		fmt.Printf("  - %s [%s] (VID:PID %04X:%04X, bus %d addr %d) backend: %s\n",
			info.Label(), info.Kind, info.VendorID, info.ProductID, info.Bus, info.Address, backend)
	}
	return nil
}
