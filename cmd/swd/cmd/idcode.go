package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

var idcodeCmd = &cobra.Command{
	Use:   "idcode",
	Short: "Wake the target and read its debug port IDCODE",
	Long: `Run the connect handshake (dormant wake-up, line reset, JTAG-to-SWD switch,
line reset) and read the debug port identification register. The decoded
designer, part number and version are printed together with what is known
about the debug port.`,
	Args: cobra.NoArgs,
	RunE: runIDCode,
}

func init() {
	rootCmd.AddCommand(idcodeCmd)
}

func runIDCode(cmd *cobra.Command, args []string) error {
	port, release, err := openPort()
	if err != nil {
		return err
	}
	defer release()

	out := cmd.OutOrStdout()
	session := swd.NewSession(port)
	id, err := session.Connect(cmd.Context())
	if verbose {
		fmt.Fprintf(out, "Handshake: %v\n", session.Trace())
	}
	if errors.Is(err, swd.ErrNoDevice) {
		fmt.Fprintln(out, noDeviceMessage)
		printLogTail(cmd.ErrOrStderr())
		return err
	}
	if err != nil {
		return err
	}

	printIdentity(out, id)
	return nil
}
