package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/term"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/scan"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/storage"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive menu: scan, save, load and detect",
	Long: `Single key menu for working at the bench. Keys are read without waiting for
Enter; numbers and addresses are read as lines.

  s  scan: prompts for dump count, bytes per dump, bytes per line and address
  w  save the last dump to the store
  p  load the stored dump and print it
  d  toggle detection for the next scans
  r  clear the learned baseline
  l  show the latest log entries
  h  help
  q  quit

The baseline is kept for the whole session, so repeated scans of the same
range build it up and are then checked against it.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

// input is where the console reads keys and answers from.
type input interface {
	Key() (byte, error)
	Line() (string, error)
}

// ttyInput reads single keys in cbreak mode and switches back to cooked
// mode, with echo, for line answers.
type ttyInput struct {
	t *term.Term
	r *bufio.Reader

	closeOnce sync.Once
	closeErr  error
}

func openTTY() (*ttyInput, error) {
	t, err := term.Open("/dev/tty", term.CBreakMode)
	if err != nil {
		return nil, err
	}
	return &ttyInput{t: t, r: bufio.NewReaderSize(t, 1)}, nil
}

func (in *ttyInput) Key() (byte, error) {
	return in.r.ReadByte()
}

func (in *ttyInput) Line() (string, error) {
	if err := in.t.Restore(); err != nil {
		return "", err
	}
	defer in.t.SetCbreak()
	line, err := in.r.ReadString('\n')
	return strings.TrimSpace(line), err
}

// Close restores the terminal mode and closes it. Later calls return the
// first result.
func (in *ttyInput) Close() error {
	in.closeOnce.Do(func() {
		in.t.Restore()
		in.closeErr = in.t.Close()
	})
	return in.closeErr
}

// lineInput reads keys and answers from a plain stream, used when stdin is
// not a terminal. A key is the first character of a non-empty line.
type lineInput struct {
	r *bufio.Reader
}

func (in *lineInput) Key() (byte, error) {
	for {
		line, err := in.Line()
		if line != "" {
			return line[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

func (in *lineInput) Line() (string, error) {
	line, err := in.r.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimSpace(line), err
}

type console struct {
	in      input
	out     io.Writer
	scanner *scan.Scanner
	store   storage.Store
	last    []byte
}

func runConsole(cmd *cobra.Command, args []string) error {
	port, release, err := openPort()
	if err != nil {
		return err
	}
	defer release()

	scanner, err := newScanner(port)
	if err != nil {
		return err
	}
	store, err := openStore()
	if err != nil {
		return err
	}

	var in input = &lineInput{r: bufio.NewReader(cmd.InOrStdin())}
	if f, ok := cmd.InOrStdin().(*os.File); ok && f == os.Stdin && isTerminal(f) {
		tty, err := openTTY()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		defer tty.Close()
		in = tty
	}

	c := &console{in: in, out: cmd.OutOrStdout(), scanner: scanner, store: store}
	return c.run(cmd.Context())
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

func (c *console) help() {
	fmt.Fprint(c.out, ` Supported commands:

     "h" = Show this menu
     "s" = Perform SWD scan
     "w" = Save dumped data to the store
     "p" = Read dumped data from the store
     "d" = Toggle detection logic for the next scans
     "r" = Clear the learned baseline
     "l" = Show the latest log entries
     "q" = Quit

`)
}

func (c *console) run(ctx context.Context) error {
	c.help()
	for {
		fmt.Fprint(c.out, " > ")
		key, err := c.in.Key()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%c\n", key)

		switch key {
		case 's':
			if err := c.scan(ctx); err != nil {
				return err
			}
		case 'w':
			c.save()
		case 'p':
			c.load()
		case 'd':
			c.scanner.Detect = !c.scanner.Detect
			if c.scanner.Detect {
				fmt.Fprintln(c.out, "Detection turned on.")
			} else {
				fmt.Fprintln(c.out, "Detection turned off.")
			}
		case 'r':
			c.scanner.Engine.Reset()
			fmt.Fprintln(c.out, "Baseline cleared.")
		case 'l':
			logger.Tail(c.out, logTailEntries)
		case 'h':
			c.help()
		case 'q':
			return nil
		default:
			fmt.Fprintf(c.out, "Unknown command %q. Press h for help.\n", key)
		}
	}
}

func (c *console) ask(prompt string, parse func(string) error) error {
	for {
		fmt.Fprintln(c.out, prompt)
		line, err := c.in.Line()
		if err != nil {
			return err
		}
		if err := parse(line); err != nil {
			fmt.Fprintf(c.out, "Invalid value %q: %v\n", line, err)
			continue
		}
		return nil
	}
}

func intAnswer(dst *int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("not a number")
		}
		*dst = n
		return nil
	}
}

// scan returns an error only when input fails; scan failures are reported
// and the menu continues.
func (c *console) scan(ctx context.Context) error {
	var p scan.Params
	if err := c.ask("Enter number of dumps:", intAnswer(&p.Dumps)); err != nil {
		return err
	}
	if err := c.ask("Enter number of bytes you want to see per dump:", intAnswer(&p.BytesPerDump)); err != nil {
		return err
	}
	if err := c.ask("Enter number of bytes you want to see per line:", intAnswer(&p.Width)); err != nil {
		return err
	}
	err := c.ask("Enter start address of dump:", func(s string) error {
		addr, err := parseAddress(s)
		p.Address = addr
		return err
	})
	if err != nil {
		return err
	}

	printParams(c.out, p)
	if err := p.Validate(c.scanner.Threshold); err != nil {
		if errors.Is(err, swd.ErrCapacityExceeded) {
			fmt.Fprintf(c.out, "Operation not permitted. Current maximum number of bytes is %d.\n", c.scanner.Threshold-1)
		} else {
			fmt.Fprintln(c.out, err)
		}
		return nil
	}

	fmt.Fprintln(c.out, "Now starting dump operation...")
	report, err := c.scanner.Scan(ctx, p)
	switch {
	case errors.Is(err, swd.ErrNoDevice):
		fmt.Fprintln(c.out, noDeviceMessage)
		printLogTail(c.out)
		return nil
	case err != nil:
		fmt.Fprintf(c.out, "Scan failed: %v\n", err)
		printLogTail(c.out)
		return nil
	}
	c.last = report.Copy()
	return printReport(c.out, report, true)
}

func (c *console) save() {
	if len(c.last) == 0 {
		fmt.Fprintln(c.out, "Nothing to save. Run a scan first.")
		return
	}
	if err := c.store.Write(c.last); err != nil {
		fmt.Fprintf(c.out, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "Saved %d bytes.\n", len(c.last))
}

func (c *console) load() {
	buf := make([]byte, c.scanner.Threshold)
	n, err := c.store.Read(buf)
	if err != nil {
		fmt.Fprintf(c.out, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "==== STORED DATA (%d bytes) ====\n", n)
	scan.FormatHex(c.out, buf[:n], scan.DefaultLineWidth)
	fmt.Fprintln(c.out)
}
