package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/config"
	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/bitbang"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/storage"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

var (
	// Global flags
	verbose    bool
	envFile    string
	backend    string
	clockPin   string
	dataPin    string
	halfPeriod time.Duration
	storeKind  string
	storePath  string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "swd",
	Short: "SWD memory dumper and firmware anomaly detector",
	Long: `A bit-banged Serial Wire Debug tool: wakes a target, reads its debug port
identification, dumps target memory through the MEM-AP and checks the dumped
bytes against a learned baseline.

Settings are read from a .env file (see --env) and SWD_* environment
variables; flags override both.

Examples:
  swd idcode --backend sim                        # Identify the simulated target
  swd scan --address 0x20000000 --bytes 16 --dumps 8 --detect
  swd console --backend rpio --clk 2 --dio 3      # Interactive menu
  swd detect dump.bin --width 16 --baselines 10   # Classify a saved dump`,
	Version:           "0.1.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&envFile, "env", "", "settings file (default .env when present)")
	flags.StringVar(&backend, "backend", "", "pin backend: periph, rpio or sim")
	flags.StringVar(&clockPin, "clk", "", "SWCLK pin")
	flags.StringVar(&dataPin, "dio", "", "SWDIO pin")
	flags.DurationVar(&halfPeriod, "half-period", 0, "delay after each clock edge (default 5ms)")
	flags.StringVar(&storeKind, "store", "", "dump store: file or sqlite")
	flags.StringVar(&storePath, "store-path", "", "dump store directory (file) or database (sqlite)")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if verbose {
		logger.SetEcho(os.Stderr)
	} else {
		logger.SetEcho(nil)
	}

	c, err := config.Load(envFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		b, err := bitbang.ParseBackend(backend)
		if err != nil {
			return err
		}
		c.Backend = b
	}
	if flags.Changed("clk") {
		c.Clock = clockPin
	}
	if flags.Changed("dio") {
		c.Data = dataPin
	}
	if flags.Changed("half-period") {
		c.HalfPeriod = halfPeriod
	}
	if flags.Changed("store") {
		k, err := storage.ParseKind(storeKind)
		if err != nil {
			return err
		}
		c.Store = k
	}
	if flags.Changed("store-path") {
		c.StorePath = storePath
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// openPort claims the configured pins. The simulator has no timing
// requirements, so it runs without delays.
func openPort() (*swd.Port, func(), error) {
	lines, closer, err := bitbang.Open(cfg.Pins())
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	release := func() {
		once.Do(closeLogged("release pins", closer))
	}
	atexit.Register(release)

	if cfg.Backend == bitbang.BackendSim {
		return swd.NewPort(lines, 0, func(time.Duration) {}), release, nil
	}
	logger.Logf("cmd", "%s backend, SWCLK=%s SWDIO=%s, half period %s", cfg.Backend, cfg.Clock, cfg.Data, cfg.HalfPeriod)
	return swd.NewPort(lines, cfg.HalfPeriod, nil), release, nil
}

// openStore opens the configured store. It is closed when the process
// exits.
func openStore() (storage.Store, error) {
	s, err := storage.Open(cfg.Store, cfg.StorePath)
	if err != nil {
		return nil, err
	}
	atexit.Register(closeLogged(fmt.Sprintf("close %s store", cfg.Store), s))
	return s, nil
}

// closeLogged returns a function that closes c. A failure is logged, since
// it happens on the way out.
func closeLogged(what string, c io.Closer) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Logf("cmd", "%s: %v", what, err)
		}
	}
}
