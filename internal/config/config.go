// Package config holds the tool settings: pins, timing, buffer limits,
// detection and storage. Values come from defaults, an optional .env file
// and the process environment, in increasing order of precedence; command
// line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/anomaly"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/bitbang"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/scan"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/storage"
	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

// DefaultEnvFile is read by Load when no file is named and it exists.
const DefaultEnvFile = ".env"

// Environment variable names.
const (
	EnvBackend        = "SWD_BACKEND"
	EnvClock          = "SWD_CLK"
	EnvData           = "SWD_DIO"
	EnvHalfPeriod     = "SWD_HALF_PERIOD"
	EnvThreshold      = "SWD_THRESHOLD"
	EnvInterDumpDelay = "SWD_INTER_DUMP_DELAY"
	EnvAutoIncrement  = "SWD_AUTO_INCREMENT"
	EnvStrictParity   = "SWD_STRICT_PARITY"
	EnvBaselines      = "SWD_BASELINES"
	EnvWidth          = "SWD_WIDTH"
	EnvDetect         = "SWD_DETECT"
	EnvStore          = "SWD_STORE"
	EnvStorePath      = "SWD_STORE_PATH"
)

// Config controls the hardware backend, the scan limits and the
// collaborators.
type Config struct {
	// Pins
	Backend bitbang.Backend
	Clock   string // SWCLK pin name
	Data    string // SWDIO pin name

	// Timing
	HalfPeriod     time.Duration // delay after each clock edge
	InterDumpDelay time.Duration

	// Scan
	Threshold     int  // buffer ceiling in bytes; scans must stay below it
	AutoIncrement bool // program CSW for 32-bit auto-increment before dumping
	StrictParity  bool

	// Detection
	Detect    bool
	Baselines int
	Width     int

	// Storage
	Store     storage.Kind
	StorePath string
}

// Default returns the settings used when nothing is configured: GPIO2/GPIO3
// through periph.io, 5ms half period, 1000 byte ceiling, five 4-byte
// baselines and a file store in the working directory.
func Default() *Config {
	return &Config{
		Backend:        bitbang.BackendPeriph,
		Clock:          "GPIO2",
		Data:           "GPIO3",
		HalfPeriod:     swd.DefaultHalfPeriod,
		InterDumpDelay: scan.DefaultInterDumpDelay,
		Threshold:      swd.DefaultCapacity,
		Baselines:      anomaly.DefaultBaselines,
		Width:          anomaly.DefaultWidth,
		Store:          storage.KindFile,
		StorePath:      ".",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if _, err := bitbang.ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.Backend != bitbang.BackendSim && (c.Clock == "" || c.Data == "") {
		return errors.New("config: clock and data pins are required")
	}
	if c.Clock != "" && c.Clock == c.Data {
		return fmt.Errorf("config: clock and data cannot share pin %s", c.Clock)
	}
	if c.HalfPeriod < 0 || c.InterDumpDelay < 0 {
		return errors.New("config: delays must not be negative")
	}
	if c.Threshold <= 1 {
		return fmt.Errorf("config: threshold must be above 1, got %d", c.Threshold)
	}
	if err := c.Anomaly().Validate(); err != nil {
		return err
	}
	if _, err := storage.ParseKind(string(c.Store)); err != nil {
		return err
	}
	return nil
}

// Anomaly returns the detection engine configuration.
func (c *Config) Anomaly() anomaly.Config {
	cfg := anomaly.DefaultConfig()
	cfg.Baselines = c.Baselines
	cfg.Width = c.Width
	return cfg
}

// Pins returns the bitbang configuration.
func (c *Config) Pins() bitbang.Config {
	return bitbang.Config{Backend: c.Backend, Clock: c.Clock, Data: c.Data}
}

// CSW returns the value the dumper writes to CSW, zero to leave it alone.
func (c *Config) CSW() uint32 {
	if c.AutoIncrement {
		return swd.CSWAutoIncrement32
	}
	return 0
}

// Load builds a configuration from the defaults, the env file at path and
// the process environment. An empty path reads DefaultEnvFile if present; a
// named file must exist. Only malformed values are rejected here: callers
// apply their overrides and then call Validate.
func Load(path string) (*Config, error) {
	vars := map[string]string{}

	name := path
	if name == "" {
		name = DefaultEnvFile
	}
	fileVars, err := godotenv.Read(name)
	switch {
	case err == nil:
		vars = fileVars
	case path == "" && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: %s: %w", name, err)
	}

	for _, key := range envKeys {
		if v, ok := os.LookupEnv(key); ok {
			vars[key] = v
		}
	}

	c := Default()
	if err := c.apply(vars); err != nil {
		return nil, err
	}
	return c, nil
}

var envKeys = []string{
	EnvBackend, EnvClock, EnvData, EnvHalfPeriod, EnvThreshold,
	EnvInterDumpDelay, EnvAutoIncrement, EnvStrictParity, EnvBaselines,
	EnvWidth, EnvDetect, EnvStore, EnvStorePath,
}

func (c *Config) apply(vars map[string]string) error {
	var err error
	set := func(key string, fn func(string) error) {
		v, ok := vars[key]
		if !ok || err != nil {
			return
		}
		if e := fn(strings.TrimSpace(v)); e != nil {
			err = fmt.Errorf("config: %s=%q: %w", key, v, e)
		}
	}

	set(EnvBackend, func(v string) error {
		b, err := bitbang.ParseBackend(v)
		c.Backend = b
		return err
	})
	set(EnvClock, func(v string) error { c.Clock = v; return nil })
	set(EnvData, func(v string) error { c.Data = v; return nil })
	set(EnvHalfPeriod, durationVar(&c.HalfPeriod))
	set(EnvInterDumpDelay, durationVar(&c.InterDumpDelay))
	set(EnvThreshold, intVar(&c.Threshold))
	set(EnvAutoIncrement, boolVar(&c.AutoIncrement))
	set(EnvStrictParity, boolVar(&c.StrictParity))
	set(EnvDetect, boolVar(&c.Detect))
	set(EnvBaselines, intVar(&c.Baselines))
	set(EnvWidth, intVar(&c.Width))
	set(EnvStore, func(v string) error {
		k, err := storage.ParseKind(v)
		c.Store = k
		return err
	})
	set(EnvStorePath, func(v string) error { c.StorePath = v; return nil })
	return err
}

func durationVar(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		*dst = d
		return err
	}
}

func intVar(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		*dst = n
		return err
	}
}

func boolVar(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		*dst = b
		return err
	}
}
