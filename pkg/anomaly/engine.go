package anomaly

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSWD/internal/logger"
)

const (
	DefaultBaselines   = 5
	DefaultWidth       = 4
	DefaultEntropyHigh = 1.5
	DefaultEntropyLow  = 0.5
)

// ErrWidth is returned when a sample does not have the configured width.
var ErrWidth = errors.New("anomaly: sample width mismatch")

// Config sizes the baseline population and the entropy band.
type Config struct {
	Baselines int // number of samples learned before detection starts
	Width     int // bytes per sample

	// The entropy rule flags samples above EntropyHigh or below EntropyLow
	// times the mean baseline entropy.
	EntropyHigh float64
	EntropyLow  float64
}

// DefaultConfig returns five baselines of four bytes with a 0.5x to 1.5x
// entropy band.
func DefaultConfig() Config {
	return Config{
		Baselines:   DefaultBaselines,
		Width:       DefaultWidth,
		EntropyHigh: DefaultEntropyHigh,
		EntropyLow:  DefaultEntropyLow,
	}
}

// Validate checks that the configuration can drive an engine.
func (c Config) Validate() error {
	if c.Baselines < 2 {
		return fmt.Errorf("anomaly: at least 2 baselines required, got %d", c.Baselines)
	}
	if c.Width <= 0 {
		return fmt.Errorf("anomaly: width must be positive, got %d", c.Width)
	}
	if c.EntropyHigh < 1 || c.EntropyLow < 0 || c.EntropyLow > 1 {
		return fmt.Errorf("anomaly: entropy band %.2f-%.2f must bracket 1", c.EntropyLow, c.EntropyHigh)
	}
	return nil
}

// Engine holds the baseline population. Slots fill in arrival order and the
// population does not change once full, until Reset. An Engine is not safe
// for concurrent use.
type Engine struct {
	cfg    Config
	slots  [][]byte
	filled int
}

// New returns an engine with an empty population.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slots := make([][]byte, cfg.Baselines)
	for i := range slots {
		slots[i] = make([]byte, cfg.Width)
	}
	return &Engine{cfg: cfg, slots: slots}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Filled returns the number of baseline slots in use.
func (e *Engine) Filled() int {
	return e.filled
}

// Full reports whether detection is active.
func (e *Engine) Full() bool {
	return e.filled == len(e.slots)
}

// Baseline returns a copy of slot i, or nil when the slot is empty.
func (e *Engine) Baseline(i int) []byte {
	if i < 0 || i >= e.filled {
		return nil
	}
	return append([]byte(nil), e.slots[i]...)
}

// Reset empties the population so the next samples form a new baseline.
func (e *Engine) Reset() {
	e.filled = 0
	logger.Log("anomaly", "baseline reset")
}

// Classify stores sample as a baseline while slots remain, and checks it
// against the population otherwise. The sample is copied.
func (e *Engine) Classify(sample []byte) (Result, error) {
	if len(sample) != e.cfg.Width {
		return Result{}, fmt.Errorf("%w: got %d bytes, want %d", ErrWidth, len(sample), e.cfg.Width)
	}

	if !e.Full() {
		slot := e.filled
		copy(e.slots[slot], sample)
		e.filled++
		logger.Logf("anomaly", "stored to baseline slot %d", slot)
		return Result{Verdict: Stored, Slot: slot}, nil
	}

	res := Result{Verdict: Normal, Slot: -1}
	res.Static, res.Expected = staticPositions(e.slots)
	res.Counters, res.Steps = counterPositions(e.slots)

	res.Findings = append(res.Findings, checkStatic(sample, res.Static, res.Expected)...)
	res.Findings = append(res.Findings, checkCounters(sample, e.slots[0], res.Counters, res.Steps)...)
	if len(res.Findings) > 0 {
		res.Verdict = Anomalous
	}

	res.ExpectedEntropy = meanEntropy(e.slots)
	res.SampleEntropy = Entropy(sample)
	if f, ok := checkEntropy(res.ExpectedEntropy, res.SampleEntropy, e.cfg.EntropyLow, e.cfg.EntropyHigh); ok {
		res.Advisories = append(res.Advisories, f)
	}

	for _, f := range res.Findings {
		logger.Logf("anomaly", "ALERT %s", f)
	}
	for _, f := range res.Advisories {
		logger.Logf("anomaly", "advisory %s", f)
	}
	logger.Logf("anomaly", "sample % X: %s", sample, res.Verdict)
	return res, nil
}
