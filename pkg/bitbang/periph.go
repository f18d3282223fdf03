package bitbang

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

// Pins drives SWD through two periph.io pins.
type Pins struct {
	clk  gpio.PinIO
	dio  gpio.PinIO
	data gpio.Level
}

// NewPins wraps already opened pins and drives both low.
func NewPins(clk, dio gpio.PinIO) (*Pins, error) {
	p := &Pins{clk: clk, dio: dio}
	if err := clk.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("bitbang: %s: %w", clk, err)
	}
	if err := dio.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("bitbang: %s: %w", dio, err)
	}
	return p, nil
}

// OpenPeriph initialises the periph.io host drivers and looks both pins up by
// name.
func OpenPeriph(clkName, dioName string) (*Pins, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("bitbang: host initialization failed: %w", err)
	}
	clk := gpioreg.ByName(clkName)
	if clk == nil {
		return nil, fmt.Errorf("bitbang: no pin named %q", clkName)
	}
	dio := gpioreg.ByName(dioName)
	if dio == nil {
		return nil, fmt.Errorf("bitbang: no pin named %q", dioName)
	}
	return NewPins(clk, dio)
}

func (p *Pins) SetClock(high bool) error {
	return p.clk.Out(gpio.Level(high))
}

func (p *Pins) SetData(high bool) error {
	p.data = gpio.Level(high)
	return p.dio.Out(p.data)
}

func (p *Pins) Data() (bool, error) {
	return bool(p.dio.Read()), nil
}

// SetDirection turns SWDIO into an input with pull-up, or back into an
// output driving the last written level.
func (p *Pins) SetDirection(dir swd.Direction) error {
	if dir == swd.DirIn {
		return p.dio.In(gpio.PullUp, gpio.NoEdge)
	}
	return p.dio.Out(p.data)
}

// Close leaves both pins as inputs so the target can be debugged by other
// tools.
func (p *Pins) Close() error {
	if err := p.dio.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return err
	}
	return p.clk.In(gpio.PullNoChange, gpio.NoEdge)
}
