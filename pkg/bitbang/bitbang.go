// Package bitbang drives SWCLK and SWDIO from general purpose I/O pins.
//
// Two GPIO backends are provided: periph.io, which covers SoC GPIO on most
// single board computers as well as FTDI MPSSE pins, and go-rpio, which maps
// the Raspberry Pi GPIO registers directly. A simulated target is available
// for development without hardware.
package bitbang

import (
	"fmt"
	"io"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

// Backend selects how the pins are driven.
type Backend string

const (
	BackendPeriph Backend = "periph"
	BackendRPIO   Backend = "rpio"
	BackendSim    Backend = "sim"
)

// ParseBackend accepts a backend name in any case.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendPeriph, BackendRPIO, BackendSim:
		return b, nil
	}
	return "", fmt.Errorf("bitbang: unknown backend %q (want periph, rpio or sim)", s)
}

// Config names the two pins. Pin names are backend specific: periph accepts
// any name its registry knows ("GPIO2", "2", "FT232H.D0"), rpio wants the BCM
// number.
type Config struct {
	Backend Backend
	Clock   string
	Data    string
}

// Open claims the pins and returns them as swd.Lines. The closer releases
// them and must be called when the lines are no longer used.
func Open(cfg Config) (swd.Lines, io.Closer, error) {
	switch cfg.Backend {
	case BackendPeriph:
		pins, err := OpenPeriph(cfg.Clock, cfg.Data)
		if err != nil {
			return nil, nil, err
		}
		return pins, pins, nil
	case BackendRPIO:
		pins, err := OpenRPIO(cfg.Clock, cfg.Data)
		if err != nil {
			return nil, nil, err
		}
		return pins, pins, nil
	case BackendSim:
		return DemoTarget(), nopCloser{}, nil
	}
	return nil, nil, fmt.Errorf("bitbang: unknown backend %q", cfg.Backend)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
