package bitbang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"
)

// RPIO drives SWD through the Raspberry Pi GPIO registers.
type RPIO struct {
	clk rpio.Pin
	dio rpio.Pin
}

// ParseBCM parses a BCM pin number, with or without a "GPIO" prefix.
func ParseBCM(s string) (uint8, error) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "GPIO")
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n > 53 {
		return 0, fmt.Errorf("bitbang: invalid BCM pin %q", s)
	}
	return uint8(n), nil
}

// OpenRPIO maps the GPIO registers and configures both pins as outputs.
func OpenRPIO(clkName, dioName string) (*RPIO, error) {
	clk, err := ParseBCM(clkName)
	if err != nil {
		return nil, err
	}
	dio, err := ParseBCM(dioName)
	if err != nil {
		return nil, err
	}
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("bitbang: open gpio memory: %w", err)
	}

	r := &RPIO{clk: rpio.Pin(clk), dio: rpio.Pin(dio)}
	r.clk.Output()
	r.clk.Write(rpio.Low)
	r.dio.Output()
	r.dio.Write(rpio.Low)
	return r, nil
}

func (r *RPIO) SetClock(high bool) error {
	r.clk.Write(state(high))
	return nil
}

func (r *RPIO) SetData(high bool) error {
	r.dio.Write(state(high))
	return nil
}

func (r *RPIO) Data() (bool, error) {
	return r.dio.Read() == rpio.High, nil
}

func (r *RPIO) SetDirection(dir swd.Direction) error {
	if dir == swd.DirIn {
		r.dio.Input()
		r.dio.PullUp()
		return nil
	}
	r.dio.PullOff()
	r.dio.Output()
	return nil
}

// Close returns both pins to inputs and unmaps the registers.
func (r *RPIO) Close() error {
	r.dio.Input()
	r.clk.Input()
	return rpio.Close()
}

func state(high bool) rpio.State {
	if high {
		return rpio.High
	}
	return rpio.Low
}
