// Package probe finds USB adapters whose pins can drive SWD.
package probe

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

// Kind categorizes adapter families.
type Kind string

const (
	KindFTDI     Kind = "ftdi"      // MPSSE pins through periph.io
	KindPico     Kind = "pico"      // RP2040 board, usable as a target or running bridge firmware
	KindCMSISDAP Kind = "cmsis-dap" // has its own SWD engine; listed but not bit-banged
	KindSim      Kind = "simulator"
)

// Info describes a detected adapter.
type Info struct {
	Kind        Kind
	Description string
	VendorID    uint16
	ProductID   uint16
	Bus         int
	Address     int

	// Backend is the bitbang backend that can drive the adapter, empty when
	// none can.
	Backend string
}

// Label returns a user-friendly description for the adapter.
func (i Info) Label() string {
	if i.Description != "" {
		return i.Description
	}
	if i.Kind != "" {
		return fmt.Sprintf("%s (%04X:%04X)", string(i.Kind), i.VendorID, i.ProductID)
	}
	return fmt.Sprintf("Adapter %04X:%04X", i.VendorID, i.ProductID)
}

// Discover enumerates connected USB devices that match known VID/PID pairs.
// The simulator entry is always appended so the tools can be tried without
// hardware.
func Discover(ctx context.Context) ([]Info, error) {
	var results []Info
	usb := gousb.NewContext()
	defer usb.Close()

	_, err := usb.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}

		if info, ok := Classify(uint16(desc.Vendor), uint16(desc.Product)); ok {
			info.Bus = desc.Bus
			info.Address = desc.Address
			results = append(results, info)
		}
		return false
	})
	if err != nil && !errors.Is(err, gousb.ErrorAccess) {
		return results, err
	}

	results = append(results, Info{
		Kind:        KindSim,
		Description: "Simulator (no hardware)",
		Backend:     "sim",
	})
	return results, nil
}

// Classify matches a VID/PID pair against the known adapters.
func Classify(vid, pid uint16) (Info, bool) {
	for _, known := range knownAdapters {
		if vid == known.VendorID && pid == known.ProductID {
			return Info{
				Kind:        known.Kind,
				Description: known.Description,
				VendorID:    known.VendorID,
				ProductID:   known.ProductID,
				Backend:     known.Backend,
			}, true
		}
	}
	return Info{}, false
}

type knownUSBDevice struct {
	VendorID    uint16
	ProductID   uint16
	Kind        Kind
	Backend     string
	Description string
}

const (
	VendorIDFTDI        = 0x0403
	VendorIDRaspberryPi = 0x2e8a
)

var knownAdapters = []knownUSBDevice{
	{VendorIDFTDI, 0x6014, KindFTDI, "periph", "FTDI FT232H"},
	{VendorIDFTDI, 0x6010, KindFTDI, "periph", "FTDI FT2232H"},
	{VendorIDFTDI, 0x6011, KindFTDI, "periph", "FTDI FT4232H"},
	{VendorIDRaspberryPi, 0x000a, KindPico, "", "Raspberry Pi Pico"},
	{VendorIDRaspberryPi, 0x0003, KindPico, "", "Raspberry Pi RP2040 boot"},
	{VendorIDRaspberryPi, 0x000c, KindCMSISDAP, "", "Raspberry Pi Debug Probe (CMSIS-DAP)"},
	{0x0d28, 0x0204, KindCMSISDAP, "", "DAPLink CMSIS-DAP"},
}
