package deviceinfo

import "github.com/OpenTraceLab/OpenTraceSWD/pkg/idcode"

// DeviceInfo describes a debug port identified by its DPIDR.
type DeviceInfo struct {
	IDCode       idcode.IDCode
	Manufacturer idcode.Manufacturer

	Name        string // "SW-DP v1"
	Description string // "Cortex-M3/M4 class"
	Examples    string // parts known to report this word

	// Debug port architecture, decoded from the DPIDR itself.
	DPVersion int  // DPIDR[15:12]
	MinDP     bool // DPIDR[16], minimal debug port
	Multidrop bool // DPv2 targets may share one bus
}
