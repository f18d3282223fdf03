package bitbang

import "github.com/OpenTraceLab/OpenTraceSWD/pkg/swd"

const (
	// DemoIDCode is the DPIDR the demo target reports (RP2040 core 0).
	DemoIDCode uint32 = 0x0BC12477

	// DemoRAM holds a small state block: a magic word, a tick counter that
	// advances on every read, and constant configuration words.
	DemoRAM uint32 = 0x20000000

	// DemoFlash holds the start of a vector table.
	DemoFlash uint32 = 0x10000100
)

// DemoTarget returns a simulated dormant SW-DP with some recognisable
// memory content, for trying the tools without hardware.
func DemoTarget() *swd.SimTarget {
	t := swd.NewSimTarget(swd.SimConfig{IDCode: DemoIDCode, Dormant: true})
	t.LoadWords(DemoRAM,
		0x53574421, // "SWD!"
		0x00000100, // tick
		0x0000C350,
		0x00000003,
	)
	t.SetStep(DemoRAM+4, 4)
	t.LoadWords(DemoFlash,
		0x20042000, // initial SP
		0x100001F7, // reset handler
		0x10000183,
		0x10000185,
	)
	return t
}
