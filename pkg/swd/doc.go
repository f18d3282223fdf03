// Package swd drives an ARM Serial Wire Debug port by bit-banging two GPIO
// lines, SWCLK and SWDIO.
//
// # Layers
//
// The package is built bottom-up:
//
//   - Port: the bit I/O primitive. Pulses the clock and reads or writes one
//     bit per pulse through a Lines implementation, with an injectable
//     delay so simulated lines run without real-time waits.
//   - Codec: LSB-first packing of integers onto the wire and even parity.
//   - Session: the connect handshake (dormant wake-up, line reset,
//     JTAG-to-SWD switch, IDCODE request).
//   - Engine: a single register transfer with its acknowledge and the
//     one-shot fault recovery through the ABORT register.
//   - Dumper: MEM-AP memory reads through SELECT, TAR and DRW into a
//     fixed-capacity Buffer.
//
// # Usage
//
//	port := swd.NewPort(lines, swd.DefaultHalfPeriod, nil)
//	id, err := swd.NewSession(port).Connect(ctx)
//	if errors.Is(err, swd.ErrNoDevice) {
//		// nothing answered the IDCODE request
//	}
//
//	buf := swd.NewBuffer(swd.DefaultCapacity)
//	err = swd.NewDumper(swd.NewEngine(port)).Dump(ctx, 0x20000000, 64, buf)
//
// All operations are synchronous. Transfers are never reordered: a request
// is only sent after the previous transfer, including any recovery, has
// completed on the wire.
//
// SimTarget implements Lines with a cycle-accurate model of a SW-DP and a
// single MEM-AP so the whole stack can run in tests and from the CLI without
// hardware.
package swd
