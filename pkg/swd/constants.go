package swd

// Wire constants. These must stay bit-exact for real targets.
const (
	// LineResetCycles is the minimum number of high cycles for a line reset
	// (50) plus a small margin; LineResetMargin is added on top.
	LineResetCycles = 52
	LineResetMargin = 10

	// JTAGToSWD switches a SWJ-DP from JTAG to SWD operation.
	JTAGToSWD uint16 = 0xE79E

	// ActivationCode selects SWD after the dormant selection alert.
	ActivationCode = 0x1A

	// IdleBits is the number of low cycles sent after every transfer.
	IdleBits = 4

	// AbortClearAll sets ORUNERRCLR, WDERRCLR, STKERRCLR and STKCMPCLR.
	AbortClearAll uint32 = 0x1E

	// CSWAutoIncrement32 selects 32-bit accesses with address auto-increment.
	CSWAutoIncrement32 uint32 = 0xA2000020
)

// selectionAlert is the 128-bit dormant selection alert
// 0x19BC0EA2_E3DDAFE9_86852D95_6209F392 in wire order.
var selectionAlert = [16]byte{
	0x92, 0xF3, 0x09, 0x62,
	0x95, 0x2D, 0x85, 0x86,
	0xE9, 0xAF, 0xDD, 0xE3,
	0xA2, 0x0E, 0xBC, 0x19,
}

// Debug port register addresses.
const (
	RegIDCode   uint8 = 0x0 // read
	RegAbort    uint8 = 0x0 // write
	RegCtrlStat uint8 = 0x4
	RegSelect   uint8 = 0x8
	RegRDBuff   uint8 = 0xC
)

// MEM-AP register addresses (bank 0).
const (
	RegCSW uint8 = 0x0
	RegTAR uint8 = 0x4
	RegDRW uint8 = 0xC
)

// Encoded request bytes used by the session and the dumper.
const (
	CmdReadIDCode  byte = 0xA5 // DP read IDCODE
	CmdWriteAbort  byte = 0x81 // DP write ABORT
	CmdWriteSelect byte = 0xB1 // DP write SELECT
	CmdReadRDBuff  byte = 0xBD // DP read RDBUFF
	CmdWriteCSW    byte = 0xA3 // AP write CSW
	CmdWriteTAR    byte = 0x8B // AP write TAR
	CmdReadDRW     byte = 0x9F // AP read DRW
)
