package idcode

// IDCode is a decoded debug port identification word.
type IDCode struct {
	Raw        uint32 // full word
	Version    uint8  // [31:28]
	PartNumber uint16 // [27:12]
	Bank       uint8  // [11:8] JEP106 continuation count
	ID         uint8  // [7:1] JEP106 identity code
}

// Manufacturer is a JEP106 manufacturer entry.
type Manufacturer struct {
	Bank uint8
	ID   uint8
	Name string
}
