package idcode

import "fmt"

// Parse splits a raw identification word into its fields.
func Parse(raw uint32) IDCode {
	return IDCode{
		Raw:        raw,
		Version:    uint8((raw & 0xF0000000) >> 28),
		PartNumber: uint16((raw & 0x0FFFF000) >> 12),
		Bank:       uint8((raw & 0xF00) >> 8),
		ID:         uint8((raw & 0xFE) >> 1),
	}
}

// Designer returns the 11-bit JEP106 designer code (bank and identity).
func (c IDCode) Designer() uint16 {
	return uint16(c.Bank)<<7 | uint16(c.ID)
}

// Displayable reports whether the manufacturer fields are plausible enough
// to be worth looking up.
func (c IDCode) Displayable() bool {
	return c.ID > 1 && c.ID <= 126 && c.Bank <= 8
}

// Manufacturer resolves the designer through the JEP106 table.
func (c IDCode) Manufacturer() Manufacturer {
	m, _ := LookupManufacturer(c.Bank, c.ID)
	return m
}

func (c IDCode) String() string {
	if !c.Displayable() {
		return fmt.Sprintf("0x%08X", c.Raw)
	}
	return fmt.Sprintf("0x%08X (mfg: '%s', part: 0x%x, ver: 0x%x)",
		c.Raw, c.Manufacturer().Name, c.PartNumber, c.Version)
}
