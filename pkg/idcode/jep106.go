package idcode

// Unknown is the name reported for designers missing from the table.
const Unknown = "Unknown"

// manufacturers maps (bank, id) to a name. Bank is the number of 0x7F
// continuation codes, id the 7-bit code without its parity bit.
var manufacturers = map[[2]uint8]string{
	{0, 0x01}: "AMD",
	{0, 0x04}: "Fujitsu",
	{0, 0x07}: "Hitachi",
	{0, 0x09}: "Intel",
	{0, 0x0E}: "Freescale (Motorola)",
	{0, 0x10}: "NEC",
	{0, 0x15}: "NXP (Philips)",
	{0, 0x17}: "Texas Instruments",
	{0, 0x18}: "Toshiba",
	{0, 0x1C}: "Mitsubishi",
	{0, 0x1F}: "Atmel",
	{0, 0x20}: "STMicroelectronics",
	{0, 0x29}: "Microchip Technology",
	{0, 0x49}: "Xilinx",
	{0, 0x4A}: "Compaq",
	{0, 0x6E}: "Altera",
	{1, 0x0E}: "Lattice Semi.",
	{1, 0x27}: "Infineon (Siemens)",
	{1, 0x40}: "Cypress (Spansion)",
	{3, 0x44}: "Renesas Technology",
	{4, 0x3B}: "ARM Ltd",
	{4, 0x44}: "Nordic VLSI ASA",
	{5, 0x51}: "GigaDevice Semiconductor (Beijing)",
	{9, 0x13}: "Raspberry Pi Trading Ltd",
}

// LookupManufacturer returns the manufacturer for a bank and identity code.
// Codes outside 1..126 or missing from the table resolve to Unknown.
func LookupManufacturer(bank, id uint8) (Manufacturer, bool) {
	m := Manufacturer{Bank: bank, ID: id, Name: Unknown}
	if id < 1 || id > 126 {
		return m, false
	}
	name, ok := manufacturers[[2]uint8{bank, id}]
	if !ok {
		return m, false
	}
	m.Name = name
	return m, true
}
