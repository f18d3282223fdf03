package deviceinfo

import "testing"

func TestLookupKnown(t *testing.T) {
	info := Lookup(0x0BC12477)
	if info.Examples != "RP2040" {
		t.Fatalf("Examples = %q, want RP2040", info.Examples)
	}
	if info.DPVersion != 2 || !info.MinDP || !info.Multidrop {
		t.Fatalf("architecture = v%d min=%v multidrop=%v, want v2 min multidrop",
			info.DPVersion, info.MinDP, info.Multidrop)
	}
	if info.Manufacturer.Name != "ARM Ltd" {
		t.Fatalf("Manufacturer = %q, want ARM Ltd", info.Manufacturer.Name)
	}
}

func TestLookupUnknown(t *testing.T) {
	info := Lookup(0x12345679)
	if info.Name != "Unknown debug port" {
		t.Fatalf("Name = %q", info.Name)
	}
	if info.IDCode.Raw != 0x12345679 {
		t.Fatalf("IDCode.Raw = 0x%08X", info.IDCode.Raw)
	}
}
