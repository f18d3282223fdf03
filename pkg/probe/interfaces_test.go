package probe

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		vid, pid uint16
		kind     Kind
		backend  string
		ok       bool
	}{
		{0x0403, 0x6014, KindFTDI, "periph", true},
		{0x0403, 0x6010, KindFTDI, "periph", true},
		{0x2e8a, 0x000a, KindPico, "", true},
		{0x2e8a, 0x000c, KindCMSISDAP, "", true},
		{0x1234, 0x5678, "", "", false},
	}
	for _, tt := range tests {
		info, ok := Classify(tt.vid, tt.pid)
		if ok != tt.ok || info.Kind != tt.kind || info.Backend != tt.backend {
			t.Fatalf("Classify(%04X:%04X) = %+v, %v", tt.vid, tt.pid, info, ok)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := (Info{Description: "FTDI FT232H"}).Label(); got != "FTDI FT232H" {
		t.Fatalf("Label() = %q", got)
	}
	if got := (Info{Kind: KindFTDI, VendorID: 0x0403, ProductID: 0x6014}).Label(); got != "ftdi (0403:6014)" {
		t.Fatalf("Label() = %q", got)
	}
	if got := (Info{VendorID: 1, ProductID: 2}).Label(); got != "Adapter 0001:0002" {
		t.Fatalf("Label() = %q", got)
	}
}
