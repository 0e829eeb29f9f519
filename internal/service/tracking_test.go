package service

import (
	"regexp"
	"testing"
)

func TestCarrierPrefix(t *testing.T) {
	tests := map[string]string{
		"DHL Express":  "DHL",
		"maersk line":  "MAE",
		"U.P.S.":       "UPS",
		"A1":           "SHP",
		"":             "SHP",
		"Ørsted Cargo": "RST",
	}
	for name, want := range tests {
		if got := carrierPrefix(name); got != want {
			t.Errorf("carrierPrefix(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestSnowflakeTracking(t *testing.T) {
	gen, err := NewSnowflakeTracking(1)
	if err != nil {
		t.Fatalf("NewSnowflakeTracking failed: %v", err)
	}

	format := regexp.MustCompile(`^DHL-[0-9A-Z]+-[A-Z2-9]{4}$`)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := gen.Generate("DHL Express")
		if !format.MatchString(n) {
			t.Fatalf("unexpected format %q", n)
		}
		if seen[n] {
			t.Fatalf("duplicate tracking number %q", n)
		}
		seen[n] = true
	}

	if _, err := NewSnowflakeTracking(5000); err == nil {
		t.Error("expected an error for an out of range node id")
	}
}
