package util

import "testing"

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  CAB-PVC-3C-2.5 ", "cabpvc3c2.5"},
		{"High Voltage Test", "highvoltagetest"},
		{"XLPE", "xlpe"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeKey(tc.in); got != tc.want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalSpecVoltage(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"1.1", "1.1kv"},
		{"1.1kV", "1.1kv"},
		{"1.1 KV", "1.1kv"},
		{"1.1-kv", "1.1kv"},
		{1.1, "1.1kv"},
		{"", ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := CanonicalSpec("voltage", tc.in); got != tc.want {
			t.Errorf("CanonicalSpec(voltage, %v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalSpecFields(t *testing.T) {
	cases := []struct {
		field string
		in    any
		want  string
	}{
		{"cores", "3 Core", "3"},
		{"cores", "3", "3"},
		{"cores", 3.0, "3"},
		{"size_sqmm", "2.5 sqmm", "2.5"},
		{"size_sqmm", 2.5, "2.5"},
		{"insulation", "PVC Insulated", "pvc"},
		{"insulation", "XLPE", "xlpe"},
		{"conductor", " Copper ", "copper"},
		{"standard", "IS694", "is 694"},
		{"standard", "IS 694", "is 694"},
		{"standard", "IEC 60502", "iec60502"},
		{"standard", "", ""},
	}
	for _, tc := range cases {
		if got := CanonicalSpec(tc.field, tc.in); got != tc.want {
			t.Errorf("CanonicalSpec(%s, %v) = %q, want %q", tc.field, tc.in, got, tc.want)
		}
	}
}

func TestStringify(t *testing.T) {
	if got := Stringify(3.0); got != "3" {
		t.Errorf("Stringify(3.0) = %q, want \"3\"", got)
	}
	if got := Stringify(2.5); got != "2.5" {
		t.Errorf("Stringify(2.5) = %q, want \"2.5\"", got)
	}
	if got := Stringify(nil); got != "" {
		t.Errorf("Stringify(nil) = %q, want \"\"", got)
	}
}
