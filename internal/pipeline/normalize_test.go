package pipeline

import (
	"testing"

	"rfpflow/internal"
)

func TestNormalizeRequestItemAliases(t *testing.T) {
	raw := map[string]any{
		"item":              "1",
		"description":       "LT Power Cable",
		"no_of_cores":       "3 Core",
		"conductor_size":    2.5,
		"voltage_rating_kv": "1.1",
		"insulation":        "PVC Insulated",
		"conductor":         " Copper ",
		"spec":              "IS694",
		"qty":               "500",
	}

	item := NormalizeRequestItem(raw)
	want := internal.RequestItem{
		ItemNo:      "1",
		Description: "LT Power Cable",
		Cores:       "3",
		SizeSqmm:    "2.5",
		Voltage:     "1.1kv",
		Insulation:  "pvc",
		Conductor:   "copper",
		Standard:    "is 694",
		Quantity:    500,
	}
	if item != want {
		t.Fatalf("NormalizeRequestItem = %+v, want %+v", item, want)
	}
}

func TestNormalizeRequestItemCanonicalKeysWin(t *testing.T) {
	raw := map[string]any{
		"cores":    "4",
		"core":     "3",
		"size":     "4.0",
		"quantity": 250,
	}
	item := NormalizeRequestItem(raw)
	if item.Cores != "4" {
		t.Fatalf("canonical key should win over alias, got cores=%q", item.Cores)
	}
	if item.SizeSqmm != "4.0" {
		t.Fatalf("SizeSqmm = %q, want 4.0", item.SizeSqmm)
	}
	if item.Quantity != 250 {
		t.Fatalf("Quantity = %d, want 250", item.Quantity)
	}
}

func TestNormalizeRequestItemMalformed(t *testing.T) {
	item := NormalizeRequestItem(map[string]any{"quantity": "five hundred"})
	if item.Quantity != 0 {
		t.Fatalf("malformed quantity should become 0, got %d", item.Quantity)
	}
	if item.Voltage != "" {
		t.Fatalf("absent voltage should stay empty, got %q", item.Voltage)
	}
}

func TestNormalizeScopeOrder(t *testing.T) {
	entries := []map[string]any{
		{"item": "1", "cores": "3"},
		{"item": "2", "cores": "4"},
	}
	items := NormalizeScope(entries)
	if len(items) != 2 || items[0].ItemNo != "1" || items[1].ItemNo != "2" {
		t.Fatalf("scope order not preserved: %+v", items)
	}
}
