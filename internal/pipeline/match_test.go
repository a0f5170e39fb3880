package pipeline

import (
	"testing"

	"rfpflow/internal"
	"rfpflow/internal/catalog"
	"rfpflow/internal/config"
)

func testCatalog() []internal.CatalogRecord {
	rows := []map[string]string{
		{"sku_id": "CAB-PVC-3C-2.5", "cores": "3", "size_sqmm": "2.5", "voltage_kv": "1.1", "insulation": "PVC", "conductor": "Copper", "standard": "IS 694"},
		{"sku_id": "CAB-PVC-3C-4.0", "cores": "3", "size_sqmm": "4.0", "voltage_kv": "1.1", "insulation": "PVC", "conductor": "Copper", "standard": "IS 694"},
		{"sku_id": "CAB-XLPE-4C-2.5", "cores": "4", "size_sqmm": "2.5", "voltage_kv": "1.1", "insulation": "XLPE", "conductor": "Aluminium", "standard": "IS 7098"},
	}
	out := make([]internal.CatalogRecord, 0, len(rows))
	for _, row := range rows {
		rec := internal.CatalogRecord{
			SkuID:      row["sku_id"],
			Cores:      row["cores"],
			SizeSqmm:   row["size_sqmm"],
			Voltage:    row["voltage_kv"] + "kv",
			Insulation: normalizeLower(row["insulation"]),
			Conductor:  normalizeLower(row["conductor"]),
			Standard:   normalizeStandard(row["standard"]),
			Raw:        row,
		}
		out = append(out, rec)
	}
	return out
}

func normalizeLower(v string) string {
	switch v {
	case "PVC":
		return "pvc"
	case "XLPE":
		return "xlpe"
	case "Copper":
		return "copper"
	case "Aluminium":
		return "aluminium"
	}
	return v
}

func normalizeStandard(v string) string {
	switch v {
	case "IS 694":
		return "is 694"
	case "IS 7098":
		return "is 7098"
	}
	return v
}

func perfectItem() internal.RequestItem {
	return internal.RequestItem{
		ItemNo:     "1",
		Cores:      "3",
		SizeSqmm:   "2.5",
		Voltage:    "1.1kv",
		Insulation: "pvc",
		Conductor:  "copper",
		Standard:   "is 694",
		Quantity:   500,
	}
}

func TestSpecMatchPerfect(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, catalog.BuildIndex(testCatalog()))

	got := m.SpecMatch(perfectItem(), testCatalog()[0])
	if got != 100.0 {
		t.Fatalf("SpecMatch = %v, want 100.0", got)
	}
}

func TestSpecMatchFiveOfSix(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, catalog.BuildIndex(testCatalog()))

	item := perfectItem()
	item.Conductor = "aluminium"
	got := m.SpecMatch(item, testCatalog()[0])
	if got != 83.33 {
		t.Fatalf("SpecMatch = %v, want 83.33", got)
	}
}

func TestSpecMatchSizeTolerance(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, catalog.BuildIndex(testCatalog()))

	item := perfectItem()
	item.SizeSqmm = "2.7"
	if got := m.SpecMatch(item, testCatalog()[0]); got != 100.0 {
		t.Fatalf("size 2.7 vs 2.5 should be within tolerance, got %v", got)
	}

	item.SizeSqmm = "2.8"
	if got := m.SpecMatch(item, testCatalog()[0]); got != 83.33 {
		t.Fatalf("size 2.8 vs 2.5 should miss tolerance, got %v", got)
	}
}

func TestSpecMatchEmptyNeverMatches(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, catalog.BuildIndex(testCatalog()))

	item := perfectItem()
	item.Voltage = ""
	record := testCatalog()[0]
	record.Voltage = ""
	if got := m.SpecMatch(item, record); got != 83.33 {
		t.Fatalf("two empty voltages must not count as a match, got %v", got)
	}
}

func TestRankStableOrder(t *testing.T) {
	cfg, _ := config.Load()
	records := testCatalog()
	m := NewMatcher(cfg, catalog.BuildIndex(records))

	// An item matching nothing scores 0 against every record; ranking must
	// then preserve catalog order.
	item := internal.RequestItem{Cores: "9", SizeSqmm: "95", Voltage: "33kv", Insulation: "epr", Conductor: "silver", Standard: "bs 5467"}
	ranking := m.Rank(item)
	if len(ranking) != len(records) {
		t.Fatalf("ranking size = %d, want %d", len(ranking), len(records))
	}
	for i, res := range ranking {
		if res.SkuID != records[i].SkuID {
			t.Fatalf("tie-break broke catalog order at %d: got %s, want %s", i, res.SkuID, records[i].SkuID)
		}
	}
}

func TestRecommendTop3AndFinal(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, catalog.BuildIndex(testCatalog()))

	rec := m.Recommend(1, perfectItem())
	if rec.FinalSKU != "CAB-PVC-3C-2.5" {
		t.Fatalf("FinalSKU = %s, want CAB-PVC-3C-2.5", rec.FinalSKU)
	}
	if rec.FinalMatchPercent != 100.0 {
		t.Fatalf("FinalMatchPercent = %v, want 100.0", rec.FinalMatchPercent)
	}
	if len(rec.Top3) != 3 {
		t.Fatalf("Top3 size = %d, want 3", len(rec.Top3))
	}
	if rec.Quantity != 500 {
		t.Fatalf("Quantity = %d, want 500", rec.Quantity)
	}

	table := rec.Comparison
	if len(table.Parameters) != 6 {
		t.Fatalf("comparison parameters = %d, want 6", len(table.Parameters))
	}
	if len(table.Candidates) != 3 {
		t.Fatalf("comparison candidates = %d, want 3", len(table.Candidates))
	}
	if table.RFPValues["voltage"] != "1.1kv" {
		t.Fatalf("rfp voltage = %q, want 1.1kv", table.RFPValues["voltage"])
	}
	if table.Candidates[0].Values["conductor"] != "copper" {
		t.Fatalf("candidate conductor = %q, want copper", table.Candidates[0].Values["conductor"])
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	cfg, _ := config.Load()
	m := NewMatcher(cfg, catalog.BuildIndex(nil))

	rec := m.Recommend(1, perfectItem())
	if rec.FinalSKU != "" || len(rec.Top3) != 0 {
		t.Fatalf("empty catalog should give empty recommendation, got %+v", rec)
	}
}
