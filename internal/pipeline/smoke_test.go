package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"rfpflow/internal"
	"rfpflow/internal/catalog"
	"rfpflow/internal/config"
	"rfpflow/internal/storage"
)

func TestSmokeEmailToPricedWorkbooks(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	rows := []map[string]string{
		{"sku_id": "CAB-PVC-3C-2.5", "cores": "3", "size_sqmm": "2.5", "voltage_kv": "1.1", "insulation": "PVC", "conductor": "Copper", "standard": "IS 694"},
		{"sku_id": "CAB-XLPE-4C-2.5", "cores": "4", "size_sqmm": "2.5", "voltage_kv": "1.1", "insulation": "XLPE", "conductor": "Aluminium", "standard": "IS 7098"},
	}
	records := make([]internal.CatalogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, catalog.NormalizeRow(row))
	}
	if err := db.UpsertProducts(records); err != nil {
		t.Fatal(err)
	}

	rawBlob, err := os.ReadFile(filepath.Join("testdata", "sample_rfp.eml"))
	if err != nil {
		t.Fatal(err)
	}
	rawPath := filepath.Join(tmp, "fixture.eml")
	if err := os.WriteFile(rawPath, rawBlob, 0o644); err != nil {
		t.Fatal(err)
	}

	email, err := db.UpsertEmail("gmail", "<rfp-001@utility.example>", "Request for Proposal - LT Power Cables", "procurement@utility.example", "2026-08-24T10:00:00Z", "hash", rawPath, "fetched")
	if err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	cfg.ProductPricingCSV = writePricing(t, tmp, "product_pricing.csv",
		"sku_id,unit_price\nCAB-PVC-3C-2.5,85.0\nCAB-XLPE-4C-2.5,120.5\n")
	cfg.TestPricingCSV = writePricing(t, tmp, "test_pricing.csv",
		"test_name,test_price\nHigh Voltage Test,100\n")

	proc := NewProcessingService(db, cfg)
	res, err := proc.ProcessEmail(email)
	if err != nil {
		t.Fatal(err)
	}
	if res.Technical.RFPID != "RFP-2024-001" {
		t.Fatalf("rfp id = %q", res.Technical.RFPID)
	}
	if len(res.Technical.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(res.Technical.Items))
	}
	rec := res.Technical.Items[0]
	if rec.FinalSKU != "CAB-PVC-3C-2.5" || rec.FinalMatchPercent != 100.0 {
		t.Fatalf("recommendation = %+v", rec)
	}

	pricingResult, err := proc.PriceRFP("RFP-2024-001", []string{"High Voltage Test", "Unknown Test"})
	if err != nil {
		t.Fatal(err)
	}
	if pricingResult.Totals.GrandTotal != 42600.0 {
		t.Fatalf("GrandTotal = %v, want 42600.0", pricingResult.Totals.GrandTotal)
	}
	if len(pricingResult.SkippedTests) != 1 {
		t.Fatalf("skipped = %+v, want the unknown test", pricingResult.SkippedTests)
	}

	techOut := filepath.Join(tmp, "technical.xlsx")
	if err := ExportTechnicalToXLSX(res.Technical, techOut); err != nil {
		t.Fatal(err)
	}
	priceOut := filepath.Join(tmp, "pricing.xlsx")
	if err := ExportPricingToXLSX(pricingResult, priceOut); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{techOut, priceOut} {
		if _, err := os.Stat(path); err != nil {
			t.Fatal(err)
		}
	}

	stored, err := db.GetRFPByRFPID("RFP-2024-001")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || stored.Status != "priced" {
		t.Fatalf("rfp status = %+v, want priced", stored)
	}
}

func writePricing(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
