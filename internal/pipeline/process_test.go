package pipeline

import (
	"path/filepath"
	"testing"

	"rfpflow/internal"
	"rfpflow/internal/catalog"
	"rfpflow/internal/config"
	"rfpflow/internal/storage"
)

// Recommendations persisted before a catalog re-import may spell the SKU
// differently from the current rows. Pricing must resolve them back to the
// catalog spelling instead of parroting the stored one.
func TestPriceRFPResolvesStoredSKUSpelling(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.UpsertProducts([]internal.CatalogRecord{catalog.NormalizeRow(map[string]string{
		"sku_id": "CAB-PVC-3C-2.5", "cores": "3", "size_sqmm": "2.5",
		"voltage_kv": "1.1", "insulation": "PVC", "conductor": "Copper", "standard": "IS 694",
	})}); err != nil {
		t.Fatal(err)
	}

	row, err := db.UpsertRFP("RFP-RESPELL-001", "LT Cables", "Utility Co", "2026-09-30", "file:test", "matched")
	if err != nil {
		t.Fatal(err)
	}
	rec := internal.ItemRecommendation{
		ItemIndex:         1,
		FinalSKU:          "cab-pvc-3c-2.5",
		FinalMatchPercent: 100.0,
		Quantity:          10,
	}
	if err := db.InsertRecommendation(row.ID, rec); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	cfg.ProductPricingCSV = writePricing(t, tmp, "product_pricing.csv",
		"sku_id,unit_price\nCAB-PVC-3C-2.5,85.0\n")
	cfg.TestPricingCSV = writePricing(t, tmp, "test_pricing.csv",
		"test_name,test_price\n")

	result, err := NewProcessingService(db, cfg).PriceRFP("RFP-RESPELL-001", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(result.Lines))
	}
	if result.Lines[0].SKU != "CAB-PVC-3C-2.5" {
		t.Fatalf("line sku = %q, want the catalog spelling CAB-PVC-3C-2.5", result.Lines[0].SKU)
	}
	if result.Totals.GrandTotal != 850.0 {
		t.Fatalf("GrandTotal = %v, want 850.0", result.Totals.GrandTotal)
	}
}
