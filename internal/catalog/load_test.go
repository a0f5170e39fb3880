package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

const catalogCSV = `sku_id,cores,size_sqmm,voltage_kv,insulation,conductor,standard
CAB-PVC-3C-2.5,3,2.5,1.1,PVC,Copper,IS 694
CAB-XLPE-4C-2.5,4,2.5,1.1,XLPE,Aluminium,IS 7098
,3,4.0,1.1,PVC,Copper,IS 694
`

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "product_specs.csv")
	if err := os.WriteFile(path, []byte(catalogCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	records, err := LoadCSV(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (row without sku dropped)", len(records))
	}

	first := records[0]
	if first.SkuID != "CAB-PVC-3C-2.5" {
		t.Fatalf("SkuID = %q", first.SkuID)
	}
	if first.Voltage != "1.1kv" {
		t.Fatalf("Voltage = %q, want 1.1kv", first.Voltage)
	}
	if first.Insulation != "pvc" {
		t.Fatalf("Insulation = %q, want pvc", first.Insulation)
	}
	if first.Standard != "is 694" {
		t.Fatalf("Standard = %q, want \"is 694\"", first.Standard)
	}
	if first.Raw["voltage_kv"] != "1.1" {
		t.Fatalf("raw row not preserved: %+v", first.Raw)
	}
}

func TestNormalizeRowAliases(t *testing.T) {
	record := NormalizeRow(map[string]string{
		"sku":            "CAB-001",
		"no_of_cores":    "3 Core",
		"conductor_size": "2.5 sqmm",
		"voltage":        "1.1 KV",
		"spec":           "IS694",
	})
	if record.SkuID != "CAB-001" {
		t.Fatalf("SkuID = %q", record.SkuID)
	}
	if record.Cores != "3" || record.SizeSqmm != "2.5" || record.Voltage != "1.1kv" || record.Standard != "is 694" {
		t.Fatalf("alias normalization failed: %+v", record)
	}
}

func TestBuildIndexFirstWins(t *testing.T) {
	records, _ := LoadCSV(writeCatalog(t))
	records = append(records, records[0])
	idx := BuildIndex(records)

	got, ok := idx.Lookup("cab-pvc-3c-2.5")
	if !ok {
		t.Fatal("lookup by normalized sku failed")
	}
	if got.SkuID != "CAB-PVC-3C-2.5" {
		t.Fatalf("Lookup = %q", got.SkuID)
	}
	if len(idx.BySKU) != 2 {
		t.Fatalf("BySKU = %d entries, want 2", len(idx.BySKU))
	}
}

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "product_specs.csv")
	if err := os.WriteFile(path, []byte(catalogCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
