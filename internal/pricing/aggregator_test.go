package pricing

import (
	"errors"
	"testing"

	"rfpflow/internal"
)

func testTechnical() internal.TechnicalResult {
	return internal.TechnicalResult{
		RFPID:  "RFP-2024-001",
		Title:  "Supply of LT Power Cables",
		Issuer: "State Power Utility",
		Items: []internal.ItemRecommendation{
			{
				ItemIndex:         1,
				FinalSKU:          "CAB-PVC-3C-2.5",
				FinalMatchPercent: 100.0,
				Quantity:          500,
			},
		},
	}
}

func TestPriceMaterialAndTests(t *testing.T) {
	products := map[string]float64{"cabpvc3c2.5": 85.0}
	tests := map[string]float64{"highvoltagetest": 100.0}

	agg := NewAggregator(products, tests)
	result, err := agg.Price(testTechnical(), []string{"High Voltage Test", "Unknown Test"})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(result.Lines))
	}
	line := result.Lines[0]
	if line.MaterialCost != 42500.0 {
		t.Fatalf("MaterialCost = %v, want 42500.0", line.MaterialCost)
	}
	if line.TestCostTotal != 100.0 {
		t.Fatalf("TestCostTotal = %v, want 100.0", line.TestCostTotal)
	}
	if line.TotalCost != 42600.0 {
		t.Fatalf("TotalCost = %v, want 42600.0", line.TotalCost)
	}
	if result.Totals.GrandTotal != 42600.0 {
		t.Fatalf("GrandTotal = %v, want 42600.0", result.Totals.GrandTotal)
	}

	if len(result.SkippedTests) != 1 || result.SkippedTests[0].TestName != "Unknown Test" {
		t.Fatalf("skipped tests = %+v, want the unknown test recorded", result.SkippedTests)
	}
	if len(line.Tests) != 1 || line.Tests[0].TestName != "High Voltage Test" {
		t.Fatalf("priced tests = %+v, want only the known test", line.Tests)
	}
}

func TestPriceMissingSKUFailsRun(t *testing.T) {
	agg := NewAggregator(map[string]float64{}, map[string]float64{})
	result, err := agg.Price(testTechnical(), nil)
	if !errors.Is(err, ErrSKUNotPriced) {
		t.Fatalf("err = %v, want ErrSKUNotPriced", err)
	}
	if len(result.Lines) != 0 || result.Totals.GrandTotal != 0 {
		t.Fatalf("failed run must not leak partial totals: %+v", result)
	}
}

func TestPriceSKULookupIsNormalized(t *testing.T) {
	agg := NewAggregator(map[string]float64{"cabpvc3c2.5": 85.0}, nil)
	technical := testTechnical()
	technical.Items[0].FinalSKU = "cab-pvc-3c-2.5"

	result, err := agg.Price(technical, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Totals.MaterialTotal != 42500.0 {
		t.Fatalf("MaterialTotal = %v, want 42500.0", result.Totals.MaterialTotal)
	}
}

func TestPriceUnpricedItems(t *testing.T) {
	technical := testTechnical()
	technical.Items = append(technical.Items, internal.ItemRecommendation{ItemIndex: 2, FinalSKU: "", Quantity: 100})

	agg := NewAggregator(map[string]float64{"cabpvc3c2.5": 85.0}, nil)
	result, err := agg.Price(technical, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(result.Lines))
	}
	if len(result.UnpricedItems) != 1 || result.UnpricedItems[0] != 2 {
		t.Fatalf("UnpricedItems = %v, want [2]", result.UnpricedItems)
	}
}

func TestPriceZeroQuantity(t *testing.T) {
	technical := testTechnical()
	technical.Items[0].Quantity = 0

	agg := NewAggregator(map[string]float64{"cabpvc3c2.5": 85.0}, nil)
	result, err := agg.Price(technical, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Lines[0].MaterialCost != 0 {
		t.Fatalf("zero quantity must price to zero material cost, got %v", result.Lines[0].MaterialCost)
	}
}
