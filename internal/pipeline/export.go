package pipeline

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"rfpflow/internal"
)

// ExportTechnicalToXLSX writes one row per request item: normalized specs,
// the top-3 candidates and the final recommendation.
func ExportTechnicalToXLSX(technical internal.TechnicalResult, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"item_no", "description", "cores", "size_sqmm", "voltage", "insulation", "conductor", "standard", "quantity",
		"final_sku", "final_match_percent",
		"candidate1_sku", "candidate1_percent",
		"candidate2_sku", "candidate2_percent",
		"candidate3_sku", "candidate3_percent",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range technical.Items {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.ItemIndex)
		set(2, rec.Item.Description)
		set(3, rec.Item.Cores)
		set(4, rec.Item.SizeSqmm)
		set(5, rec.Item.Voltage)
		set(6, rec.Item.Insulation)
		set(7, rec.Item.Conductor)
		set(8, rec.Item.Standard)
		set(9, rec.Quantity)
		set(10, rec.FinalSKU)
		set(11, rec.FinalMatchPercent)

		for c, candidate := range rec.Top3 {
			set(12+c*2, candidate.SkuID)
			set(13+c*2, candidate.MatchPercent)
		}
	}

	return saveXLSX(f, outputPath)
}

// ExportPricingToXLSX writes the pricing lines plus a totals block and, when
// present, the skipped-test and unpriced-item audit rows.
func ExportPricingToXLSX(result internal.PricingResult, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"item_no", "sku", "match_percent", "quantity", "unit_price",
		"material_cost", "test_cost_total", "total_cost",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	r := 1
	for _, line := range result.Lines {
		r++
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, line.ItemNo)
		set(2, line.SKU)
		set(3, line.MatchPercent)
		set(4, line.Quantity)
		set(5, line.UnitPrice)
		set(6, line.MaterialCost)
		set(7, line.TestCostTotal)
		set(8, line.TotalCost)
	}

	r += 2
	writeKV := func(label string, value any) {
		labelCell, _ := excelize.CoordinatesToCellName(1, r)
		valueCell, _ := excelize.CoordinatesToCellName(2, r)
		_ = f.SetCellValue(sheet, labelCell, label)
		_ = f.SetCellValue(sheet, valueCell, value)
		r++
	}
	writeKV("material_total", result.Totals.MaterialTotal)
	writeKV("test_total", result.Totals.TestTotal)
	writeKV("grand_total", result.Totals.GrandTotal)

	for _, skipped := range result.SkippedTests {
		writeKV("skipped_test (item "+strconv.Itoa(skipped.ItemNo)+")", skipped.TestName)
	}
	for _, idx := range result.UnpricedItems {
		writeKV("unpriced_item", idx)
	}

	return saveXLSX(f, outputPath)
}

func saveXLSX(f *excelize.File, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
