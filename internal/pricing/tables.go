package pricing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"rfpflow/internal/util"
)

// LoadProductPrices reads a sku_id,unit_price table (CSV or XLSX by
// extension) into a normalized-key price map.
func LoadProductPrices(path string) (map[string]float64, error) {
	return loadPriceTable(path, "sku_id", "unit_price")
}

// LoadTestPrices reads a test_name,test_price table into a normalized-key
// price map.
func LoadTestPrices(path string) (map[string]float64, error) {
	return loadPriceTable(path, "test_name", "test_price")
}

func loadPriceTable(path, keyHeader, priceHeader string) (map[string]float64, error) {
	var rows [][]string
	var err error
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		rows, err = readXLSXRows(path)
	} else {
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	return rowsToPriceMap(rows, keyHeader, priceHeader)
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(0))
}

func rowsToPriceMap(rows [][]string, keyHeader, priceHeader string) (map[string]float64, error) {
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}

	keyIdx, priceIdx := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case keyHeader:
			keyIdx = i
		case priceHeader:
			priceIdx = i
		}
	}
	if keyIdx < 0 || priceIdx < 0 {
		return nil, fmt.Errorf("price table missing %q or %q column", keyHeader, priceHeader)
	}

	out := make(map[string]float64, len(rows)-1)
	for _, row := range rows[1:] {
		if keyIdx >= len(row) || strings.TrimSpace(row[keyIdx]) == "" {
			continue
		}
		rawKey := row[keyIdx]
		rawPrice := ""
		if priceIdx < len(row) {
			rawPrice = row[priceIdx]
		}
		price, ok := util.ParseFloat(rawPrice)
		if !ok {
			return nil, fmt.Errorf("invalid price for %q: %q", strings.TrimSpace(rawKey), rawPrice)
		}
		out[util.NormalizeKey(rawKey)] = price
	}
	return out, nil
}
