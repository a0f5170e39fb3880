package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"rfpflow/internal"
	"rfpflow/internal/util"
)

// catalogAliases maps each canonical attribute to the column names
// accepted in catalog exports, tried in order.
var catalogAliases = map[string][]string{
	"sku_id":     {"sku_id", "sku"},
	"cores":      {"cores", "core", "no_of_cores"},
	"size_sqmm":  {"size_sqmm", "size", "conductor_size"},
	"voltage":    {"voltage_kv", "voltage", "voltage_rating_kv"},
	"insulation": {"insulation"},
	"conductor":  {"conductor"},
	"standard":   {"standard", "spec"},
}

// NormalizeRow maps one raw catalog row (CSV/XLSX headers or supplier API
// fields) onto a CatalogRecord with canonical attribute values. The
// untouched source row rides along for pricing and export lookups.
func NormalizeRow(row map[string]string) internal.CatalogRecord {
	pick := func(canonical string) string {
		for _, key := range catalogAliases[canonical] {
			if v, ok := row[key]; ok {
				return v
			}
			// header case drift is common in supplier exports
			for k, v := range row {
				if strings.EqualFold(k, key) {
					return v
				}
			}
		}
		return ""
	}

	return internal.CatalogRecord{
		SkuID:      strings.TrimSpace(pick("sku_id")),
		Cores:      util.CanonicalSpec("cores", pick("cores")),
		SizeSqmm:   util.CanonicalSpec("size_sqmm", pick("size_sqmm")),
		Voltage:    util.CanonicalSpec("voltage", pick("voltage")),
		Insulation: util.CanonicalSpec("insulation", pick("insulation")),
		Conductor:  util.CanonicalSpec("conductor", pick("conductor")),
		Standard:   util.CanonicalSpec("standard", pick("standard")),
		Raw:        row,
	}
}

// LoadCSV reads a product specs CSV (header row required) into normalized
// catalog records, preserving file order. Rows without a SKU are dropped.
func LoadCSV(path string) ([]internal.CatalogRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog csv: %w", err)
	}
	return rowsToRecords(rows), nil
}

// LoadXLSX reads the first sheet of a product specs workbook.
func LoadXLSX(path string) ([]internal.CatalogRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	return rowsToRecords(rows), nil
}

func rowsToRecords(rows [][]string) []internal.CatalogRecord {
	if len(rows) < 2 {
		return nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]internal.CatalogRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := map[string]string{}
		for i, value := range row {
			if i < len(headers) && headers[i] != "" {
				cells[headers[i]] = strings.TrimSpace(value)
			}
		}
		record := NormalizeRow(cells)
		if record.SkuID == "" {
			continue
		}
		out = append(out, record)
	}
	return out
}
