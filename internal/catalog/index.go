package catalog

import (
	"rfpflow/internal"
	"rfpflow/internal/util"
)

// Index keeps the catalog in scan order (the ranking tie-break depends on
// it) and adds a normalized-SKU lookup so the pricing stage can resolve a
// stored recommendation back to its source row.
type Index struct {
	Records []internal.CatalogRecord
	BySKU   map[string]internal.CatalogRecord
}

func BuildIndex(records []internal.CatalogRecord) *Index {
	idx := &Index{
		Records: records,
		BySKU:   make(map[string]internal.CatalogRecord, len(records)),
	}
	for _, record := range records {
		key := util.NormalizeKey(record.SkuID)
		if key == "" {
			continue
		}
		if _, exists := idx.BySKU[key]; !exists {
			idx.BySKU[key] = record
		}
	}
	return idx
}

// Lookup resolves a SKU in any spelling to its catalog record.
func (i *Index) Lookup(sku string) (internal.CatalogRecord, bool) {
	record, ok := i.BySKU[util.NormalizeKey(sku)]
	return record, ok
}
