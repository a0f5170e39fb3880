package pipeline

import (
	"strings"

	"rfpflow/internal"
	"rfpflow/internal/util"
)

// requestAliases resolves the key-name drift between RFP producers. For
// each canonical key the accepted source keys are tried in order; the
// first present wins. The catalog side has its own table in the catalog
// package.
var requestAliases = map[string][]string{
	"item_no":     {"item_no", "item"},
	"description": {"description"},
	"cores":       {"cores", "core", "no_of_cores"},
	"size_sqmm":   {"size_sqmm", "size", "conductor_size"},
	"voltage":     {"voltage", "voltage_rating_kv", "voltage_kv"},
	"insulation":  {"insulation"},
	"conductor":   {"conductor"},
	"standard":    {"standard", "spec"},
	"quantity":    {"quantity", "qty"},
}

func resolveAlias(raw map[string]any, canonical string, aliases map[string][]string) (any, bool) {
	for _, key := range aliases[canonical] {
		if v, ok := raw[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// NormalizeRequestItem maps one raw scope-of-supply entry onto the
// canonical attribute set and canonicalizes every spec value. It never
// fails: absent fields become empty strings and a malformed quantity
// becomes 0.
func NormalizeRequestItem(raw map[string]any) internal.RequestItem {
	pick := func(canonical string) any {
		v, _ := resolveAlias(raw, canonical, requestAliases)
		return v
	}

	qty := 0
	if v, ok := resolveAlias(raw, "quantity", requestAliases); ok {
		qty = util.ParseQuantity(v)
	}

	return internal.RequestItem{
		ItemNo:      strings.TrimSpace(util.Stringify(pick("item_no"))),
		Description: strings.TrimSpace(util.Stringify(pick("description"))),
		Cores:       util.CanonicalSpec("cores", pick("cores")),
		SizeSqmm:    util.CanonicalSpec("size_sqmm", pick("size_sqmm")),
		Voltage:     util.CanonicalSpec("voltage", pick("voltage")),
		Insulation:  util.CanonicalSpec("insulation", pick("insulation")),
		Conductor:   util.CanonicalSpec("conductor", pick("conductor")),
		Standard:    util.CanonicalSpec("standard", pick("standard")),
		Quantity:    qty,
	}
}

// NormalizeScope converts a document's raw scope entries in order.
func NormalizeScope(entries []map[string]any) []internal.RequestItem {
	out := make([]internal.RequestItem, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NormalizeRequestItem(entry))
	}
	return out
}
