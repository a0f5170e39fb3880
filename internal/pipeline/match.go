package pipeline

import (
	"sort"

	"rfpflow/internal"
	"rfpflow/internal/catalog"
	"rfpflow/internal/config"
	"rfpflow/internal/util"
)

const specAttributeCount = 6

type Matcher struct {
	cfg   config.Config
	index *catalog.Index
}

func NewMatcher(cfg config.Config, index *catalog.Index) *Matcher {
	return &Matcher{cfg: cfg, index: index}
}

// SpecMatch scores one request item against one catalog record. Each of
// the six attributes contributes a full unit or nothing; the result is a
// percentage rounded to two decimals.
func (m *Matcher) SpecMatch(item internal.RequestItem, record internal.CatalogRecord) float64 {
	matched := 0
	for _, attr := range internal.SpecParameters {
		if m.attributeMatches(attr, item.Spec(attr), record.Spec(attr)) {
			matched++
		}
	}
	return util.Round2(float64(matched) / specAttributeCount * 100)
}

func (m *Matcher) attributeMatches(attr, reqVal, candVal string) bool {
	switch attr {
	case "size_sqmm":
		reqSize, reqOK := util.ParseFloat(reqVal)
		candSize, candOK := util.ParseFloat(candVal)
		if reqOK && candOK {
			diff := reqSize - candSize
			if diff < 0 {
				diff = -diff
			}
			return diff <= m.cfg.SizeToleranceSqmm
		}
		return reqVal != "" && reqVal == candVal
	case "cores":
		reqCores, reqOK := util.ParseFloat(reqVal)
		candCores, candOK := util.ParseFloat(candVal)
		if reqOK && candOK {
			return int(reqCores) == int(candCores)
		}
		return reqVal != "" && reqVal == candVal
	default:
		// voltage carries its canonical "kv" suffix by this point, so
		// plain equality is sufficient; empty never matches for any of
		// the string attributes.
		return reqVal != "" && reqVal == candVal
	}
}

// Rank scores the item against the full catalog and sorts descending by
// match percent. The sort is stable: equal scores keep catalog scan order.
func (m *Matcher) Rank(item internal.RequestItem) []internal.MatchResult {
	ranking := make([]internal.MatchResult, 0, len(m.index.Records))
	for _, record := range m.index.Records {
		ranking = append(ranking, internal.MatchResult{
			SkuID:        record.SkuID,
			MatchPercent: m.SpecMatch(item, record),
			Record:       record,
		})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].MatchPercent > ranking[j].MatchPercent
	})
	return ranking
}

// Recommend builds the full technical-stage result for one request item:
// ranking, top-3 selection, comparison table and final SKU. An empty
// catalog is a valid degenerate case producing an empty FinalSKU.
func (m *Matcher) Recommend(itemIndex int, item internal.RequestItem) internal.ItemRecommendation {
	ranking := m.Rank(item)

	top3 := ranking
	if len(top3) > 3 {
		top3 = top3[:3]
	}

	rec := internal.ItemRecommendation{
		ItemIndex:  itemIndex,
		Item:       item,
		Top3:       top3,
		Comparison: BuildComparisonTable(item, top3),
		Quantity:   item.Quantity,
	}
	if len(top3) > 0 {
		rec.FinalSKU = top3[0].SkuID
		rec.FinalMatchPercent = top3[0].MatchPercent
	}
	return rec
}
