package internal

// SpecParameters are the six technical attributes compared between a
// request item and a catalog record. Order is fixed and shared by the
// matcher, the comparison table and the exports.
var SpecParameters = []string{"cores", "size_sqmm", "voltage", "insulation", "conductor", "standard"}

// RequestItem is one normalized scope-of-supply line. All six comparable
// attributes hold canonical values; Quantity has already been through the
// tolerant integer parse (0 when unparseable).
type RequestItem struct {
	ItemNo      string
	Description string
	Cores       string
	SizeSqmm    string
	Voltage     string
	Insulation  string
	Conductor   string
	Standard    string
	Quantity    int
}

func (r RequestItem) Spec(param string) string {
	switch param {
	case "cores":
		return r.Cores
	case "size_sqmm":
		return r.SizeSqmm
	case "voltage":
		return r.Voltage
	case "insulation":
		return r.Insulation
	case "conductor":
		return r.Conductor
	case "standard":
		return r.Standard
	default:
		return ""
	}
}

// CatalogRecord is one normalized product row. Raw keeps the original row
// untouched for pricing and export lookups later in the run.
type CatalogRecord struct {
	SkuID      string
	Cores      string
	SizeSqmm   string
	Voltage    string
	Insulation string
	Conductor  string
	Standard   string
	Raw        map[string]string
}

func (c CatalogRecord) Spec(param string) string {
	switch param {
	case "cores":
		return c.Cores
	case "size_sqmm":
		return c.SizeSqmm
	case "voltage":
		return c.Voltage
	case "insulation":
		return c.Insulation
	case "conductor":
		return c.Conductor
	case "standard":
		return c.Standard
	default:
		return ""
	}
}

// MatchResult scores one (RequestItem, CatalogRecord) pair. MatchPercent is
// always a multiple of 100/6 rounded to two decimals.
type MatchResult struct {
	SkuID        string        `json:"sku_id"`
	MatchPercent float64       `json:"match_percent"`
	Record       CatalogRecord `json:"product"`
}

type ComparisonColumn struct {
	SkuID        string            `json:"sku_id"`
	Values       map[string]string `json:"values"`
	MatchPercent float64           `json:"match_percent"`
}

type ComparisonTable struct {
	Parameters []string           `json:"parameters"`
	RFPValues  map[string]string  `json:"rfp_values"`
	Candidates []ComparisonColumn `json:"skus"`
}

// ItemRecommendation is the technical-stage output for one request item.
// FinalSKU is empty when the catalog produced no candidates.
type ItemRecommendation struct {
	ItemIndex         int             `json:"item_index"`
	Item              RequestItem     `json:"rfp_specs"`
	Top3              []MatchResult   `json:"top_3"`
	Comparison        ComparisonTable `json:"comparison_table"`
	FinalSKU          string          `json:"final_recommended_sku"`
	FinalMatchPercent float64         `json:"final_match_percent"`
	Quantity          int             `json:"quantity"`
}

type TechnicalResult struct {
	RFPID  string               `json:"rfp_id"`
	Title  string               `json:"title"`
	Issuer string               `json:"issuer"`
	Items  []ItemRecommendation `json:"items"`
}

type TestCharge struct {
	TestName  string  `json:"test_name"`
	TestPrice float64 `json:"test_price"`
}

type PricingLine struct {
	ItemNo        int          `json:"item_no"`
	SKU           string       `json:"sku"`
	MatchPercent  float64      `json:"match_percent"`
	Quantity      int          `json:"quantity"`
	UnitPrice     float64      `json:"unit_price"`
	MaterialCost  float64      `json:"material_cost"`
	Tests         []TestCharge `json:"tests"`
	TestCostTotal float64      `json:"test_cost_total"`
	TotalCost     float64      `json:"total_cost"`
}

type Totals struct {
	MaterialTotal float64 `json:"material_total"`
	TestTotal     float64 `json:"test_total"`
	GrandTotal    float64 `json:"grand_total"`
}

// SkippedTest records a required test that had no price and was excluded
// from the line's test cost. Collected so callers can audit dropped cost.
type SkippedTest struct {
	ItemNo   int    `json:"item_no"`
	TestName string `json:"test_name"`
}

type PricingResult struct {
	RFPID        string        `json:"rfp_id"`
	Title        string        `json:"title"`
	Issuer       string        `json:"issuer"`
	Lines        []PricingLine `json:"pricing_summary"`
	Totals       Totals        `json:"totals"`
	SkippedTests []SkippedTest `json:"skipped_tests"`
	// UnpricedItems lists item indexes whose recommendation carried no
	// final SKU and therefore could not be priced.
	UnpricedItems []int `json:"unpriced_items"`
}

// RFPListing is one entry scraped from a listing page.
type RFPListing struct {
	Title      string `json:"title"`
	Issuer     string `json:"issuer"`
	DueDate    string `json:"due_date"`
	RFPLink    string `json:"rfp_link"`
	SourceHTML string `json:"source_html"`
}

// RFPDocument is a parsed RFP: identity fields plus the raw scope-of-supply
// entries (heterogeneous key spellings, resolved during normalization).
type RFPDocument struct {
	RFPID         string           `json:"rfp_id"`
	Title         string           `json:"title"`
	Issuer        string           `json:"issuer"`
	DueDate       string           `json:"due_date"`
	ScopeOfSupply []map[string]any `json:"scope_of_supply"`
	TestsRequired []string         `json:"tests_required"`
}

type RFPRow struct {
	ID         int
	RFPID      string
	Title      string
	Issuer     string
	DueDate    string
	SourceRef  string
	Status     string
	ReceivedAt string
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}
