package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"rfpflow/internal"
	"rfpflow/internal/catalog"
	"rfpflow/internal/config"
	"rfpflow/internal/pricing"
	"rfpflow/internal/storage"
)

type ProcessingService struct {
	db  *storage.DB
	cfg config.Config
}

func NewProcessingService(db *storage.DB, cfg config.Config) *ProcessingService {
	return &ProcessingService{db: db, cfg: cfg}
}

type ProcessResult struct {
	RFPRow    internal.RFPRow
	Technical internal.TechnicalResult
}

// ProcessDocument runs the technical stage for one RFP: normalize the
// scope of supply, rank each item against the stored catalog and persist
// the per-item recommendations. Re-processing the same RFP replaces its
// previous output.
func (s *ProcessingService) ProcessDocument(doc internal.RFPDocument, sourceRef string) (ProcessResult, error) {
	start := time.Now()

	row, err := s.db.UpsertRFP(doc.RFPID, doc.Title, doc.Issuer, doc.DueDate, sourceRef, "loaded")
	if err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.ClearRFPProcessing(row.ID); err != nil {
		return ProcessResult{}, err
	}

	products, err := s.db.ListProducts()
	if err != nil {
		return ProcessResult{}, err
	}
	matcher := NewMatcher(s.cfg, catalog.BuildIndex(products))

	technical := internal.TechnicalResult{
		RFPID:  doc.RFPID,
		Title:  doc.Title,
		Issuer: doc.Issuer,
	}

	matchedCount := 0
	for i, item := range NormalizeScope(doc.ScopeOfSupply) {
		rec := matcher.Recommend(i+1, item)
		if err := s.db.InsertRecommendation(row.ID, rec); err != nil {
			return ProcessResult{}, err
		}
		if rec.FinalSKU != "" {
			matchedCount++
		}
		technical.Items = append(technical.Items, rec)
	}

	if err := s.db.UpdateRFPStatus(row.ID, "matched"); err != nil {
		return ProcessResult{}, err
	}
	row.Status = "matched"
	_ = s.db.InsertRun(traceID(), row.ID, 0,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"items": len(technical.Items), "matched": matchedCount, "catalog": len(products)})

	return ProcessResult{RFPRow: row, Technical: technical}, nil
}

// PriceRFP runs the pricing stage over the stored recommendations of an
// already-matched RFP. requiredTests applies to every priced line.
func (s *ProcessingService) PriceRFP(rfpID string, requiredTests []string) (internal.PricingResult, error) {
	start := time.Now()

	row, err := s.db.MustRFPByRFPID(rfpID)
	if err != nil {
		return internal.PricingResult{}, err
	}
	recs, err := s.db.ListRecommendations(row.ID)
	if err != nil {
		return internal.PricingResult{}, err
	}
	if len(recs) == 0 {
		return internal.PricingResult{}, fmt.Errorf("rfp has no recommendations, run the technical stage first: %s", rfpID)
	}

	products, err := s.db.ListProducts()
	if err != nil {
		return internal.PricingResult{}, err
	}
	idx := catalog.BuildIndex(products)
	for i := range recs {
		// A stored recommendation may carry a SKU spelling from an older
		// catalog import; resolve it back to the current source row.
		if recs[i].FinalSKU == "" {
			continue
		}
		if record, ok := idx.Lookup(recs[i].FinalSKU); ok {
			recs[i].FinalSKU = record.SkuID
		}
	}

	productPrices, err := pricing.LoadProductPrices(s.cfg.ProductPricingCSV)
	if err != nil {
		return internal.PricingResult{}, err
	}
	testPrices, err := pricing.LoadTestPrices(s.cfg.TestPricingCSV)
	if err != nil {
		return internal.PricingResult{}, err
	}

	technical := internal.TechnicalResult{
		RFPID:  row.RFPID,
		Title:  row.Title,
		Issuer: row.Issuer,
		Items:  recs,
	}

	result, err := pricing.NewAggregator(productPrices, testPrices).Price(technical, requiredTests)
	if err != nil {
		return internal.PricingResult{}, err
	}

	if err := s.db.InsertPricingResult(row.ID, result); err != nil {
		return internal.PricingResult{}, err
	}
	if err := s.db.UpdateRFPStatus(row.ID, "priced"); err != nil {
		return internal.PricingResult{}, err
	}
	_ = s.db.InsertRun(traceID(), row.ID, 0,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"lines": len(result.Lines), "skippedTests": len(result.SkippedTests), "unpriced": len(result.UnpricedItems)})

	return result, nil
}

// TechnicalForRFP reassembles the stored technical result, for exports and
// re-pricing without a re-match.
func (s *ProcessingService) TechnicalForRFP(rfpID string) (internal.TechnicalResult, error) {
	row, err := s.db.MustRFPByRFPID(rfpID)
	if err != nil {
		return internal.TechnicalResult{}, err
	}
	recs, err := s.db.ListRecommendations(row.ID)
	if err != nil {
		return internal.TechnicalResult{}, err
	}
	return internal.TechnicalResult{RFPID: row.RFPID, Title: row.Title, Issuer: row.Issuer, Items: recs}, nil
}

func (s *ProcessingService) ProcessByProviderMessageID(provider, messageID string) (ProcessResult, error) {
	email, err := s.db.MustEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessEmail(email)
}

// ProcessPending processes fetched emails in arrival order. An optional
// provider filter narrows the batch. Returns processed email and item
// counts.
func (s *ProcessingService) ProcessPending(limit int, provider string) (int, int, error) {
	pending, err := s.db.ListEmailsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedEmails := 0
	processedItems := 0
	for _, email := range pending {
		if provider != "" && email.Provider != provider {
			continue
		}
		res, err := s.ProcessEmail(email)
		if err != nil {
			return processedEmails, processedItems, err
		}
		processedEmails++
		processedItems += len(res.Technical.Items)
	}
	return processedEmails, processedItems, nil
}

// ProcessEmail extracts an RFP document from a stored raw message and runs
// the technical stage on it. Messages that do not look like an RFP are
// marked skipped.
func (s *ProcessingService) ProcessEmail(email internal.EmailRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(email.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	extracted, err := ExtractRFPFromEmailRaw(raw)
	if err != nil {
		return ProcessResult{}, err
	}

	detect := DetectRFPRequest(firstNonEmpty(extracted.Subject, email.Subject), extracted.Text, extracted.AttachmentNames)
	if !detect.IsRFP && len(extracted.Document.ScopeOfSupply) == 0 {
		_ = s.db.UpdateEmailStatus(email.ID, "skipped")
		_ = s.db.InsertRun(traceID(), 0, email.ID,
			map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
			map[string]int{"items": 0})
		return ProcessResult{}, nil
	}

	doc := extracted.Document
	if doc.RFPID == "" || doc.RFPID == "UNKNOWN" {
		doc.RFPID = fallbackRFPID(email)
	}
	if doc.Title == "" {
		doc.Title = firstNonEmpty(extracted.Subject, email.Subject, "Untitled RFP")
	}
	if doc.Issuer == "" {
		doc.Issuer = firstNonEmpty(email.Sender, "Unknown Issuer")
	}

	res, err := s.ProcessDocument(doc, "email:"+email.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}
	if err := s.db.UpdateEmailStatus(email.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	return res, nil
}

func traceID() string {
	return uuid.NewString()
}

// fallbackRFPID keeps re-delivery of the same message idempotent by
// deriving the id from the provider message identity.
func fallbackRFPID(email internal.EmailRow) string {
	return fmt.Sprintf("MAIL-%s-%s", strings.ToUpper(email.Provider), email.MessageID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
