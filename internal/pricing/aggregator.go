package pricing

import (
	"errors"
	"fmt"

	"rfpflow/internal"
	"rfpflow/internal/util"
)

// ErrSKUNotPriced marks a recommended SKU with no entry in the product
// price table. It aborts the whole pricing run: a half-priced proposal is
// worse than none, and the missing row is a catalog defect to fix first.
var ErrSKUNotPriced = errors.New("sku not priced")

// Aggregator computes material and test costs for a technical-stage
// result. Both price tables are injected, keyed by normalized SKU and
// normalized test name.
type Aggregator struct {
	productPrices map[string]float64
	testPrices    map[string]float64
}

func NewAggregator(productPrices, testPrices map[string]float64) *Aggregator {
	return &Aggregator{productPrices: productPrices, testPrices: testPrices}
}

// Price builds one PricingLine per recommendation and exact totals across
// all lines. requiredTests is shared by every item in the run.
//
// Missing prices are handled asymmetrically on purpose: a missing SKU
// price fails the run with ErrSKUNotPriced and no partial totals, while a
// missing test price only drops that test from the line and records it in
// SkippedTests. Recommendations without a final SKU cannot be priced and
// are reported in UnpricedItems.
func (a *Aggregator) Price(technical internal.TechnicalResult, requiredTests []string) (internal.PricingResult, error) {
	result := internal.PricingResult{
		RFPID:  technical.RFPID,
		Title:  technical.Title,
		Issuer: technical.Issuer,
	}

	for _, item := range technical.Items {
		if item.FinalSKU == "" {
			result.UnpricedItems = append(result.UnpricedItems, item.ItemIndex)
			continue
		}

		line, skipped, err := a.priceItem(item, requiredTests)
		if err != nil {
			return internal.PricingResult{}, err
		}

		result.Lines = append(result.Lines, line)
		result.SkippedTests = append(result.SkippedTests, skipped...)
		result.Totals.MaterialTotal += line.MaterialCost
		result.Totals.TestTotal += line.TestCostTotal
	}

	result.Totals.GrandTotal = result.Totals.MaterialTotal + result.Totals.TestTotal
	return result, nil
}

func (a *Aggregator) priceItem(item internal.ItemRecommendation, requiredTests []string) (internal.PricingLine, []internal.SkippedTest, error) {
	unitPrice, ok := a.productPrices[util.NormalizeKey(item.FinalSKU)]
	if !ok {
		return internal.PricingLine{}, nil, fmt.Errorf("%w: %s (item %d)", ErrSKUNotPriced, item.FinalSKU, item.ItemIndex)
	}

	line := internal.PricingLine{
		ItemNo:       item.ItemIndex,
		SKU:          item.FinalSKU,
		MatchPercent: item.FinalMatchPercent,
		Quantity:     item.Quantity,
		UnitPrice:    unitPrice,
		MaterialCost: unitPrice * float64(item.Quantity),
	}

	var skipped []internal.SkippedTest
	for _, test := range requiredTests {
		price, ok := a.testPrices[util.NormalizeKey(test)]
		if !ok {
			fmt.Printf("warning: test not found in pricing table: %s (item %d)\n", test, item.ItemIndex)
			skipped = append(skipped, internal.SkippedTest{ItemNo: item.ItemIndex, TestName: test})
			continue
		}
		line.Tests = append(line.Tests, internal.TestCharge{TestName: test, TestPrice: price})
		line.TestCostTotal += price
	}

	line.TotalCost = line.MaterialCost + line.TestCostTotal
	return line, skipped, nil
}
