package pipeline

import "rfpflow/internal"

// BuildComparisonTable projects the request's values and the selected
// candidates' values side by side over the fixed six parameters. Pure
// field lookup; it exists to give reviewers an auditable rationale for
// the selection.
func BuildComparisonTable(item internal.RequestItem, top []internal.MatchResult) internal.ComparisonTable {
	rfpValues := make(map[string]string, len(internal.SpecParameters))
	for _, p := range internal.SpecParameters {
		rfpValues[p] = item.Spec(p)
	}

	candidates := make([]internal.ComparisonColumn, 0, len(top))
	for _, entry := range top {
		values := make(map[string]string, len(internal.SpecParameters))
		for _, p := range internal.SpecParameters {
			values[p] = entry.Record.Spec(p)
		}
		candidates = append(candidates, internal.ComparisonColumn{
			SkuID:        entry.SkuID,
			Values:       values,
			MatchPercent: entry.MatchPercent,
		})
	}

	return internal.ComparisonTable{
		Parameters: internal.SpecParameters,
		RFPValues:  rfpValues,
		Candidates: candidates,
	}
}
