package pipeline

import "strings"

type DetectResult struct {
	IsRFP  bool
	Score  float64
	Reason string
}

var detectKeywords = []string{
	"rfp", "request for proposal", "tender", "scope of supply",
	"quotation", "quote", "bid", "enquiry", "inquiry", "supply of",
}

// DetectRFPRequest scores how much a message looks like an RFP before any
// expensive processing. Pure keyword and structure rules; the threshold is
// deliberately low since a false positive only costs one empty match run.
func DetectRFPRequest(subject, text string, attachmentNames []string) DetectResult {
	subject = strings.ToLower(subject)
	text = strings.ToLower(text)

	score := 0.0
	for _, kw := range detectKeywords {
		if strings.Contains(subject, kw) {
			score += 0.2
		}
		if strings.Contains(text, kw) {
			score += 0.1
		}
	}

	for _, name := range attachmentNames {
		ln := strings.ToLower(name)
		if strings.HasSuffix(ln, ".json") || strings.HasSuffix(ln, ".xlsx") ||
			strings.HasSuffix(ln, ".xls") || strings.HasSuffix(ln, ".pdf") {
			score += 0.25
			break
		}
	}

	if score > 1 {
		score = 1
	}

	isRFP := score >= 0.3
	reason := "rules_negative"
	if isRFP {
		reason = "rules_positive"
	}

	return DetectResult{IsRFP: isRFP, Score: score, Reason: reason}
}
