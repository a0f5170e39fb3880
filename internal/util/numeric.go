package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ParseFloat reports whether the value carries a usable number. Callers use
// the ok result to fall back to string comparison instead of erroring.
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseInt parses an integer, accepting float spellings by truncation
// ("3", "3.0" -> 3).
func ParseInt(s string) (int, bool) {
	trimmed := strings.TrimSpace(s)
	if v, err := strconv.Atoi(trimmed); err == nil {
		return v, true
	}
	if f, ok := ParseFloat(trimmed); ok {
		return int(f), true
	}
	return 0, false
}

// ParseQuantity resolves a raw quantity field to an int. Unparseable input
// degrades to 0 rather than propagating an error; a zero result can mean
// either an explicit zero or a failed parse, which is the documented
// behavior for malformed quantities.
func ParseQuantity(raw any) int {
	switch t := raw.(type) {
	case int:
		return t
	case float64:
		return int(t)
	}
	if v, ok := ParseInt(Stringify(raw)); ok {
		return v
	}
	return 0
}

// Round2 rounds to two decimal places, the precision carried by every
// match percentage.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

var (
	unitPattern   = regexp.MustCompile(`(?i)\b(pcs|pc|nos|no\.?|mtrs?|mtr\.?|m|km|set|sets|coil|drum)\b`)
	numberPattern = regexp.MustCompile(`(?i)(?:^|[^0-9.,])(\d{1,3}(?:[\s,]\d{3})+|\d+(?:\.\d+)?)`)
	qtyWithUnit   = regexp.MustCompile(`(?i)(?:^|[^0-9.,])(\d{1,3}(?:[\s,]\d{3})+|\d+(?:\.\d+)?)\s*(pcs|pc|nos|no\.?|mtrs?|mtr\.?|m|km|set|sets|coil|drum)\b`)
)

type ParsedQty struct {
	Qty    *int
	Unit   *string
	QtyRaw *string
}

// ParseQty pulls a quantity (and unit, when present) out of a free-text
// scope line, e.g. "3C x 2.5 sqmm PVC copper cable 500 m". The last
// number-unit pair wins so cable dimensions earlier in the line are not
// mistaken for quantities.
func ParseQty(input string) ParsedQty {
	line := strings.ReplaceAll(input, "\u00A0", " ")

	qtyRaw := ""
	qtyToken := ""

	wm := qtyWithUnit.FindAllStringSubmatch(line, -1)
	if len(wm) > 0 {
		last := wm[len(wm)-1]
		qtyRaw = strings.TrimSpace(last[1] + " " + last[2])
		qtyToken = strings.TrimSpace(last[1])
	} else {
		nm := numberPattern.FindAllStringSubmatch(line, -1)
		if len(nm) > 0 {
			last := nm[len(nm)-1]
			qtyRaw = strings.TrimSpace(last[1])
			qtyToken = strings.TrimSpace(last[1])
		}
	}

	var qtyPtr *int
	if qtyToken != "" {
		norm := normalizeNumericToken(qtyToken)
		if parsed, ok := ParseFloat(norm); ok {
			qtyPtr = IntPtr(int(parsed))
		}
	}

	var unitPtr *string
	if um := unitPattern.FindStringSubmatch(line); len(um) > 1 {
		u := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(um[1]), "."))
		unitPtr = &u
	}

	var qtyRawPtr *string
	if qtyRaw != "" {
		qtyRawPtr = &qtyRaw
	}

	return ParsedQty{Qty: qtyPtr, Unit: unitPtr, QtyRaw: qtyRawPtr}
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if regexp.MustCompile(`^\d{1,3}(?:,\d{3})+$`).MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	return compact
}
