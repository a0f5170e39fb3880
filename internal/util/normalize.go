package util

import (
	"fmt"
	"strconv"
	"strings"
)

// Stringify renders any raw attribute value as a plain string. nil becomes
// the empty string so absent fields degrade instead of erroring.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// NormalizeKey canonicalizes a value for lookups and comparisons:
// lowercase, trimmed, all spaces and hyphens removed.
//
//	"High Voltage Test"     -> "highvoltagetest"
//	"CABLE-PVC-3C-2.5-IS694" -> "cablepvc3c2.5is694"
func NormalizeKey(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

// CanonicalSpec applies NormalizeKey plus the per-field cleanup rules that
// reconcile supplier and RFP spellings of the six spec attributes:
//
//	cores      "3 Core"     -> "3"
//	size_sqmm  "2.5 sqmm"   -> "2.5"
//	voltage    "1.1", "1.1kv", "1.1 KV", "1.1-kv" -> "1.1kv"
//	insulation "PVC insulated" -> "pvc"
//	standard   "IS694"      -> "is 694"
func CanonicalSpec(field string, raw any) string {
	v := NormalizeKey(Stringify(raw))
	switch field {
	case "cores":
		v = strings.ReplaceAll(v, "core", "")
	case "size_sqmm":
		v = strings.ReplaceAll(v, "sqmm", "")
	case "voltage":
		if v != "" {
			v = strings.TrimSuffix(v, "kv") + "kv"
		}
	case "insulation":
		v = strings.ReplaceAll(v, "insulated", "")
	case "standard":
		if strings.HasPrefix(v, "is") && !strings.HasPrefix(v, "is ") {
			v = "is " + v[2:]
		}
	}
	return v
}
