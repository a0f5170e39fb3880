package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractRFPFromEmailRawJSON(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "sample_rfp.eml"))
	if err != nil {
		t.Fatal(err)
	}

	extracted, err := ExtractRFPFromEmailRaw(raw)
	if err != nil {
		t.Fatal(err)
	}

	if extracted.Subject != "Request for Proposal - LT Power Cables" {
		t.Fatalf("subject = %q", extracted.Subject)
	}
	if len(extracted.AttachmentNames) != 1 || extracted.AttachmentNames[0] != "rfp-001.json" {
		t.Fatalf("attachments = %v", extracted.AttachmentNames)
	}

	doc := extracted.Document
	if doc.RFPID != "RFP-2024-001" {
		t.Fatalf("rfp id = %q", doc.RFPID)
	}
	if len(doc.ScopeOfSupply) != 1 {
		t.Fatalf("scope = %d entries, want 1", len(doc.ScopeOfSupply))
	}
	if len(doc.TestsRequired) != 2 {
		t.Fatalf("tests = %v", doc.TestsRequired)
	}
}

func TestParseScopeHTMLTables(t *testing.T) {
	html := `<table>
<tr><th>Item</th><th>No. of Cores</th><th>Size (sqmm)</th><th>Voltage Rating (kV)</th><th>Insulation</th><th>Conductor</th><th>Standard</th><th>Qty</th></tr>
<tr><td>1</td><td>3</td><td>2.5</td><td>1.1</td><td>PVC</td><td>Copper</td><td>IS 694</td><td>500</td></tr>
<tr><td></td><td></td><td></td><td></td><td></td><td></td><td></td><td></td></tr>
</table>`

	entries := parseScopeHTMLTables(html)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (empty row dropped)", len(entries))
	}

	item := NormalizeRequestItem(entries[0])
	if item.Cores != "3" || item.SizeSqmm != "2.5" || item.Voltage != "1.1kv" || item.Quantity != 500 {
		t.Fatalf("normalized item = %+v", item)
	}
}

func TestHeaderKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Size (sqmm)", "size_sqmm"},
		{"No. of Cores", "no_of_cores"},
		{"Voltage Rating (kV)", "voltage_rating_kv"},
		{"Qty", "qty"},
	}
	for _, tc := range cases {
		if got := headerKey(tc.in); got != tc.want {
			t.Errorf("headerKey(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDetectRFPRequest(t *testing.T) {
	positive := DetectRFPRequest("Request for Proposal - cables", "scope of supply attached, please submit your quotation", []string{"rfp-001.json"})
	if !positive.IsRFP {
		t.Fatalf("expected positive detection, got %+v", positive)
	}

	negative := DetectRFPRequest("Lunch on Friday?", "see you at noon", nil)
	if negative.IsRFP {
		t.Fatalf("expected negative detection, got %+v", negative)
	}
}
