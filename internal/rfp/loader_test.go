package rfp

import (
	"testing"
)

func TestParseDocument(t *testing.T) {
	blob := []byte(`{
		"rfp_id": "RFP-2024-001",
		"title": "Supply of LT Power Cables",
		"issuer": "State Power Utility",
		"due_date": "2026-09-30",
		"scope_of_supply": [{"item": "1", "cores": "3 Core", "quantity": 500}],
		"tests_required": ["High Voltage Test"]
	}`)

	doc, err := ParseDocument(blob)
	if err != nil {
		t.Fatal(err)
	}
	if doc.RFPID != "RFP-2024-001" {
		t.Fatalf("rfp id = %q", doc.RFPID)
	}
	if len(doc.ScopeOfSupply) != 1 {
		t.Fatalf("scope = %d", len(doc.ScopeOfSupply))
	}
	if doc.ScopeOfSupply[0]["cores"] != "3 Core" {
		t.Fatalf("scope entry = %+v", doc.ScopeOfSupply[0])
	}
}

func TestParseDocumentMissingID(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"title": "No ID"}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.RFPID != "UNKNOWN" {
		t.Fatalf("rfp id = %q, want UNKNOWN", doc.RFPID)
	}
}

func TestParseDocumentInvalidJSON(t *testing.T) {
	if _, err := ParseDocument([]byte("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
