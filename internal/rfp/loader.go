package rfp

import (
	"encoding/json"
	"fmt"
	"os"

	"rfpflow/internal"
)

// LoadDocument reads an RFP JSON document from disk.
func LoadDocument(path string) (internal.RFPDocument, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.RFPDocument{}, fmt.Errorf("read rfp document: %w", err)
	}
	return ParseDocument(blob)
}

// ParseDocument decodes RFP JSON arriving from disk or as a mail
// attachment. A document without scope entries is legal (the technical
// stage just produces no items).
func ParseDocument(blob []byte) (internal.RFPDocument, error) {
	var doc internal.RFPDocument
	if err := json.Unmarshal(blob, &doc); err != nil {
		return internal.RFPDocument{}, fmt.Errorf("parse rfp document: %w", err)
	}
	if doc.RFPID == "" {
		doc.RFPID = "UNKNOWN"
	}
	return doc, nil
}
