package pipeline

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"rfpflow/internal"
	"rfpflow/internal/rfp"
	"rfpflow/internal/util"
)

var ignorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^--+$`),
	regexp.MustCompile(`(?i)^thank`),
	regexp.MustCompile(`(?i)^(best |kind )?regards`),
	regexp.MustCompile(`(?i)^(tel|phone|mob)[:\s]`),
	regexp.MustCompile(`(?i)^e-?mail[:\s]`),
	regexp.MustCompile(`(?i)^http`),
}

// ExtractedRFP is what one raw email yields before the technical stage:
// the reconstructed document plus the signals detection needs.
type ExtractedRFP struct {
	Document        internal.RFPDocument
	Subject         string
	Text            string
	AttachmentNames []string
}

// ExtractRFPFromEmailRaw rebuilds an RFP document from a raw RFC822
// message. A JSON attachment is authoritative when present; otherwise the
// scope of supply is collected from XLSX and PDF attachments and from
// tables in the HTML body.
func ExtractRFPFromEmailRaw(raw []byte) (ExtractedRFP, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return ExtractedRFP{}, err
	}

	out := ExtractedRFP{
		Subject: env.GetHeader("Subject"),
		Text:    env.Text,
	}

	haveJSON := false
	var scope []map[string]any

	for _, att := range env.Attachments {
		filename := strings.TrimSpace(att.FileName)
		if filename == "" {
			filename = "attachment"
		}
		out.AttachmentNames = append(out.AttachmentNames, filename)
		lower := strings.ToLower(filename)

		switch {
		case strings.HasSuffix(lower, ".json"):
			if haveJSON {
				continue
			}
			doc, err := rfp.ParseDocument(att.Content)
			if err != nil {
				continue
			}
			out.Document = doc
			haveJSON = true
		case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
			if rows, err := parseScopeXLSX(att.Content); err == nil {
				scope = append(scope, rows...)
			}
		case strings.HasSuffix(lower, ".pdf"):
			if rows, err := parseScopePDF(att.Content); err == nil {
				scope = append(scope, rows...)
			}
		}
	}

	if !haveJSON && env.HTML != "" {
		scope = append(scope, parseScopeHTMLTables(env.HTML)...)
	}

	if !haveJSON {
		out.Document.ScopeOfSupply = scope
	} else if len(out.Document.ScopeOfSupply) == 0 {
		// JSON document without scope entries; attachments may still
		// carry the item table.
		out.Document.ScopeOfSupply = scope
	}

	return out, nil
}

// parseScopeHTMLTables reads item tables out of an HTML body. The first
// row supplies header keys; every later row becomes one raw scope entry.
func parseScopeHTMLTables(html string) []map[string]any {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	out := []map[string]any{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return
		}

		headers := []string{}
		rows.First().Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			headers = append(headers, headerKey(cell.Text()))
		})

		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, normalizeSpaces(cell.Text()))
			})
			entry := cellsToEntry(headers, cells)
			if entry != nil {
				out = append(out, entry)
			}
		})
	})

	return out
}

func parseScopeXLSX(content []byte) ([]map[string]any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := []map[string]any{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}

		headers := make([]string, 0, len(rows[0]))
		for _, h := range rows[0] {
			headers = append(headers, headerKey(h))
		}

		for _, row := range rows[1:] {
			cells := make([]string, 0, len(row))
			for _, c := range row {
				cells = append(cells, normalizeSpaces(c))
			}
			entry := cellsToEntry(headers, cells)
			if entry != nil {
				out = append(out, entry)
			}
		}
	}

	return out, nil
}

// parseScopePDF falls back to free-text extraction: each plausible line
// becomes a description-plus-quantity entry, specs left for the
// description to carry.
func parseScopePDF(content []byte) ([]map[string]any, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, err
	}

	out := []map[string]any{}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range splitLines(text) {
			compact := normalizeSpaces(line)
			if compact == "" || isLikelyNoise(compact) {
				continue
			}
			parsed := util.ParseQty(compact)
			if parsed.Qty == nil || !regexp.MustCompile(`[A-Za-z]`).MatchString(compact) {
				continue
			}

			description := compact
			if parsed.QtyRaw != nil {
				if idx := strings.LastIndex(description, *parsed.QtyRaw); idx >= 0 {
					description = normalizeSpaces(description[:idx] + " " + description[idx+len(*parsed.QtyRaw):])
				}
			}
			if len(description) < 8 {
				continue
			}

			out = append(out, map[string]any{
				"description": description,
				"quantity":    *parsed.Qty,
			})
		}
	}
	return out, nil
}

// cellsToEntry zips one table row against the header keys. Rows with no
// usable cells or without a single digit anywhere are discarded as
// decoration.
func cellsToEntry(headers, cells []string) map[string]any {
	if len(cells) == 0 {
		return nil
	}

	entry := map[string]any{}
	nonEmpty := 0
	for i, cell := range cells {
		if i >= len(headers) || headers[i] == "" {
			continue
		}
		if cell != "" {
			nonEmpty++
		}
		entry[headers[i]] = cell
	}
	if nonEmpty < 2 {
		return nil
	}
	if !regexp.MustCompile(`\d`).MatchString(strings.Join(cells, " ")) {
		return nil
	}
	return entry
}

// headerKey turns a display header into a map key the alias table can
// resolve: "Size (sqmm)" -> "size_sqmm", "No. of Cores" -> "no_of_cores".
func headerKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = regexp.MustCompile(`[^a-z0-9]+`).ReplaceAllString(key, "_")
	return strings.Trim(key, "_")
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func normalizeSpaces(input string) string {
	return strings.TrimSpace(regexp.MustCompile(`\s+`).ReplaceAllString(input, " "))
}

func isLikelyNoise(line string) bool {
	for _, re := range ignorePatterns {
		if re.MatchString(strings.TrimSpace(line)) {
			return true
		}
	}
	return false
}
