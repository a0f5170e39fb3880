package listing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rfpflow/internal"
	"rfpflow/internal/config"
)

const dueDateLayout = "2006-01-02"

// Scanner discovers RFP listings published as HTML pages: each page holds
// rfp-item blocks with a title, issuer, due date and a link to the RFP
// document.
type Scanner struct {
	cfg config.Config
}

func NewScanner(cfg config.Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// Scan reads every .html page under the configured listing directory and
// extracts all RFP entries.
func (s *Scanner) Scan() ([]internal.RFPListing, error) {
	entries, err := os.ReadDir(s.cfg.ListingDir)
	if err != nil {
		return nil, fmt.Errorf("read listing dir: %w", err)
	}

	var out []internal.RFPListing
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".html") {
			continue
		}
		path := filepath.Join(s.cfg.ListingDir, entry.Name())
		blob, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		listings, err := ParseListingHTML(string(blob), path)
		if err != nil {
			return nil, err
		}
		out = append(out, listings...)
	}
	return out, nil
}

// ParseListingHTML pulls every rfp-item block out of one listing page.
// Document links are resolved relative to the page's location.
func ParseListingHTML(html, sourcePath string) ([]internal.RFPListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var out []internal.RFPListing
	doc.Find("div.rfp-item").Each(func(_ int, item *goquery.Selection) {
		listing := internal.RFPListing{
			Title:      strings.TrimSpace(item.Find("span.rfp-title").First().Text()),
			Issuer:     strings.TrimSpace(item.Find("span.rfp-issuer").First().Text()),
			DueDate:    strings.TrimSpace(item.Find("span.rfp-due-date").First().Text()),
			SourceHTML: sourcePath,
		}
		if listing.Title == "" {
			listing.Title = "Unknown Title"
		}
		if listing.Issuer == "" {
			listing.Issuer = "Unknown Issuer"
		}
		if href, ok := item.Find("a.rfp-link").First().Attr("href"); ok {
			listing.RFPLink = resolveLink(strings.TrimSpace(href), sourcePath)
		}
		out = append(out, listing)
	})
	return out, nil
}

// FilterDue keeps listings due within the configured window. Malformed
// due dates are dropped, not errored.
func (s *Scanner) FilterDue(listings []internal.RFPListing, now time.Time) []internal.RFPListing {
	limit := now.AddDate(0, 0, s.cfg.DueWindowDays)
	out := make([]internal.RFPListing, 0, len(listings))
	for _, l := range listings {
		due, err := time.Parse(dueDateLayout, l.DueDate)
		if err != nil {
			continue
		}
		if !due.After(limit) {
			out = append(out, l)
		}
	}
	return out
}

// SortByDueDate orders listings by earliest due date first. Listings are
// already filtered, so every due date parses.
func SortByDueDate(listings []internal.RFPListing) {
	sort.SliceStable(listings, func(i, j int) bool {
		di, _ := time.Parse(dueDateLayout, listings[i].DueDate)
		dj, _ := time.Parse(dueDateLayout, listings[j].DueDate)
		return di.Before(dj)
	})
}

// Select runs the full discovery pass: scan, filter to the due window,
// sort and pick the single most urgent RFP. A nil selection with no error
// means no eligible listing was found.
func (s *Scanner) Select(now time.Time) (*internal.RFPListing, []internal.RFPListing, error) {
	all, err := s.Scan()
	if err != nil {
		return nil, nil, err
	}

	eligible := s.FilterDue(all, now)
	SortByDueDate(eligible)
	if len(eligible) == 0 {
		return nil, eligible, nil
	}
	selected := eligible[0]
	return &selected, eligible, nil
}

func resolveLink(href, sourcePath string) string {
	if href == "" {
		return ""
	}
	if filepath.IsAbs(href) {
		return filepath.Clean(href)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(sourcePath), href))
}
