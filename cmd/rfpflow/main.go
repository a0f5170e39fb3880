package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rfpflow/internal/catalog"
	"rfpflow/internal/config"
	"rfpflow/internal/connectors"
	gmailconnector "rfpflow/internal/connectors/gmail"
	imapconnector "rfpflow/internal/connectors/imap"
	"rfpflow/internal/listener"
	"rfpflow/internal/listing"
	"rfpflow/internal/pipeline"
	"rfpflow/internal/rfp"
	"rfpflow/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cmd := os.Args[1]
	switch cmd {
	case "catalog:sync":
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.SyncFromAPI(context.Background())
		must(err)
		fmt.Printf("catalog sync complete: %d products\n", count)
	case "catalog:import":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", cfg.CatalogCSVPath, "catalog csv/xlsx path")
		_ = fs.Parse(os.Args[2:])
		svc := catalog.NewSyncService(db, cfg)
		count, err := svc.ImportFile(*file)
		must(err)
		fmt.Printf("catalog import complete file=%s products=%d\n", *file, count)
	case "listing:scan":
		scanner := listing.NewScanner(cfg)
		selected, eligible, err := scanner.Select(time.Now())
		must(err)
		for _, l := range eligible {
			fmt.Printf("listing due=%s issuer=%s title=%s link=%s\n", l.DueDate, l.Issuer, l.Title, l.RFPLink)
		}
		if selected == nil {
			fmt.Println("no eligible rfp listing found")
			return
		}
		fmt.Printf("selected due=%s title=%s link=%s\n", selected.DueDate, selected.Title, selected.RFPLink)
	case "rfp:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "rfp json document path")
		out := fs.String("out", "", "optional technical xlsx output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*file) == "" {
			must(fmt.Errorf("--file is required"))
		}
		doc, err := rfp.LoadDocument(*file)
		must(err)
		processor := pipeline.NewProcessingService(db, cfg)
		res, err := processor.ProcessDocument(doc, *file)
		must(err)
		printJSON(res.Technical)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportTechnicalToXLSX(res.Technical, *out))
			fmt.Printf("exported technical result to %s\n", *out)
		}
		fmt.Printf("rfp processed id=%s items=%d\n", res.Technical.RFPID, len(res.Technical.Items))
	case "rfp:price":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		rfpID := fs.String("rfpId", "", "rfp id")
		file := fs.String("file", "", "rfp json document path, source of tests_required")
		tests := fs.String("tests", "", "comma-separated required tests, overrides --file")
		out := fs.String("out", "", "optional pricing xlsx output path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*rfpID) == "" {
			must(fmt.Errorf("--rfpId is required"))
		}
		requiredTests, err := resolveTests(*tests, *file)
		must(err)
		processor := pipeline.NewProcessingService(db, cfg)
		result, err := processor.PriceRFP(*rfpID, requiredTests)
		must(err)
		printJSON(result)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportPricingToXLSX(result, *out))
			fmt.Printf("exported pricing result to %s\n", *out)
		}
		fmt.Printf("rfp priced id=%s lines=%d grandTotal=%.2f\n", *rfpID, len(result.Lines), result.Totals.GrandTotal)
	case "run":
		must(runEndToEnd(db, cfg))
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		rfpID := fs.String("rfpId", "", "rfp id")
		kind := fs.String("kind", "technical", "technical|pricing")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*rfpID) == "" || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--rfpId and --out are required"))
		}
		must(exportXLSX(db, cfg, *rfpID, *kind, *out))
		fmt.Printf("exported %s result for %s to %s\n", *kind, *rfpID, *out)
	case "mail:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		label := fs.String("label", "INBOX", "mailbox/label")
		max := fs.Int("max", 50, "max messages")
		_ = fs.Parse(os.Args[2:])
		conn, err := makeConnector(cfg, *provider)
		must(err)
		fetch := connectors.NewFetchService(db, cfg.RawMailDir, conn)
		result, err := fetch.FetchAndStore(*label, *max)
		must(err)
		fmt.Printf("mail fetch done provider=%s fetched=%d stored=%d duplicates=%d\n", *provider, result.Fetched, result.Stored, result.Duplicates)
	case "mail:process":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		provider := fs.String("provider", "gmail", "gmail|imap")
		messageID := fs.String("messageId", "", "specific message-id")
		batch := fs.Int("batch", 20, "batch size")
		_ = fs.Parse(os.Args[2:])
		processor := pipeline.NewProcessingService(db, cfg)
		if strings.TrimSpace(*messageID) != "" {
			res, err := processor.ProcessByProviderMessageID(*provider, *messageID)
			must(err)
			fmt.Printf("processed email rfp=%s items=%d\n", res.Technical.RFPID, len(res.Technical.Items))
			return
		}
		processedEmails, processedItems, err := processor.ProcessPending(*batch, *provider)
		must(err)
		fmt.Printf("processed pending emails=%d items=%d\n", processedEmails, processedItems)
	case "mail:listen":
		s := listener.NewService(db, cfg)
		must(s.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

// runEndToEnd is the whole flow in one shot: discover the most urgent
// listing, load its document, run the technical stage, price it and drop
// both workbooks plus the JSON results into the output directory.
func runEndToEnd(db *storage.DB, cfg config.Config) error {
	scanner := listing.NewScanner(cfg)
	selected, _, err := scanner.Select(time.Now())
	if err != nil {
		return err
	}
	if selected == nil {
		fmt.Println("no eligible rfp listing found")
		return nil
	}
	fmt.Printf("selected rfp due=%s title=%s link=%s\n", selected.DueDate, selected.Title, selected.RFPLink)

	doc, err := rfp.LoadDocument(selected.RFPLink)
	if err != nil {
		return err
	}
	if doc.Title == "" {
		doc.Title = selected.Title
	}
	if doc.Issuer == "" {
		doc.Issuer = selected.Issuer
	}
	if doc.DueDate == "" {
		doc.DueDate = selected.DueDate
	}

	processor := pipeline.NewProcessingService(db, cfg)
	res, err := processor.ProcessDocument(doc, selected.RFPLink)
	if err != nil {
		return err
	}
	pricingResult, err := processor.PriceRFP(doc.RFPID, doc.TestsRequired)
	if err != nil {
		return err
	}

	base := filepath.Join(cfg.OutputDir, sanitizeFilename(doc.RFPID))
	if err := writeJSON(base+"_technical.json", res.Technical); err != nil {
		return err
	}
	if err := writeJSON(base+"_pricing.json", pricingResult); err != nil {
		return err
	}
	if err := pipeline.ExportTechnicalToXLSX(res.Technical, base+"_technical.xlsx"); err != nil {
		return err
	}
	if err := pipeline.ExportPricingToXLSX(pricingResult, base+"_pricing.xlsx"); err != nil {
		return err
	}

	fmt.Printf("run done rfp=%s items=%d grandTotal=%.2f output=%s\n",
		doc.RFPID, len(res.Technical.Items), pricingResult.Totals.GrandTotal, cfg.OutputDir)
	return nil
}

func exportXLSX(db *storage.DB, cfg config.Config, rfpID, kind, out string) error {
	processor := pipeline.NewProcessingService(db, cfg)
	switch kind {
	case "technical":
		technical, err := processor.TechnicalForRFP(rfpID)
		if err != nil {
			return err
		}
		if len(technical.Items) == 0 {
			return fmt.Errorf("no technical result for rfpId=%s", rfpID)
		}
		return pipeline.ExportTechnicalToXLSX(technical, out)
	case "pricing":
		row, err := db.MustRFPByRFPID(rfpID)
		if err != nil {
			return err
		}
		result, err := db.GetPricingResult(row.ID)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("no pricing result for rfpId=%s", rfpID)
		}
		result.RFPID = row.RFPID
		result.Title = row.Title
		result.Issuer = row.Issuer
		return pipeline.ExportPricingToXLSX(*result, out)
	default:
		return fmt.Errorf("unsupported export kind: %s", kind)
	}
}

// resolveTests picks the required-test list for pricing: an explicit
// --tests flag wins, otherwise the RFP document supplies tests_required.
func resolveTests(tests, file string) ([]string, error) {
	if strings.TrimSpace(tests) != "" {
		parts := strings.Split(tests, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out, nil
	}
	if strings.TrimSpace(file) != "" {
		doc, err := rfp.LoadDocument(file)
		if err != nil {
			return nil, err
		}
		return doc.TestsRequired, nil
	}
	return nil, nil
}

func makeConnector(cfg config.Config, provider string) (connectors.MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, blob, 0o644)
}

func printJSON(v any) {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(blob))
}

func sanitizeFilename(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	return repl.Replace(input)
}

func usage() {
	fmt.Println("usage: rfpflow <command>")
	fmt.Println("commands:")
	fmt.Println("  catalog:sync")
	fmt.Println("  catalog:import --file=./data/datasets/product_specs.csv")
	fmt.Println("  listing:scan")
	fmt.Println("  rfp:process --file=./data/rfps/rfp.json [--out=./out/technical.xlsx]")
	fmt.Println("  rfp:price --rfpId=RFP-2024-001 [--file=./data/rfps/rfp.json | --tests=a,b] [--out=./out/pricing.xlsx]")
	fmt.Println("  run")
	fmt.Println("  export:xlsx --rfpId=RFP-2024-001 --kind=technical|pricing --out=./out/result.xlsx")
	fmt.Println("  mail:fetch --provider=gmail|imap --label=INBOX --max=50")
	fmt.Println("  mail:process --provider=gmail|imap [--messageId=...] [--batch=20]")
	fmt.Println("  mail:listen")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
