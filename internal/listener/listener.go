package listener

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"rfpflow/internal/config"
	"rfpflow/internal/connectors"
	gmailconnector "rfpflow/internal/connectors/gmail"
	imapconnector "rfpflow/internal/connectors/imap"
	"rfpflow/internal/pipeline"
	"rfpflow/internal/storage"
)

// Service polls the intake mailbox on a fixed interval: fetch new
// messages, run the technical stage on anything that looks like an RFP
// and, when enabled, drop the recommendation workbook into the output
// directory.
type Service struct {
	db  *storage.DB
	cfg config.Config
}

func NewService(db *storage.DB, cfg config.Config) *Service {
	return &Service{db: db, cfg: cfg}
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	processor := pipeline.NewProcessingService(s.db, s.cfg)
	processedEmails, processedItems, err := processor.ProcessPending(s.cfg.MailListenerProcessBatch, provider)
	if err != nil {
		return err
	}

	if s.cfg.MailListenerAutoExport {
		if err := s.exportMatched(processor); err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d duplicates=%d processed=%d items=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, fetchResult.Duplicates, processedEmails, processedItems)
	_ = ctx
	return nil
}

// exportMatched writes the recommendation workbook for every RFP the cycle
// matched and advances its status so the next cycle skips it.
func (s *Service) exportMatched(processor *pipeline.ProcessingService) error {
	rfps, err := s.db.ListRFPsByStatus("matched", 200)
	if err != nil {
		return err
	}

	for _, row := range rfps {
		technical, err := processor.TechnicalForRFP(row.RFPID)
		if err != nil {
			return err
		}
		if len(technical.Items) == 0 {
			continue
		}
		filename := fmt.Sprintf("%d_%s_technical.xlsx", row.ID, sanitizeRFPID(row.RFPID))
		outputPath := filepath.Join(s.cfg.OutputDir, "listener", filename)
		if err := pipeline.ExportTechnicalToXLSX(technical, outputPath); err != nil {
			return err
		}
		_ = s.db.UpdateRFPStatus(row.ID, "exported")
	}
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}

func sanitizeRFPID(input string) string {
	repl := strings.NewReplacer("<", "_", ">", "_", ":", "_", "/", "_", "\\", "_", "|", "_", "?", "_", "*", "_", " ", "_")
	out := repl.Replace(input)
	if len(out) > 120 {
		out = out[:120]
	}
	return out
}
