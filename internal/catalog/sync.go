package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"rfpflow/internal"
	"rfpflow/internal/config"
	"rfpflow/internal/storage"
)

// SyncService keeps the local product table current, either from the
// supplier API or from spec files handed over out of band.
type SyncService struct {
	db     *storage.DB
	client *Client
	cfg    config.Config
}

func NewSyncService(db *storage.DB, cfg config.Config) *SyncService {
	return &SyncService{db: db, client: NewClient(cfg), cfg: cfg}
}

func (s *SyncService) SyncFromAPI(ctx context.Context) (int, error) {
	records, err := s.client.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertProducts(records); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("catalog.last_api_sync", time.Now().UTC().Format(time.RFC3339))
	return len(records), nil
}

// ImportFile loads a CSV or XLSX product specs file into the database.
func (s *SyncService) ImportFile(path string) (int, error) {
	var records []internal.CatalogRecord
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		records, err = LoadCSV(path)
	case ".xlsx":
		records, err = LoadXLSX(path)
	default:
		return 0, fmt.Errorf("unsupported catalog file type: %s", path)
	}
	if err != nil {
		return 0, err
	}
	if err := s.db.UpsertProducts(records); err != nil {
		return 0, err
	}
	_ = s.db.SetMetadata("catalog.last_file_import", time.Now().UTC().Format(time.RFC3339))
	return len(records), nil
}
