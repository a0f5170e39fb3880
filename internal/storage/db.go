package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"rfpflow/internal"
	"rfpflow/internal/util"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS products (
  skuId TEXT PRIMARY KEY,
  cores TEXT,
  sizeSqmm TEXT,
  voltage TEXT,
  insulation TEXT,
  conductor TEXT,
  standard TEXT,
  raw_json TEXT NOT NULL,
  lastSeenAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rfps (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rfpId TEXT NOT NULL UNIQUE,
  title TEXT,
  issuer TEXT,
  dueDate TEXT,
  sourceRef TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'loaded',
  receivedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS recommendations (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rfpRowId INTEGER NOT NULL,
  itemIndex INTEGER NOT NULL,
  itemJson TEXT NOT NULL,
  top3Json TEXT NOT NULL,
  comparisonJson TEXT NOT NULL,
  finalSku TEXT,
  finalMatchPercent REAL NOT NULL,
  quantity INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(rfpRowId, itemIndex),
  FOREIGN KEY(rfpRowId) REFERENCES rfps(id)
);

CREATE TABLE IF NOT EXISTS pricing_lines (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rfpRowId INTEGER NOT NULL,
  itemNo INTEGER NOT NULL,
  sku TEXT NOT NULL,
  matchPercent REAL NOT NULL,
  quantity INTEGER NOT NULL,
  unitPrice REAL NOT NULL,
  materialCost REAL NOT NULL,
  testsJson TEXT NOT NULL,
  testCostTotal REAL NOT NULL,
  totalCost REAL NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(rfpRowId, itemNo),
  FOREIGN KEY(rfpRowId) REFERENCES rfps(id)
);

CREATE TABLE IF NOT EXISTS pricing_runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  rfpRowId INTEGER NOT NULL,
  materialTotal REAL NOT NULL,
  testTotal REAL NOT NULL,
  grandTotal REAL NOT NULL,
  skippedJson TEXT NOT NULL,
  unpricedJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(rfpRowId) REFERENCES rfps(id)
);

CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  traceId TEXT NOT NULL,
  rfpRowId INTEGER,
  emailId INTEGER,
  timingsJson TEXT NOT NULL,
  countsJson TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertProducts(records []internal.CatalogRecord) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO products (skuId, cores, sizeSqmm, voltage, insulation, conductor, standard, raw_json, lastSeenAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(skuId) DO UPDATE SET
  cores=excluded.cores,
  sizeSqmm=excluded.sizeSqmm,
  voltage=excluded.voltage,
  insulation=excluded.insulation,
  conductor=excluded.conductor,
  standard=excluded.standard,
  raw_json=excluded.raw_json,
  lastSeenAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		rawJSON, _ := json.Marshal(r.Raw)
		if _, err := stmt.Exec(r.SkuID, r.Cores, r.SizeSqmm, r.Voltage, r.Insulation, r.Conductor, r.Standard, string(rawJSON)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListProducts returns the stored catalog ordered by insertion (rowid),
// which is the scan order the ranker's tie-break relies on.
func (d *DB) ListProducts() ([]internal.CatalogRecord, error) {
	rows, err := d.conn.Query(`
SELECT skuId, cores, sizeSqmm, voltage, insulation, conductor, standard, raw_json
FROM products ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CatalogRecord
	for rows.Next() {
		var r internal.CatalogRecord
		var rawJSON string
		if err := rows.Scan(&r.SkuID, &r.Cores, &r.SizeSqmm, &r.Voltage, &r.Insulation, &r.Conductor, &r.Standard, &rawJSON); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(rawJSON), &r.Raw)
		out = append(out, r)
	}

	return out, rows.Err()
}

func (d *DB) UpsertRFP(rfpID, title, issuer, dueDate, sourceRef, status string) (internal.RFPRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO rfps (rfpId, title, issuer, dueDate, sourceRef, status)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(rfpId) DO UPDATE SET
  title=excluded.title,
  issuer=excluded.issuer,
  dueDate=excluded.dueDate,
  sourceRef=excluded.sourceRef,
  updatedAt=CURRENT_TIMESTAMP
`, rfpID, title, issuer, dueDate, sourceRef, status)
	if err != nil {
		return internal.RFPRow{}, err
	}

	row, err := d.GetRFPByRFPID(rfpID)
	if err != nil {
		return internal.RFPRow{}, err
	}
	if row == nil {
		return internal.RFPRow{}, errors.New("failed to upsert rfp")
	}
	return *row, nil
}

func (d *DB) GetRFPByRFPID(rfpID string) (*internal.RFPRow, error) {
	var row internal.RFPRow
	err := d.conn.QueryRow(`
SELECT id, rfpId, title, issuer, dueDate, sourceRef, status, receivedAt
FROM rfps WHERE rfpId = ?
`, rfpID).Scan(&row.ID, &row.RFPID, &row.Title, &row.Issuer, &row.DueDate, &row.SourceRef, &row.Status, &row.ReceivedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustRFPByRFPID(rfpID string) (internal.RFPRow, error) {
	row, err := d.GetRFPByRFPID(rfpID)
	if err != nil {
		return internal.RFPRow{}, err
	}
	if row == nil {
		return internal.RFPRow{}, fmt.Errorf("rfp not found: %s", rfpID)
	}
	return *row, nil
}

func (d *DB) ListRFPsByStatus(status string, limit int) ([]internal.RFPRow, error) {
	rows, err := d.conn.Query(`
SELECT id, rfpId, title, issuer, dueDate, sourceRef, status, receivedAt
FROM rfps WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RFPRow
	for rows.Next() {
		var row internal.RFPRow
		if err := rows.Scan(&row.ID, &row.RFPID, &row.Title, &row.Issuer, &row.DueDate, &row.SourceRef, &row.Status, &row.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateRFPStatus(rfpRowID int, status string) error {
	_, err := d.conn.Exec(`UPDATE rfps SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, rfpRowID)
	return err
}

// ClearRFPProcessing removes previous technical and pricing output so a
// re-run starts clean.
func (d *DB) ClearRFPProcessing(rfpRowID int) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"recommendations", "pricing_lines", "pricing_runs"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE rfpRowId = ?`, rfpRowID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) InsertRecommendation(rfpRowID int, rec internal.ItemRecommendation) error {
	itemJSON, _ := json.Marshal(rec.Item)
	top3JSON, _ := json.Marshal(rec.Top3)
	comparisonJSON, _ := json.Marshal(rec.Comparison)

	var finalSku *string
	if rec.FinalSKU != "" {
		finalSku = util.StringPtr(rec.FinalSKU)
	}

	_, err := d.conn.Exec(`
INSERT INTO recommendations (rfpRowId, itemIndex, itemJson, top3Json, comparisonJson, finalSku, finalMatchPercent, quantity)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, rfpRowID, rec.ItemIndex, string(itemJSON), string(top3JSON), string(comparisonJSON), finalSku, rec.FinalMatchPercent, rec.Quantity)
	return err
}

func (d *DB) ListRecommendations(rfpRowID int) ([]internal.ItemRecommendation, error) {
	rows, err := d.conn.Query(`
SELECT itemIndex, itemJson, top3Json, comparisonJson, finalSku, finalMatchPercent, quantity
FROM recommendations WHERE rfpRowId = ? ORDER BY itemIndex ASC
`, rfpRowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ItemRecommendation
	for rows.Next() {
		var rec internal.ItemRecommendation
		var itemJSON, top3JSON, comparisonJSON string
		var finalSku sql.NullString
		if err := rows.Scan(&rec.ItemIndex, &itemJSON, &top3JSON, &comparisonJSON, &finalSku, &rec.FinalMatchPercent, &rec.Quantity); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(itemJSON), &rec.Item)
		_ = json.Unmarshal([]byte(top3JSON), &rec.Top3)
		_ = json.Unmarshal([]byte(comparisonJSON), &rec.Comparison)
		if finalSku.Valid {
			rec.FinalSKU = finalSku.String
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (d *DB) InsertPricingResult(rfpRowID int, result internal.PricingResult) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, line := range result.Lines {
		testsJSON, _ := json.Marshal(line.Tests)
		if _, err := tx.Exec(`
INSERT INTO pricing_lines (rfpRowId, itemNo, sku, matchPercent, quantity, unitPrice, materialCost, testsJson, testCostTotal, totalCost)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(rfpRowId, itemNo) DO UPDATE SET
  sku=excluded.sku,
  matchPercent=excluded.matchPercent,
  quantity=excluded.quantity,
  unitPrice=excluded.unitPrice,
  materialCost=excluded.materialCost,
  testsJson=excluded.testsJson,
  testCostTotal=excluded.testCostTotal,
  totalCost=excluded.totalCost
`, rfpRowID, line.ItemNo, line.SKU, line.MatchPercent, line.Quantity, line.UnitPrice, line.MaterialCost, string(testsJSON), line.TestCostTotal, line.TotalCost); err != nil {
			return err
		}
	}

	skippedJSON, _ := json.Marshal(result.SkippedTests)
	unpricedJSON, _ := json.Marshal(result.UnpricedItems)
	if _, err := tx.Exec(`
INSERT INTO pricing_runs (rfpRowId, materialTotal, testTotal, grandTotal, skippedJson, unpricedJson)
VALUES (?, ?, ?, ?, ?, ?)
`, rfpRowID, result.Totals.MaterialTotal, result.Totals.TestTotal, result.Totals.GrandTotal, string(skippedJSON), string(unpricedJSON)); err != nil {
		return err
	}

	return tx.Commit()
}

// GetPricingResult reassembles the latest stored pricing run for an RFP.
func (d *DB) GetPricingResult(rfpRowID int) (*internal.PricingResult, error) {
	var result internal.PricingResult
	var skippedJSON, unpricedJSON string
	err := d.conn.QueryRow(`
SELECT materialTotal, testTotal, grandTotal, skippedJson, unpricedJson
FROM pricing_runs WHERE rfpRowId = ? ORDER BY id DESC LIMIT 1
`, rfpRowID).Scan(&result.Totals.MaterialTotal, &result.Totals.TestTotal, &result.Totals.GrandTotal, &skippedJSON, &unpricedJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(skippedJSON), &result.SkippedTests)
	_ = json.Unmarshal([]byte(unpricedJSON), &result.UnpricedItems)

	rows, err := d.conn.Query(`
SELECT itemNo, sku, matchPercent, quantity, unitPrice, materialCost, testsJson, testCostTotal, totalCost
FROM pricing_lines WHERE rfpRowId = ? ORDER BY itemNo ASC
`, rfpRowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line internal.PricingLine
		var testsJSON string
		if err := rows.Scan(&line.ItemNo, &line.SKU, &line.MatchPercent, &line.Quantity, &line.UnitPrice, &line.MaterialCost, &testsJSON, &line.TestCostTotal, &line.TotalCost); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(testsJSON), &line.Tests)
		result.Lines = append(result.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	var row internal.EmailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) MustEmailByProviderMessageID(provider, messageID string) (internal.EmailRow, error) {
	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, fmt.Errorf("email not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func (d *DB) ListEmailsByStatus(status string, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		var row internal.EmailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, emailID)
	return err
}

func (d *DB) InsertRun(traceID string, rfpRowID, emailID int, timings map[string]float64, counts map[string]int) error {
	timingsJSON, _ := json.Marshal(timings)
	countsJSON, _ := json.Marshal(counts)
	var rfpRef, emailRef any
	if rfpRowID > 0 {
		rfpRef = rfpRowID
	}
	if emailID > 0 {
		emailRef = emailID
	}
	_, err := d.conn.Exec(`INSERT INTO runs (traceId, rfpRowId, emailId, timingsJson, countsJson) VALUES (?, ?, ?, ?, ?)`,
		traceID, rfpRef, emailRef, string(timingsJSON), string(countsJSON))
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
