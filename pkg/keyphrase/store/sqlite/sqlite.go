package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/keyphrase/pkg/keyphrase/internalerr"
	"github.com/cognicore/keyphrase/pkg/keyphrase/rank"
	"github.com/cognicore/keyphrase/pkg/keyphrase/report"
	"github.com/cognicore/keyphrase/pkg/keyphrase/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection; keep a single one.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	// Initialize schema
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	created_at TEXT NOT NULL,
	weights_json TEXT NOT NULL,
	stats_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_source ON reports(source);

CREATE TABLE IF NOT EXISTS report_keywords (
	report_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	lemma TEXT NOT NULL,
	words INTEGER NOT NULL,
	frequency INTEGER NOT NULL,
	weight REAL NOT NULL,
	PRIMARY KEY(report_id, position),
	FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_report_keywords_text ON report_keywords(text);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveReport inserts or replaces a report and its keywords
func (s *sqliteStore) SaveReport(ctx context.Context, r report.Report) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report without id", internalerr.ErrInvalidInput)
	}
	weightsJSON, err := json.Marshal(r.Weights)
	if err != nil {
		return err
	}
	statsJSON, err := json.Marshal(r.Stats)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO reports (id, source, created_at, weights_json, stats_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source=excluded.source,
	created_at=excluded.created_at,
	weights_json=excluded.weights_json,
	stats_json=excluded.stats_json;
`, r.ID, r.Source, r.CreatedAt.UTC().Format(time.RFC3339Nano), string(weightsJSON), string(statsJSON))
	if err != nil {
		return err
	}

	if err := replaceKeywords(ctx, tx, r.ID, r.Keywords); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceKeywords(ctx context.Context, tx *sql.Tx, reportID string, kws []rank.Keyword) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM report_keywords WHERE report_id = ?`, reportID); err != nil {
		return err
	}
	if len(kws) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO report_keywords (report_id, position, text, lemma, words, frequency, weight)
VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, kw := range kws {
		if _, err := stmt.ExecContext(ctx, reportID, i, kw.Text, kw.Lemma, kw.Words, kw.Frequency, kw.Weight); err != nil {
			return err
		}
	}
	return nil
}

// GetReport retrieves a report by ID
func (s *sqliteStore) GetReport(ctx context.Context, id string) (report.Report, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, source, created_at, weights_json, stats_json
FROM reports
WHERE id = ?;
`, id)

	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return report.Report{}, fmt.Errorf("report %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return report.Report{}, err
	}

	if r.Keywords, err = s.loadKeywords(ctx, r.ID); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

// ListReports returns the newest reports first, optionally for one source
func (s *sqliteStore) ListReports(ctx context.Context, source string, limit int) ([]report.Report, error) {
	if limit <= 0 {
		limit = store.DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, source, created_at, weights_json, stats_json
FROM reports
WHERE ? = '' OR source = ?
ORDER BY id DESC
LIMIT ?;
`, source, source, limit)
	if err != nil {
		return nil, err
	}

	var reports []report.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range reports {
		if reports[i].Keywords, err = s.loadKeywords(ctx, reports[i].ID); err != nil {
			return nil, err
		}
	}
	return reports, nil
}

// TopPhrases sums keyword weights across all reports
func (s *sqliteStore) TopPhrases(ctx context.Context, k int) ([]store.Phrase, error) {
	if k <= 0 {
		k = store.DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT text, MIN(lemma), SUM(weight), COUNT(DISTINCT report_id)
FROM report_keywords
GROUP BY text;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phrases []store.Phrase
	for rows.Next() {
		var p store.Phrase
		if err := rows.Scan(&p.Text, &p.Lemma, &p.Weight, &p.Documents); err != nil {
			return nil, err
		}
		phrases = append(phrases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	store.SortPhrases(phrases)
	if len(phrases) > k {
		phrases = phrases[:k]
	}
	return phrases, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (report.Report, error) {
	var r report.Report
	var createdAt, weightsJSON, statsJSON string
	if err := sc.Scan(&r.ID, &r.Source, &createdAt, &weightsJSON, &statsJSON); err != nil {
		return report.Report{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return report.Report{}, fmt.Errorf("report %s created_at: %w", r.ID, err)
	}
	r.CreatedAt = t
	if err := json.Unmarshal([]byte(weightsJSON), &r.Weights); err != nil {
		return report.Report{}, err
	}
	if err := json.Unmarshal([]byte(statsJSON), &r.Stats); err != nil {
		return report.Report{}, err
	}
	return r, nil
}

func (s *sqliteStore) loadKeywords(ctx context.Context, reportID string) ([]rank.Keyword, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT text, lemma, words, frequency, weight
FROM report_keywords
WHERE report_id = ?
ORDER BY position;
`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	kws := []rank.Keyword{}
	for rows.Next() {
		var kw rank.Keyword
		if err := rows.Scan(&kw.Text, &kw.Lemma, &kw.Words, &kw.Frequency, &kw.Weight); err != nil {
			return nil, err
		}
		kws = append(kws, kw)
	}
	return kws, rows.Err()
}
