// =============================================================================
// FZ10 Ingest - SQLite Store
// =============================================================================
//
// Persists normalized registration records in a SQLite table keyed by the
// natural composite (brand, model_series, category, year, period). Ingest
// runs are idempotent: re-ingesting the same period upserts in place instead
// of duplicating rows.
//
// The parsing engine performs no storage I/O; it hands this store a lazy
// record cursor, which is drained inside a single transaction per run.
//
// =============================================================================

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/kbadata/fz10/internal/types"
)

// schema is applied on every open; all statements are idempotent.
//
// The natural-key columns year and period are stored NOT NULL with zero
// values standing in for "unparsed", because SQLite treats NULLs in a UNIQUE
// index as distinct and that would break upsert idempotence.
const schema = `
CREATE TABLE IF NOT EXISTS registrations (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	brand        TEXT    NOT NULL,
	model_series TEXT    NOT NULL,
	category     TEXT    NOT NULL,
	year         INTEGER NOT NULL DEFAULT 0,
	period       TEXT    NOT NULL DEFAULT '',
	period_range TEXT,
	count        INTEGER,
	count_range  TEXT,
	extra        TEXT    NOT NULL DEFAULT '{}',
	run_id       TEXT    NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (brand, model_series, category, year, period)
);

CREATE INDEX IF NOT EXISTS idx_registrations_year_period
	ON registrations (year, period);
`

const upsertQuery = `
INSERT INTO registrations (
	brand, model_series, category, year, period,
	period_range, count, count_range, extra, run_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (brand, model_series, category, year, period) DO UPDATE SET
	period_range = excluded.period_range,
	count        = excluded.count,
	count_range  = excluded.count_range,
	extra        = excluded.extra,
	run_id       = excluded.run_id,
	updated_at   = CURRENT_TIMESTAMP
`

// Store wraps the SQLite database holding normalized records.
type Store struct {
	db *sqlx.DB
}

// StoredRecord is one persisted registration row.
type StoredRecord struct {
	ID          int64          `db:"id"`
	Brand       string         `db:"brand"`
	ModelSeries string         `db:"model_series"`
	Category    string         `db:"category"`
	Year        int64          `db:"year"`
	Period      string         `db:"period"`
	PeriodRange sql.NullString `db:"period_range"`
	Count       sql.NullInt64  `db:"count"`
	CountRange  sql.NullString `db:"count_range"`
	Extra       string         `db:"extra"`
	RunID       string         `db:"run_id"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Open opens (or creates) the database file and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// SQLite allows one writer; a single pooled connection avoids lock
	// contention and keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertAll drains a record cursor into the table inside one transaction and
// returns the number of records written. A cursor error rolls the whole run
// back; no partial batches are committed.
func (s *Store) InsertAll(ctx context.Context, runID string, src types.RecordSource) (int, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, upsertQuery)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for src.Next() {
		rec := src.Record()

		extra, err := marshalExtra(rec.Extra)
		if err != nil {
			return 0, err
		}

		_, err = stmt.ExecContext(ctx,
			rec.Brand,
			rec.ModelSeries,
			rec.Category,
			keyYear(rec.Year),
			keyPeriod(rec.Period),
			rec.PeriodRange,
			rec.Count,
			rec.CountRange,
			extra,
			runID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert record for %s %s: %w", rec.Brand, rec.ModelSeries, err)
		}
		written++
	}
	if err := src.Err(); err != nil {
		return 0, fmt.Errorf("record stream failed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return written, nil
}

// Records returns stored rows, optionally filtered by reporting year.
// A zero year returns everything. Rows come back in natural-key order so
// exports are deterministic.
func (s *Store) Records(ctx context.Context, year int) ([]StoredRecord, error) {
	query := `SELECT * FROM registrations`
	args := []interface{}{}
	if year != 0 {
		query += ` WHERE year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY brand, model_series, category, year, period`

	var records []StoredRecord
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

// CountRecords returns the total number of stored rows.
func (s *Store) CountRecords(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM registrations`); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// keyYear maps a nullable year onto the NOT NULL key column.
func keyYear(year *int) int {
	if year == nil {
		return 0
	}
	return *year
}

// keyPeriod maps a nullable period onto the NOT NULL key column.
func keyPeriod(period *string) string {
	if period == nil {
		return ""
	}
	return *period
}

// marshalExtra serializes the free-form measure columns as JSON.
func marshalExtra(extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(extra)
	if err != nil {
		return "", fmt.Errorf("failed to marshal extra fields: %w", err)
	}
	return string(data), nil
}
