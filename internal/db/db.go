// Package db is the local SQLite store: a cache of raw day
// batches (completed days are immutable upstream, so a cached
// day never needs refetching) and a history of produced
// snapshots.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/usagedeck/usagedeck/internal/analytics"
	"github.com/usagedeck/usagedeck/internal/snapshot"
)

//go:embed schema.sql
var schemaSQL string

// DB manages a write connection and a read-only pool.
type DB struct {
	writer *sql.DB
	reader *sql.DB
	mu     sync.Mutex // serializes writes
}

// makeDSN builds a SQLite connection string with shared pragmas.
func makeDSN(path string, readOnly bool) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	if readOnly {
		params.Set("mode", "ro")
	} else {
		params.Set("_synchronous", "NORMAL")
	}
	return path + "?" + params.Encode()
}

// Open creates or opens the SQLite database at path, applying
// the schema. The writer is limited to a single connection;
// reads go through a small read-only pool.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	writer, err := sql.Open("sqlite3", makeDSN(path, false))
	if err != nil {
		return nil, fmt.Errorf("opening writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	if _, err := writer.Exec(schemaSQL); err != nil {
		writer.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	reader, err := sql.Open("sqlite3", makeDSN(path, true))
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("opening reader: %w", err)
	}
	reader.SetMaxOpenConns(4)

	return &DB{writer: writer, reader: reader}, nil
}

// Close closes both connections.
func (db *DB) Close() error {
	rerr := db.reader.Close()
	werr := db.writer.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// GetDayRecords returns the cached record batch for a day, with
// ok=false when the day has not been cached.
func (db *DB) GetDayRecords(
	ctx context.Context, day string,
) ([]analytics.UserActivityRecord, bool, error) {
	var raw string
	err := db.reader.QueryRowContext(ctx,
		`SELECT records FROM day_cache WHERE day = ?`, day,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying day cache: %w", err)
	}

	var records []analytics.UserActivityRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, false, fmt.Errorf("decoding cached day %s: %w", day, err)
	}
	return records, true, nil
}

// PutDayRecords caches a day's record batch, replacing any
// previous entry for the same day.
func (db *DB) PutDayRecords(
	ctx context.Context, day string,
	records []analytics.UserActivityRecord,
) error {
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding day %s: %w", day, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	_, err = db.writer.ExecContext(ctx,
		`INSERT INTO day_cache (day, records, fetched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(day) DO UPDATE SET
		     records = excluded.records,
		     fetched_at = excluded.fetched_at`,
		day, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("caching day %s: %w", day, err)
	}
	return nil
}

// CachedDays returns the set of days present in the cache.
func (db *DB) CachedDays(ctx context.Context) (map[string]bool, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT day FROM day_cache`)
	if err != nil {
		return nil, fmt.Errorf("listing cached days: %w", err)
	}
	defer rows.Close()

	days := make(map[string]bool)
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		days[day] = true
	}
	return days, rows.Err()
}

// SnapshotRecord is one row of fetch history.
type SnapshotRecord struct {
	ID        int64     `json:"id"`
	FetchedAt time.Time `json:"fetchedAt"`
	StartDay  string    `json:"startDay"`
	EndDay    string    `json:"endDay"`
	DayCount  int       `json:"dayCount"`
	UserCount int       `json:"userCount"`
}

// RecordSnapshot appends a produced snapshot to the history.
func (db *DB) RecordSnapshot(
	ctx context.Context, snap *snapshot.Snapshot,
) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.writer.ExecContext(ctx,
		`INSERT INTO snapshot_history
		 (fetched_at, start_day, end_day, day_count, user_count)
		 VALUES (?, ?, ?, ?, ?)`,
		snap.FetchedAt.UTC().Format(time.RFC3339),
		snap.DateRange.Start, snap.DateRange.End,
		len(snap.Daily), len(snap.Users),
	)
	if err != nil {
		return fmt.Errorf("recording snapshot: %w", err)
	}
	return nil
}

// History returns the most recent snapshot records, newest
// first, up to limit.
func (db *DB) History(
	ctx context.Context, limit int,
) ([]SnapshotRecord, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT id, fetched_at, start_day, end_day, day_count, user_count
		 FROM snapshot_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []SnapshotRecord
	for rows.Next() {
		var r SnapshotRecord
		var fetchedAt string
		if err := rows.Scan(&r.ID, &fetchedAt, &r.StartDay,
			&r.EndDay, &r.DayCount, &r.UserCount); err != nil {
			return nil, err
		}
		r.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing history timestamp: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
