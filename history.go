package authstate

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Ledger is a small SQLite index of capture runs, kept next to the
// artifacts. It exists for listing and pruning only; the JSON artifact file
// remains the sole input to a restore.
type Ledger struct {
	db *sql.DB
}

// LedgerEntry is one recorded capture.
type LedgerEntry struct {
	CaptureID   string
	Environment Environment
	Browser     Browser
	Path        string
	CapturedAt  time.Time
	ExpiresAt   time.Time
}

// Timestamps are stored as unix nanoseconds so SQL comparisons work.
const ledgerSchema = `
CREATE TABLE IF NOT EXISTS captures (
	capture_id  TEXT PRIMARY KEY,
	environment TEXT NOT NULL,
	browser     TEXT NOT NULL,
	path        TEXT NOT NULL,
	captured_at INTEGER NOT NULL,
	expires_at  INTEGER NOT NULL
);`

// OpenLedger opens (creating if needed) the capture ledger in dir.
func OpenLedger(ctx context.Context, dir string) (*Ledger, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	dbPath := filepath.Join(dir, "captures.db")
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(dbPath)+"?mode=rwc")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error { return l.db.Close() }

// Record adds one capture to the ledger.
func (l *Ledger) Record(ctx context.Context, a *Artifact, path string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO captures (capture_id, environment, browser, path, captured_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.CaptureID, string(a.Environment), string(a.Browser), path,
		a.CapturedAt.UnixNano(), a.ExpiresAt.UnixNano())
	return err
}

// Entries returns all recorded captures, newest first.
func (l *Ledger) Entries(ctx context.Context) ([]LedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT capture_id, environment, browser, path, captured_at, expires_at
		 FROM captures ORDER BY captured_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var env, browser string
		var capturedAt, expiresAt int64
		if err := rows.Scan(&e.CaptureID, &env, &browser, &e.Path, &capturedAt, &expiresAt); err != nil {
			return nil, err
		}
		e.Environment = Environment(env)
		e.Browser = Browser(browser)
		e.CapturedAt = time.Unix(0, capturedAt).UTC()
		e.ExpiresAt = time.Unix(0, expiresAt).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes one capture row by id.
func (l *Ledger) Delete(ctx context.Context, captureID string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM captures WHERE capture_id = ?`, captureID)
	return err
}

// PruneExpired removes rows whose expiry has passed and returns how many
// were deleted. Artifact files on disk are the Store's business.
func (l *Ledger) PruneExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM captures WHERE expires_at <= ?`, now.UnixNano())
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
