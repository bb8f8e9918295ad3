// Package state persists per-page build state in SQLite: the source
// fingerprint and output checksum of every emitted file, plus a short build
// history. It lets a build report which sources changed since the last run
// and skip rewriting outputs that would come out identical.
package state

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Memory selects a throwaway in-memory database.
const Memory = ":memory:"

// DefaultPath is where a build keeps its state unless configured otherwise.
func DefaultPath(buildDir string) string {
	return filepath.Join(buildDir, ".yassg", "state.db")
}

// PageRecord is the state of one output file after a build.
type PageRecord struct {
	// Output is the slash-separated output path relative to the build directory.
	Output string
	// Page is the logical page path.
	Page        string
	Fingerprint string
	Checksum    string
	BuildID     string
	RenderedAt  time.Time
}

// Build is one entry of the build history.
type Build struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Pages      int
	Changed    int
}

// Store is a SQLite-backed state store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and creates when needed) the database at path. Use Memory for
// an in-memory database.
func Open(path string) (*Store, error) {
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to :memory: would see its own database.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		output TEXT PRIMARY KEY,
		page TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		checksum TEXT NOT NULL,
		build_id TEXT NOT NULL,
		rendered_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_pages_build_id ON pages(build_id);
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL,
		status TEXT NOT NULL,
		pages INTEGER NOT NULL,
		changed INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started_at ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the record for an output path.
func (s *Store) Get(ctx context.Context, output string) (PageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT output, page, fingerprint, checksum, build_id, rendered_at FROM pages WHERE output = ?",
		output,
	)
	rec, err := scanPage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PageRecord{}, false, nil
	}
	if err != nil {
		return PageRecord{}, false, fmt.Errorf("query page %s: %w", output, err)
	}
	return rec, true, nil
}

// Put inserts or replaces the record for rec.Output.
func (s *Store) Put(ctx context.Context, rec PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RenderedAt.IsZero() {
		rec.RenderedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (output, page, fingerprint, checksum, build_id, rendered_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(output) DO UPDATE SET
			page = excluded.page,
			fingerprint = excluded.fingerprint,
			checksum = excluded.checksum,
			build_id = excluded.build_id,
			rendered_at = excluded.rendered_at`,
		rec.Output, rec.Page, rec.Fingerprint, rec.Checksum, rec.BuildID, rec.RenderedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert page %s: %w", rec.Output, err)
	}
	return nil
}

// Pages returns every record keyed by output path.
func (s *Store) Pages(ctx context.Context) (map[string]PageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT output, page, fingerprint, checksum, build_id, rendered_at FROM pages ORDER BY output",
	)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := map[string]PageRecord{}
	for rows.Next() {
		rec, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		out[rec.Output] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Prune deletes the records not written by buildID, i.e. pages that no
// longer exist, and returns their output paths.
func (s *Store) Prune(ctx context.Context, buildID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, "SELECT output FROM pages WHERE build_id != ? ORDER BY output", buildID)
	if err != nil {
		return nil, fmt.Errorf("query stale pages: %w", err)
	}
	var stale []string
	for rows.Next() {
		var output string
		if err := rows.Scan(&output); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan stale page: %w", err)
		}
		stale = append(stale, output)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE build_id != ?", buildID); err != nil {
		return nil, fmt.Errorf("delete stale pages: %w", err)
	}
	return stale, nil
}

// RecordBuild stores a build history entry.
func (s *Store) RecordBuild(ctx context.Context, b Build) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO builds (id, started_at, finished_at, status, pages, changed) VALUES (?, ?, ?, ?, ?, ?)",
		b.ID, b.StartedAt.UnixNano(), b.FinishedAt.UnixNano(), b.Status, b.Pages, b.Changed,
	)
	if err != nil {
		return fmt.Errorf("insert build %s: %w", b.ID, err)
	}
	return nil
}

// LastBuild returns the most recently started build.
func (s *Store) LastBuild(ctx context.Context) (Build, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		b                 Build
		started, finished int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, status, pages, changed FROM builds ORDER BY started_at DESC LIMIT 1",
	).Scan(&b.ID, &started, &finished, &b.Status, &b.Pages, &b.Changed)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, false, nil
	}
	if err != nil {
		return Build{}, false, fmt.Errorf("query last build: %w", err)
	}
	b.StartedAt = time.Unix(0, started)
	b.FinishedAt = time.Unix(0, finished)
	return b, true, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPage(row scanner) (PageRecord, error) {
	var (
		rec      PageRecord
		rendered int64
	)
	if err := row.Scan(&rec.Output, &rec.Page, &rec.Fingerprint, &rec.Checksum, &rec.BuildID, &rendered); err != nil {
		return PageRecord{}, err
	}
	rec.RenderedAt = time.Unix(0, rendered)
	return rec, nil
}

// Checksum is the hex SHA-256 of rendered output.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
