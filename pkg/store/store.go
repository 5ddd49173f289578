package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is a single persisted verification failure (spec.md §3
// "Verification record").
type Record struct {
	FirstSeenEpoch int64
	Cluster        string
	Image          string
	Message        string
}

func (r Record) key() string {
	return r.Cluster + "\x00" + r.Image + "\x00" + r.Message
}

// Store is the backing SQLite database for verification results.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS results (
			first_seen_epoch INTEGER NOT NULL,
			cluster          TEXT NOT NULL,
			image            TEXT NOT NULL,
			message          TEXT NOT NULL,
			PRIMARY KEY (cluster, image, message)
		)
	`)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reconcile diffs fresh against the store's current contents: records
// present in the store but absent from fresh are deleted (the problem
// cleared); records present in fresh but absent from the store are
// inserted with the current epoch; records present in both are left
// untouched, preserving first_seen_epoch for age-based alerting.
func (s *Store) Reconcile(ctx context.Context, fresh []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: reconcile: begin: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT cluster, image, message FROM results`)
	if err != nil {
		return fmt.Errorf("store: reconcile: select: %w", err)
	}
	existing := make(map[string]struct{})
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Cluster, &r.Image, &r.Message); err != nil {
			rows.Close()
			return fmt.Errorf("store: reconcile: scan: %w", err)
		}
		existing[r.key()] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("store: reconcile: rows: %w", err)
	}
	rows.Close()

	freshKeys := make(map[string]struct{}, len(fresh))
	for _, r := range fresh {
		freshKeys[r.key()] = struct{}{}
		if _, ok := existing[r.key()]; ok {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO results (first_seen_epoch, cluster, image, message) VALUES (?, ?, ?, ?)`,
			s.now().Unix(), r.Cluster, r.Image, r.Message)
		if err != nil {
			return fmt.Errorf("store: reconcile: insert %q/%q: %w", r.Cluster, r.Image, err)
		}
	}

	for key := range existing {
		if _, ok := freshKeys[key]; ok {
			continue
		}
		cluster, image, message, ok := splitKey(key)
		if !ok {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM results WHERE cluster = ? AND image = ? AND message = ?`,
			cluster, image, message)
		if err != nil {
			return fmt.Errorf("store: reconcile: delete %q/%q: %w", cluster, image, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: reconcile: commit: %w", err)
	}
	return nil
}

func splitKey(key string) (cluster, image, message string, ok bool) {
	parts := make([]string, 0, 3)
	start := 0
	for i := 0; i < len(key); i++ {
		if key[i] == 0 {
			parts = append(parts, key[start:i])
			start = i + 1
		}
	}
	parts = append(parts, key[start:])
	if len(parts) != 3 {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Stale returns every record whose first_seen_epoch is older than
// window, for the check subcommand's freshness gate (spec.md §4.10,
// 2-hour default window).
func (s *Store) Stale(ctx context.Context, window time.Duration) ([]Record, error) {
	cutoff := s.now().Add(-window).Unix()
	rows, err := s.db.QueryContext(ctx,
		`SELECT first_seen_epoch, cluster, image, message FROM results WHERE first_seen_epoch <= ? ORDER BY first_seen_epoch ASC`,
		cutoff)
	if err != nil {
		return nil, fmt.Errorf("store: stale: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.FirstSeenEpoch, &r.Cluster, &r.Image, &r.Message); err != nil {
			return nil, fmt.Errorf("store: stale: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: stale: rows: %w", err)
	}
	return out, nil
}
