// Package store archives completed results in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/speedtype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for archived results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			wpm REAL NOT NULL,
			accuracy INTEGER NOT NULL,
			time_seconds REAL NOT NULL,
			tier TEXT NOT NULL,
			level INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_tier ON results(tier);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult archives a result. Inserting the same ID twice is a no-op.
func (s *Store) InsertResult(ctx context.Context, r model.TestResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results (id, created_at, wpm, accuracy, time_seconds, tier, level)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.CreatedAt.UTC().Format(timeLayout),
		r.WPM,
		r.Accuracy,
		r.TimeSeconds,
		string(r.Tier),
		r.Level,
	)
	return err
}

// ListResults returns archived results filtered by cfg, oldest first.
// cfg.Last keeps only the most recent N.
func (s *Store) ListResults(ctx context.Context, cfg model.StatsConfig) ([]model.TestResult, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Tier != "" {
		clauses = append(clauses, "tier = ?")
		args = append(args, string(cfg.Tier))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, created_at, wpm, accuracy, time_seconds, tier, level
		FROM results
		WHERE %s
		ORDER BY created_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.TestResult
	for rows.Next() {
		var r model.TestResult
		var createdAt, tier string
		if err := rows.Scan(&r.ID, &createdAt, &r.WPM, &r.Accuracy, &r.TimeSeconds, &tier, &r.Level); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, err
		}
		r.CreatedAt = parsed
		r.Tier = model.Tier(tier)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return results, nil
}

// DeleteAll removes every archived result and returns how many were removed.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM results`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
