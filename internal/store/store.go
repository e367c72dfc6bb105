// Package store handles SQLite-backed creature tables.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/verte-zerg/dexboard/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// RecordsTable is the name of the table holding creature rows.
const RecordsTable = "records"

// Store wraps SQLite access for creature records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	dsn, err := fileDSN(path, "rwc")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
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

// OpenReadOnly opens an existing database without creating or migrating it.
func OpenReadOnly(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	dsn, err := fileDSN(path, "ro")
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		if cerr := db.Close(); cerr != nil {
			_ = cerr
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

// fileDSN builds a SQLite URI for path. The path is escaped so that '?' and
// '#' stay part of the file name.
func fileDSN(path, mode string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	u := url.URL{Scheme: "file", Path: abs, RawQuery: "mode=" + mode}
	return u.String(), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			category_primary TEXT NOT NULL,
			region TEXT,
			attack INTEGER NOT NULL,
			defense INTEGER NOT NULL,
			speed INTEGER NOT NULL,
			health INTEGER NOT NULL,
			total_stat INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_region ON records(region);`,
		`CREATE INDEX IF NOT EXISTS idx_records_category ON records(category_primary);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceRecords swaps the stored rows for records, keeping their order.
func (s *Store) ReplaceRecords(ctx context.Context, records []model.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return err
	}
	if len(records) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO records (name, category_primary, region, attack, defense, speed, health, total_stat)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, r := range records {
			var region any
			if r.HasRegion() {
				region = r.Region
			}
			if _, err = stmt.ExecContext(ctx, r.Name, r.Category, region, r.Attack, r.Defense, r.Speed, r.Health, r.Total); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

// MissingColumns reports required columns absent from the records table.
func (s *Store) MissingColumns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, RecordsTable))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	present := map[string]struct{}{}
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		present[strings.ToLower(name)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(present) == 0 {
		return nil, fmt.Errorf("table %q not found", RecordsTable)
	}
	var missing []string
	for _, f := range model.Fields {
		if _, ok := present[string(f)]; !ok {
			missing = append(missing, string(f))
		}
	}
	return missing, nil
}

// ListRecords returns all rows in insertion order.
func (s *Store) ListRecords(ctx context.Context) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, category_primary, region, attack, defense, speed, health, total_stat
		FROM records
		ORDER BY rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Record
	for rows.Next() {
		var r model.Record
		var region sql.NullString
		if err := rows.Scan(&r.Name, &r.Category, &region, &r.Attack, &r.Defense, &r.Speed, &r.Health, &r.Total); err != nil {
			return nil, err
		}
		if region.Valid {
			r.Region = region.String
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
