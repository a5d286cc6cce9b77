// Package sqlite stores flat timetable rows in a SQLite database and exposes
// them as a timetable source.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/example/od-mailer/internal/timetable"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// ErrEmptyImport is returned when an import carries no rows.
var ErrEmptyImport = errors.New("sqlite: import contains no rows")

// Config holds connection settings.
type Config struct {
	DSN          string
	BusyTimeout  time.Duration
	JournalMode  string
	MaxOpenConns int
}

// DefaultConfig returns settings suitable for a single-process store.
func DefaultConfig(dsn string) Config {
	return Config{
		DSN:          dsn,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "WAL",
		MaxOpenConns: 1,
	}
}

// Store persists timetable rows.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// ImportRecord describes one completed import.
type ImportRecord struct {
	Source      string    `json:"source"`
	RowCount    int       `json:"rowCount"`
	Fingerprint string    `json:"fingerprint"`
	ImportedAt  time.Time `json:"importedAt"`
}

// Open connects to the database described by cfg, creating the parent
// directory of a file DSN when needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("sqlite: DSN is required")
	}
	if path := filePath(cfg.DSN); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	pragmas := []string{"PRAGMA foreign_keys = ON"}
	if cfg.BusyTimeout > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds()))
	}
	if cfg.JournalMode != "" && filePath(cfg.DSN) != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = "+cfg.JournalMode)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// filePath returns the file behind a DSN, or "" for in-memory databases.
func filePath(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	return path
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type migration struct {
	version     int
	description string
	sql         string
}

// Migrate applies pending schema migrations in version order. Each migration
// runs in its own transaction together with its schema_migrations record.
func (s *Store) Migrate(ctx context.Context) error {
	const versionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  TEXT NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, versionTable); err != nil {
		return fmt.Errorf("sqlite: create schema_migrations: %w", err)
	}

	migrations, err := scanMigrations()
	if err != nil {
		return err
	}
	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := s.withTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
				m.version, m.description, s.now().UTC().Format(time.RFC3339Nano))
			return err
		})
		if err != nil {
			return fmt.Errorf("sqlite: migration %03d_%s: %w", m.version, m.description, err)
		}
	}
	return nil
}

func scanMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("sqlite: read migrations: %w", err)
	}
	var migrations []migration
	for _, entry := range entries {
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, _ := strconv.Atoi(match[1])
		body, err := fs.ReadFile(migrationFS, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("sqlite: read migration %s: %w", entry.Name(), err)
		}
		migrations = append(migrations, migration{version: version, description: match[2], sql: string(body)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// withTransaction runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReplaceRows swaps the stored rows for rows in a single transaction and
// records the import.
func (s *Store) ReplaceRows(ctx context.Context, source string, rows []timetable.Row) (ImportRecord, error) {
	if len(rows) == 0 {
		return ImportRecord{}, ErrEmptyImport
	}
	converted, _ := timetable.ConvertRows(rows)
	record := ImportRecord{
		Source:      source,
		RowCount:    len(rows),
		Fingerprint: timetable.Fingerprint(converted),
		ImportedAt:  s.now().UTC(),
	}

	err := s.withTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_rows`); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO timetable_rows
			(position, class_name, program, section, semester, day, time, subject_name, subject_code, faculty, faculty_code, type, grp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, row := range rows {
			subject := row.SubjectName
			if subject == "" {
				subject = row.Subject
			}
			if _, err := stmt.ExecContext(ctx, i, row.ClassName, row.Program, row.Section, row.Semester,
				row.Day, row.Time, subject, row.SubjectCode, row.Faculty, row.FacultyCode, row.Type, row.Group); err != nil {
				return fmt.Errorf("insert row %d: %w", i, err)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO timetable_imports (source, row_count, fingerprint, imported_at) VALUES (?, ?, ?, ?)`,
			record.Source, record.RowCount, record.Fingerprint, record.ImportedAt.Format(time.RFC3339Nano))
		return err
	})
	if err != nil {
		return ImportRecord{}, fmt.Errorf("sqlite: replace rows: %w", err)
	}
	return record, nil
}

// Rows returns the stored rows in import order.
func (s *Store) Rows(ctx context.Context) ([]timetable.Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT class_name, program, section, semester, day, time,
		subject_name, subject_code, faculty, faculty_code, type, grp
		FROM timetable_rows ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query rows: %w", err)
	}
	defer rows.Close()

	var out []timetable.Row
	for rows.Next() {
		var r timetable.Row
		if err := rows.Scan(&r.ClassName, &r.Program, &r.Section, &r.Semester, &r.Day, &r.Time,
			&r.SubjectName, &r.SubjectCode, &r.Faculty, &r.FacultyCode, &r.Type, &r.Group); err != nil {
			return nil, fmt.Errorf("sqlite: scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LastImport returns the most recent import, or false when none exists.
func (s *Store) LastImport(ctx context.Context) (ImportRecord, bool, error) {
	var (
		record     ImportRecord
		importedAt string
	)
	err := s.db.QueryRowContext(ctx, `SELECT source, row_count, fingerprint, imported_at
		FROM timetable_imports ORDER BY id DESC LIMIT 1`).
		Scan(&record.Source, &record.RowCount, &record.Fingerprint, &importedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ImportRecord{}, false, nil
	}
	if err != nil {
		return ImportRecord{}, false, fmt.Errorf("sqlite: last import: %w", err)
	}
	if parsed, perr := time.Parse(time.RFC3339Nano, importedAt); perr == nil {
		record.ImportedAt = parsed
	}
	return record, true, nil
}
