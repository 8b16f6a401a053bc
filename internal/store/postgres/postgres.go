// Package postgres provides a PostgreSQL-backed vfs.Store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/docfs/internal/shared/id"
	"github.com/GriffinCanCode/docfs/internal/vfs"
)

// DefaultTable is the entry table used when none is configured.
const DefaultTable = "fs_entry"

var (
	// ErrInvalidTable is returned for table names that are not plain identifiers.
	ErrInvalidTable = errors.New("invalid table name")
	// ErrMissing is returned by Update when no row has the path.
	ErrMissing = errors.New("record does not exist")

	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)
)

// ValidateTable reports whether name can be used as the entry table.
func ValidateTable(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, name)
	}
	return nil
}

// Store is a PostgreSQL entry store. The table name is fixed at construction
// and quoted; every value is bound as a parameter.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	ids    *id.Generator

	qLookup string
	qList   string
	qScan   string
	qInsert string
	qUpdate string
	qSchema []string
}

// New opens a connection pool to databaseURL.
func New(ctx context.Context, databaseURL, table string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s, err := NewWithDB(db, table, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB wraps an existing pool.
func NewWithDB(db *sql.DB, table string, logger *zap.Logger) (*Store, error) {
	if table == "" {
		table = DefaultTable
	}
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	t := pq.QuoteIdentifier(table)
	idx := pq.QuoteIdentifier(table + "_parent_idx")
	const cols = `path, name, parent, is_dir, content, updated_at`

	return &Store{
		db:      db,
		logger:  logger,
		ids:     id.NewGenerator(),
		qLookup: `SELECT ` + cols + ` FROM ` + t + ` WHERE path = $1`,
		qList:   `SELECT ` + cols + ` FROM ` + t + ` WHERE parent = $1 ORDER BY name ASC`,
		qScan:   `SELECT ` + cols + ` FROM ` + t,
		qInsert: `INSERT INTO ` + t + ` (id, ` + cols + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		qUpdate: `UPDATE ` + t + ` SET is_dir = $2, content = $3, updated_at = $4 WHERE path = $1`,
		qSchema: []string{
			`CREATE TABLE IF NOT EXISTS ` + t + ` (
				id         TEXT PRIMARY KEY,
				path       TEXT NOT NULL UNIQUE,
				name       TEXT NOT NULL,
				parent     TEXT,
				is_dir     BOOLEAN NOT NULL,
				content    TEXT,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS ` + idx + ` ON ` + t + ` (parent)`,
		},
	}, nil
}

// EnsureSchema creates the entry table and its parent index if missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range s.qSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	s.logger.Debug("schema ready")
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (vfs.Entry, error) {
	var (
		e       vfs.Entry
		parent  sql.NullString
		content sql.NullString
	)
	if err := row.Scan(&e.Path, &e.Name, &parent, &e.IsDir, &content, &e.UpdatedAt); err != nil {
		return vfs.Entry{}, err
	}
	if parent.Valid {
		e.Parent = parent.String
	}
	if content.Valid {
		c := content.String
		e.Content = &c
	}
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

// Lookup implements vfs.Store.
func (s *Store) Lookup(ctx context.Context, path string) (vfs.Entry, bool, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx, s.qLookup, path))
	if errors.Is(err, sql.ErrNoRows) {
		return vfs.Entry{}, false, nil
	}
	if err != nil {
		return vfs.Entry{}, false, fmt.Errorf("lookup %s: %w", path, err)
	}
	return e, true, nil
}

// ListByParent implements vfs.Store.
func (s *Store) ListByParent(ctx context.Context, parent string) ([]vfs.Entry, error) {
	return s.query(ctx, "list", s.qList, parent)
}

// Scan implements vfs.Store.
func (s *Store) Scan(ctx context.Context) ([]vfs.Entry, error) {
	return s.query(ctx, "scan", s.qScan)
}

func (s *Store) query(ctx context.Context, op, q string, args ...any) ([]vfs.Entry, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := []vfs.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows error: %w", op, err)
	}
	return out, nil
}

// Insert implements vfs.Store.
func (s *Store) Insert(ctx context.Context, e vfs.Entry) error {
	_, err := s.db.ExecContext(ctx, s.qInsert,
		s.ids.GenerateWithPrefix(id.EntryPrefix),
		e.Path,
		e.Name,
		nullable(e.Parent),
		e.IsDir,
		nullableContent(e.Content),
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", e.Path, err)
	}
	return nil
}

// Update implements vfs.Store.
func (s *Store) Update(ctx context.Context, path string, f vfs.Fields) error {
	res, err := s.db.ExecContext(ctx, s.qUpdate, path, f.IsDir, nullableContent(f.Content), f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", path, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s: %w", path, ErrMissing)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullableContent(c *string) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *c, Valid: true}
}
