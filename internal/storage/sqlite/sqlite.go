// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using the standard database/sql package.
//
// The blank import below registers the "sqlite3" driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compuse/compuse-api/internal/config"
	"github.com/compuse/compuse-api/internal/cpf"
	"github.com/compuse/compuse-api/internal/storage"
	"github.com/compuse/compuse-api/internal/types"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS author_registrations (
		id          TEXT      PRIMARY KEY,
		work_title  TEXT      NOT NULL,
		author_name TEXT      NOT NULL,
		email       TEXT      NOT NULL,
		cpf         TEXT      NOT NULL,
		status      TEXT      NOT NULL,
		created_at  TIMESTAMP NOT NULL,
		updated_at  TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_author_registrations_cpf
		ON author_registrations (cpf);
`

const selectColumns = "id, work_title, author_name, email, cpf, status, created_at, updated_at"

// SQLite is the concrete implementation of storage.Storage.
// Db is a connection pool and safe for concurrent use.
type SQLite struct {
	Db  *sql.DB
	now func() time.Time
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the database at cfg.StoragePath.
func New(cfg *config.Config) (*SQLite, error) {
	return Open(cfg.StoragePath)
}

// Open opens (or creates) the SQLite database at path and makes sure the
// schema exists. ":memory:" gives a private in-memory database.
func Open(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.Open: create dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open db: %w", err)
	}

	// SQLite allows one writer at a time, and every ":memory:" connection
	// would otherwise be a separate database.
	db.SetMaxOpenConns(1)

	// CREATE ... IF NOT EXISTS is idempotent, safe to run on every startup.
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: create schema: %w", err)
	}

	return &SQLite{
		Db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// CreateRegistration inserts a new registration with a fresh UUID.
//
// Values are bound through ? placeholders, never concatenated into the SQL,
// so user input is always treated as data.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) CreateRegistration(ctx context.Context, reg types.AuthorRegistration) (types.AuthorRegistration, error) {
	now := s.now()

	reg.ID = uuid.NewString()
	reg.CPF = cpf.Strip(reg.CPF)
	reg.Status = types.StatusPending
	reg.CreatedAt = now
	reg.UpdatedAt = now

	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO author_registrations
			(id, work_title, author_name, email, cpf, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return types.AuthorRegistration{}, fmt.Errorf("CreateRegistration: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx,
		reg.ID, reg.WorkTitle, reg.AuthorName, reg.Email,
		reg.CPF, string(reg.Status), reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		return types.AuthorRegistration{}, fmt.Errorf("CreateRegistration: exec: %w", err)
	}

	return reg, nil
}

// GetRegistrationByID fetches exactly one registration by primary key.
func (s *SQLite) GetRegistrationByID(ctx context.Context, id string) (types.AuthorRegistration, error) {
	row := s.Db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM author_registrations WHERE id = ? LIMIT 1", id)

	reg, err := scanRegistration(row)
	if err != nil {
		// sql.ErrNoRows surfaces only on Scan, not on QueryRow.
		if errors.Is(err, sql.ErrNoRows) {
			return types.AuthorRegistration{}, storage.ErrNotFound
		}
		return types.AuthorRegistration{}, fmt.Errorf("GetRegistrationByID: scan: %w", err)
	}

	return reg, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ListRegistrations returns registrations matching filter, newest first.
//
// The WHERE clause is assembled from fixed fragments only; the filter
// values themselves always travel as bound arguments.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) ListRegistrations(ctx context.Context, filter types.RegistrationFilter) ([]types.AuthorRegistration, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.CPF != "" {
		where = append(where, "cpf = ?")
		args = append(args, cpf.Strip(filter.CPF))
	}

	query := "SELECT " + selectColumns + " FROM author_registrations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	rows, err := s.Db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListRegistrations: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so the JSON is [] rather than null.
	regs := make([]types.AuthorRegistration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRegistrations: scan row: %w", err)
		}
		regs = append(regs, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRegistrations: rows iteration: %w", err)
	}

	return regs, nil
}

// UpdateRegistrationStatus changes the review status and re-reads the row
// so the caller gets exactly what is stored.
func (s *SQLite) UpdateRegistrationStatus(ctx context.Context, id string, status types.RegistrationStatus) (types.AuthorRegistration, error) {
	result, err := s.Db.ExecContext(ctx,
		"UPDATE author_registrations SET status = ?, updated_at = ? WHERE id = ?",
		string(status), s.now(), id,
	)
	if err != nil {
		return types.AuthorRegistration{}, fmt.Errorf("UpdateRegistrationStatus: exec: %w", err)
	}

	if err := requireAffected(result); err != nil {
		return types.AuthorRegistration{}, fmt.Errorf("UpdateRegistrationStatus: %w", err)
	}

	return s.GetRegistrationByID(ctx, id)
}

// DeleteRegistration removes a registration by primary key.
func (s *SQLite) DeleteRegistration(ctx context.Context, id string) error {
	result, err := s.Db.ExecContext(ctx, "DELETE FROM author_registrations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteRegistration: exec: %w", err)
	}

	if err := requireAffected(result); err != nil {
		return fmt.Errorf("DeleteRegistration: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRegistration reads one row; column order must match selectColumns.
func scanRegistration(row scanner) (types.AuthorRegistration, error) {
	var (
		reg    types.AuthorRegistration
		status string
	)
	err := row.Scan(
		&reg.ID,
		&reg.WorkTitle,
		&reg.AuthorName,
		&reg.Email,
		&reg.CPF,
		&status,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return types.AuthorRegistration{}, err
	}

	reg.Status = types.RegistrationStatus(status)
	return reg, nil
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
