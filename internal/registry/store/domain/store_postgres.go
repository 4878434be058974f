package domain

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"namereg/internal/registry/models"
	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
	txcontext "namereg/pkg/platform/tx"
)

// PostgresStore persists domain records in PostgreSQL. When the context
// carries a transaction (see pkg/platform/tx) all statements run inside it,
// so a mutating registry operation commits its history append and record
// write atomically.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, key string) (*models.Domain, error) {
	var (
		d     models.Domain
		owner uuid.UUID
	)
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT key, owner, valid_until, updated_at FROM domains WHERE key = $1`, key)
	if err := row.Scan(&d.Key, &owner, &d.ValidUntil, &d.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get domain: %w", err)
	}
	d.Owner = id.Identity(owner)
	return &d, nil
}

func (s *PostgresStore) Put(ctx context.Context, d *models.Domain) error {
	query := `
		INSERT INTO domains (key, owner, valid_until, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			owner = EXCLUDED.owner,
			valid_until = EXCLUDED.valid_until,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		d.Key, uuid.UUID(d.Owner), d.ValidUntil, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put domain: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, owner id.Identity) ([]*models.Domain, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT key, owner, valid_until, updated_at FROM domains WHERE owner = $1 ORDER BY key`,
		uuid.UUID(owner))
	if err != nil {
		return nil, fmt.Errorf("list domains by owner: %w", err)
	}
	defer rows.Close()

	var out []*models.Domain
	for rows.Next() {
		var (
			d models.Domain
			o uuid.UUID
		)
		if err := rows.Scan(&d.Key, &o, &d.ValidUntil, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.Owner = id.Identity(o)
		out = append(out, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list domains by owner: %w", err)
	}
	return out, nil
}
