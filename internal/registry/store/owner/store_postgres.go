package owner

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "namereg/pkg/domain"
	"namereg/pkg/platform/sentinel"
	txcontext "namereg/pkg/platform/tx"
)

// PostgresStore persists the administrative identity as a single-row table.
// The singleton column's check constraint makes a second row impossible at
// the database level, not just in code.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context) (id.Identity, error) {
	var owner uuid.UUID
	row := s.execer(ctx).QueryRowContext(ctx, `SELECT owner FROM registry_owner WHERE singleton`)
	if err := row.Scan(&owner); err != nil {
		if err == sql.ErrNoRows {
			return id.NilIdentity, sentinel.ErrNotFound
		}
		return id.NilIdentity, fmt.Errorf("get registry owner: %w", err)
	}
	return id.Identity(owner), nil
}

func (s *PostgresStore) Init(ctx context.Context, owner id.Identity) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`INSERT INTO registry_owner (singleton, owner) VALUES (TRUE, $1)`, uuid.UUID(owner))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("init registry owner: %w", err)
	}
	return nil
}
