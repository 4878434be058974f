package reservation

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

// PostgresStore persists reservations in PostgreSQL.
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

func (s *PostgresStore) Get(ctx context.Context, key string) (*models.Reservation, error) {
	var (
		r           models.Reservation
		reservedFor uuid.UUID
	)
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT key, reserved_for, created_at FROM reservations WHERE key = $1`, key)
	if err := row.Scan(&r.Key, &reservedFor, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	r.ReservedFor = id.Identity(reservedFor)
	return &r, nil
}

func (s *PostgresStore) Put(ctx context.Context, r *models.Reservation) error {
	query := `
		INSERT INTO reservations (key, reserved_for, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			reserved_for = EXCLUDED.reserved_for,
			created_at = EXCLUDED.created_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		r.Key, uuid.UUID(r.ReservedFor), r.CreatedAt)
	if err != nil {
		return fmt.Errorf("put reservation: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM reservations WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}
	return nil
}
