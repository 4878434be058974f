package history

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

// PostgresStore persists history as one row per entry, ordered by a serial
// id so read order is append order. Appending a row instead of rewriting the
// sequence keeps growth linear for long-lived keys.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, key string, entry models.HistoryEntry) error {
	query := `
		INSERT INTO domain_history (key, owner, valid_until, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		key, uuid.UUID(entry.Owner), entry.ValidUntil, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Read(ctx context.Context, key string) ([]models.HistoryEntry, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT owner, valid_until, created_at FROM domain_history WHERE key = $1 ORDER BY id`, key)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	var out []models.HistoryEntry
	for rows.Next() {
		var (
			entry models.HistoryEntry
			owner uuid.UUID
		)
		if err := rows.Scan(&owner, &entry.ValidUntil, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Owner = id.Identity(owner)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(out) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}
