package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	txcontext "namereg/pkg/platform/tx"
)

// StoreTx is the unit-of-work boundary for mutating operations. The engine's
// correctness depends on each mutating operation executing to completion
// before the next begins; implementations provide that either by mutual
// exclusion (memory) or by a database transaction (postgres).
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// inMemoryStoreTx serializes operations with a single mutex. With the
// in-memory stores there is nothing to roll back (checks precede writes),
// so exclusion alone reproduces the message-at-a-time execution model.
type inMemoryStoreTx struct {
	mu sync.Mutex
}

func newInMemoryStoreTx() *inMemoryStoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// SQLStoreTx runs each operation inside a database transaction carried
// through the context, so the history append and record write commit or roll
// back together.
type SQLStoreTx struct {
	db *sql.DB
}

func NewSQLStoreTx(db *sql.DB) *SQLStoreTx {
	return &SQLStoreTx{db: db}
}

func (t *SQLStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
