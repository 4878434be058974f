// Package schema holds the registry's PostgreSQL DDL. Applied at server
// startup and by the integration test containers; every statement is
// idempotent so repeated application is safe.
package schema

import (
	"context"
	"database/sql"
	"fmt"
)

const DDL = `
CREATE TABLE IF NOT EXISTS domains (
	key         TEXT PRIMARY KEY,
	owner       UUID NOT NULL,
	valid_until TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_domains_owner ON domains (owner);

CREATE TABLE IF NOT EXISTS domain_history (
	id          BIGSERIAL PRIMARY KEY,
	key         TEXT NOT NULL,
	owner       UUID NOT NULL,
	valid_until TIMESTAMPTZ NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_domain_history_key ON domain_history (key, id);

CREATE TABLE IF NOT EXISTS reservations (
	key          TEXT PRIMARY KEY,
	reserved_for UUID NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS registry_owner (
	singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
	owner     UUID NOT NULL
);
`

// Apply executes the DDL against db.
func Apply(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, DDL); err != nil {
		return fmt.Errorf("apply registry schema: %w", err)
	}
	return nil
}
