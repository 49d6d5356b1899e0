package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: listing indexes. Staff list all claims newest first,
	// visitors list their own, and item detail derives the claim set.
	`CREATE INDEX IF NOT EXISTS idx_claims_created ON claims(created_at DESC, id DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_claimant ON claims(claimant_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_item ON claims(item_id)`,

	// Migration 2: public listing only ever reads live FOUND items.
	`CREATE INDEX IF NOT EXISTS idx_found_items_public
	     ON found_items(status, created_at DESC) WHERE deleted_at IS NULL`,
}

// Migrate ensures the schema exists and applies all migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
