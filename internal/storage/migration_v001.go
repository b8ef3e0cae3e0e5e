package storage

import "database/sql"

// migrateV001 creates the slots table: one row per storage key, holding the
// serialized record set verbatim.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS slots (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			byte_size  INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_slots_updated_at ON slots(updated_at)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrateV002 adds a write counter so status output can show how often a
// slot has been rewritten.
func migrateV002(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE slots ADD COLUMN writes INTEGER NOT NULL DEFAULT 0`)
	return err
}
