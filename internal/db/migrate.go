package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillOwner(db); err != nil {
		return fmt.Errorf("backfilling purchase session owners: %w", err)
	}
	return nil
}

// migrateBackfillOwner assigns sessions created before the owner column
// existed to the investor credential saved at that time, if any. Owners are
// token subjects, the same key the purchase service uses.
func migrateBackfillOwner(db *sql.DB) error {
	var token string
	err := db.QueryRow(`SELECT token FROM credentials WHERE role = 'investor'`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = db.Exec(`UPDATE purchase_sessions SET owner = ? WHERE owner = ''`, tokenSubject(token))
	return err
}

// tokenSubject reads the user id from an unverified JWT, or "local" when the
// token carries none.
func tokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "local"
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	for _, key := range []string{"id", "userId", "_id"} {
		if s, ok := claims[key].(string); ok && s != "" {
			return s
		}
	}
	return "local"
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS purchase_sessions (
		id            TEXT PRIMARY KEY,
		state         TEXT NOT NULL
		              CHECK(state IN ('idle','plan_selected','awaiting_server_ack','awaiting_payment',
		                              'payment_submitted','confirmed','expired','cancelled','failed')),
		plan_type     TEXT NOT NULL,
		amount        TEXT NOT NULL,
		activation_id TEXT NOT NULL DEFAULT '',
		wallet_symbol TEXT NOT NULL DEFAULT '',
		created_at    TEXT,
		expires_at    TEXT,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_sessions_state ON purchase_sessions(state)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_sessions_activation
		ON purchase_sessions(activation_id) WHERE activation_id != ''`,

	`CREATE TABLE IF NOT EXISTS wallet_snapshot_meta (
		id         INTEGER PRIMARY KEY CHECK(id = 1),
		fetched_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS wallet_snapshots (
		position         INTEGER PRIMARY KEY,
		wallet_id        TEXT NOT NULL DEFAULT '',
		symbol           TEXT NOT NULL,
		name             TEXT NOT NULL DEFAULT '',
		network          TEXT NOT NULL DEFAULT '',
		address          TEXT NOT NULL,
		contract_address TEXT NOT NULL DEFAULT '',
		is_active        INTEGER NOT NULL DEFAULT 1,
		icon_url         TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS credentials (
		role     TEXT PRIMARY KEY CHECK(role IN ('investor','admin')),
		token    TEXT NOT NULL,
		username TEXT NOT NULL DEFAULT '',
		saved_at TEXT NOT NULL
	)`,

	// Error text and owner were added after the first release.
	`ALTER TABLE purchase_sessions ADD COLUMN last_error TEXT NOT NULL DEFAULT ''`,
	`ALTER TABLE purchase_sessions ADD COLUMN owner TEXT NOT NULL DEFAULT ''`,
	`CREATE INDEX IF NOT EXISTS idx_purchase_sessions_owner ON purchase_sessions(owner)`,
}
