package database

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// New creates a new database connection pool, creating the parent
// directory for the database file if needed.
func New(dataSourceName string) (*sql.DB, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate runs the SQL statements to set up the database schema.
// Monetary columns are TEXT holding fixed-point decimals; timestamps are
// unix seconds so time-range queries compare integers.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 0,
		reset_token TEXT,
		reset_token_expiry INTEGER,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS groups (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT NOT NULL REFERENCES users(id),
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS group_members (
		id TEXT NOT NULL PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		role TEXT NOT NULL DEFAULT 'MEMBER',
		joined_at INTEGER NOT NULL,
		UNIQUE(group_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT NOT NULL PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		paid_by TEXT NOT NULL REFERENCES users(id),
		title TEXT NOT NULL,
		category TEXT,
		amount TEXT NOT NULL,
		proof_path TEXT,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS expense_shares (
		id TEXT NOT NULL PRIMARY KEY,
		expense_id TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		share_amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING'
	);

	CREATE TABLE IF NOT EXISTS activities (
		id TEXT NOT NULL PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_group_members_group_id ON group_members(group_id);
	CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id);
	CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses(group_id);
	CREATE INDEX IF NOT EXISTS idx_expenses_group_created ON expenses(group_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_expense_shares_expense_id ON expense_shares(expense_id);
	CREATE INDEX IF NOT EXISTS idx_activities_group_id ON activities(group_id);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
