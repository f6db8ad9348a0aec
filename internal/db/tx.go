// Package db holds the SQL helpers shared by the SQLite stores.
package db

import (
	"database/sql"
	"time"
)

// WithTx runs fn in a transaction, committing when fn succeeds and rolling
// back otherwise.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Millis reads a millisecond column as a duration. NULL is zero.
func Millis(n sql.NullInt64) time.Duration {
	if !n.Valid {
		return 0
	}
	return time.Duration(n.Int64) * time.Millisecond
}

// NullString stores the empty string as NULL.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// String reads a nullable text column. NULL is the empty string.
func String(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}
