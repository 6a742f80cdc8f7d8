// package repositories provides persistence layer implementations for all model types.
//
// Each repository handles CRUD operations against SQLite, including the
// keyed counters backing pack serial numbers.
package repositories

import (
	"database/sql"
	"fmt"
	"strings"
)

// NextSequence atomically increments and returns the counter stored under key.
//
// The increment and read happen inside a single transaction, so concurrent
// callers never observe the same value twice for one key. This is the only
// synchronization point guaranteeing pack serial uniqueness.
func NextSequence(db *sql.DB, key string) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec("UPDATE counters SET value = value + 1 WHERE key = ?", key)
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := tx.Exec("INSERT INTO counters (key, value) VALUES (?, 1)", key); err != nil {
			return 0, fmt.Errorf("failed to initialize counter: %w", err)
		}
	}

	var value int
	if err := tx.QueryRow("SELECT value FROM counters WHERE key = ?", key).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to get counter value: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit counter transaction: %w", err)
	}

	return value, nil
}

// SequenceValue returns the current counter value without incrementing.
// A missing counter reads as zero.
func SequenceValue(db *sql.DB, key string) (int, error) {
	var value int
	err := db.QueryRow("SELECT COALESCE(MAX(value), 0) FROM counters WHERE key = ?", key).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to read counter value: %w", err)
	}
	return value, nil
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure on the given column (table.column form, e.g. "packs.share_slug").
func IsUniqueViolation(err error, column string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}
