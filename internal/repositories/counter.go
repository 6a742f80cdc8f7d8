package repositories

import "database/sql"

// Counter adapts [NextSequence] to the workflow's counter interface.
type Counter struct {
	db *sql.DB
}

// NewCounter creates a Counter over the given database connection
func NewCounter(db *sql.DB) *Counter {
	return &Counter{db: db}
}

// Increment atomically increments and returns the counter stored under key.
func (c *Counter) Increment(key string) (int, error) {
	return NextSequence(c.db, key)
}

// Value returns the current counter value without incrementing.
func (c *Counter) Value(key string) (int, error) {
	return SequenceValue(c.db, key)
}
