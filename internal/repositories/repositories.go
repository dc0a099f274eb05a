package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence atomically advances and returns the sequence counter for the
// given cache table.
//
// Sequence numbers give cached rows a stable local ordering independent of
// fetch order. They never leave the cache.
func NextSequence(db *sql.DB, table string) (int, error) {
	var sequence int
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)
	if err := db.QueryRow(query).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}
	return sequence, nil
}
