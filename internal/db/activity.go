package db

import (
	"context"
	"database/sql"

	"scribe/internal/errors"
)

// ActivityEntry is one row of the admin activity log.
type ActivityEntry struct {
	ID          string `json:"id"`
	Library     string `json:"library"`
	Action      string `json:"action"`
	Detail      string `json:"detail,omitempty"`
	RecordCount int    `json:"record_count"`
	CreatedAt   int64  `json:"created_at"`
}

// InsertActivity appends an entry to the activity log.
func InsertActivity(ctx context.Context, db *sql.DB, e *ActivityEntry) error {
	query := `
		INSERT INTO activity_log (id, library_norm, action, detail, record_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		e.ID, e.Library, e.Action, e.Detail, e.RecordCount, e.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListActivity returns the most recent activity entries for a library.
func ListActivity(ctx context.Context, db *sql.DB, libraryNorm string, limit int) ([]ActivityEntry, error) {
	query := `
		SELECT id, library_norm, action, detail, record_count, created_at
		FROM activity_log
		WHERE library_norm = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, libraryNorm, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var detail sql.NullString
		if err := rows.Scan(&e.ID, &e.Library, &e.Action, &detail, &e.RecordCount, &e.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.Detail = detail.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return entries, nil
}
