package ops

import (
	"context"
	"database/sql"

	"scribe/internal/db"
)

// ActivityInput contains parameters for the Activity operation.
type ActivityInput struct {
	Library string
	Limit   int // default: 50, max: 200
}

// ActivityOutput contains recent activity-log entries, newest first.
type ActivityOutput struct {
	Library string             `json:"library"`
	Entries []db.ActivityEntry `json:"entries"`
}

// Activity returns the recent mutation history of a library.
func Activity(ctx context.Context, database *sql.DB, input ActivityInput) (*ActivityOutput, error) {
	libraryNorm := normalizeLibrary(input.Library)
	limit := clampLimit(input.Limit, DefaultActivityLimit, MaxActivityLimit)

	entries, err := db.ListActivity(ctx, database, libraryNorm, limit)
	if err != nil {
		return nil, err
	}

	return &ActivityOutput{Library: libraryNorm, Entries: entries}, nil
}
