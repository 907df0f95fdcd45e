package ops

import (
	"context"
	"database/sql"
	"fmt"

	"scribe/internal/db"
)

// PurgeInput contains parameters for the Purge operation.
type PurgeInput struct {
	Library       *string // optional filter by library
	OlderThanDays *int    // optional, only purge if deleted_at < (now - N days)
}

// PurgeOutput contains the result of the Purge operation.
type PurgeOutput struct {
	Purged  int    `json:"purged"`
	Message string `json:"message"`
}

// Purge permanently deletes soft-deleted transcripts. Unlike soft deletes this
// is irreversible, so it never runs on a schedule; only an explicit call
// reaches it.
func Purge(ctx context.Context, database *sql.DB, input PurgeInput) (*PurgeOutput, error) {
	var libraryNorm *string
	if input.Library != nil {
		norm := normalizeLibrary(*input.Library)
		libraryNorm = &norm
	}

	count, err := db.PurgeDeleted(ctx, database, libraryNorm, input.OlderThanDays)
	if err != nil {
		return nil, err
	}

	if count > 0 && libraryNorm != nil {
		if err := recordActivity(ctx, database, *libraryNorm, "purge", "", count); err != nil {
			return nil, err
		}
	}

	return &PurgeOutput{
		Purged:  count,
		Message: formatPurgeMessage(count, libraryNorm, input.OlderThanDays),
	}, nil
}

// formatPurgeMessage creates a human-readable message for the purge result.
func formatPurgeMessage(count int, libraryNorm *string, olderThanDays *int) string {
	if count == 0 {
		return "No deleted transcripts to purge"
	}

	word := "transcript"
	if count > 1 {
		word = "transcripts"
	}

	msg := fmt.Sprintf("Permanently deleted %d %s", count, word)
	if libraryNorm != nil {
		msg += fmt.Sprintf(" from library %q", *libraryNorm)
	}
	if olderThanDays != nil {
		msg += fmt.Sprintf(" (deleted more than %d days ago)", *olderThanDays)
	}
	return msg
}
