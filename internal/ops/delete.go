package ops

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/event"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete soft-deletes a single transcript.
func Delete(ctx context.Context, database *sql.DB, bus *event.Bus, input DeleteInput) (*DeleteOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	rec, err := db.GetByID(ctx, database, input.ID, false)
	if err != nil {
		return nil, err
	}

	if err := db.SoftDelete(ctx, database, input.ID); err != nil {
		return nil, err
	}

	if err := recordActivity(ctx, database, rec.LibraryNorm, "delete", rec.Title, 1); err != nil {
		return nil, err
	}
	publish(bus, event.Change{Op: event.OpDeleted, Library: rec.LibraryNorm, IDs: []string{input.ID}, Count: 1})

	return &DeleteOutput{Deleted: true, ID: input.ID}, nil
}

// BulkDeleteInput contains parameters for the BulkDelete operation.
type BulkDeleteInput struct {
	Library string
	IDs     []string // required
}

// BulkDeleteOutput contains the result of the BulkDelete operation.
// Success or failure is reported for the batch as a whole, not per record:
// a nil error means the batch applied; Deleted counts the records that were
// still active.
type BulkDeleteOutput struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

// BulkDelete soft-deletes a batch of transcripts by ID. IDs that are already
// deleted or unknown are skipped, so re-issuing a batch is a no-op.
func BulkDelete(ctx context.Context, database *sql.DB, bus *event.Bus, input BulkDeleteInput) (*BulkDeleteOutput, error) {
	if len(input.IDs) == 0 {
		return nil, errors.NewInvalidRequest("at least one id is required")
	}

	deleted, err := db.BulkSoftDeleteByIDs(ctx, database, input.IDs)
	if err != nil {
		return nil, err
	}

	libraryNorm := normalizeLibrary(input.Library)
	message := fmt.Sprintf("Deleted %d of %d transcripts", deleted, len(input.IDs))
	if deleted == 0 {
		message = "No matching active transcripts; nothing to do"
	}

	if deleted > 0 {
		if err := recordActivity(ctx, database, libraryNorm, "bulk_delete", "", deleted); err != nil {
			return nil, err
		}
		publish(bus, event.Change{Op: event.OpDeleted, Library: libraryNorm, IDs: input.IDs, Count: deleted})
	}

	return &BulkDeleteOutput{Deleted: deleted, Message: message}, nil
}
