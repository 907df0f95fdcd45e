package ops

import (
	"context"
	"database/sql"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/transcript"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Library        string  // default: "default"
	Status         *string // optional filter
	Tag            *string // optional filter by tag name
	HasChecksum    bool    // only records with a checksum
	IncludeDeleted bool
	Limit          int // default: 20, max: 100
	Offset         int
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []transcript.Summary `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

// List retrieves transcript summaries for a library, newest first.
func List(ctx context.Context, database *sql.DB, input ListInput) (*ListOutput, error) {
	libraryNorm := normalizeLibrary(input.Library)

	filters := db.ListFilters{
		Library:        &libraryNorm,
		HasChecksum:    input.HasChecksum,
		IncludeDeleted: input.IncludeDeleted,
	}
	if status := cleanOptionalString(input.Status); status != nil {
		if !transcript.ValidStatus(transcript.Status(*status)) {
			return nil, errors.NewInvalidRequest("status must be one of: pending, processing, completed, failed")
		}
		filters.Status = status
	}
	if tag := cleanOptionalString(input.Tag); tag != nil {
		norm := transcript.Normalize(*tag)
		filters.Tag = &norm
	}

	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}

	records, total, err := db.List(ctx, database, filters, limit, offset)
	if err != nil {
		return nil, err
	}

	items := make([]transcript.Summary, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.ToSummary())
	}

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(items) < total,
			Total:   total,
		},
	}, nil
}
