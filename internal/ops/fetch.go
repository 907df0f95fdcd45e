package ops

import (
	"context"
	"database/sql"
	"strings"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/transcript"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeDeleted bool
	IncludeText    *bool // default: true
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	transcript.Summary
	Text string `json:"text,omitempty"`
}

// Fetch retrieves a single transcript by ID.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	rec, err := db.GetByID(ctx, database, input.ID, input.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	out := &FetchOutput{Summary: rec.ToSummary()}

	includeText := true
	if input.IncludeText != nil {
		includeText = *input.IncludeText
	}
	if includeText && rec.Text != nil {
		out.Text = *rec.Text
	}

	return out, nil
}
