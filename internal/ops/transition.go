package ops

import (
	"context"
	"database/sql"
	"strings"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/event"
	"scribe/internal/transcript"
)

// CompleteInput contains parameters for the Complete operation.
type CompleteInput struct {
	ID   string
	Text string // transcript body, required
	// Checksum is the SHA-256 hex digest of the source media. When empty it
	// is derived from the transcript text, which still groups re-uploads of
	// identical content.
	Checksum string
}

// CompleteOutput contains the result of the Complete operation.
type CompleteOutput struct {
	ID        string `json:"id"`
	Checksum  string `json:"checksum"`
	WordCount int    `json:"word_count"`
}

// Complete records a finished transcription: text, checksum, word count.
func Complete(ctx context.Context, database *sql.DB, bus *event.Bus, input CompleteInput) (*CompleteOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Text == "" {
		return nil, errors.NewInvalidRequest("text is required")
	}

	checksum := strings.TrimSpace(input.Checksum)
	if checksum == "" {
		checksum = transcript.Checksum([]byte(input.Text))
	}

	rec, err := db.GetByID(ctx, database, input.ID, false)
	if err != nil {
		return nil, err
	}

	wordCount := transcript.CountWords(input.Text)
	if err := db.Complete(ctx, database, input.ID, input.Text, checksum, wordCount); err != nil {
		return nil, err
	}

	if err := recordActivity(ctx, database, rec.LibraryNorm, "complete", rec.Title, 1); err != nil {
		return nil, err
	}
	publish(bus, event.Change{Op: event.OpCompleted, Library: rec.LibraryNorm, IDs: []string{input.ID}, Count: 1})

	return &CompleteOutput{ID: input.ID, Checksum: checksum, WordCount: wordCount}, nil
}

// FailInput contains parameters for the Fail operation.
type FailInput struct {
	ID     string
	Reason string
}

// FailOutput contains the result of the Fail operation.
type FailOutput struct {
	ID     string            `json:"id"`
	Status transcript.Status `json:"status"`
}

// Fail marks a pending or processing transcript as failed.
func Fail(ctx context.Context, database *sql.DB, bus *event.Bus, input FailInput) (*FailOutput, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	rec, err := db.GetByID(ctx, database, input.ID, false)
	if err != nil {
		return nil, err
	}

	if err := db.MarkFailed(ctx, database, input.ID); err != nil {
		return nil, err
	}

	detail := rec.Title
	if r := strings.TrimSpace(input.Reason); r != "" {
		detail += ": " + r
	}
	if err := recordActivity(ctx, database, rec.LibraryNorm, "fail", detail, 1); err != nil {
		return nil, err
	}
	publish(bus, event.Change{Op: event.OpFailed, Library: rec.LibraryNorm, IDs: []string{input.ID}, Count: 1})

	return &FailOutput{ID: input.ID, Status: transcript.StatusFailed}, nil
}
