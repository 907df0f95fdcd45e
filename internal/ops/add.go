package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/event"
	"scribe/internal/transcript"
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	Library         string // default: "default"
	Title           string // required
	SourceKind      transcript.SourceKind
	SourceRef       *string // original filename or URL
	DurationSeconds *int
	Tags            []string // tag names, created on demand
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	ID     string            `json:"id"`
	Status transcript.Status `json:"status"`
}

// Add registers a new media entry as a pending transcript. Transcription
// happens elsewhere; Complete or Fail report the outcome later.
func Add(ctx context.Context, database *sql.DB, bus *event.Bus, input AddInput) (*AddOutput, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.NewInvalidRequest("title is required")
	}

	kind := input.SourceKind
	if kind == "" {
		kind = transcript.SourceUpload
	}
	switch kind {
	case transcript.SourceUpload, transcript.SourceURL, transcript.SourceYouTube:
	default:
		return nil, errors.NewInvalidRequest("source_kind must be one of: upload, url, youtube")
	}

	libraryNorm := normalizeLibrary(input.Library)
	libraryRaw := strings.TrimSpace(input.Library)
	if libraryRaw == "" {
		libraryRaw = "default"
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	now := time.Now().Unix()

	rec := &transcript.Transcript{
		ID:              id,
		LibraryRaw:      libraryRaw,
		LibraryNorm:     libraryNorm,
		Title:           title,
		SourceKind:      kind,
		SourceRef:       cleanOptionalString(input.SourceRef),
		DurationSeconds: input.DurationSeconds,
		Status:          transcript.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := db.Insert(ctx, database, rec); err != nil {
		return nil, err
	}

	for _, name := range input.Tags {
		tagName := transcript.Normalize(name)
		if tagName == "" {
			continue
		}
		tagID, err := generateULID()
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		tag, err := db.EnsureTag(ctx, database, tagID, libraryNorm, tagName, defaultTagColor, now)
		if err != nil {
			return nil, err
		}
		if err := db.AttachTag(ctx, database, id, tag.ID); err != nil {
			return nil, err
		}
	}

	if err := recordActivity(ctx, database, libraryNorm, "add", title, 1); err != nil {
		return nil, err
	}
	publish(bus, event.Change{Op: event.OpAdded, Library: libraryNorm, IDs: []string{id}, Count: 1})

	return &AddOutput{ID: id, Status: transcript.StatusPending}, nil
}

const defaultTagColor = "#6b7280"
