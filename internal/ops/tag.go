package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/transcript"
)

// TagSaveInput contains parameters for creating or recoloring a tag.
type TagSaveInput struct {
	Library string
	Name    string // required, normalized
	Color   string // hex color, default #6b7280
}

// TagSaveOutput contains the resulting tag.
type TagSaveOutput struct {
	Tag transcript.Tag `json:"tag"`
}

// TagSave creates a tag in a library, or updates its color if the name
// already exists.
func TagSave(ctx context.Context, database *sql.DB, input TagSaveInput) (*TagSaveOutput, error) {
	name := transcript.Normalize(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("tag name is required")
	}

	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = defaultTagColor
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	tag, err := db.UpsertTag(ctx, database, id, normalizeLibrary(input.Library), name, color, time.Now().Unix())
	if err != nil {
		return nil, err
	}

	return &TagSaveOutput{Tag: *tag}, nil
}

// TagListOutput contains all tags in a library.
type TagListOutput struct {
	Tags []transcript.Tag `json:"tags"`
}

// TagList returns the tags of a library, ordered by name.
func TagList(ctx context.Context, database *sql.DB, library string) (*TagListOutput, error) {
	tags, err := db.ListTags(ctx, database, normalizeLibrary(library))
	if err != nil {
		return nil, err
	}
	return &TagListOutput{Tags: tags}, nil
}

// TagAttachInput contains parameters for attaching or detaching a tag.
type TagAttachInput struct {
	ID   string // transcript id
	Name string // tag name
}

// TagAttachOutput reports the attach/detach result.
type TagAttachOutput struct {
	ID  string         `json:"id"`
	Tag transcript.Tag `json:"tag"`
}

// TagAttach links a tag (created on demand) to a transcript. Linking twice
// is a no-op.
func TagAttach(ctx context.Context, database *sql.DB, input TagAttachInput) (*TagAttachOutput, error) {
	rec, name, err := resolveTagTarget(ctx, database, input)
	if err != nil {
		return nil, err
	}

	tagID, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	tag, err := db.EnsureTag(ctx, database, tagID, rec.LibraryNorm, name, defaultTagColor, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	if err := db.AttachTag(ctx, database, rec.ID, tag.ID); err != nil {
		return nil, err
	}

	return &TagAttachOutput{ID: rec.ID, Tag: *tag}, nil
}

// TagDetach unlinks a tag from a transcript. Unlinking a missing pair is a
// no-op.
func TagDetach(ctx context.Context, database *sql.DB, input TagAttachInput) (*TagAttachOutput, error) {
	rec, name, err := resolveTagTarget(ctx, database, input)
	if err != nil {
		return nil, err
	}

	for _, tag := range rec.Tags {
		if tag.Name == name {
			if err := db.DetachTag(ctx, database, rec.ID, tag.ID); err != nil {
				return nil, err
			}
			return &TagAttachOutput{ID: rec.ID, Tag: tag}, nil
		}
	}

	// not attached: no-op
	return &TagAttachOutput{ID: rec.ID, Tag: transcript.Tag{Name: name}}, nil
}

func resolveTagTarget(ctx context.Context, database *sql.DB, input TagAttachInput) (*transcript.Transcript, string, error) {
	if strings.TrimSpace(input.ID) == "" {
		return nil, "", errors.NewInvalidRequest("id is required")
	}
	name := transcript.Normalize(input.Name)
	if name == "" {
		return nil, "", errors.NewInvalidRequest("tag name is required")
	}

	rec, err := db.GetByID(ctx, database, input.ID, false)
	if err != nil {
		return nil, "", err
	}
	return rec, name, nil
}
