package db

import (
	"context"
	"database/sql"
	"fmt"

	"scribe/internal/errors"
	"scribe/internal/transcript"
)

// UpsertTag creates a tag in a library or returns the existing one by name.
// The id parameter is used only when a new tag is created.
func UpsertTag(ctx context.Context, db *sql.DB, id, libraryNorm, name, color string, now int64) (*transcript.Tag, error) {
	query := `
		INSERT INTO tags (id, library_norm, name, color, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(library_norm, name) DO UPDATE SET color = excluded.color
		RETURNING id, name, color
	`

	var tag transcript.Tag
	err := db.QueryRowContext(ctx, query, id, libraryNorm, name, color, now).
		Scan(&tag.ID, &tag.Name, &tag.Color)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &tag, nil
}

// EnsureTag returns the library's tag with the given name, creating it with
// the given color when missing. Unlike UpsertTag, an existing tag keeps its
// color.
func EnsureTag(ctx context.Context, db *sql.DB, id, libraryNorm, name, color string, now int64) (*transcript.Tag, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tags (id, library_norm, name, color, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(library_norm, name) DO NOTHING
	`, id, libraryNorm, name, color, now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var tag transcript.Tag
	err = db.QueryRowContext(ctx,
		"SELECT id, name, color FROM tags WHERE library_norm = ? AND name = ?", libraryNorm, name).
		Scan(&tag.ID, &tag.Name, &tag.Color)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &tag, nil
}

// ListTags returns all tags in a library, ordered by name.
func ListTags(ctx context.Context, db *sql.DB, libraryNorm string) ([]transcript.Tag, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, color FROM tags WHERE library_norm = ? ORDER BY name", libraryNorm)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var tags []transcript.Tag
	for rows.Next() {
		var tag transcript.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, errors.NewInternal(err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return tags, nil
}

// AttachTag links a tag to a transcript. Linking an already-linked pair is a
// no-op.
func AttachTag(ctx context.Context, db *sql.DB, transcriptID, tagID string) error {
	_, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO transcript_tags (transcript_id, tag_id) VALUES (?, ?)",
		transcriptID, tagID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DetachTag unlinks a tag from a transcript. Unlinking a missing pair is a
// no-op.
func DetachTag(ctx context.Context, db *sql.DB, transcriptID, tagID string) error {
	_, err := db.ExecContext(ctx,
		"DELETE FROM transcript_tags WHERE transcript_id = ? AND tag_id = ?",
		transcriptID, tagID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// attachTags loads tags for a batch of transcripts in one query.
func attachTags(ctx context.Context, db *sql.DB, items []*transcript.Transcript) error {
	if len(items) == 0 {
		return nil
	}

	byID := make(map[string]*transcript.Transcript, len(items))
	ids := make([]string, 0, len(items))
	for _, t := range items {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query := fmt.Sprintf(`
		SELECT tt.transcript_id, tg.id, tg.name, tg.color
		FROM transcript_tags tt
		JOIN tags tg ON tg.id = tt.tag_id
		WHERE tt.transcript_id IN (%s)
		ORDER BY tg.name`, idPlaceholders(len(ids)))

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var transcriptID string
		var tag transcript.Tag
		if err := rows.Scan(&transcriptID, &tag.ID, &tag.Name, &tag.Color); err != nil {
			return errors.NewInternal(err)
		}
		if t, ok := byID[transcriptID]; ok {
			t.Tags = append(t.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.NewInternal(err)
	}

	return nil
}
