package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"scribe/internal/errors"
	"scribe/internal/transcript"
)

const transcriptColumns = `id, library_raw, library_norm, title, source_kind, source_ref,
	duration_seconds, status, transcript_text, checksum, protected, word_count,
	created_at, updated_at, deleted_at`

// Insert stores a new transcript record.
func Insert(ctx context.Context, db *sql.DB, t *transcript.Transcript) error {
	query := `
		INSERT INTO transcripts (
			id, library_raw, library_norm, title, source_kind, source_ref,
			duration_seconds, status, transcript_text, checksum, protected,
			word_count, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err := db.ExecContext(ctx, query,
		t.ID, t.LibraryRaw, t.LibraryNorm, t.Title, string(t.SourceKind),
		toNullString(t.SourceRef), toNullInt(t.DurationSeconds), string(t.Status),
		toNullString(t.Text), toNullString(t.Checksum), boolToInt(t.Protected),
		t.WordCount, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetByID retrieves a transcript by its ULID, tags included.
// If includeDeleted is false, soft-deleted records are excluded.
func GetByID(ctx context.Context, db *sql.DB, id string, includeDeleted bool) (*transcript.Transcript, error) {
	query := `SELECT ` + transcriptColumns + ` FROM transcripts WHERE id = ?`
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}

	row := db.QueryRowContext(ctx, query, id)
	t, err := scanTranscript(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if err := attachTags(ctx, db, []*transcript.Transcript{t}); err != nil {
		return nil, err
	}

	return t, nil
}

// ListFilters narrows List results. All fields are optional.
type ListFilters struct {
	Library        *string // normalized
	Status         *string
	Tag            *string // normalized tag name
	HasChecksum    bool    // only records with a non-null checksum
	IncludeDeleted bool
}

// List retrieves transcripts ordered by creation time descending.
// Returns the page of records plus the total matching count.
func List(ctx context.Context, db *sql.DB, filters ListFilters, limit, offset int) ([]*transcript.Transcript, int, error) {
	where, args := buildListWhere(filters)

	var total int
	countQuery := "SELECT COUNT(*) FROM transcripts" + where
	if err := db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.NewInternal(err)
	}

	query := `SELECT ` + transcriptColumns + ` FROM transcripts` + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	items, err := collectTranscripts(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := attachTags(ctx, db, items); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// ListForDedupe loads the full active record set the duplicate engine works
// on: non-null checksum, newest first.
func ListForDedupe(ctx context.Context, db *sql.DB, libraryNorm string) ([]*transcript.Transcript, error) {
	query := `SELECT ` + transcriptColumns + ` FROM transcripts
		WHERE library_norm = ? AND checksum IS NOT NULL AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, libraryNorm)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	items, err := collectTranscripts(rows)
	if err != nil {
		return nil, err
	}

	if err := attachTags(ctx, db, items); err != nil {
		return nil, err
	}

	return items, nil
}

func buildListWhere(filters ListFilters) (string, []any) {
	var conds []string
	var args []any

	if !filters.IncludeDeleted {
		conds = append(conds, "deleted_at IS NULL")
	}
	if filters.Library != nil {
		conds = append(conds, "library_norm = ?")
		args = append(args, *filters.Library)
	}
	if filters.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, *filters.Status)
	}
	if filters.HasChecksum {
		conds = append(conds, "checksum IS NOT NULL")
	}
	if filters.Tag != nil {
		conds = append(conds, `id IN (
			SELECT tt.transcript_id FROM transcript_tags tt
			JOIN tags tg ON tg.id = tt.tag_id
			WHERE tg.name = ?
		)`)
		args = append(args, *filters.Tag)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// MarkProcessing moves a pending record to processing.
func MarkProcessing(ctx context.Context, db *sql.DB, id string) error {
	return updateStatus(ctx, db, id, transcript.StatusProcessing, string(transcript.StatusPending))
}

// MarkFailed moves a pending or processing record to failed.
func MarkFailed(ctx context.Context, db *sql.DB, id string) error {
	return updateStatus(ctx, db, id, transcript.StatusFailed,
		string(transcript.StatusPending), string(transcript.StatusProcessing))
}

func updateStatus(ctx context.Context, db *sql.DB, id string, to transcript.Status, from ...string) error {
	placeholders := strings.Repeat("?,", len(from))
	placeholders = placeholders[:len(placeholders)-1]

	query := fmt.Sprintf(`
		UPDATE transcripts SET status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL AND status IN (%s)`, placeholders)

	args := []any{string(to), time.Now().Unix(), id}
	for _, s := range from {
		args = append(args, s)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewConflict(fmt.Sprintf("transcript %s is not in a state that allows moving to %s", id, to))
	}
	return nil
}

// Complete stores the transcription result: text, checksum and word count,
// and moves the record to completed.
func Complete(ctx context.Context, db *sql.DB, id, text, checksum string, wordCount int) error {
	query := `
		UPDATE transcripts
		SET status = ?, transcript_text = ?, checksum = ?, word_count = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL AND status IN (?, ?)
	`

	result, err := db.ExecContext(ctx, query,
		string(transcript.StatusCompleted), text, checksum, wordCount, time.Now().Unix(),
		id, string(transcript.StatusPending), string(transcript.StatusProcessing),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewConflict(fmt.Sprintf("transcript %s is not pending or processing", id))
	}
	return nil
}

// SoftDelete marks a transcript as deleted by setting deleted_at.
func SoftDelete(ctx context.Context, db *sql.DB, id string) error {
	query := `
		UPDATE transcripts
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return errors.NewInternal(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound(id)
	}

	return nil
}

// BulkSoftDeleteByIDs soft-deletes the given records and returns the number
// actually deleted. Already-deleted or unknown IDs are skipped, not errors,
// so re-issuing the same batch is a no-op.
func BulkSoftDeleteByIDs(ctx context.Context, db *sql.DB, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		UPDATE transcripts SET deleted_at = ?
		WHERE id IN (%s) AND deleted_at IS NULL`, idPlaceholders(len(ids)))

	args := []any{time.Now().Unix()}
	for _, id := range ids {
		args = append(args, id)
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(affected), nil
}

// BulkSetProtected sets the protection flag on the given records and returns
// the number whose flag actually changed. Setting an already-set flag is a
// no-op, so the call is idempotent.
func BulkSetProtected(ctx context.Context, db *sql.DB, ids []string, protected bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`
		UPDATE transcripts SET protected = ?, updated_at = ?
		WHERE id IN (%s) AND deleted_at IS NULL AND protected != ?`, idPlaceholders(len(ids)))

	flag := boolToInt(protected)
	args := []any{flag, time.Now().Unix()}
	for _, id := range ids {
		args = append(args, id)
	}
	args = append(args, flag)

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(affected), nil
}

// PurgeDeleted permanently removes soft-deleted transcripts, optionally only
// those deleted more than olderThanDays ago.
func PurgeDeleted(ctx context.Context, db *sql.DB, libraryNorm *string, olderThanDays *int) (int, error) {
	conds := []string{"deleted_at IS NOT NULL"}
	var args []any

	if libraryNorm != nil {
		conds = append(conds, "library_norm = ?")
		args = append(args, *libraryNorm)
	}
	if olderThanDays != nil {
		cutoff := time.Now().AddDate(0, 0, -*olderThanDays).Unix()
		conds = append(conds, "deleted_at < ?")
		args = append(args, cutoff)
	}

	query := "DELETE FROM transcripts WHERE " + strings.Join(conds, " AND ")
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	// Orphaned join rows are harmless but pointless; sweep them.
	if _, err := db.ExecContext(ctx,
		"DELETE FROM transcript_tags WHERE transcript_id NOT IN (SELECT id FROM transcripts)"); err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(affected), nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanTranscript.
type scanner interface {
	Scan(dest ...any) error
}

// scanTranscript scans a single row into a Transcript struct.
func scanTranscript(row scanner) (*transcript.Transcript, error) {
	var (
		t          transcript.Transcript
		sourceKind string
		status     string
		sourceRef  sql.NullString
		duration   sql.NullInt64
		text       sql.NullString
		checksum   sql.NullString
		protected  int
		deletedAt  sql.NullInt64
	)

	err := row.Scan(
		&t.ID, &t.LibraryRaw, &t.LibraryNorm, &t.Title, &sourceKind, &sourceRef,
		&duration, &status, &text, &checksum, &protected, &t.WordCount,
		&t.CreatedAt, &t.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	t.SourceKind = transcript.SourceKind(sourceKind)
	t.Status = transcript.Status(status)
	t.SourceRef = fromNullString(sourceRef)
	t.Text = fromNullString(text)
	t.Checksum = fromNullString(checksum)
	t.Protected = protected != 0
	if duration.Valid {
		d := int(duration.Int64)
		t.DurationSeconds = &d
	}
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.Int64
	}

	return &t, nil
}

func collectTranscripts(rows *sql.Rows) ([]*transcript.Transcript, error) {
	var items []*transcript.Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return items, nil
}

func idPlaceholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func toNullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
