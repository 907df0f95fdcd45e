package transcript

// Status is the lifecycle state of a transcript record.
// The transcription work itself happens outside this program; records move
// through these states as the caller reports progress.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// SourceKind indicates where the underlying media came from.
type SourceKind string

const (
	SourceUpload  SourceKind = "upload"
	SourceURL     SourceKind = "url"
	SourceYouTube SourceKind = "youtube"
)

// Tag is a user label attached to transcripts.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Transcript represents one transcribed-media entry in a library.
type Transcript struct {
	// ID is a ULID that uniquely identifies this transcript
	ID string

	// LibraryRaw is the original library string as provided by the user
	LibraryRaw string

	// LibraryNorm is the normalized library (lowercased, trimmed, collapsed spaces)
	LibraryNorm string

	// Title is the display title, usually the source filename or video title
	Title string

	// SourceKind indicates how the media was supplied (upload, url, youtube)
	SourceKind SourceKind

	// SourceRef is the original filename or URL (nullable)
	SourceRef *string

	// DurationSeconds is the media duration, when known (nullable)
	DurationSeconds *int

	// Status is the lifecycle state
	Status Status

	// Text is the transcript body; nil until transcription completes
	Text *string

	// Checksum is the SHA-256 hex digest of the source content; nil until
	// transcription completes. Two records are duplicates iff both checksums
	// are non-nil and equal.
	Checksum *string

	// Protected exempts the record from automatic cleanup. Set only by the
	// user; the retention engine never mutates it.
	Protected bool

	// WordCount is derived from Text
	WordCount int

	// Tags attached to this transcript
	Tags []Tag

	// CreatedAt is the Unix timestamp when the record was created
	CreatedAt int64

	// UpdatedAt is the Unix timestamp when the record was last updated
	UpdatedAt int64

	// DeletedAt is the Unix timestamp for soft delete (nullable)
	DeletedAt *int64
}

// TextSize returns the transcript length in characters, zero when no text.
func (t *Transcript) TextSize() int {
	if t.Text == nil {
		return 0
	}
	return CountChars(*t.Text)
}

// ApproxBytes returns the approximate stored size of the transcript.
//
// This is character count times a constant factor, not an exact byte count.
// Historical reports were produced with the same approximation, so it is
// preserved for comparability rather than corrected.
func (t *Transcript) ApproxBytes() int {
	return t.TextSize() * BytesPerChar
}

// BytesPerChar is the constant factor behind ApproxBytes.
const BytesPerChar = 2

// Summary represents a transcript's metadata without the full text.
// Used for browse operations to reduce data transfer.
type Summary struct {
	ID              string     `json:"id"`
	Library         string     `json:"library"`
	LibraryNorm     string     `json:"library_norm"`
	Title           string     `json:"title"`
	SourceKind      SourceKind `json:"source_kind"`
	SourceRef       *string    `json:"source_ref,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
	Status          Status     `json:"status"`
	Checksum        *string    `json:"checksum,omitempty"`
	Protected       bool       `json:"protected"`
	WordCount       int        `json:"word_count"`
	TextChars       int        `json:"text_chars"`
	Tags            []Tag      `json:"tags,omitempty"`
	CreatedAt       int64      `json:"created_at"`
	UpdatedAt       int64      `json:"updated_at"`
	DeletedAt       *int64     `json:"deleted_at,omitempty"`
}

// ToSummary converts a Transcript to a Summary by stripping the text content.
func (t *Transcript) ToSummary() Summary {
	return Summary{
		ID:              t.ID,
		Library:         t.LibraryRaw,
		LibraryNorm:     t.LibraryNorm,
		Title:           t.Title,
		SourceKind:      t.SourceKind,
		SourceRef:       t.SourceRef,
		DurationSeconds: t.DurationSeconds,
		Status:          t.Status,
		Checksum:        t.Checksum,
		Protected:       t.Protected,
		WordCount:       t.WordCount,
		TextChars:       t.TextSize(),
		Tags:            t.Tags,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
		DeletedAt:       t.DeletedAt,
	}
}
