package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"scribe/internal/db"
	"scribe/internal/event"
	"scribe/internal/transcript"
)

// Pagination limits
const (
	DefaultListLimit     = 20
	MaxListLimit         = 100
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// normalizeLibrary normalizes a library name, defaulting to "default".
func normalizeLibrary(s string) string {
	norm := transcript.Normalize(s)
	if norm == "" {
		norm = "default"
	}
	return norm
}

// clampLimit applies default and maximum bounds to a page size.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// cleanOptionalString trims an optional string, dropping it if empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// publish sends a change notification when a bus is attached. Ops never
// depend on delivery; a nil bus is fine.
func publish(bus *event.Bus, c event.Change) {
	if bus != nil {
		bus.Publish(c)
	}
}

// recordActivity appends an activity-log entry. Log failures are returned to
// the caller; the mutation they describe has already happened.
func recordActivity(ctx context.Context, database *sql.DB, library, action, detail string, count int) error {
	id, err := generateULID()
	if err != nil {
		return err
	}
	return db.InsertActivity(ctx, database, &db.ActivityEntry{
		ID:          id,
		Library:     library,
		Action:      action,
		Detail:      detail,
		RecordCount: count,
		CreatedAt:   time.Now().Unix(),
	})
}
