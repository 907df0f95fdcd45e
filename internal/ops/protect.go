package ops

import (
	"context"
	"database/sql"
	"fmt"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/event"
)

// ProtectInput contains parameters for the Protect operation.
type ProtectInput struct {
	Library   string
	IDs       []string // required
	Protected bool     // true to protect, false to clear
}

// ProtectOutput contains the result of the Protect operation.
type ProtectOutput struct {
	Changed int    `json:"changed"`
	Message string `json:"message"`
}

// Protect sets or clears the protection flag on a batch of transcripts.
// Re-issuing the call for records already in the requested state is a no-op:
// they simply don't count as changed. Protection is purely user-driven; the
// cleanup engine reads the flag but never writes it.
func Protect(ctx context.Context, database *sql.DB, bus *event.Bus, input ProtectInput) (*ProtectOutput, error) {
	if len(input.IDs) == 0 {
		return nil, errors.NewInvalidRequest("at least one id is required")
	}

	changed, err := db.BulkSetProtected(ctx, database, input.IDs, input.Protected)
	if err != nil {
		return nil, err
	}

	libraryNorm := normalizeLibrary(input.Library)
	verb := "Protected"
	action := "protect"
	if !input.Protected {
		verb = "Unprotected"
		action = "unprotect"
	}

	message := fmt.Sprintf("%s %d of %d transcripts", verb, changed, len(input.IDs))
	if changed == 0 {
		message = "All transcripts were already in the requested state"
	}

	if changed > 0 {
		if err := recordActivity(ctx, database, libraryNorm, action, "", changed); err != nil {
			return nil, err
		}
		publish(bus, event.Change{Op: event.OpProtected, Library: libraryNorm, IDs: input.IDs, Count: changed})
	}

	return &ProtectOutput{Changed: changed, Message: message}, nil
}
