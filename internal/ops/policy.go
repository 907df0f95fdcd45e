package ops

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scribe/internal/db"
	"scribe/internal/event"
	"scribe/internal/policy"
)

// PolicyGetInput contains parameters for the PolicyGet operation.
type PolicyGetInput struct {
	Library string
}

// PolicyGetOutput contains the library's policy. Saved is false when the
// library has never saved one and the defaults are shown instead.
type PolicyGetOutput struct {
	Policy  policy.RetentionPolicy `json:"policy"`
	Saved   bool                   `json:"saved"`
	NextRun *int64                 `json:"next_run,omitempty"`
}

// PolicyGet returns the retention policy for a library, falling back to the
// defaults when none has been saved.
func PolicyGet(ctx context.Context, database *sql.DB, input PolicyGetInput) (*PolicyGetOutput, error) {
	libraryNorm := normalizeLibrary(input.Library)

	saved, err := db.GetPolicy(ctx, database, libraryNorm)
	if err != nil {
		return nil, err
	}

	out := &PolicyGetOutput{Saved: saved != nil}
	if saved != nil {
		out.Policy = *saved
	} else {
		out.Policy = policy.Default(libraryNorm)
	}

	if next := out.Policy.NextRun(time.Now()); next != nil {
		unix := next.Unix()
		out.NextRun = &unix
	}

	return out, nil
}

// PolicySaveInput contains parameters for the PolicySave operation.
type PolicySaveInput struct {
	Library          string
	Enabled          bool
	KeepLatest       bool
	AgeThresholdDays int
	Schedule         string // empty keeps the default daily schedule
}

// PolicySaveOutput contains the saved policy.
type PolicySaveOutput struct {
	Policy  policy.RetentionPolicy `json:"policy"`
	NextRun *int64                 `json:"next_run,omitempty"`
}

// PolicySave validates and upserts the single retention policy of a library.
// Invalid values are rejected before anything is written.
func PolicySave(ctx context.Context, database *sql.DB, bus *event.Bus, input PolicySaveInput) (*PolicySaveOutput, error) {
	libraryNorm := normalizeLibrary(input.Library)

	p := policy.RetentionPolicy{
		Library:          libraryNorm,
		Enabled:          input.Enabled,
		KeepLatest:       input.KeepLatest,
		AgeThresholdDays: input.AgeThresholdDays,
		Schedule:         input.Schedule,
	}
	if p.Schedule == "" {
		p.Schedule = policy.DefaultSchedule
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// Preserve the existing last-run marker across saves.
	if saved, err := db.GetPolicy(ctx, database, libraryNorm); err != nil {
		return nil, err
	} else if saved != nil {
		p.LastRunAt = saved.LastRunAt
	}

	now := time.Now()
	if err := db.UpsertPolicy(ctx, database, &p, now.Unix()); err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("enabled=%v keep_latest=%v age_threshold_days=%d schedule=%q",
		p.Enabled, p.KeepLatest, p.AgeThresholdDays, p.Schedule)
	if err := recordActivity(ctx, database, libraryNorm, "policy_save", detail, 0); err != nil {
		return nil, err
	}
	publish(bus, event.Change{Op: event.OpPolicy, Library: libraryNorm})

	out := &PolicySaveOutput{Policy: p}
	if next := p.NextRun(now); next != nil {
		unix := next.Unix()
		out.NextRun = &unix
	}

	return out, nil
}
