// Package policy defines the persisted retention policy and its validation.
package policy

import (
	"fmt"

	"github.com/robfig/cron/v3"

	"scribe/internal/dedupe"
	"scribe/internal/errors"
)

// DefaultSchedule runs cleanup daily at 3 AM.
const DefaultSchedule = "0 3 * * *"

// RetentionPolicy is the per-library cleanup configuration. At most one
// exists per library; it is created on first save and mutated via explicit
// saves only. The engine never deletes it.
type RetentionPolicy struct {
	Library          string `json:"library"`
	Enabled          bool   `json:"enabled"`
	KeepLatest       bool   `json:"keep_latest"`
	AgeThresholdDays int    `json:"age_threshold_days"`
	Schedule         string `json:"schedule"`
	LastRunAt        *int64 `json:"last_run_at,omitempty"`
	CreatedAt        int64  `json:"created_at"`
	UpdatedAt        int64  `json:"updated_at"`
}

// Default returns the default policy for a library: disabled, keep-latest on,
// 30-day age threshold, daily schedule.
func Default(library string) RetentionPolicy {
	return RetentionPolicy{
		Library:          library,
		Enabled:          false,
		KeepLatest:       true,
		AgeThresholdDays: 30,
		Schedule:         DefaultSchedule,
	}
}

// Validate checks the policy for well-formedness. Bad values are rejected,
// never clamped.
func (p RetentionPolicy) Validate() error {
	if p.Library == "" {
		return errors.NewInvalidPolicy("library", "library is required")
	}
	if p.AgeThresholdDays < 1 {
		return errors.NewInvalidPolicy("age_threshold_days", "age_threshold_days must be >= 1")
	}
	if p.Schedule != "" {
		if _, err := cron.ParseStandard(p.Schedule); err != nil {
			return errors.NewInvalidPolicy("schedule", fmt.Sprintf("invalid cron schedule %q: %v", p.Schedule, err))
		}
	}
	return nil
}

// Rules returns the classification inputs of the policy.
func (p RetentionPolicy) Rules() dedupe.Rules {
	return dedupe.Rules{
		KeepLatest:       p.KeepLatest,
		AgeThresholdDays: p.AgeThresholdDays,
	}
}
