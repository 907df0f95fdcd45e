package policy

import (
	"time"

	"github.com/robfig/cron/v3"
)

// NextRun returns the next cleanup time for the policy's schedule.
//
// When the last run is known, the next run is computed from it so a missed
// window shows up as an overdue time rather than silently sliding forward.
// With no recorded run, the schedule is evaluated from now. Returns nil when
// the policy is disabled or has no schedule.
func (p RetentionPolicy) NextRun(now time.Time) *time.Time {
	if !p.Enabled || p.Schedule == "" {
		return nil
	}

	sched, err := cron.ParseStandard(p.Schedule)
	if err != nil {
		// Validate catches this on save; a stored policy should never get here.
		return nil
	}

	from := now
	if p.LastRunAt != nil {
		from = time.Unix(*p.LastRunAt, 0)
	}

	next := sched.Next(from)
	return &next
}

// Overdue reports whether a scheduled run was missed: the next run computed
// from the last run is already in the past.
func (p RetentionPolicy) Overdue(now time.Time) bool {
	next := p.NextRun(now)
	return next != nil && next.Before(now)
}
