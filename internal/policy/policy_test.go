package policy

import (
	"testing"
	"time"

	"scribe/internal/errors"
)

func TestValidate_RejectsBadThreshold(t *testing.T) {
	p := Default("default")
	p.AgeThresholdDays = 0

	err := p.Validate()
	if !errors.Is(err, errors.ErrInvalidPolicy) {
		t.Fatalf("got %v, want INVALID_POLICY", err)
	}
}

func TestValidate_RejectsBadSchedule(t *testing.T) {
	p := Default("default")
	p.Schedule = "not a cron line"

	err := p.Validate()
	if !errors.Is(err, errors.ErrInvalidPolicy) {
		t.Fatalf("got %v, want INVALID_POLICY", err)
	}
}

func TestValidate_AcceptsDefault(t *testing.T) {
	p := Default("default")
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy failed validation: %v", err)
	}
}

func TestNextRun_DisabledReturnsNil(t *testing.T) {
	p := Default("default")
	p.Enabled = false

	if next := p.NextRun(time.Now()); next != nil {
		t.Errorf("disabled policy NextRun = %v, want nil", next)
	}
}

func TestNextRun_FromLastRun(t *testing.T) {
	p := Default("default")
	p.Enabled = true
	p.Schedule = "0 3 * * *"

	lastRun := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC).Unix()
	p.LastRunAt = &lastRun

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	next := p.NextRun(now)
	if next == nil {
		t.Fatal("NextRun = nil")
	}

	want := time.Date(2026, 8, 2, 3, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextRun = %v, want %v", next, want)
	}
}

func TestOverdue(t *testing.T) {
	p := Default("default")
	p.Enabled = true
	p.Schedule = "0 3 * * *"

	lastRun := time.Date(2026, 7, 1, 3, 0, 0, 0, time.UTC).Unix()
	p.LastRunAt = &lastRun

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !p.Overdue(now) {
		t.Error("a month-old last run with a daily schedule should be overdue")
	}

	recent := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC).Unix()
	p.LastRunAt = &recent
	if p.Overdue(now) {
		t.Error("a run earlier today should not be overdue before the next window")
	}
}

func TestRules_MirrorsPolicy(t *testing.T) {
	p := Default("default")
	p.KeepLatest = false
	p.AgeThresholdDays = 7

	rules := p.Rules()
	if rules.KeepLatest || rules.AgeThresholdDays != 7 {
		t.Errorf("Rules = %+v, want keep_latest=false threshold=7", rules)
	}
}
