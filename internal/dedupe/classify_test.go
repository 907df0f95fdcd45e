package dedupe

import (
	"testing"
	"time"

	"scribe/internal/errors"
	"scribe/internal/transcript"
)

const day = 24 * time.Hour

// dayStamp returns the unix timestamp for "day n" relative to a fixed epoch.
func dayStamp(n int) int64 {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(n-1) * day).Unix()
}

// scenarioGroup builds a reference scenario: four copies created on days 1,
// 10, 20 and 30.
func scenarioGroup() DuplicateGroup {
	records := []transcript.Transcript{
		rec("d1", "abc", dayStamp(1), "text"),
		rec("d10", "abc", dayStamp(10), "text"),
		rec("d20", "abc", dayStamp(20), "text"),
		rec("d30", "abc", dayStamp(30), "text"),
	}
	return DuplicateGroups(records)[0]
}

func TestClassify_AgeAndKeepLatest(t *testing.T) {
	group := scenarioGroup()
	now := time.Unix(dayStamp(30), 0)

	members, err := Classify(group, Rules{KeepLatest: true, AgeThresholdDays: 15}, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	want := map[string]Reason{
		"d30": ReasonNewestKept,
		"d20": ReasonTooRecent,
		"d10": ReasonDeletable,
		"d1":  ReasonDeletable,
	}
	for _, m := range members {
		if m.Reason != want[m.ID] {
			t.Errorf("%s: reason = %s, want %s", m.ID, m.Reason, want[m.ID])
		}
		if m.WillBeDeleted != (want[m.ID] == ReasonDeletable) {
			t.Errorf("%s: WillBeDeleted = %v for reason %s", m.ID, m.WillBeDeleted, m.Reason)
		}
	}
}

// The newest member is usually also inside the age threshold. Keep-latest
// must win that overlap so the label reads newest_kept, not too_recent.
func TestClassify_NewestKeptBeatsTooRecent(t *testing.T) {
	group := scenarioGroup()
	now := time.Unix(dayStamp(30), 0)

	members, err := Classify(group, Rules{KeepLatest: true, AgeThresholdDays: 15}, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	for _, m := range members {
		if m.ID != "d30" {
			continue
		}
		if m.CreatedAt <= now.Add(-15*day).Unix() {
			t.Fatal("d30 should be inside the age threshold for this check")
		}
		if m.Reason != ReasonNewestKept {
			t.Errorf("d30: reason = %s, want newest_kept over too_recent", m.Reason)
		}
		if m.WillBeDeleted {
			t.Error("d30 must be kept")
		}
	}
}

func TestClassify_ProtectedOverridesDeletable(t *testing.T) {
	group := scenarioGroup()
	for i := range group.Members {
		if group.Members[i].ID == "d1" {
			group.Members[i].Protected = true
		}
	}
	now := time.Unix(dayStamp(30), 0)

	members, err := Classify(group, Rules{KeepLatest: true, AgeThresholdDays: 15}, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	for _, m := range members {
		switch m.ID {
		case "d1":
			if m.Reason != ReasonProtected || m.WillBeDeleted {
				t.Errorf("d1: got %s/%v, want protected/kept", m.Reason, m.WillBeDeleted)
			}
		case "d10":
			if m.Reason != ReasonDeletable {
				t.Errorf("d10: reason = %s, want deletable", m.Reason)
			}
		case "d20":
			if m.Reason != ReasonTooRecent {
				t.Errorf("d20: reason = %s, want too_recent", m.Reason)
			}
		case "d30":
			if m.Reason != ReasonNewestKept {
				t.Errorf("d30: reason = %s, want newest_kept", m.Reason)
			}
		}
	}
}

func TestClassify_KeepLatestOff_NewestDeletableOnceAged(t *testing.T) {
	group := scenarioGroup()
	now := time.Unix(dayStamp(60), 0) // everything well past the threshold

	members, err := Classify(group, Rules{KeepLatest: false, AgeThresholdDays: 15}, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	for _, m := range members {
		if m.Reason != ReasonDeletable {
			t.Errorf("%s: reason = %s, want deletable (keep_latest off)", m.ID, m.Reason)
		}
		if m.Reason == ReasonNewestKept {
			t.Errorf("newest_kept must never appear when keep_latest is off")
		}
	}
}

func TestClassify_ExactlyOneNewestKept(t *testing.T) {
	group := scenarioGroup()
	now := time.Unix(dayStamp(60), 0)

	members, err := Classify(group, Rules{KeepLatest: true, AgeThresholdDays: 15}, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	kept := 0
	for _, m := range members {
		if m.Reason == ReasonNewestKept {
			kept++
			if m.ID != "d30" {
				t.Errorf("newest_kept on %s, want d30", m.ID)
			}
		}
	}
	if kept != 1 {
		t.Errorf("newest_kept count = %d, want 1", kept)
	}
}

func TestClassify_AllKeptIsValid(t *testing.T) {
	group := scenarioGroup()
	for i := range group.Members {
		group.Members[i].Protected = true
	}
	now := time.Unix(dayStamp(30), 0)

	members, err := Classify(group, Rules{KeepLatest: true, AgeThresholdDays: 15}, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	for _, m := range members {
		if m.WillBeDeleted {
			t.Errorf("%s marked deletable in an all-protected group", m.ID)
		}
	}
}

func TestClassify_RejectsBadThreshold(t *testing.T) {
	group := scenarioGroup()

	_, err := Classify(group, Rules{KeepLatest: true, AgeThresholdDays: 0}, time.Now())
	if !errors.Is(err, errors.ErrInvalidPolicy) {
		t.Fatalf("got %v, want INVALID_POLICY", err)
	}

	_, err = Classify(group, Rules{AgeThresholdDays: -3}, time.Now())
	if !errors.Is(err, errors.ErrInvalidPolicy) {
		t.Fatalf("got %v, want INVALID_POLICY", err)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	group := scenarioGroup()
	now := time.Unix(dayStamp(30), 0)
	rules := Rules{KeepLatest: true, AgeThresholdDays: 15}

	first, err := Classify(group, rules, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	second, err := Classify(group, rules, now)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	for i := range first {
		if first[i].Reason != second[i].Reason || first[i].WillBeDeleted != second[i].WillBeDeleted {
			t.Fatalf("classification not idempotent at index %d", i)
		}
	}
}

// Raising the age threshold may only move members toward too_recent, never
// away from it.
func TestClassify_MonotonicInThreshold(t *testing.T) {
	group := scenarioGroup()
	now := time.Unix(dayStamp(30), 0)

	prev := map[string]Reason{}
	for threshold := 1; threshold <= 40; threshold++ {
		members, err := Classify(group, Rules{KeepLatest: true, AgeThresholdDays: threshold}, now)
		if err != nil {
			t.Fatalf("Classify(threshold=%d) failed: %v", threshold, err)
		}
		for _, m := range members {
			if prevReason, ok := prev[m.ID]; ok && prevReason == ReasonTooRecent && m.Reason != ReasonTooRecent {
				t.Fatalf("%s left too_recent when threshold rose to %d", m.ID, threshold)
			}
			prev[m.ID] = m.Reason
		}
	}
}
