package dedupe

import (
	"time"

	"scribe/internal/errors"
	"scribe/internal/transcript"
)

// Reason explains why a member was retained or marked deletable.
type Reason string

const (
	// ReasonProtected: the user flagged the record as exempt from cleanup.
	ReasonProtected Reason = "protected"
	// ReasonTooRecent: the record is younger than the policy age threshold.
	ReasonTooRecent Reason = "too_recent"
	// ReasonNewestKept: the record is the newest copy and keep-latest is on.
	ReasonNewestKept Reason = "newest_kept"
	// ReasonDeletable: no retention rule matched; the copy may be deleted.
	ReasonDeletable Reason = "deletable"
)

// Rules are the classification inputs of a retention policy.
type Rules struct {
	// KeepLatest exempts the newest member of each group from deletion.
	KeepLatest bool

	// AgeThresholdDays exempts members younger than this many days.
	// Must be >= 1; validation rejects smaller values rather than clamping.
	AgeThresholdDays int
}

// Validate checks the rules for well-formedness.
func (r Rules) Validate() error {
	if r.AgeThresholdDays < 1 {
		return errors.NewInvalidPolicy("age_threshold_days", "age_threshold_days must be >= 1")
	}
	return nil
}

// ClassifiedMember is one group member labeled with a deletion decision.
// Computed fresh per evaluation and never persisted.
type ClassifiedMember struct {
	transcript.Transcript
	WillBeDeleted bool
	Reason        Reason
}

// Classify labels each member of a duplicate group under the given rules.
// The output preserves the group's newest-first order, one entry per member.
//
// Rules are evaluated per member in strict priority order, first match wins:
//  1. protected flag set            -> protected, kept
//  2. keep-latest and newest member -> newest_kept, kept
//  3. younger than age threshold    -> too_recent, kept
//  4. otherwise                     -> deletable
//
// The newest member takes newest_kept even when it is also inside the age
// threshold: keep-latest is the stronger claim, and too_recent lapses on its
// own once the copy ages. Deletion outcomes are identical either way.
//
// Classification only labels. It never mutates protection flags or deletes
// anything; executing deletions is the caller's job. A group where every
// member is kept is a valid outcome, not an error.
func Classify(group DuplicateGroup, rules Rules, now time.Time) ([]ClassifiedMember, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	cutoff := now.Add(-time.Duration(rules.AgeThresholdDays) * 24 * time.Hour).Unix()

	classified := make([]ClassifiedMember, 0, len(group.Members))
	for i, m := range group.Members {
		cm := ClassifiedMember{Transcript: m}
		switch {
		case m.Protected:
			cm.Reason = ReasonProtected
		case rules.KeepLatest && i == 0:
			cm.Reason = ReasonNewestKept
		case m.CreatedAt > cutoff:
			cm.Reason = ReasonTooRecent
		default:
			cm.Reason = ReasonDeletable
			cm.WillBeDeleted = true
		}
		classified = append(classified, cm)
	}

	return classified, nil
}

// ClassifiedGroup pairs a duplicate group with its classification.
type ClassifiedGroup struct {
	Group   DuplicateGroup
	Members []ClassifiedMember
}

// ClassifyAll classifies every group under the same rules and clock.
func ClassifyAll(groups []DuplicateGroup, rules Rules, now time.Time) ([]ClassifiedGroup, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	out := make([]ClassifiedGroup, 0, len(groups))
	for _, g := range groups {
		members, err := Classify(g, rules, now)
		if err != nil {
			return nil, err
		}
		out = append(out, ClassifiedGroup{Group: g, Members: members})
	}
	return out, nil
}

// DeletableIDs returns the record IDs labeled deletable, in group order.
func DeletableIDs(groups []ClassifiedGroup) []string {
	var ids []string
	for _, g := range groups {
		for _, m := range g.Members {
			if m.WillBeDeleted {
				ids = append(ids, m.ID)
			}
		}
	}
	return ids
}
