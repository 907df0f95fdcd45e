// Package dedupe implements the duplicate-detection and retention engine.
//
// Everything in this package is a pure function over caller-supplied
// snapshots: grouping, classification, and reporting never touch storage and
// hold no state between calls. The caller fetches records, runs the engine,
// and executes any resulting deletions against its own store.
package dedupe

import (
	"sort"

	"scribe/internal/transcript"
)

// DuplicateGroup is a set of two or more transcripts sharing a checksum.
// Members are ordered newest-first by creation time; ties keep the original
// input order. Groups are computed on demand and never persisted.
type DuplicateGroup struct {
	Checksum string
	Members  []transcript.Transcript
}

// Count returns the number of members.
func (g *DuplicateGroup) Count() int {
	return len(g.Members)
}

// Newest returns the creation timestamp of the newest member.
func (g *DuplicateGroup) Newest() int64 {
	return g.Members[0].CreatedAt
}

// Oldest returns the creation timestamp of the oldest member.
func (g *DuplicateGroup) Oldest() int64 {
	return g.Members[len(g.Members)-1].CreatedAt
}

// WastedSize returns the approximate bytes attributable to the duplicate
// copies: the sum of member sizes excluding the newest one.
func (g *DuplicateGroup) WastedSize() int {
	total := 0
	for _, m := range g.Members[1:] {
		total += m.ApproxBytes()
	}
	return total
}

// GroupByChecksum partitions records by their content checksum. Records with
// a nil checksum are excluded entirely; they can never be duplicates. Within
// each bucket the input's relative order is preserved.
//
// The returned map includes singleton buckets; use DuplicateGroups for the
// size >= 2 view used by cleanup and reporting.
func GroupByChecksum(records []transcript.Transcript) map[string][]transcript.Transcript {
	groups := make(map[string][]transcript.Transcript)
	for _, r := range records {
		if r.Checksum == nil || *r.Checksum == "" {
			continue
		}
		groups[*r.Checksum] = append(groups[*r.Checksum], r)
	}
	return groups
}

// DuplicateGroups returns the duplicate groups (size >= 2) in records, each
// sorted newest-first with stable tie order. Groups are returned sorted by
// wasted size descending so the most redundant content comes first.
func DuplicateGroups(records []transcript.Transcript) []DuplicateGroup {
	buckets := GroupByChecksum(records)

	groups := make([]DuplicateGroup, 0, len(buckets))
	for checksum, members := range buckets {
		if len(members) < 2 {
			continue
		}
		sorted := make([]transcript.Transcript, len(members))
		copy(sorted, members)
		// Stable keeps original order for equal timestamps. "Newest" in
		// classification rule 3 is defined purely by this ordering.
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].CreatedAt > sorted[j].CreatedAt
		})
		groups = append(groups, DuplicateGroup{Checksum: checksum, Members: sorted})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].WastedSize() != groups[j].WastedSize() {
			return groups[i].WastedSize() > groups[j].WastedSize()
		}
		return groups[i].Checksum < groups[j].Checksum
	})

	return groups
}
