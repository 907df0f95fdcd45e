package dedupe

import (
	"fmt"
	"time"
)

// Priority ranks how urgently a duplicate group deserves cleanup.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// GroupPriority assigns a cleanup priority from the member count:
// 5 or more copies is HIGH, 3 or 4 is MEDIUM, otherwise LOW.
func GroupPriority(count int) Priority {
	switch {
	case count >= 5:
		return PriorityHigh
	case count >= 3:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// GroupReport summarizes one classified duplicate group.
type GroupReport struct {
	Title           string   `json:"title"`
	Checksum        string   `json:"checksum"`
	VersionCount    int      `json:"version_count"`
	DeletableCount  int      `json:"deletable_count"`
	WastedBytes     int      `json:"wasted_bytes"`
	OldestCreatedAt int64    `json:"oldest_created_at"`
	NewestCreatedAt int64    `json:"newest_created_at"`
	Priority        Priority `json:"priority"`
	Recommendations []string `json:"recommendations"`
}

// Summary is the aggregate view over all classified duplicate groups.
//
// ReclaimableBytes counts only members labeled deletable, while per-group
// WastedBytes counts everything except the newest copy. Both are the
// chars-times-constant approximation from transcript.ApproxBytes, not exact
// storage bytes.
type Summary struct {
	GroupCount       int           `json:"group_count"`
	DeletableCount   int           `json:"deletable_count"`
	ReclaimableBytes int           `json:"reclaimable_bytes"`
	Groups           []GroupReport `json:"groups"`
}

// BuildSummary folds classified groups into a Summary. Read-only; source
// records are never mutated.
func BuildSummary(groups []ClassifiedGroup) Summary {
	summary := Summary{Groups: make([]GroupReport, 0, len(groups))}

	for _, cg := range groups {
		gr := GroupReport{
			Title:           cg.Group.Members[0].Title,
			Checksum:        cg.Group.Checksum,
			VersionCount:    cg.Group.Count(),
			WastedBytes:     cg.Group.WastedSize(),
			OldestCreatedAt: cg.Group.Oldest(),
			NewestCreatedAt: cg.Group.Newest(),
			Priority:        GroupPriority(cg.Group.Count()),
		}
		for _, m := range cg.Members {
			if m.WillBeDeleted {
				gr.DeletableCount++
				summary.ReclaimableBytes += m.ApproxBytes()
			}
		}
		gr.Recommendations = recommendations(cg, gr)

		summary.Groups = append(summary.Groups, gr)
		summary.GroupCount++
		summary.DeletableCount += gr.DeletableCount
	}

	return summary
}

// recommendations derives free-text advice from the group's shape.
func recommendations(cg ClassifiedGroup, gr GroupReport) []string {
	var recs []string

	if gr.VersionCount >= 5 {
		recs = append(recs, fmt.Sprintf("%d copies of the same content; schedule cleanup for this group", gr.VersionCount))
	}
	if gr.WastedBytes >= 1<<20 {
		recs = append(recs, fmt.Sprintf("removing duplicate copies would reclaim about %s", FormatBytes(gr.WastedBytes)))
	}
	span := time.Duration(gr.NewestCreatedAt-gr.OldestCreatedAt) * time.Second
	if span >= 30*24*time.Hour {
		recs = append(recs, fmt.Sprintf("copies span %d days; the same file keeps being re-uploaded", int(span.Hours()/24)))
	}
	if gr.DeletableCount == 0 {
		recs = append(recs, "no copies are currently eligible for deletion under the active policy")
	}
	if len(recs) == 0 {
		recs = append(recs, "small duplicate group; cleanup optional")
	}

	return recs
}

// FormatBytes renders an approximate byte count for display.
func FormatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
