package ops

import (
	"context"
	"database/sql"

	"scribe/internal/db"
	"scribe/internal/dedupe"
	"scribe/internal/transcript"
)

// DuplicatesInput contains parameters for the Duplicates operation.
type DuplicatesInput struct {
	Library string
}

// DuplicateGroupView is one duplicate group in API/UI shape.
type DuplicateGroupView struct {
	Checksum    string               `json:"checksum"`
	Title       string               `json:"title"`
	Count       int                  `json:"count"`
	WastedBytes int                  `json:"wasted_bytes"`
	OldestAt    int64                `json:"oldest_at"`
	NewestAt    int64                `json:"newest_at"`
	Priority    dedupe.Priority      `json:"priority"`
	Members     []transcript.Summary `json:"members"`
}

// DuplicatesOutput contains the result of the Duplicates operation.
type DuplicatesOutput struct {
	Library string               `json:"library"`
	Scanned int                  `json:"scanned"`
	Groups  []DuplicateGroupView `json:"groups"`
}

// Duplicates scans the library's checksummed records and returns the
// duplicate groups (two or more records sharing a checksum), largest waste
// first. Zero groups is a valid "nothing to do" result.
func Duplicates(ctx context.Context, database *sql.DB, input DuplicatesInput) (*DuplicatesOutput, error) {
	libraryNorm := normalizeLibrary(input.Library)

	records, err := db.ListForDedupe(ctx, database, libraryNorm)
	if err != nil {
		return nil, err
	}

	snapshot := make([]transcript.Transcript, 0, len(records))
	for _, r := range records {
		snapshot = append(snapshot, *r)
	}

	groups := dedupe.DuplicateGroups(snapshot)

	out := &DuplicatesOutput{
		Library: libraryNorm,
		Scanned: len(snapshot),
		Groups:  make([]DuplicateGroupView, 0, len(groups)),
	}
	for _, g := range groups {
		view := DuplicateGroupView{
			Checksum:    g.Checksum,
			Title:       g.Members[0].Title,
			Count:       g.Count(),
			WastedBytes: g.WastedSize(),
			OldestAt:    g.Oldest(),
			NewestAt:    g.Newest(),
			Priority:    dedupe.GroupPriority(g.Count()),
			Members:     make([]transcript.Summary, 0, len(g.Members)),
		}
		for _, m := range g.Members {
			view.Members = append(view.Members, m.ToSummary())
		}
		out.Groups = append(out.Groups, view)
	}

	return out, nil
}
