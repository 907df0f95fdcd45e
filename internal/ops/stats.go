package ops

import (
	"context"
	"database/sql"
	"time"

	"scribe/internal/db"
)

// StatsInput contains parameters for the Stats operation.
type StatsInput struct {
	Library string
	Months  int // growth window, default 12
}

// StatsOutput contains the dashboard numbers for a library.
type StatsOutput struct {
	Library          string          `json:"library"`
	StatusCounts     db.StatusCounts `json:"status_counts"`
	Total            int             `json:"total"`
	DuplicateGroups  int             `json:"duplicate_groups"`
	DeletableCount   int             `json:"deletable_count"`
	ReclaimableBytes int             `json:"reclaimable_bytes"`
	MonthlyGrowth    []db.MonthCount `json:"monthly_growth"`
}

// Stats aggregates per-status counts, duplicate totals under the current
// policy, and the monthly growth series.
func Stats(ctx context.Context, database *sql.DB, input StatsInput) (*StatsOutput, error) {
	libraryNorm := normalizeLibrary(input.Library)

	counts, err := db.CountByStatus(ctx, database, libraryNorm)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	months := input.Months
	if months <= 0 {
		months = 12
	}
	growth, err := db.MonthlyGrowth(ctx, database, libraryNorm, months)
	if err != nil {
		return nil, err
	}

	cleanup, _, err := classifyLibrary(ctx, database, CleanupInput{Library: libraryNorm, Now: time.Now()})
	if err != nil {
		return nil, err
	}

	return &StatsOutput{
		Library:          libraryNorm,
		StatusCounts:     counts,
		Total:            total,
		DuplicateGroups:  cleanup.Summary.GroupCount,
		DeletableCount:   cleanup.Summary.DeletableCount,
		ReclaimableBytes: cleanup.Summary.ReclaimableBytes,
		MonthlyGrowth:    growth,
	}, nil
}
