package ops

import (
	"context"
	"database/sql"
	"time"

	"scribe/internal/dedupe"
	"scribe/internal/policy"
)

// ReportInput contains parameters for the Report operation.
type ReportInput struct {
	Library string
	Now     time.Time // zero means time.Now()
}

// ReportOutput is the full duplicate report: aggregate summary plus group
// and member detail. Export renders this same structure to its file formats,
// so a failed export never invalidates an already-built report.
type ReportOutput struct {
	Library     string                 `json:"library"`
	GeneratedAt int64                  `json:"generated_at"`
	Policy      policy.RetentionPolicy `json:"policy"`
	Summary     dedupe.Summary         `json:"summary"`
	Groups      []ClassifiedGroupView  `json:"duplicate_groups"`
}

// Report classifies the library under its retention policy and folds the
// result into the aggregate summary.
func Report(ctx context.Context, database *sql.DB, input ReportInput) (*ReportOutput, error) {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	cleanup, _, err := classifyLibrary(ctx, database, CleanupInput{Library: input.Library, Now: now})
	if err != nil {
		return nil, err
	}

	return &ReportOutput{
		Library:     cleanup.Library,
		GeneratedAt: now.Unix(),
		Policy:      cleanup.Policy,
		Summary:     cleanup.Summary,
		Groups:      cleanup.Groups,
	}, nil
}
