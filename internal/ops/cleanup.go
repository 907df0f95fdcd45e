package ops

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scribe/internal/db"
	"scribe/internal/dedupe"
	"scribe/internal/event"
	"scribe/internal/policy"
	"scribe/internal/transcript"
)

// CleanupInput contains parameters for the cleanup operations.
type CleanupInput struct {
	Library string
	// Now pins the evaluation clock; zero means time.Now(). Tests and
	// report exports use it for reproducible classification.
	Now time.Time
}

// ClassifiedMemberView is one labeled group member in API/UI shape.
type ClassifiedMemberView struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	CreatedAt     int64         `json:"created_at"`
	Protected     bool          `json:"protected"`
	SizeBytes     int           `json:"size_bytes"`
	WillBeDeleted bool          `json:"will_be_deleted"`
	Reason        dedupe.Reason `json:"reason"`
}

// ClassifiedGroupView is one classified group in API/UI shape.
type ClassifiedGroupView struct {
	Checksum string                 `json:"checksum"`
	Title    string                 `json:"title"`
	Count    int                    `json:"count"`
	Members  []ClassifiedMemberView `json:"members"`
}

// CleanupOutput contains the result of a cleanup preview or apply.
type CleanupOutput struct {
	Library string                 `json:"library"`
	DryRun  bool                   `json:"dry_run"`
	Policy  policy.RetentionPolicy `json:"policy"`
	Summary dedupe.Summary         `json:"summary"`
	Groups  []ClassifiedGroupView  `json:"groups"`
	Deleted int                    `json:"deleted"`
	Message string                 `json:"message"`
}

// CleanupPreview classifies every duplicate group under the library's
// retention policy without touching anything. A library with no saved policy
// previews against the defaults.
func CleanupPreview(ctx context.Context, database *sql.DB, input CleanupInput) (*CleanupOutput, error) {
	out, _, err := classifyLibrary(ctx, database, input)
	if err != nil {
		return nil, err
	}
	out.DryRun = true
	if out.Summary.DeletableCount == 0 {
		out.Message = "Nothing to clean up"
	} else {
		out.Message = fmt.Sprintf("%d duplicate copies eligible for deletion (%s reclaimable)",
			out.Summary.DeletableCount, dedupe.FormatBytes(out.Summary.ReclaimableBytes))
	}
	return out, nil
}

// CleanupApply classifies and then deletes the deletable members in one
// batch. The batch either applies or fails as a whole; on failure nothing is
// reported deleted. Deleting zero records is a valid outcome.
func CleanupApply(ctx context.Context, database *sql.DB, bus *event.Bus, input CleanupInput) (*CleanupOutput, error) {
	out, classified, err := classifyLibrary(ctx, database, input)
	if err != nil {
		return nil, err
	}

	ids := dedupe.DeletableIDs(classified)
	if len(ids) > 0 {
		deleted, err := db.BulkSoftDeleteByIDs(ctx, database, ids)
		if err != nil {
			return nil, err
		}
		out.Deleted = deleted
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	// Record the run even when nothing was deletable; the schedule view
	// shows when cleanup last looked.
	if saved, err := db.GetPolicy(ctx, database, out.Library); err != nil {
		return nil, err
	} else if saved != nil {
		if err := db.SetPolicyLastRun(ctx, database, out.Library, now.Unix()); err != nil {
			return nil, err
		}
	}

	detail := fmt.Sprintf("reclaimed ~%s across %d groups",
		dedupe.FormatBytes(out.Summary.ReclaimableBytes), out.Summary.GroupCount)
	if err := recordActivity(ctx, database, out.Library, "cleanup", detail, out.Deleted); err != nil {
		return nil, err
	}
	if out.Deleted > 0 {
		publish(bus, event.Change{Op: event.OpCleanup, Library: out.Library, IDs: ids, Count: out.Deleted})
	}

	if out.Deleted == 0 {
		out.Message = "Nothing to clean up"
	} else {
		out.Message = fmt.Sprintf("Deleted %d duplicate copies (~%s reclaimed)",
			out.Deleted, dedupe.FormatBytes(out.Summary.ReclaimableBytes))
	}

	return out, nil
}

// classifyLibrary loads the snapshot and policy, groups, classifies, and
// builds the summary. Shared by preview, apply, report and export.
func classifyLibrary(ctx context.Context, database *sql.DB, input CleanupInput) (*CleanupOutput, []dedupe.ClassifiedGroup, error) {
	libraryNorm := normalizeLibrary(input.Library)

	pol, err := db.GetPolicy(ctx, database, libraryNorm)
	if err != nil {
		return nil, nil, err
	}
	if pol == nil {
		def := policy.Default(libraryNorm)
		pol = &def
	}
	if err := pol.Validate(); err != nil {
		return nil, nil, err
	}

	records, err := db.ListForDedupe(ctx, database, libraryNorm)
	if err != nil {
		return nil, nil, err
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	snapshot := make([]transcript.Transcript, 0, len(records))
	for _, r := range records {
		snapshot = append(snapshot, *r)
	}

	groups := dedupe.DuplicateGroups(snapshot)
	classified, err := dedupe.ClassifyAll(groups, pol.Rules(), now)
	if err != nil {
		return nil, nil, err
	}

	out := &CleanupOutput{
		Library: libraryNorm,
		Policy:  *pol,
		Summary: dedupe.BuildSummary(classified),
		Groups:  make([]ClassifiedGroupView, 0, len(classified)),
	}
	for _, cg := range classified {
		view := ClassifiedGroupView{
			Checksum: cg.Group.Checksum,
			Title:    cg.Group.Members[0].Title,
			Count:    cg.Group.Count(),
			Members:  make([]ClassifiedMemberView, 0, len(cg.Members)),
		}
		for _, m := range cg.Members {
			view.Members = append(view.Members, ClassifiedMemberView{
				ID:            m.ID,
				Title:         m.Title,
				CreatedAt:     m.CreatedAt,
				Protected:     m.Protected,
				SizeBytes:     m.ApproxBytes(),
				WillBeDeleted: m.WillBeDeleted,
				Reason:        m.Reason,
			})
		}
		out.Groups = append(out.Groups, view)
	}

	return out, classified, nil
}
