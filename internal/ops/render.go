package ops

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"scribe/internal/dedupe"
	"scribe/internal/errors"
)

// renderCSV renders the report as a flat table: one row per duplicate group
// plus a header row.
func renderCSV(report *ReportOutput) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"title", "checksum", "version_count", "wasted_bytes",
		"oldest", "newest", "priority", "recommendations",
	}
	if err := w.Write(header); err != nil {
		return nil, errors.NewExportFailed("csv", err)
	}

	for _, g := range report.Summary.Groups {
		row := []string{
			g.Title,
			g.Checksum,
			fmt.Sprintf("%d", g.VersionCount),
			fmt.Sprintf("%d", g.WastedBytes),
			formatStamp(g.OldestCreatedAt),
			formatStamp(g.NewestCreatedAt),
			string(g.Priority),
			strings.Join(g.Recommendations, "; "),
		}
		if err := w.Write(row); err != nil {
			return nil, errors.NewExportFailed("csv", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.NewExportFailed("csv", err)
	}
	return buf.Bytes(), nil
}

// renderJSON renders the full nested report: summary object plus the
// duplicate_groups array with per-version detail.
func renderJSON(report *ReportOutput) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, errors.NewExportFailed("json", err)
	}
	return append(data, '\n'), nil
}

// renderMarkdown renders a human-readable report.
func renderMarkdown(report *ReportOutput) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Duplicate report: %s\n\n", report.Library)
	fmt.Fprintf(&b, "Generated %s\n\n", formatStamp(report.GeneratedAt))

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "- Duplicate groups: %d\n", report.Summary.GroupCount)
	fmt.Fprintf(&b, "- Deletable copies: %d\n", report.Summary.DeletableCount)
	fmt.Fprintf(&b, "- Reclaimable space: ~%s\n", dedupe.FormatBytes(report.Summary.ReclaimableBytes))
	fmt.Fprintf(&b, "- Policy: keep_latest=%v, age_threshold_days=%d\n\n",
		report.Policy.KeepLatest, report.Policy.AgeThresholdDays)

	if report.Summary.GroupCount == 0 {
		b.WriteString("No duplicate groups found. Nothing to do.\n")
		return []byte(b.String())
	}

	b.WriteString("## Groups\n\n")
	b.WriteString("| Title | Versions | Wasted | Oldest | Newest | Priority |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, g := range report.Summary.Groups {
		fmt.Fprintf(&b, "| %s | %d | ~%s | %s | %s | %s |\n",
			escapeMarkdownCell(g.Title), g.VersionCount, dedupe.FormatBytes(g.WastedBytes),
			formatStamp(g.OldestCreatedAt), formatStamp(g.NewestCreatedAt), g.Priority)
	}
	b.WriteString("\n")

	for i, g := range report.Groups {
		fmt.Fprintf(&b, "### %d. %s (`%s`)\n\n", i+1, escapeMarkdownCell(g.Title), shortChecksum(g.Checksum))
		for _, m := range g.Members {
			marker := "keep"
			if m.WillBeDeleted {
				marker = "delete"
			}
			fmt.Fprintf(&b, "- [%s] %s — created %s, ~%s (%s)\n",
				marker, m.ID, formatStamp(m.CreatedAt), dedupe.FormatBytes(m.SizeBytes), m.Reason)
		}
		if gr := findGroupReport(report.Summary, g.Checksum); gr != nil {
			for _, rec := range gr.Recommendations {
				fmt.Fprintf(&b, "  - %s\n", rec)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("Sizes are approximate (character count times a constant factor), " +
		"kept consistent with historical reports rather than exact storage bytes.\n")

	return []byte(b.String())
}

// archiveReadme describes the bundle contents.
func archiveReadme(report *ReportOutput) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "Duplicate report for library %q, generated %s.\n\n",
		report.Library, formatStamp(report.GeneratedAt))
	b.WriteString("Contents:\n")
	b.WriteString("- report.csv      one row per duplicate group\n")
	b.WriteString("- report.json     full nested report (summary + groups + versions)\n")
	b.WriteString("- report.md       human-readable report\n\n")
	b.WriteString("All sizes are approximations derived from transcript character counts.\n")
	return []byte(b.String())
}

func findGroupReport(summary dedupe.Summary, checksum string) *dedupe.GroupReport {
	for i := range summary.Groups {
		if summary.Groups[i].Checksum == checksum {
			return &summary.Groups[i]
		}
	}
	return nil
}

func formatStamp(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(time.RFC3339)
}

func shortChecksum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}

func escapeMarkdownCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
