package db

import (
	"context"
	"database/sql"

	"scribe/internal/errors"
)

// StatusCounts maps lifecycle status to active record count.
type StatusCounts map[string]int

// CountByStatus returns active record counts per lifecycle status.
func CountByStatus(ctx context.Context, db *sql.DB, libraryNorm string) (StatusCounts, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM transcripts
		WHERE library_norm = ? AND deleted_at IS NULL
		GROUP BY status`, libraryNorm)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	counts := StatusCounts{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return counts, nil
}

// MonthCount is the number of records created in one calendar month.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// MonthlyGrowth returns per-month creation counts over the most recent
// months, oldest first. Feeds the dashboard growth chart.
func MonthlyGrowth(ctx context.Context, db *sql.DB, libraryNorm string, months int) ([]MonthCount, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', created_at, 'unixepoch') AS month, COUNT(*)
		FROM transcripts
		WHERE library_norm = ? AND deleted_at IS NULL
		GROUP BY month
		ORDER BY month DESC
		LIMIT ?`, libraryNorm, months)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var counts []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, errors.NewInternal(err)
		}
		counts = append(counts, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	// reverse to oldest-first for charting
	for i, j := 0, len(counts)-1; i < j; i, j = i+1, j-1 {
		counts[i], counts[j] = counts[j], counts[i]
	}

	return counts, nil
}
