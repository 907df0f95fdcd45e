package db

import (
	"context"
	"database/sql"

	"scribe/internal/errors"
	"scribe/internal/policy"
)

// GetPolicy returns the retention policy for a library, or nil if none has
// been saved yet.
func GetPolicy(ctx context.Context, db *sql.DB, libraryNorm string) (*policy.RetentionPolicy, error) {
	query := `
		SELECT library_norm, enabled, keep_latest, age_threshold_days,
			schedule, last_run_at, created_at, updated_at
		FROM retention_policies
		WHERE library_norm = ?
	`

	var (
		p          policy.RetentionPolicy
		enabled    int
		keepLatest int
		lastRunAt  sql.NullInt64
	)
	err := db.QueryRowContext(ctx, query, libraryNorm).Scan(
		&p.Library, &enabled, &keepLatest, &p.AgeThresholdDays,
		&p.Schedule, &lastRunAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	p.Enabled = enabled != 0
	p.KeepLatest = keepLatest != 0
	if lastRunAt.Valid {
		p.LastRunAt = &lastRunAt.Int64
	}

	return &p, nil
}

// ListEnabledPolicies returns every enabled retention policy. The scheduler
// uses this to register one cron entry per library.
func ListEnabledPolicies(ctx context.Context, db *sql.DB) ([]policy.RetentionPolicy, error) {
	query := `
		SELECT library_norm, enabled, keep_latest, age_threshold_days,
			schedule, last_run_at, created_at, updated_at
		FROM retention_policies
		WHERE enabled = 1
		ORDER BY library_norm
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var policies []policy.RetentionPolicy
	for rows.Next() {
		var (
			p          policy.RetentionPolicy
			enabled    int
			keepLatest int
			lastRunAt  sql.NullInt64
		)
		if err := rows.Scan(
			&p.Library, &enabled, &keepLatest, &p.AgeThresholdDays,
			&p.Schedule, &lastRunAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, errors.NewInternal(err)
		}
		p.Enabled = enabled != 0
		p.KeepLatest = keepLatest != 0
		if lastRunAt.Valid {
			p.LastRunAt = &lastRunAt.Int64
		}
		policies = append(policies, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return policies, nil
}

// UpsertPolicy creates or replaces the single retention policy of a library.
func UpsertPolicy(ctx context.Context, db *sql.DB, p *policy.RetentionPolicy, now int64) error {
	query := `
		INSERT INTO retention_policies (
			library_norm, enabled, keep_latest, age_threshold_days,
			schedule, last_run_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(library_norm) DO UPDATE SET
			enabled = excluded.enabled,
			keep_latest = excluded.keep_latest,
			age_threshold_days = excluded.age_threshold_days,
			schedule = excluded.schedule,
			updated_at = excluded.updated_at
	`

	var lastRunAt sql.NullInt64
	if p.LastRunAt != nil {
		lastRunAt = sql.NullInt64{Int64: *p.LastRunAt, Valid: true}
	}

	_, err := db.ExecContext(ctx, query,
		p.Library, boolToInt(p.Enabled), boolToInt(p.KeepLatest), p.AgeThresholdDays,
		p.Schedule, lastRunAt, now, now,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SetPolicyLastRun records a completed cleanup run.
func SetPolicyLastRun(ctx context.Context, db *sql.DB, libraryNorm string, at int64) error {
	result, err := db.ExecContext(ctx,
		"UPDATE retention_policies SET last_run_at = ?, updated_at = ? WHERE library_norm = ?",
		at, at, libraryNorm)
	if err != nil {
		return errors.NewInternal(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if affected == 0 {
		return errors.NewNotFound("retention policy for " + libraryNorm)
	}
	return nil
}
