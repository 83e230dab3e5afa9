package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/job-applier/internal/types"
)

// InsertOutcome appends one application outcome.
func (db *DB) InsertOutcome(ctx context.Context, o types.Outcome) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO application_outcomes
		 (run_id, job_key, company, title, url, platform, status, error, applied_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.RunID, o.JobKey, o.Company, o.Title, o.URL, o.Platform, string(o.Status), o.Error, o.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome for %s: %w", o.JobKey, err)
	}
	return nil
}

// ListOutcomes returns the outcomes of one run in insertion order.
func (db *DB) ListOutcomes(ctx context.Context, runID uuid.UUID) ([]types.Outcome, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, job_key, company, title, url, platform, status, error, applied_at
		 FROM application_outcomes WHERE run_id = $1 ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []types.Outcome
	for rows.Next() {
		var o types.Outcome
		var status string
		if err := rows.Scan(&o.RunID, &o.JobKey, &o.Company, &o.Title, &o.URL, &o.Platform, &status, &o.Error, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.Status = types.Status(status)
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}
	return outcomes, nil
}
