package store

import (
	"context"
	"fmt"
	"time"
)

// ReadRuns returns runs newest-first. With a non-empty invoke only that
// invocation's runs are returned. Returns an empty slice, not nil, when
// nothing matches.
func (s *Store) ReadRuns(ctx context.Context, invoke string) ([]Run, error) {
	query := `
		SELECT id, invoke, schedule_hash, created_at
		FROM runs
		ORDER BY id DESC
	`
	args := []any{}
	if invoke != "" {
		query = `
			SELECT id, invoke, schedule_hash, created_at
			FROM runs
			WHERE invoke = ?
			ORDER BY id DESC
		`
		args = append(args, invoke)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var created string
		if err := rows.Scan(&run.ID, &run.Invoke, &run.ScheduleHash, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadSteps returns a run's transformation steps in application order.
func (s *Store) ReadSteps(ctx context.Context, runID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, position, name, target, hash_after
		FROM transform_steps
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	steps := []Step{}
	for rows.Next() {
		var step Step
		if err := rows.Scan(&step.RunID, &step.Position, &step.Name, &step.Target, &step.HashAfter); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate steps: %w", err)
	}

	return steps, nil
}
