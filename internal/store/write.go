package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one compile run's provenance record.
type Run struct {
	ID           string
	Invoke       string
	ScheduleHash string
	CreatedAt    time.Time
}

// Step is one applied transformation within a run.
type Step struct {
	RunID     string
	Position  int
	Name      string
	Target    string
	HashAfter string
}

// NewRun mints a run record with a time-ordered UUIDv7 identity.
func NewRun(invoke, scheduleHash string) (Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Run{}, fmt.Errorf("mint run id: %w", err)
	}
	return Run{
		ID:           id.String(),
		Invoke:       invoke,
		ScheduleHash: scheduleHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are
// silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, invoke, schedule_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Invoke,
		run.ScheduleHash,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WriteSteps inserts a run's transformation steps in one transaction.
// The run referenced by each step must exist (foreign key constraint).
func (s *Store) WriteSteps(ctx context.Context, steps []Step) error {
	if len(steps) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write steps: %w", err)
	}
	defer tx.Rollback()

	for _, step := range steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transform_steps (run_id, position, name, target, hash_after)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, step.RunID, step.Position, step.Name, step.Target, step.HashAfter)
		if err != nil {
			return fmt.Errorf("write step %d: %w", step.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write steps: %w", err)
	}
	return nil
}
