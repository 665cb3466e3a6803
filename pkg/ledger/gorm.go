package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const runColumns = `id, workflow, sha256, status, dry_run, account, username, started_at, finished_at, steps, error`

// GormStore is the PostgreSQL Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateRun(ctx context.Context, run *Run) error {
	err := s.db.WithContext(ctx).Exec(`
		INSERT INTO snowforge_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID.String(), run.Workflow, run.SHA256, run.Status, run.DryRun, run.Account, run.User,
		run.StartedAt, run.FinishedAt, run.Steps, run.Error).Error
	if err != nil {
		return fmt.Errorf("failed to create run %s: %w", run.ID, err)
	}
	return nil
}

func (s *GormStore) FinishRun(ctx context.Context, id uuid.UUID, status string, finishedAt time.Time, steps int, errMsg string) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE snowforge_runs
		SET status = ?, finished_at = ?, steps = ?, error = ?
		WHERE id = ?
	`, status, finishedAt, steps, errMsg, id.String())
	if result.Error != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (s *GormStore) AddStep(ctx context.Context, step *RunStep) error {
	err := s.db.WithContext(ctx).Exec(`
		INSERT INTO snowforge_run_steps (run_id, position, action, kind, object, statement, rows, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, step.RunID.String(), step.Position, step.Action, step.Kind, step.Object, step.SQL, step.Rows, step.DurationMS).Error
	if err != nil {
		return fmt.Errorf("failed to add step %d of run %s: %w", step.Position, step.RunID, err)
	}
	return nil
}

func (s *GormStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var runs []Run
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+runColumns+`
		FROM snowforge_runs
		WHERE id = ?
	`, id.String()).Scan(&runs).Error
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return &runs[0], nil
}

func (s *GormStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	runs := []Run{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT `+runColumns+`
		FROM snowforge_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit).Scan(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (s *GormStore) ListSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error) {
	steps := []RunStep{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT run_id, position, action, kind, object, statement, rows, duration_ms
		FROM snowforge_run_steps
		WHERE run_id = ?
		ORDER BY position
	`, runID.String()).Scan(&steps).Error
	if err != nil {
		return nil, err
	}
	return steps, nil
}

var _ Store = (*GormStore)(nil)
