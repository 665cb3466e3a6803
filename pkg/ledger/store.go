package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("run not found")

// Store abstracts run ledger storage.
type Store interface {
	// Transaction runs fn against a store bound to a single transaction.
	Transaction(ctx context.Context, fn func(Store) error) error

	CreateRun(ctx context.Context, run *Run) error
	FinishRun(ctx context.Context, id uuid.UUID, status string, finishedAt time.Time, steps int, errMsg string) error
	AddStep(ctx context.Context, step *RunStep) error

	// GetRun returns ErrRunNotFound when no run has the id.
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListSteps(ctx context.Context, runID uuid.UUID) ([]RunStep, error)
}
