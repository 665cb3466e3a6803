package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/logger"
)

// Recorder writes forge workflow results to a Store. A run and its steps are
// written in one transaction.
type Recorder struct {
	store Store
	log   logger.Log
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, log: logger.NoOp("ledger")}
}

func (r *Recorder) WithLogger(l logger.Log) *Recorder {
	r.log = l
	return r
}

func (r *Recorder) Record(ctx context.Context, result *forge.Result, runErr error) error {
	id, err := uuid.Parse(result.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", result.RunID, err)
	}

	err = r.store.Transaction(ctx, func(tx Store) error {
		run := &Run{
			ID:        id,
			Workflow:  result.Workflow,
			SHA256:    result.SHA256,
			Status:    string(forge.StatusPending),
			DryRun:    result.DryRun,
			Account:   result.Account,
			User:      result.User,
			StartedAt: result.StartedAt,
		}
		if err := tx.CreateRun(ctx, run); err != nil {
			return err
		}
		for _, step := range result.Steps {
			if err := tx.AddStep(ctx, &RunStep{
				RunID:      id,
				Position:   step.Position,
				Action:     string(step.Action),
				Kind:       step.Kind,
				Object:     step.Object,
				SQL:        step.SQL,
				Rows:       step.Rows,
				DurationMS: step.Duration.Milliseconds(),
			}); err != nil {
				return err
			}
		}
		errMsg := result.Error
		if errMsg == "" && runErr != nil {
			errMsg = runErr.Error()
		}
		return tx.FinishRun(ctx, id, string(result.Status), result.FinishedAt, len(result.Steps), errMsg)
	})
	if err != nil {
		return err
	}
	r.log.WithField("run", id).Debugf("recorded %s run of %s with %d steps", result.Status, result.Workflow, len(result.Steps))
	return nil
}

var _ forge.Recorder = (*Recorder)(nil)
