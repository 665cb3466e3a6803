package audit

import (
	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/logger"
)

// Auditor turns forge workflow callbacks into audit events.
type Auditor struct {
	logger *Logger
	store  *Store
	log    logger.Log
}

// NewAuditor writes events to l and, when store is not nil, persists them.
func NewAuditor(l *Logger, store *Store) *Auditor {
	return &Auditor{logger: l, store: store, log: logger.NoOp("audit")}
}

// WithLogger sets where persistence failures are reported.
func (a *Auditor) WithLogger(l logger.Log) *Auditor {
	a.log = l
	return a
}

func (a *Auditor) emit(event Event) {
	if !IsEnabled() {
		return
	}
	a.logger.Log(event)
	if a.store == nil {
		return
	}
	if err := a.store.Save(event); err != nil {
		a.log.WithError(err).Warn("failed to save audit event")
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func (a *Auditor) Statement(result *forge.Result, step forge.StepResult, err error) {
	a.emit(StatementEvent{
		RunID:        result.RunID,
		Workflow:     result.Workflow,
		Position:     step.Position,
		Action:       string(step.Action),
		Kind:         step.Kind,
		Object:       step.Object,
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
}

func (a *Auditor) Workflow(result *forge.Result, err error) {
	operation := OperationApply
	if result.DryRun {
		operation = OperationDryRun
	}
	a.emit(WorkflowEvent{
		RunID:        result.RunID,
		Workflow:     result.Workflow,
		SHA256:       result.SHA256,
		Account:      result.Account,
		User:         result.User,
		Operation:    operation,
		Steps:        len(result.Steps),
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
}

// Plan records that a workflow was planned without being executed.
func (a *Auditor) Plan(workflow, sha256 string, steps int, err error) {
	a.emit(WorkflowEvent{
		Workflow:     workflow,
		SHA256:       sha256,
		Operation:    OperationPlan,
		Steps:        steps,
		Success:      err == nil,
		ErrorMessage: errorMessage(err),
	})
}

var _ forge.Auditor = (*Auditor)(nil)
