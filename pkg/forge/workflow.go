package forge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/snowforge/snowforge/pkg/ddl"
	"github.com/snowforge/snowforge/pkg/logger"
)

// Action names what a workflow step does.
type Action string

const (
	ActionCreateTable      Action = "create_table"
	ActionCreateStage      Action = "create_stage"
	ActionCreateFileFormat Action = "create_file_format"
	ActionCreateStream     Action = "create_stream"
	ActionCreateTask       Action = "create_task"
	ActionPutFile          Action = "put_file"
	ActionCopyInto         Action = "copy_into"
	ActionExecuteSQL       Action = "execute_sql"
)

// ActionFor returns the action that runs stmt.
func ActionFor(stmt ddl.Statement) Action {
	switch stmt.Kind() {
	case ddl.KindTable:
		return ActionCreateTable
	case ddl.KindStage:
		return ActionCreateStage
	case ddl.KindFileFormat:
		return ActionCreateFileFormat
	case ddl.KindStream:
		return ActionCreateStream
	case ddl.KindTask:
		return ActionCreateTask
	case ddl.KindPut:
		return ActionPutFile
	case ddl.KindCopyInto:
		return ActionCopyInto
	}
	return ActionExecuteSQL
}

// Step is a single statement of a workflow.
type Step struct {
	Action    Action
	Statement ddl.Statement
}

// Status of a workflow run.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusDryRun    Status = "dry_run"
)

// StepResult describes one executed (or, for dry runs, rendered) step.
type StepResult struct {
	Position int           `json:"position"`
	Action   Action        `json:"action"`
	Kind     string        `json:"kind"`
	Object   string        `json:"object"`
	SQL      string        `json:"sql"`
	Rows     int           `json:"rows"`
	Duration time.Duration `json:"duration_ns"`
}

// Result is the outcome of Workflow.Execute.
type Result struct {
	RunID      string       `json:"run_id"`
	Workflow   string       `json:"workflow"`
	SHA256     string       `json:"sha256,omitempty"`
	Account    string       `json:"account,omitempty"`
	User       string       `json:"user,omitempty"`
	Status     Status       `json:"status"`
	DryRun     bool         `json:"dry_run"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Steps      []StepResult `json:"steps"`
	Error      string       `json:"error,omitempty"`
}

// Recorder persists workflow results, e.g. in the run ledger. runErr is the
// error Execute returns, nil on success.
type Recorder interface {
	Record(ctx context.Context, result *Result, runErr error) error
}

// Auditor receives one call per statement and one per workflow run.
type Auditor interface {
	Statement(result *Result, step StepResult, err error)
	Workflow(result *Result, err error)
}

// Workflow is an ordered list of steps executed in one transaction.
type Workflow struct {
	forge    *Forge
	name     string
	checksum string
	dryRun   bool
	steps    []Step
}

// Workflow starts an empty workflow on f.
func (f *Forge) Workflow() *Workflow {
	return &Workflow{forge: f, name: "adhoc"}
}

// WithName names the workflow in logs, ledger and audit records.
func (w *Workflow) WithName(name string) *Workflow {
	w.name = name
	return w
}

// WithSource records the SHA-256 of the workflow definition.
func (w *Workflow) WithSource(source []byte) *Workflow {
	sum := sha256.Sum256(source)
	w.checksum = hex.EncodeToString(sum[:])
	return w
}

// WithDryRun renders and validates every step without connecting.
func (w *Workflow) WithDryRun(dryRun bool) *Workflow {
	w.dryRun = dryRun
	return w
}

// Add appends stmt with the action matching its kind.
func (w *Workflow) Add(stmt ddl.Statement) *Workflow {
	w.steps = append(w.steps, Step{Action: ActionFor(stmt), Statement: stmt})
	return w
}

func (w *Workflow) CreateTable(table *ddl.Table) *Workflow { return w.Add(table) }
func (w *Workflow) CreateStage(stage *ddl.Stage) *Workflow { return w.Add(stage) }
func (w *Workflow) CreateFileFormat(ff *ddl.FileFormat) *Workflow {
	return w.Add(ff)
}
func (w *Workflow) CreateStream(stream *ddl.Stream) *Workflow { return w.Add(stream) }
func (w *Workflow) CreateTask(task *ddl.Task) *Workflow       { return w.Add(task) }
func (w *Workflow) PutFile(put *ddl.Put) *Workflow            { return w.Add(put) }
func (w *Workflow) CopyInto(c *ddl.CopyInto) *Workflow        { return w.Add(c) }

// ExecuteSQL appends a raw statement.
func (w *Workflow) ExecuteSQL(query string) *Workflow {
	return w.Add(&ddl.RawSQL{Text: query})
}

// Steps returns a copy of the steps in execution order.
func (w *Workflow) Steps() []Step {
	return append([]Step(nil), w.steps...)
}

// Validate checks every step and reports all failures.
func (w *Workflow) Validate() error {
	var result *multierror.Error
	for i, step := range w.steps {
		if err := checkLocal(step.Statement); err != nil {
			result = multierror.Append(result, fmt.Errorf("step %d (%s %s): %w", i+1, step.Action, step.Statement.ObjectName(), err))
		}
	}
	return result.ErrorOrNil()
}

// Execute runs every step, in order, in one transaction. The first failing
// step rolls back all of them. A dry run validates and renders the steps
// without touching the connection.
func (w *Workflow) Execute(ctx context.Context) (*Result, error) {
	f := w.forge
	result := &Result{
		RunID:     uuid.New().String(),
		Workflow:  w.name,
		SHA256:    w.checksum,
		Account:   f.account,
		User:      f.user,
		Status:    StatusPending,
		DryRun:    w.dryRun,
		StartedAt: f.clock.Now(),
	}
	log := f.log.WithField("workflow", w.name).WithField("run", result.RunID)

	err := w.Validate()
	if err == nil && w.dryRun {
		result.Steps = w.render()
		for _, step := range result.Steps {
			log.Infof("[dry run] step %d: %s %s", step.Position, step.Action, step.Object)
		}
	} else if err == nil {
		err = f.Transaction(ctx, func(ctx context.Context, tx Querier) error {
			steps, err := w.run(ctx, tx, result, log)
			result.Steps = steps
			return err
		})
	}

	result.FinishedAt = f.clock.Now()
	switch {
	case err != nil:
		result.Status = StatusFailed
		result.Error = err.Error()
		log.WithError(err).Error("workflow failed")
	case w.dryRun:
		result.Status = StatusDryRun
	default:
		result.Status = StatusSucceeded
		log.Infof("workflow completed: %d steps", len(result.Steps))
	}

	if f.auditor != nil {
		f.auditor.Workflow(result, err)
	}
	if f.recorder != nil {
		if recErr := f.recorder.Record(ctx, result, err); recErr != nil {
			log.WithError(recErr).Warn("failed to record workflow run")
		}
	}
	return result, err
}

func (w *Workflow) render() []StepResult {
	steps := make([]StepResult, len(w.steps))
	for i, step := range w.steps {
		steps[i] = StepResult{
			Position: i + 1,
			Action:   step.Action,
			Kind:     step.Statement.Kind().String(),
			Object:   step.Statement.ObjectName(),
			SQL:      step.Statement.SQL(),
		}
	}
	return steps
}

// run executes the rendered steps on tx. Completed steps are returned even
// when a later one fails.
func (w *Workflow) run(ctx context.Context, tx Querier, result *Result, log logger.Log) ([]StepResult, error) {
	f := w.forge
	steps := w.render()
	for i := range steps {
		step := &steps[i]
		log.WithField("step", step.Position).Infof("Executing workflow step: %s", step.Action)
		log.Debug(describe(w.steps[i].Statement))

		start := f.clock.Now()
		rows, err := f.query(ctx, tx, step.SQL)
		step.Duration = f.clock.Since(start)
		step.Rows = len(rows)
		if f.auditor != nil {
			f.auditor.Statement(result, *step, err)
		}
		if err != nil {
			return steps[:i], fmt.Errorf("step %d (%s %s): %w", step.Position, step.Action, step.Object, err)
		}
	}
	return steps, nil
}
