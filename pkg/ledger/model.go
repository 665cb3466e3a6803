package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Run is one execution of a workflow.
type Run struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Workflow   string     `gorm:"column:workflow" json:"workflow"`
	SHA256     string     `gorm:"column:sha256" json:"sha256,omitempty"`
	Status     string     `gorm:"column:status" json:"status"`
	DryRun     bool       `gorm:"column:dry_run" json:"dry_run"`
	Account    string     `gorm:"column:account" json:"account,omitempty"`
	User       string     `gorm:"column:username" json:"user,omitempty"`
	StartedAt  time.Time  `gorm:"column:started_at" json:"started_at"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`
	Steps      int        `gorm:"column:steps" json:"steps"`
	Error      string     `gorm:"column:error" json:"error,omitempty"`
}

func (Run) TableName() string {
	return "snowforge_runs"
}

// RunStep is a statement executed as part of a run.
type RunStep struct {
	RunID      uuid.UUID `gorm:"column:run_id;type:uuid;primaryKey" json:"run_id"`
	Position   int       `gorm:"column:position;primaryKey" json:"position"`
	Action     string    `gorm:"column:action" json:"action"`
	Kind       string    `gorm:"column:kind" json:"kind"`
	Object     string    `gorm:"column:object" json:"object"`
	SQL        string    `gorm:"column:statement" json:"sql"`
	Rows       int       `gorm:"column:rows" json:"rows"`
	DurationMS int64     `gorm:"column:duration_ms" json:"duration_ms"`
}

func (RunStep) TableName() string {
	return "snowforge_run_steps"
}
