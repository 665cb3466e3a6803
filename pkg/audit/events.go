package audit

import (
	"fmt"
	"strconv"
)

// Workflow operations
const (
	OperationPlan   = "plan"
	OperationApply  = "apply"
	OperationDryRun = "dry_run"
)

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// WorkflowEvent is emitted once per planned or executed workflow.
type WorkflowEvent struct {
	RunID        string
	Workflow     string
	SHA256       string
	Account      string
	User         string
	Operation    string
	Steps        int
	Success      bool
	ErrorMessage string
}

func (e WorkflowEvent) MessageID() string {
	return "workflow"
}

func (e WorkflowEvent) Message() string {
	var verb string
	switch e.Operation {
	case OperationPlan:
		verb = "planned"
	case OperationDryRun:
		verb = "dry-ran"
	default:
		verb = "applied"
	}
	if e.Success {
		return fmt.Sprintf("%s %s workflow %s (%d statements)", e.actor(), verb, e.Workflow, e.Steps)
	}
	msg := fmt.Sprintf("%s failed to %s workflow %s", e.actor(), e.Operation, e.Workflow)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e WorkflowEvent) actor() string {
	if e.User == "" {
		return "snowforge"
	}
	return e.User
}

func (e WorkflowEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityError
}

func (e WorkflowEvent) Facility() int {
	return FacilityLocal0
}

func (e WorkflowEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDRun: {
			"workflow": e.Workflow,
			"steps":    strconv.Itoa(e.Steps),
		},
		SDIDAction: {
			"operation": e.Operation,
			"result":    result(e.Success),
		},
	}
	if e.RunID != "" {
		sd[SDIDRun]["id"] = e.RunID
	}
	if e.SHA256 != "" {
		sd[SDIDRun]["sha256"] = e.SHA256
	}
	if e.Account != "" || e.User != "" {
		sd[SDIDSession] = map[string]string{
			"account": e.Account,
			"user":    e.User,
		}
	}
	return sd
}

// StatementEvent is emitted for each statement sent to Snowflake.
type StatementEvent struct {
	RunID        string
	Workflow     string
	Position     int
	Action       string
	Kind         string
	Object       string
	Success      bool
	ErrorMessage string
}

func (e StatementEvent) MessageID() string {
	return "statement"
}

func (e StatementEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("step %d of %s: %s %s", e.Position, e.Workflow, e.Action, e.Object)
	}
	msg := fmt.Sprintf("step %d of %s failed: %s %s", e.Position, e.Workflow, e.Action, e.Object)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e StatementEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e StatementEvent) Facility() int {
	return FacilityLocal0
}

func (e StatementEvent) StructuredData() map[string]map[string]string {
	return map[string]map[string]string{
		SDIDRun: {
			"id":       e.RunID,
			"workflow": e.Workflow,
		},
		SDIDSubject: {
			"kind":     e.Kind,
			"object":   e.Object,
			"position": strconv.Itoa(e.Position),
		},
		SDIDAction: {
			"operation": e.Action,
			"result":    result(e.Success),
		},
	}
}
