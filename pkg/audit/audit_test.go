package audit

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowforge/snowforge/pkg/forge"
)

func newTestLogger(buf *bytes.Buffer) *Logger {
	l := NewLogger()
	l.hostname = "builder"
	l.pid = 42
	l.SetWriter(buf)
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC))
	l.SetClock(mock)
	return l
}

func enableAudit(t *testing.T) {
	t.Helper()
	original := IsEnabled()
	SetEnabled(true)
	t.Cleanup(func() { SetEnabled(original) })
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Log(StatementEvent{
		RunID:    "r1",
		Workflow: "orders",
		Position: 2,
		Action:   "create_table",
		Kind:     "table",
		Object:   "orders",
		Success:  true,
	})

	// facility 16 * 8 + severity 6
	expected := `<134>1 2026-10-14T09:30:00.000Z builder snowforge 42 statement ` +
		`[action@32473 operation="create_table" result="success"]` +
		`[run@32473 id="r1" workflow="orders"]` +
		`[subject@32473 kind="table" object="orders" position="2"] ` +
		"step 2 of orders: create_table orders\n"
	assert.Equal(t, expected, buf.String())
}

func TestLoggerFormatWithoutHostname(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	l.hostname = ""

	line := l.Format(WorkflowEvent{Workflow: "orders", Operation: OperationPlan, Success: true})
	assert.Contains(t, line, "2026-10-14T09:30:00.000Z - snowforge 42 workflow")
}

func TestWorkflowEvent(t *testing.T) {
	tests := []struct {
		name    string
		event   WorkflowEvent
		wantMsg string
		wantSev Severity
	}{
		{
			name:    "applied",
			event:   WorkflowEvent{Workflow: "orders", User: "loader", Operation: OperationApply, Steps: 3, Success: true},
			wantMsg: "loader applied workflow orders (3 statements)",
			wantSev: SeverityInfo,
		},
		{
			name:    "planned without user",
			event:   WorkflowEvent{Workflow: "orders", Operation: OperationPlan, Steps: 1, Success: true},
			wantMsg: "snowforge planned workflow orders (1 statements)",
			wantSev: SeverityInfo,
		},
		{
			name:    "dry run",
			event:   WorkflowEvent{Workflow: "orders", Operation: OperationDryRun, Success: true},
			wantMsg: "snowforge dry-ran workflow orders (0 statements)",
			wantSev: SeverityInfo,
		},
		{
			name:    "failed",
			event:   WorkflowEvent{Workflow: "orders", User: "loader", Operation: OperationApply, ErrorMessage: "step 2 failed"},
			wantMsg: "loader failed to apply workflow orders: step 2 failed",
			wantSev: SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.event.Message())
			assert.Equal(t, tt.wantSev, tt.event.Severity())
			assert.Equal(t, FacilityLocal0, tt.event.Facility())
			assert.Equal(t, "workflow", tt.event.MessageID())
		})
	}
}

func TestWorkflowEventStructuredData(t *testing.T) {
	sd := WorkflowEvent{
		RunID:     "r1",
		Workflow:  "orders",
		SHA256:    "abc",
		Account:   "acct",
		User:      "loader",
		Operation: OperationApply,
		Steps:     2,
	}.StructuredData()

	assert.Equal(t, map[string]string{"id": "r1", "workflow": "orders", "sha256": "abc", "steps": "2"}, sd[SDIDRun])
	assert.Equal(t, map[string]string{"account": "acct", "user": "loader"}, sd[SDIDSession])
	assert.Equal(t, "failure", sd[SDIDAction]["result"])

	_, ok := WorkflowEvent{Workflow: "orders"}.StructuredData()[SDIDSession]
	assert.False(t, ok)
}

func TestStatementEvent(t *testing.T) {
	event := StatementEvent{Workflow: "orders", Position: 1, Action: "copy_into", Object: "orders", ErrorMessage: "boom"}
	assert.Equal(t, "step 1 of orders failed: copy_into orders: boom", event.Message())
	assert.Equal(t, SeverityWarning, event.Severity())
	assert.Equal(t, "statement", event.MessageID())
}

func TestAuditor(t *testing.T) {
	enableAudit(t)
	var buf bytes.Buffer
	auditor := NewAuditor(newTestLogger(&buf), nil)

	result := &forge.Result{RunID: "r1", Workflow: "orders", Steps: []forge.StepResult{{Position: 1}}}
	auditor.Statement(result, forge.StepResult{Position: 1, Action: forge.ActionCreateTable, Kind: "table", Object: "orders"}, nil)
	auditor.Workflow(result, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], " statement ")
	assert.Contains(t, lines[1], fmt.Sprintf("<%d>1", FacilityLocal0*8+int(SeverityError)))
	assert.Contains(t, lines[1], "snowforge failed to apply workflow orders: boom")
}

func TestAuditorDryRunAndPlan(t *testing.T) {
	enableAudit(t)
	var buf bytes.Buffer
	auditor := NewAuditor(newTestLogger(&buf), nil)

	auditor.Workflow(&forge.Result{Workflow: "orders", DryRun: true}, nil)
	auditor.Plan("orders", "abc", 4, nil)

	out := buf.String()
	assert.Contains(t, out, `operation="dry_run"`)
	assert.Contains(t, out, "snowforge planned workflow orders (4 statements)")
}

func TestAuditToggle(t *testing.T) {
	original := IsEnabled()
	defer SetEnabled(original)

	var buf bytes.Buffer
	auditor := NewAuditor(newTestLogger(&buf), nil)

	SetEnabled(false)
	assert.False(t, IsEnabled())
	auditor.Plan("orders", "", 0, nil)
	assert.Empty(t, buf.String())

	SetEnabled(true)
	assert.True(t, IsEnabled())
	auditor.Plan("orders", "", 0, nil)
	assert.NotEmpty(t, buf.String())
}

func TestNewLoggerDefaults(t *testing.T) {
	l := NewLogger()
	assert.Equal(t, "snowforge", l.appName)
	assert.Equal(t, os.Getpid(), l.pid)
}

func TestEscapeSDValue(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"simple", `"simple"`},
		{`with"quote`, `"with\"quote"`},
		{`with\backslash`, `"with\\backslash"`},
		{`with]bracket`, `"with\]bracket"`},
		{`all"special\chars]`, `"all\"special\\chars\]"`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeSDValue(tt.input))
		})
	}
}
