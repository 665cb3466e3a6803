package endpoints

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowforge/snowforge/pkg/forge"
)

const ordersWorkflow = `- !stream
  name: orders_stream
  source: orders
- !table
  name: orders
  columns:
    - name: id
      type: NUMBER
- !sql SELECT 1
`

const selects = "- !sql SELECT 1\n- !sql SELECT 2\n"

func TestPlanRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t, offlineEngines(t), nil)

	w := do(srv, "POST", "/workflows/plan", ordersWorkflow, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatusIsPublic(t *testing.T) {
	srv, _ := newTestServer(t, offlineEngines(t), nil)

	w := do(srv, "GET", "/", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestPlan(t *testing.T) {
	srv, token := newTestServer(t, offlineEngines(t), nil)

	w := do(srv, "POST", "/workflows/plan?name=orders", ordersWorkflow, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "orders", body.Workflow)
	assert.Len(t, body.SHA256, 64)
	require.Len(t, body.Statements, 3)

	assert.Equal(t, "table:orders", body.Statements[0].Key)
	assert.Equal(t, forge.ActionCreateTable, body.Statements[0].Action)
	assert.Equal(t, "stream:orders_stream", body.Statements[1].Key)
	assert.Equal(t, []string{"table:orders"}, body.Statements[1].DependsOn)
	assert.Contains(t, body.Statements[1].SQL, "ON TABLE orders")
	assert.Equal(t, 3, body.Statements[2].Position)
	assert.Equal(t, "SELECT 1", body.Statements[2].SQL)
}

func TestPlanErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		code    string
		message string
	}{
		{
			name:    "not yaml",
			body:    "- !table [",
			status:  http.StatusBadRequest,
			code:    codeBadRequest,
			message: "parsing workflow",
		},
		{
			name:    "unknown tag",
			body:    "- !view\n  name: v\n",
			status:  http.StatusBadRequest,
			code:    codeBadRequest,
			message: "unknown statement tag",
		},
		{
			name:    "invalid statement",
			body:    "- !table\n  name: empty\n",
			status:  http.StatusUnprocessableEntity,
			code:    codeInvalid,
			message: "table empty",
		},
		{
			name:    "cycle",
			body:    "- !task\n  name: a\n  sql: SELECT 1\n  after: [b]\n- !task\n  name: b\n  sql: SELECT 1\n  after: [a]\n",
			status:  http.StatusUnprocessableEntity,
			code:    codeInvalid,
			message: "dependency cycle",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, token := newTestServer(t, offlineEngines(t), nil)

			w := do(srv, "POST", "/workflows/plan", tt.body, token)
			assert.Equal(t, tt.status, w.Code)

			var body struct {
				Error errorBody `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Contains(t, body.Error.Message, tt.message)
		})
	}
}

func TestApplyDryRun(t *testing.T) {
	store := newMemoryStore()
	srv, token := newTestServer(t, offlineEngines(t), store)

	w := do(srv, "POST", "/workflows/apply?dry_run=true&name=orders", ordersWorkflow, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result forge.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, forge.StatusDryRun, result.Status)
	assert.True(t, result.DryRun)
	require.Len(t, result.Steps, 3)
	assert.Equal(t, "orders", result.Steps[0].Object)

	run, err := store.GetRun(t.Context(), uuid.MustParse(result.RunID))
	require.NoError(t, err)
	assert.Equal(t, string(forge.StatusDryRun), run.Status)
	assert.Equal(t, 3, run.Steps)
}

func TestApply(t *testing.T) {
	engines, mock := mockEngines(t)
	store := newMemoryStore()
	srv, token := newTestServer(t, engines, store)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT CURRENT_SESSION()")).
		WillReturnRows(sqlmock.NewRows([]string{"CURRENT_SESSION()"}).AddRow("42"))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 2")).WillReturnRows(sqlmock.NewRows([]string{"2"}).AddRow(2))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("SELECT SYSTEM$ABORT_SESSION(?)")).
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	w := do(srv, "POST", "/workflows/apply?name=selects", selects, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())

	var result forge.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, forge.StatusSucceeded, result.Status)
	assert.Equal(t, "selects", result.Workflow)

	id := uuid.MustParse(result.RunID)
	steps, err := store.ListSteps(t.Context(), id)
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "SELECT 2", steps[1].SQL)
}

func TestApplyFailure(t *testing.T) {
	engines, mock := mockEngines(t)
	srv, token := newTestServer(t, engines, nil)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT CURRENT_SESSION()")).
		WillReturnRows(sqlmock.NewRows([]string{"CURRENT_SESSION()"}).AddRow("42"))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1")).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 2")).WillReturnError(errors.New("SQL compilation error"))
	mock.ExpectRollback()
	mock.ExpectExec(regexp.QuoteMeta("SELECT SYSTEM$ABORT_SESSION(?)")).
		WithArgs("42").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	w := do(srv, "POST", "/workflows/apply", selects, token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())

	var body ApplyErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, codeExecution, body.Error.Code)
	assert.Contains(t, body.Error.Message, "SQL compilation error")
	require.NotNil(t, body.Result)
	assert.Equal(t, forge.StatusFailed, body.Result.Status)
	assert.Equal(t, "request", body.Result.Workflow)
}

func TestApplyRejectsBadDryRun(t *testing.T) {
	srv, token := newTestServer(t, offlineEngines(t), nil)

	w := do(srv, "POST", "/workflows/apply?dry_run=maybe", selects, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "dry_run must be a boolean")
}

func TestApplyWrongMethod(t *testing.T) {
	srv, token := newTestServer(t, offlineEngines(t), nil)

	w := do(srv, "GET", "/workflows/apply", "", token)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
