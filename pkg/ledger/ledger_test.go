package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snowforge/snowforge/pkg/forge"
)

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 db,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)
	return NewGormStore(gormDB), mock
}

var runID = uuid.MustParse("6f1c3b7e-2a44-4c1d-9a8e-0b5d7f3e9c21")

func TestCreateRun(t *testing.T) {
	store, mock := newMockStore(t)
	started := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO snowforge_runs`).
		WithArgs(runID.String(), "orders", "abc", "pending", false, "acct", "loader",
			started, sqlmock.AnyArg(), 0, "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.CreateRun(context.Background(), &Run{
		ID: runID, Workflow: "orders", SHA256: "abc", Status: "pending",
		Account: "acct", User: "loader", StartedAt: started,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFinishRunNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE snowforge_runs`).
		WithArgs("failed", sqlmock.AnyArg(), 2, "boom", runID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.FinishRun(context.Background(), runID, "failed", time.Now(), 2, "boom")
	assert.ErrorIs(t, err, ErrRunNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRun(t *testing.T) {
	store, mock := newMockStore(t)
	started := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	finished := started.Add(time.Minute)

	columns := []string{"id", "workflow", "sha256", "status", "dry_run", "account", "username",
		"started_at", "finished_at", "steps", "error"}
	mock.ExpectQuery(`SELECT .* FROM snowforge_runs\s+WHERE id = `).
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(runID.String(), "orders", "abc", "succeeded", false, "acct", "loader",
				started, finished, 3, ""))

	run, err := store.GetRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, "succeeded", run.Status)
	assert.Equal(t, "loader", run.User)
	assert.Equal(t, 3, run.Steps)
	require.NotNil(t, run.FinishedAt)
	assert.True(t, finished.Equal(*run.FinishedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRunNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM snowforge_runs`).
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetRun(context.Background(), runID)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRuns(t *testing.T) {
	store, mock := newMockStore(t)

	other := uuid.New()
	mock.ExpectQuery(`SELECT .* FROM snowforge_runs\s+ORDER BY started_at DESC\s+LIMIT`).
		WithArgs(20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workflow", "status"}).
			AddRow(runID.String(), "orders", "succeeded").
			AddRow(other.String(), "events", "failed"))

	runs, err := store.ListRuns(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, other, runs[1].ID)
	assert.Equal(t, "failed", runs[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSteps(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .* FROM snowforge_run_steps`).
		WithArgs(runID.String()).
		WillReturnRows(sqlmock.NewRows([]string{"run_id", "position", "action", "kind", "object", "statement", "rows", "duration_ms"}).
			AddRow(runID.String(), 1, "create_table", "table", "orders", "CREATE TABLE orders (id NUMBER)", 1, 12))

	steps, err := store.ListSteps(context.Background(), runID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "CREATE TABLE orders (id NUMBER)", steps[0].SQL)
	assert.Equal(t, int64(12), steps[0].DurationMS)
}

func TestRecorder(t *testing.T) {
	store, mock := newMockStore(t)
	started := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

	result := &forge.Result{
		RunID:      runID.String(),
		Workflow:   "orders",
		SHA256:     "abc",
		Status:     forge.StatusSucceeded,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
		Steps: []forge.StepResult{
			{Position: 1, Action: forge.ActionCreateTable, Kind: "table", Object: "orders", SQL: "CREATE TABLE orders (id NUMBER)", Duration: 40 * time.Millisecond},
			{Position: 2, Action: forge.ActionExecuteSQL, Kind: "sql", Object: "sql", SQL: "SELECT 1", Rows: 1},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO snowforge_runs`).
		WithArgs(runID.String(), "orders", "abc", "pending", false, "", "",
			started, sqlmock.AnyArg(), 0, "").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO snowforge_run_steps`).
		WithArgs(runID.String(), 1, "create_table", "table", "orders", "CREATE TABLE orders (id NUMBER)", 0, int64(40)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO snowforge_run_steps`).
		WithArgs(runID.String(), 2, "execute_sql", "sql", "sql", "SELECT 1", 1, int64(0)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE snowforge_runs`).
		WithArgs("succeeded", started.Add(time.Second), 2, "", runID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewRecorder(store).Record(context.Background(), result, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO snowforge_runs`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := NewRecorder(store).Record(context.Background(), &forge.Result{
		RunID:  runID.String(),
		Status: forge.StatusFailed,
	}, errors.New("step 1 failed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorderRejectsInvalidRunID(t *testing.T) {
	store, _ := newMockStore(t)
	err := NewRecorder(store).Record(context.Background(), &forge.Result{RunID: "nope"}, nil)
	assert.Error(t, err)
}
