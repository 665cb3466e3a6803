package ddl

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestScheduleSQL(t *testing.T) {
	assert.Equal(t, "'5 MINUTE'", EveryMinutes(5).SQL())
	assert.Equal(t, "'USING CRON 0 2 * * * UTC'", CronSchedule("0 2 * * *", " UTC ").SQL())
	assert.Equal(t, "'5 MINUTE'", (&Schedule{Cron: "* * * * *", Timezone: "UTC", IntervalMinutes: intPtr(5)}).SQL())
	assert.Equal(t, "", CronSchedule("* * * * *", "").SQL())
}

func TestTaskSQL(t *testing.T) {
	tests := []struct {
		name     string
		builder  *TaskBuilder
		expected []string
	}{
		{
			name: "cron",
			builder: NewTask("nightly").
				WithWarehouse("compute_wh").
				WithSchedule(CronSchedule("0 2 * * *", "UTC")).
				WithSQLStatement("  INSERT INTO t SELECT 1  ").
				WithComment("nightly load").
				WithCreateOrReplace(),
			expected: []string{
				"CREATE OR REPLACE",
				"TASK nightly",
				"WAREHOUSE = compute_wh",
				"SCHEDULE = 'USING CRON 0 2 * * * UTC'",
				"ALLOW_OVERLAPPING_EXECUTION = FALSE",
				"COMMENT = 'nightly load'",
				"AS",
				"INSERT INTO t SELECT 1",
			},
		},
		{
			name: "every option",
			builder: NewTask("child").
				WithCreateIfNotExists().
				WithTags(map[string]string{"a": "b"}).
				WithWarehouseSize(WarehouseXSmall).
				WithSchedule(EveryMinutes(5)).
				WithConfig(`{"k":1}`).
				WithOverlappingExecution(false).
				WithSessionParameters(map[string]string{"TIMEZONE": "UTC"}).
				WithTimeout(60000).
				WithSuspendAfterFailures(3).
				WithErrorIntegration("err_int").
				WithFinalize("cleanup").
				WithAutoRetryAttempts(2).
				WithMinimumTriggerInterval(30).
				WithAfterTasks("root", "other").
				WithWhenCondition("SYSTEM$STREAM_HAS_DATA('s')").
				WithSQLStatement("CALL p()"),
			expected: []string{
				"CREATE",
				"IF NOT EXISTS",
				"TASK child",
				"WITH TAG (a = 'b')",
				"USER_TASK_MANAGED_INITIAL_WAREHOUSE_SIZE = XSMALL",
				"SCHEDULE = '5 MINUTE'",
				`CONFIG = '{"k":1}'`,
				"ALLOW_OVERLAPPING_EXECUTION = FALSE",
				"SESSION_PARAMETERS = (TIMEZONE = 'UTC')",
				"USER_TASK_TIMEOUT_MS = 60000",
				"SUSPEND_TASK_AFTER_NUM_FAILURES = 3",
				"ERROR_INTEGRATION = err_int",
				"FINALIZE = 'cleanup'",
				"TASK_AUTO_RETRY_ATTEMPTS = 2",
				"USER_TASK_MINIMUM_TRIGGER_INTERVAL_IN_SECONDS = 30",
				"AFTER root, other",
				"WHEN SYSTEM$STREAM_HAS_DATA('s')",
				"AS",
				"CALL p()",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tt.builder.Build()
			require.NoError(t, err)
			assert.Equal(t, strings.Join(tt.expected, "\n"), task.SQL())
		})
	}
}

func TestTaskOverlappingExecution(t *testing.T) {
	task, err := NewTask("t").WithSQLStatement("SELECT 1").Build()
	require.NoError(t, err)
	require.NotNil(t, task.AllowOverlappingExecution)
	assert.False(t, *task.AllowOverlappingExecution)
	assert.Equal(t, "CREATE\nTASK t\nALLOW_OVERLAPPING_EXECUTION = FALSE\nAS\nSELECT 1", task.SQL())

	task, err = NewTask("t").WithOverlappingExecution(true).WithSQLStatement("SELECT 1").Build()
	require.NoError(t, err)
	assert.Contains(t, task.SQL(), "ALLOW_OVERLAPPING_EXECUTION = TRUE")
}

func TestTaskBuildCopiesCollections(t *testing.T) {
	tags := map[string]string{"a": "b"}
	builder := NewTask("t").
		WithTags(tags).
		WithSchedule(EveryMinutes(5)).
		WithAfterTasks("root").
		WithSQLStatement("SELECT 1")
	task, err := builder.Build()
	require.NoError(t, err)
	before := task.SQL()

	tags["c"] = "d"
	builder.task.After[0] = "other"
	*builder.task.Schedule.IntervalMinutes = 60
	assert.Equal(t, before, task.SQL())
}

func TestTaskValidation(t *testing.T) {
	_, err := NewTask("t").Build()
	assert.True(t, errors.Is(err, ErrMissingField))

	_, err = NewTask("t").WithTaskType("").WithSQLStatement("SELECT 1").Build()
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestTaskYAMLDefaults(t *testing.T) {
	var task Task
	require.NoError(t, yaml.Unmarshal([]byte("name: t\nsql: SELECT 1\nschedule:\n  interval_minutes: 10\n"), &task))
	assert.Equal(t, TaskSQL, task.TaskType)
	assert.Nil(t, task.AllowOverlappingExecution)
	assert.Equal(t, "CREATE\nTASK t\nSCHEDULE = '10 MINUTE'\nAS\nSELECT 1", task.SQL())
}
