package ddl

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

type TaskType string

const (
	TaskSQL             TaskType = "SQL"
	TaskStoredProcedure TaskType = "STORED_PROCEDURE"
	TaskMultiStatement  TaskType = "MULTI_STATEMENT"
	TaskProceduralLogic TaskType = "PROCEDURAL_LOGIC"
)

type WarehouseSize string

const (
	WarehouseXSmall   WarehouseSize = "XSMALL"
	WarehouseSmall    WarehouseSize = "SMALL"
	WarehouseMedium   WarehouseSize = "MEDIUM"
	WarehouseLarge    WarehouseSize = "LARGE"
	WarehouseXLarge   WarehouseSize = "XLARGE"
	WarehouseXXLarge  WarehouseSize = "XXLARGE"
	WarehouseXXXLarge WarehouseSize = "XXXLARGE"
	WarehouseX4Large  WarehouseSize = "X4LARGE"
	WarehouseX5Large  WarehouseSize = "X5LARGE"
	WarehouseX6Large  WarehouseSize = "X6LARGE"
)

// Schedule is either a fixed interval or a cron expression with a time
// zone. The interval wins when both are set.
type Schedule struct {
	Cron            string `yaml:"cron,omitempty" json:"cron,omitempty"`
	Timezone        string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
	IntervalMinutes *int   `yaml:"interval_minutes,omitempty" json:"interval_minutes,omitempty"`
}

func EveryMinutes(minutes int) *Schedule {
	return &Schedule{IntervalMinutes: &minutes}
}

func CronSchedule(expr, timezone string) *Schedule {
	return &Schedule{Cron: expr, Timezone: timezone}
}

func (s *Schedule) clone() *Schedule {
	if s == nil {
		return nil
	}
	c := *s
	if s.IntervalMinutes != nil {
		minutes := *s.IntervalMinutes
		c.IntervalMinutes = &minutes
	}
	return &c
}

func (s *Schedule) SQL() string {
	if s.IntervalMinutes != nil {
		return fmt.Sprintf("'%d MINUTE'", *s.IntervalMinutes)
	}
	if s.Cron != "" && s.Timezone != "" {
		return fmt.Sprintf("'USING CRON %s %s'", s.Cron, strings.TrimSpace(s.Timezone))
	}
	return ""
}

type Task struct {
	Name                       string            `yaml:"name" json:"name"`
	TaskType                   TaskType          `yaml:"task_type,omitempty" json:"task_type,omitempty"`
	Statement                  string            `yaml:"sql" json:"sql"`
	Tags                       map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`
	Warehouse                  string            `yaml:"warehouse,omitempty" json:"warehouse,omitempty"`
	WarehouseSize              WarehouseSize     `yaml:"warehouse_size,omitempty" json:"warehouse_size,omitempty"`
	Schedule                   *Schedule         `yaml:"schedule,omitempty" json:"schedule,omitempty"`
	Config                     string            `yaml:"config,omitempty" json:"config,omitempty"`
	AllowOverlappingExecution  *bool             `yaml:"allow_overlapping_execution,omitempty" json:"allow_overlapping_execution,omitempty"`
	SessionParameters          map[string]string `yaml:"session_parameters,omitempty" json:"session_parameters,omitempty"`
	UserTaskTimeoutMS          *int              `yaml:"user_task_timeout_ms,omitempty" json:"user_task_timeout_ms,omitempty"`
	SuspendAfterNumFailures    *int              `yaml:"suspend_task_after_num_failures,omitempty" json:"suspend_task_after_num_failures,omitempty"`
	ErrorIntegration           string            `yaml:"error_integration,omitempty" json:"error_integration,omitempty"`
	Comment                    string            `yaml:"comment,omitempty" json:"comment,omitempty"`
	Finalize                   string            `yaml:"finalize,omitempty" json:"finalize,omitempty"`
	AutoRetryAttempts          *int              `yaml:"task_auto_retry_attempts,omitempty" json:"task_auto_retry_attempts,omitempty"`
	MinimumTriggerIntervalSecs *int              `yaml:"user_task_minimum_trigger_interval_in_seconds,omitempty" json:"user_task_minimum_trigger_interval_in_seconds,omitempty"`
	After                      []string          `yaml:"after,omitempty" json:"after,omitempty"`
	When                       string            `yaml:"when,omitempty" json:"when,omitempty"`
	OrReplace                  bool              `yaml:"or_replace,omitempty" json:"or_replace,omitempty"`
	IfNotExists                bool              `yaml:"if_not_exists,omitempty" json:"if_not_exists,omitempty"`
}

// UnmarshalYAML defaults the task type to SQL.
func (t *Task) UnmarshalYAML(value *yaml.Node) error {
	type taskAlias Task
	alias := taskAlias{TaskType: TaskSQL}
	if err := value.Decode(&alias); err != nil {
		return err
	}
	*t = Task(alias)
	return nil
}

func (t *Task) Kind() Kind         { return KindTask }
func (t *Task) ObjectName() string { return t.Name }

func (t *Task) Validate() error {
	var result *multierror.Error
	if t.Name == "" {
		result = multierror.Append(result, fmt.Errorf("task: %w", ErrMissingName))
	}
	if t.TaskType == "" {
		result = multierror.Append(result, missing(KindTask, "task type"))
	}
	if t.Statement == "" {
		result = multierror.Append(result, missing(KindTask, "sql statement"))
	}
	return result.ErrorOrNil()
}

// SQL renders one clause per line.
func (t *Task) SQL() string {
	var parts clauses
	if t.OrReplace {
		parts.add("CREATE OR REPLACE")
	} else {
		parts.add("CREATE")
		if t.IfNotExists {
			parts.add("IF NOT EXISTS")
		}
	}
	parts.add("TASK " + t.Name)

	if len(t.Tags) > 0 {
		parts.add("WITH TAG (" + strings.Join(keyValues(t.Tags), ", ") + ")")
	}
	if t.Warehouse != "" {
		parts.add("WAREHOUSE = " + t.Warehouse)
	}
	if t.WarehouseSize != "" {
		parts.add("USER_TASK_MANAGED_INITIAL_WAREHOUSE_SIZE = " + string(t.WarehouseSize))
	}
	if t.Schedule != nil {
		if schedule := t.Schedule.SQL(); schedule != "" {
			parts.add("SCHEDULE = " + schedule)
		}
	}
	if t.Config != "" {
		parts.addf("CONFIG = '%s'", t.Config)
	}
	if t.AllowOverlappingExecution != nil {
		parts.add("ALLOW_OVERLAPPING_EXECUTION = " + FormatBool(*t.AllowOverlappingExecution))
	}
	if len(t.SessionParameters) > 0 {
		parts.add("SESSION_PARAMETERS = (" + strings.Join(keyValues(t.SessionParameters), ", ") + ")")
	}
	if t.UserTaskTimeoutMS != nil {
		parts.addf("USER_TASK_TIMEOUT_MS = %d", *t.UserTaskTimeoutMS)
	}
	if t.SuspendAfterNumFailures != nil {
		parts.addf("SUSPEND_TASK_AFTER_NUM_FAILURES = %d", *t.SuspendAfterNumFailures)
	}
	if t.ErrorIntegration != "" {
		parts.add("ERROR_INTEGRATION = " + t.ErrorIntegration)
	}
	if t.Comment != "" {
		parts.add("COMMENT = " + literal(t.Comment))
	}
	if t.Finalize != "" {
		parts.addf("FINALIZE = '%s'", t.Finalize)
	}
	if t.AutoRetryAttempts != nil {
		parts.addf("TASK_AUTO_RETRY_ATTEMPTS = %d", *t.AutoRetryAttempts)
	}
	if t.MinimumTriggerIntervalSecs != nil {
		parts.addf("USER_TASK_MINIMUM_TRIGGER_INTERVAL_IN_SECONDS = %d", *t.MinimumTriggerIntervalSecs)
	}
	if len(t.After) > 0 {
		parts.add("AFTER " + strings.Join(t.After, ", "))
	}
	if t.When != "" {
		parts.add("WHEN " + t.When)
	}
	parts.add("AS", strings.TrimSpace(t.Statement))
	return parts.join("\n")
}

type TaskBuilder struct {
	task Task
}

// NewTask starts a task of type SQL that does not allow overlapping runs.
func NewTask(name string) *TaskBuilder {
	overlap := false
	return &TaskBuilder{task: Task{Name: name, TaskType: TaskSQL, AllowOverlappingExecution: &overlap}}
}

func (b *TaskBuilder) WithTaskType(taskType TaskType) *TaskBuilder {
	b.task.TaskType = taskType
	return b
}

func (b *TaskBuilder) WithSQLStatement(statement string) *TaskBuilder {
	b.task.Statement = statement
	return b
}

func (b *TaskBuilder) WithTags(tags map[string]string) *TaskBuilder {
	b.task.Tags = tags
	return b
}

func (b *TaskBuilder) WithWarehouse(warehouse string) *TaskBuilder {
	b.task.Warehouse = warehouse
	return b
}

func (b *TaskBuilder) WithWarehouseSize(size WarehouseSize) *TaskBuilder {
	b.task.WarehouseSize = size
	return b
}

func (b *TaskBuilder) WithSchedule(schedule *Schedule) *TaskBuilder {
	b.task.Schedule = schedule
	return b
}

func (b *TaskBuilder) WithConfig(config string) *TaskBuilder {
	b.task.Config = config
	return b
}

func (b *TaskBuilder) WithOverlappingExecution(allow bool) *TaskBuilder {
	b.task.AllowOverlappingExecution = &allow
	return b
}

func (b *TaskBuilder) WithSessionParameters(params map[string]string) *TaskBuilder {
	b.task.SessionParameters = params
	return b
}

func (b *TaskBuilder) WithTimeout(timeoutMS int) *TaskBuilder {
	b.task.UserTaskTimeoutMS = &timeoutMS
	return b
}

func (b *TaskBuilder) WithSuspendAfterFailures(failures int) *TaskBuilder {
	b.task.SuspendAfterNumFailures = &failures
	return b
}

func (b *TaskBuilder) WithErrorIntegration(integration string) *TaskBuilder {
	b.task.ErrorIntegration = integration
	return b
}

func (b *TaskBuilder) WithComment(comment string) *TaskBuilder {
	b.task.Comment = comment
	return b
}

func (b *TaskBuilder) WithFinalize(finalize string) *TaskBuilder {
	b.task.Finalize = finalize
	return b
}

func (b *TaskBuilder) WithAutoRetryAttempts(attempts int) *TaskBuilder {
	b.task.AutoRetryAttempts = &attempts
	return b
}

func (b *TaskBuilder) WithMinimumTriggerInterval(seconds int) *TaskBuilder {
	b.task.MinimumTriggerIntervalSecs = &seconds
	return b
}

func (b *TaskBuilder) WithAfterTasks(tasks ...string) *TaskBuilder {
	b.task.After = tasks
	return b
}

func (b *TaskBuilder) WithWhenCondition(condition string) *TaskBuilder {
	b.task.When = condition
	return b
}

func (b *TaskBuilder) WithCreateOrReplace() *TaskBuilder {
	b.task.OrReplace = true
	return b
}

func (b *TaskBuilder) WithCreateIfNotExists() *TaskBuilder {
	b.task.IfNotExists = true
	return b
}

func (b *TaskBuilder) Build() (*Task, error) {
	t := b.task
	t.Tags = maps.Clone(t.Tags)
	t.SessionParameters = maps.Clone(t.SessionParameters)
	t.After = slices.Clone(t.After)
	t.Schedule = t.Schedule.clone()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
