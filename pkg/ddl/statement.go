package ddl

import (
	"errors"
	"fmt"
)

var (
	ErrMissingName     = errors.New("name must be set")
	ErrMissingField    = errors.New("required field not set")
	ErrNoColumns       = errors.New("table must have at least one column")
	ErrInvalidParallel = errors.New("parallel value must be between 1 and 99")
)

// Statement is a renderable Snowflake statement.
type Statement interface {
	Kind() Kind
	// ObjectName is the name used in logs and for dependency resolution.
	ObjectName() string
	SQL() string
	Validate() error
}

func missing(kind Kind, field string) error {
	return fmt.Errorf("%s: %s: %w", kind, field, ErrMissingField)
}

// RawSQL is a statement passed through verbatim.
type RawSQL struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Text string `yaml:"sql" json:"sql"`
}

func (r *RawSQL) Kind() Kind { return KindSQL }

func (r *RawSQL) ObjectName() string {
	if r.Name == "" {
		return "sql"
	}
	return r.Name
}

func (r *RawSQL) SQL() string { return r.Text }

func (r *RawSQL) Validate() error {
	if r.Text == "" {
		return missing(KindSQL, "sql")
	}
	return nil
}
