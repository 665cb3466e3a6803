package ddl

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
)

type TableType string

const (
	TablePermanent TableType = "PERMANENT"
	TableTemporary TableType = "TEMPORARY"
	TableTransient TableType = "TRANSIENT"
	TableVolatile  TableType = "VOLATILE"
)

type ColumnType string

const (
	Number    ColumnType = "NUMBER"
	String    ColumnType = "STRING"
	Boolean   ColumnType = "BOOLEAN"
	Date      ColumnType = "DATE"
	Timestamp ColumnType = "TIMESTAMP"
	Variant   ColumnType = "VARIANT"
	Array     ColumnType = "ARRAY"
	Object    ColumnType = "OBJECT"
	Text      ColumnType = "TEXT"
)

// With returns the parameterized form of the type, e.g. NUMBER(10,2).
func (t ColumnType) With(params ...interface{}) ColumnType {
	if len(params) == 0 {
		return t
	}
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = fmt.Sprint(p)
	}
	return ColumnType(fmt.Sprintf("%s(%s)", t, strings.Join(args, ",")))
}

type Column struct {
	Name       string     `yaml:"name" json:"name"`
	Type       ColumnType `yaml:"type" json:"type"`
	NotNull    bool       `yaml:"not_null,omitempty" json:"not_null,omitempty"`
	Default    string     `yaml:"default,omitempty" json:"default,omitempty"`
	Identity   bool       `yaml:"identity,omitempty" json:"identity,omitempty"`
	PrimaryKey bool       `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	Unique     bool       `yaml:"unique,omitempty" json:"unique,omitempty"`
	References string     `yaml:"references,omitempty" json:"references,omitempty"`
	Comment    string     `yaml:"comment,omitempty" json:"comment,omitempty"`
	Collate    string     `yaml:"collate,omitempty" json:"collate,omitempty"`
}

func (c Column) SQL() string {
	var parts clauses
	parts.add(c.Name, string(c.Type))
	if c.NotNull {
		parts.add("NOT NULL")
	}
	if c.Default != "" {
		parts.add("DEFAULT " + c.Default)
	}
	if c.Identity {
		parts.add("IDENTITY")
	}
	if c.PrimaryKey {
		parts.add("PRIMARY KEY")
	}
	if c.Unique {
		parts.add("UNIQUE")
	}
	if c.References != "" {
		parts.add("REFERENCES " + c.References)
	}
	if c.Comment != "" {
		parts.add("COMMENT " + literal(c.Comment))
	}
	if c.Collate != "" {
		parts.addf("COLLATE '%s'", c.Collate)
	}
	return parts.join(" ")
}

// Policy attaches a row access or aggregation policy to a set of columns.
type Policy struct {
	Name string   `yaml:"name" json:"name"`
	On   []string `yaml:"on" json:"on"`
}

type Table struct {
	Name                       string            `yaml:"name" json:"name"`
	Columns                    []Column          `yaml:"columns" json:"columns"`
	TableType                  TableType         `yaml:"table_type,omitempty" json:"table_type,omitempty"`
	ClusterBy                  []string          `yaml:"cluster_by,omitempty" json:"cluster_by,omitempty"`
	DataRetentionTimeInDays    *int              `yaml:"data_retention_time_in_days,omitempty" json:"data_retention_time_in_days,omitempty"`
	MaxDataExtensionTimeInDays *int              `yaml:"max_data_extension_time_in_days,omitempty" json:"max_data_extension_time_in_days,omitempty"`
	ChangeTracking             *bool             `yaml:"change_tracking,omitempty" json:"change_tracking,omitempty"`
	DefaultDDLCollation        string            `yaml:"default_ddl_collation,omitempty" json:"default_ddl_collation,omitempty"`
	CopyGrants                 bool              `yaml:"copy_grants,omitempty" json:"copy_grants,omitempty"`
	Comment                    string            `yaml:"comment,omitempty" json:"comment,omitempty"`
	RowAccessPolicy            *Policy           `yaml:"row_access_policy,omitempty" json:"row_access_policy,omitempty"`
	AggregationPolicy          *Policy           `yaml:"aggregation_policy,omitempty" json:"aggregation_policy,omitempty"`
	Tags                       map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`
	OrReplace                  bool              `yaml:"or_replace,omitempty" json:"or_replace,omitempty"`
	IfNotExists                bool              `yaml:"if_not_exists,omitempty" json:"if_not_exists,omitempty"`
}

func (t *Table) Kind() Kind         { return KindTable }
func (t *Table) ObjectName() string { return t.Name }

func (t *Table) Validate() error {
	var result *multierror.Error
	if t.Name == "" {
		result = multierror.Append(result, fmt.Errorf("table: %w", ErrMissingName))
	}
	if len(t.Columns) == 0 {
		result = multierror.Append(result, fmt.Errorf("table %s: %w", t.Name, ErrNoColumns))
	}
	for i, c := range t.Columns {
		if c.Name == "" || c.Type == "" {
			result = multierror.Append(result, fmt.Errorf("table %s: column %d: name and type: %w", t.Name, i, ErrMissingField))
		}
	}
	return result.ErrorOrNil()
}

func (t *Table) SQL() string {
	var parts clauses
	if t.OrReplace {
		parts.add("CREATE OR REPLACE")
	} else {
		parts.add("CREATE")
	}
	if t.TableType != "" && t.TableType != TablePermanent {
		parts.add(string(t.TableType))
	}
	parts.add("TABLE")
	if t.IfNotExists {
		parts.add("IF NOT EXISTS")
	}
	parts.add(t.Name)

	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = c.SQL()
	}
	parts.add("(" + strings.Join(columns, ", ") + ")")

	if t.Comment != "" {
		parts.add("COMMENT = " + literal(t.Comment))
	}
	if t.DataRetentionTimeInDays != nil {
		parts.addf("DATA_RETENTION_TIME_IN_DAYS = %d", *t.DataRetentionTimeInDays)
	}
	if t.MaxDataExtensionTimeInDays != nil {
		parts.addf("MAX_DATA_EXTENSION_TIME_IN_DAYS = %d", *t.MaxDataExtensionTimeInDays)
	}
	if t.ChangeTracking != nil {
		parts.add("CHANGE_TRACKING = " + FormatBool(*t.ChangeTracking))
	}
	if t.DefaultDDLCollation != "" {
		parts.addf("DEFAULT_DDL_COLLATION = '%s'", t.DefaultDDLCollation)
	}
	if t.CopyGrants {
		parts.add("COPY GRANTS")
	}
	if len(t.ClusterBy) > 0 {
		parts.add("CLUSTER BY (" + strings.Join(t.ClusterBy, ", ") + ")")
	}
	if p := t.RowAccessPolicy; p != nil {
		parts.addf("WITH ROW ACCESS POLICY %s ON (%s)", p.Name, strings.Join(p.On, ", "))
	}
	if p := t.AggregationPolicy; p != nil {
		parts.addf("WITH AGGREGATION POLICY %s ON (%s)", p.Name, strings.Join(p.On, ", "))
	}
	if len(t.Tags) > 0 {
		tags := make([]string, 0, len(t.Tags))
		for _, kv := range keyValues(t.Tags) {
			tags = append(tags, "TAG ("+kv+")")
		}
		parts.add("WITH " + strings.Join(tags, " "))
	}
	return parts.join(" ")
}

// clone copies t so later builder calls cannot reach the result.
func (t Table) clone() Table {
	t.Columns = slices.Clone(t.Columns)
	t.ClusterBy = slices.Clone(t.ClusterBy)
	t.RowAccessPolicy = t.RowAccessPolicy.clone()
	t.AggregationPolicy = t.AggregationPolicy.clone()
	t.Tags = maps.Clone(t.Tags)
	return t
}

func (p *Policy) clone() *Policy {
	if p == nil {
		return nil
	}
	return &Policy{Name: p.Name, On: slices.Clone(p.On)}
}

type TableBuilder struct {
	table Table
}

func NewTable(name string) *TableBuilder {
	return &TableBuilder{table: Table{Name: name, TableType: TablePermanent}}
}

func (b *TableBuilder) WithColumn(column Column) *TableBuilder {
	b.table.Columns = append(b.table.Columns, column)
	return b
}

func (b *TableBuilder) WithTableType(tableType TableType) *TableBuilder {
	b.table.TableType = tableType
	return b
}

func (b *TableBuilder) WithClusterBy(columns ...string) *TableBuilder {
	b.table.ClusterBy = columns
	return b
}

func (b *TableBuilder) WithDataRetentionTimeInDays(days int) *TableBuilder {
	b.table.DataRetentionTimeInDays = &days
	return b
}

func (b *TableBuilder) WithMaxDataExtensionTimeInDays(days int) *TableBuilder {
	b.table.MaxDataExtensionTimeInDays = &days
	return b
}

func (b *TableBuilder) WithChangeTracking(enabled bool) *TableBuilder {
	b.table.ChangeTracking = &enabled
	return b
}

func (b *TableBuilder) WithDefaultDDLCollation(collation string) *TableBuilder {
	b.table.DefaultDDLCollation = collation
	return b
}

func (b *TableBuilder) WithCopyGrants(copyGrants bool) *TableBuilder {
	b.table.CopyGrants = copyGrants
	return b
}

func (b *TableBuilder) WithComment(comment string) *TableBuilder {
	b.table.Comment = comment
	return b
}

func (b *TableBuilder) WithRowAccessPolicy(name string, on ...string) *TableBuilder {
	b.table.RowAccessPolicy = &Policy{Name: name, On: on}
	return b
}

func (b *TableBuilder) WithAggregationPolicy(name string, on ...string) *TableBuilder {
	b.table.AggregationPolicy = &Policy{Name: name, On: on}
	return b
}

func (b *TableBuilder) WithTag(key, value string) *TableBuilder {
	if b.table.Tags == nil {
		b.table.Tags = make(map[string]string)
	}
	b.table.Tags[key] = value
	return b
}

func (b *TableBuilder) WithCreateOrReplace() *TableBuilder {
	b.table.OrReplace = true
	return b
}

func (b *TableBuilder) WithCreateIfNotExists() *TableBuilder {
	b.table.IfNotExists = true
	return b
}

func (b *TableBuilder) Build() (*Table, error) {
	t := b.table.clone()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
