package ddl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func TestColumnSQL(t *testing.T) {
	tests := []struct {
		name     string
		column   Column
		expected string
	}{
		{
			name:     "plain",
			column:   Column{Name: "id", Type: Number},
			expected: "id NUMBER",
		},
		{
			name:     "parameterized",
			column:   Column{Name: "price", Type: Number.With(10, 2), Default: "0", References: "prices", Collate: "utf8"},
			expected: "price NUMBER(10,2) DEFAULT 0 REFERENCES prices COLLATE 'utf8'",
		},
		{
			name:     "constraints",
			column:   Column{Name: "email", Type: String.With(255), NotNull: true, Unique: true, Comment: "user's email"},
			expected: "email STRING(255) NOT NULL UNIQUE COMMENT 'user''s email'",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.column.SQL())
		})
	}
	assert.Equal(t, Text, Text.With())
}

func TestTableSQL(t *testing.T) {
	tests := []struct {
		name     string
		builder  *TableBuilder
		expected string
	}{
		{
			name: "create or replace with options",
			builder: NewTable("users").
				WithColumn(Column{Name: "id", Type: Number, NotNull: true, Identity: true, PrimaryKey: true}).
				WithColumn(Column{Name: "email", Type: String.With(255), Unique: true}).
				WithCreateOrReplace().
				WithClusterBy("id").
				WithDataRetentionTimeInDays(7).
				WithChangeTracking(true).
				WithComment("it's a table").
				WithTag("owner", "data").
				WithTag("env", "prod"),
			expected: "CREATE OR REPLACE TABLE users (id NUMBER NOT NULL IDENTITY PRIMARY KEY, email STRING(255) UNIQUE) " +
				"COMMENT = 'it''s a table' DATA_RETENTION_TIME_IN_DAYS = 7 CHANGE_TRACKING = TRUE CLUSTER BY (id) " +
				"WITH TAG (env = 'prod') TAG (owner = 'data')",
		},
		{
			name: "transient with policies",
			builder: NewTable("events").
				WithTableType(TableTransient).
				WithCreateIfNotExists().
				WithColumn(Column{Name: "payload", Type: Variant}).
				WithMaxDataExtensionTimeInDays(14).
				WithDefaultDDLCollation("en-ci").
				WithCopyGrants(true).
				WithRowAccessPolicy("rap", "payload").
				WithAggregationPolicy("agg", "payload"),
			expected: "CREATE TRANSIENT TABLE IF NOT EXISTS events (payload VARIANT) MAX_DATA_EXTENSION_TIME_IN_DAYS = 14 " +
				"DEFAULT_DDL_COLLATION = 'en-ci' COPY GRANTS WITH ROW ACCESS POLICY rap ON (payload) " +
				"WITH AGGREGATION POLICY agg ON (payload)",
		},
		{
			name: "change tracking off",
			builder: NewTable("t").
				WithTableType(TablePermanent).
				WithColumn(Column{Name: "a", Type: Boolean}).
				WithChangeTracking(false),
			expected: "CREATE TABLE t (a BOOLEAN) CHANGE_TRACKING = FALSE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := tt.builder.Build()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, table.SQL())
			assert.Equal(t, KindTable, table.Kind())
		})
	}
}

func TestTableBuildCopiesCollections(t *testing.T) {
	builder := NewTable("t").
		WithColumn(Column{Name: "a", Type: Boolean}).
		WithClusterBy("a").
		WithRowAccessPolicy("rap", "a").
		WithTag("owner", "data")
	table, err := builder.Build()
	require.NoError(t, err)
	before := table.SQL()

	builder.WithColumn(Column{Name: "b", Type: Number}).WithTag("env", "prod")
	builder.table.Columns[0].Name = "z"
	builder.table.ClusterBy[0] = "z"
	builder.table.RowAccessPolicy.On[0] = "z"

	assert.Equal(t, before, table.SQL())
	assert.Len(t, table.Columns, 1)
	assert.Equal(t, map[string]string{"owner": "data"}, table.Tags)
}

func TestTableValidation(t *testing.T) {
	_, err := NewTable("").Build()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingName))
	assert.True(t, errors.Is(err, ErrNoColumns))

	_, err = NewTable("t").WithColumn(Column{Name: "a"}).Build()
	assert.True(t, errors.Is(err, ErrMissingField))
}
