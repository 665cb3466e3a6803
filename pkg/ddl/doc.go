// Package ddl renders Snowflake statements.
//
// Every object has a builder that collects options and validates them in
// Build. The built value renders its SQL with SQL():
//
//	table, err := ddl.NewTable("users").
//	    WithColumn(ddl.Column{Name: "id", Type: ddl.Number, NotNull: true}).
//	    WithColumn(ddl.Column{Name: "email", Type: ddl.String.With(255)}).
//	    WithCreateOrReplace().
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(table.SQL())
//	// CREATE OR REPLACE TABLE users (id NUMBER NOT NULL, email STRING(255))
//
// # Supported statements
//
//   - Table: CREATE TABLE with columns, clustering, policies and tags
//   - Stage: internal, S3, S3-compatible, GCS and Azure stages
//   - FileFormat: CSV, JSON, AVRO, PARQUET, XML and ORC formats
//   - Stream: change tracking streams on tables
//   - Task: scheduled or dependent tasks
//   - Put: uploads of local files to an internal stage
//   - CopyInto: loads from a stage into a table
//
// All statement types also decode from YAML, which is how workflow files
// describe them. Map-valued options such as tags render in key order so
// the output is stable.
package ddl
