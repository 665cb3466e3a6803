package forge

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/snowforge/snowforge/pkg/ddl"
)

// ExecuteSQL runs one statement in its own transaction and returns every
// row as a column name to value map.
func (f *Forge) ExecuteSQL(ctx context.Context, query string) ([]map[string]interface{}, error) {
	var results []map[string]interface{}
	err := f.Transaction(ctx, func(ctx context.Context, tx Querier) error {
		rows, err := f.query(ctx, tx, query)
		results = rows
		return err
	})
	if err != nil {
		f.log.WithError(err).Error("failed to execute sql")
		return nil, err
	}
	return results, nil
}

func (f *Forge) query(ctx context.Context, tx Querier, query string) ([]map[string]interface{}, error) {
	if f.statementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.statementTimeout)
		defer cancel()
	}
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	results := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(map[string]interface{}, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// describe is the log line for running a statement.
func describe(stmt ddl.Statement) string {
	switch s := stmt.(type) {
	case *ddl.Table:
		return "Creating table: " + s.Name
	case *ddl.Stage:
		return "Creating stage: " + s.Name
	case *ddl.FileFormat:
		return "Creating file format: " + s.Name
	case *ddl.Stream:
		return "Creating stream: " + s.Name
	case *ddl.Task:
		return "Creating task: " + s.Name
	case *ddl.Put:
		return "Putting file: " + s.FilePath
	case *ddl.CopyInto:
		return fmt.Sprintf("Copying data from %s to %s", s.Source.Name, s.Target.Name)
	}
	return "Executing " + stmt.Kind().String() + ": " + stmt.ObjectName()
}

// checkLocal verifies what can be checked before a statement is sent.
func checkLocal(stmt ddl.Statement) error {
	if err := stmt.Validate(); err != nil {
		return err
	}
	if put, ok := stmt.(*ddl.Put); ok {
		if _, err := put.LocalFiles(); err != nil {
			return err
		}
	}
	return nil
}

// Create validates stmt and runs it in its own transaction.
func (f *Forge) Create(ctx context.Context, stmt ddl.Statement) error {
	if err := checkLocal(stmt); err != nil {
		return err
	}
	f.log.WithField("kind", stmt.Kind().String()).Info(describe(stmt))
	_, err := f.ExecuteSQL(ctx, stmt.SQL())
	return err
}

func (f *Forge) CreateTable(ctx context.Context, table *ddl.Table) error {
	return f.Create(ctx, table)
}

func (f *Forge) CreateStage(ctx context.Context, stage *ddl.Stage) error {
	return f.Create(ctx, stage)
}

func (f *Forge) CreateFileFormat(ctx context.Context, fileFormat *ddl.FileFormat) error {
	return f.Create(ctx, fileFormat)
}

func (f *Forge) CreateStream(ctx context.Context, stream *ddl.Stream) error {
	return f.Create(ctx, stream)
}

func (f *Forge) CreateTask(ctx context.Context, task *ddl.Task) error {
	return f.Create(ctx, task)
}

// PutFile uploads local files to a stage. The path must match at least one
// local file.
func (f *Forge) PutFile(ctx context.Context, put *ddl.Put) error {
	return f.Create(ctx, put)
}

func (f *Forge) CopyInto(ctx context.Context, copyInto *ddl.CopyInto) error {
	return f.Create(ctx, copyInto)
}
