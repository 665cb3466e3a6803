// Package forge runs Snowflake statements and workflows.
//
// A Forge owns one Snowflake session. Statements run inside a transaction
// (BEGIN, statement, COMMIT) that is rolled back on failure; failures with
// a transient Snowflake error number (250001, 250002, 90100) rerun the
// transaction with exponential backoff. Close aborts the session with
// SYSTEM$ABORT_SESSION before closing the connection.
//
// # Usage
//
//	f := forge.FromConfig(snowflakeCfg, config.Get())
//	defer f.Close(ctx)
//
//	result, err := f.Workflow().
//	    WithName("orders").
//	    CreateFileFormat(csv).
//	    CreateStage(stage).
//	    CreateTable(orders).
//	    PutFile(put).
//	    CopyInto(load).
//	    Execute(ctx)
//
// Every step of a workflow runs in the same transaction; the first failure
// rolls all of them back. WithDryRun validates and renders the steps
// without connecting.
package forge
