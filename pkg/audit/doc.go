// Package audit records workflow activity as RFC5424 syslog messages.
//
// Two events are emitted: a WorkflowEvent when a workflow is planned,
// applied or dry-run, and a StatementEvent for each statement executed
// against Snowflake. Messages are written to stdout and, when
// SNOWFORGE_AUDIT_DATABASE_URL is set, persisted to the audit_messages table.
//
// # Usage
//
//	auditor := audit.NewAuditor(audit.DefaultLogger, store)
//	engine := forge.New(open).WithAuditor(auditor)
//
// Setting SNOWFORGE_AUDIT_ENABLED=false disables audit logging.
package audit
