// Command snowforge manages Snowflake objects from declarative workflow files.
//
// A workflow file is a YAML sequence of tagged statements. The planner orders
// them by dependency and the forge engine executes them in one transaction.
//
// # Quick Start
//
//	# Check the files parse and the statements are complete
//	snowforge workflow validate workflows/*.yml
//
//	# Show the SQL in execution order
//	snowforge workflow plan workflows/orders.yml
//
//	# Execute against the account in .env
//	snowforge workflow apply workflows/orders.yml --env-file .env
//
//	# Record runs in a postgres ledger
//	export SNOWFORGE_LEDGER_URL=postgres://localhost/snowforge
//	export SNOWFORGE_LEDGER_ENABLED=true
//	snowforge db migrate
//	snowforge runs list
//
// # Environment Variables
//
//   - SNOWFLAKE_ACCOUNT, SNOWFLAKE_USER, SNOWFLAKE_PASSWORD: required connection settings
//   - SNOWFLAKE_WAREHOUSE, SNOWFLAKE_DATABASE, SNOWFLAKE_SCHEMA, SNOWFLAKE_ROLE: optional
//   - SNOWFLAKE_SESSION_PARAMETERS: JSON object of session parameters
//   - SNOWFORGE_CONFIG_PATH: directory holding snowforge.yml
//   - SNOWFORGE_LEDGER_URL: ledger database URL
//   - SNOWFORGE_AUDIT_DATABASE_URL: audit database URL
//   - SNOWFORGE_API_SECRET: HS256 secret for the HTTP API
//   - PORT, BIND_ADDRESS: server defaults
package main
