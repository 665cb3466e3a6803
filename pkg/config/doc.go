// Package config loads snowforge configuration.
//
// Two kinds of settings are handled here:
//
//   - SnowflakeConfig: the connection (account, user, password, warehouse,
//     database, schema, role, session parameters), read from SNOWFLAKE_*
//     variables after loading an optional .env file.
//   - Config: the behaviour of the tool (retries, timeouts, log level,
//     ledger and audit switches), read from snowforge.yml and SNOWFORGE_*
//     variables.
//
// # Precedence
//
// For Config, environment variables override the file which overrides the
// defaults. The source of every attribute is kept and shown by
// "snowforge config show".
//
// # Key Variables
//
//   - SNOWFLAKE_ACCOUNT, SNOWFLAKE_USER, SNOWFLAKE_PASSWORD: required
//   - SNOWFLAKE_SESSION_PARAMETERS: JSON object of session parameters
//   - SNOWFORGE_CONFIG_PATH: directory containing snowforge.yml
//   - SNOWFORGE_LOG_LEVEL: e.g. "info" or "info,forge=debug"
package config
