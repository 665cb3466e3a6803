package db

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/snowflakedb/gosnowflake"

	"github.com/snowforge/snowforge/pkg/config"
)

// DriverName is the database/sql driver registered by gosnowflake.
const DriverName = "snowflake"

// SnowflakeDriverConfig converts a SnowflakeConfig into the connector's
// configuration. Session parameters become connection parameters; a
// non-empty queryTag sets QUERY_TAG unless the parameters already do.
func SnowflakeDriverConfig(cfg *config.SnowflakeConfig, queryTag string) *gosnowflake.Config {
	params := make(map[string]*string, len(cfg.SessionParameters)+1)
	keys := make([]string, 0, len(cfg.SessionParameters))
	for k := range cfg.SessionParameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := fmt.Sprint(cfg.SessionParameters[k])
		params[k] = &value
	}
	if _, ok := params["QUERY_TAG"]; !ok && queryTag != "" {
		tag := queryTag
		params["QUERY_TAG"] = &tag
	}

	return &gosnowflake.Config{
		Account:   cfg.Account,
		User:      cfg.User,
		Password:  cfg.Password,
		Warehouse: cfg.Warehouse,
		Database:  cfg.Database,
		Schema:    cfg.Schema,
		Role:      cfg.Role,
		Params:    params,
	}
}

// SnowflakeDSN renders the connection string for cfg.
func SnowflakeDSN(cfg *config.SnowflakeConfig, queryTag string) (string, error) {
	dsn, err := gosnowflake.DSN(SnowflakeDriverConfig(cfg, queryTag))
	if err != nil {
		return "", fmt.Errorf("invalid snowflake configuration: %w", err)
	}
	return dsn, nil
}

// OpenSnowflake opens a database/sql pool on the snowflake driver. The
// pool is limited to one connection so every statement shares a session.
func OpenSnowflake(cfg *config.SnowflakeConfig, queryTag string) (*sql.DB, error) {
	dsn, err := SnowflakeDSN(cfg, queryTag)
	if err != nil {
		return nil, err
	}
	conn, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snowflake connection: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	return conn, nil
}
