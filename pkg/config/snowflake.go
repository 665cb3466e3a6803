package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/snowforge/snowforge/pkg/logger"
)

const (
	DefaultEnvPrefix = "SNOWFLAKE_"
	DefaultEnvFile   = ".env"
)

var (
	requiredVars = []string{"ACCOUNT", "USER", "PASSWORD"}
	optionalVars = []string{"WAREHOUSE", "DATABASE", "SCHEMA", "ROLE"}
)

// SnowflakeConfig holds the connection settings for a Snowflake session.
type SnowflakeConfig struct {
	Account           string                 `json:"account"`
	User              string                 `json:"user"`
	Password          string                 `json:"-"`
	Warehouse         string                 `json:"warehouse,omitempty"`
	Database          string                 `json:"database,omitempty"`
	Schema            string                 `json:"schema,omitempty"`
	Role              string                 `json:"role,omitempty"`
	SessionParameters map[string]interface{} `json:"session_parameters,omitempty"`
}

// MissingVarsError lists every required variable that was not set.
type MissingVarsError struct {
	Names []string
}

func (e *MissingVarsError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Names, ", ")
}

var log logger.Log = logger.NoOp("config")

// SetLogger sets the logger used for configuration warnings.
func SetLogger(l logger.Log) {
	log = l
}

// FromEnv reads a SnowflakeConfig from the environment after loading an
// env file. An empty envPath loads ./.env if it exists; an explicit path
// must exist. Variables already present in the environment are not
// overridden by the file. An empty prefix means SNOWFLAKE_.
//
// When requireAll is set, a missing ACCOUNT, USER or PASSWORD yields a
// *MissingVarsError naming all of them.
func FromEnv(envPath, prefix string, requireAll bool) (*SnowflakeConfig, error) {
	if err := loadEnvFile(envPath); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	values := make(map[string]string)
	var missingVars []string
	for _, name := range requiredVars {
		value, ok := os.LookupEnv(prefix + name)
		if !ok {
			missingVars = append(missingVars, prefix+name)
		}
		values[name] = value
	}
	if len(missingVars) > 0 && requireAll {
		return nil, &MissingVarsError{Names: missingVars}
	}
	for _, name := range optionalVars {
		values[name] = os.Getenv(prefix + name)
	}

	cfg := &SnowflakeConfig{
		Account:           values["ACCOUNT"],
		User:              values["USER"],
		Password:          values["PASSWORD"],
		Warehouse:         values["WAREHOUSE"],
		Database:          values["DATABASE"],
		Schema:            values["SCHEMA"],
		Role:              values["ROLE"],
		SessionParameters: map[string]interface{}{},
	}
	if raw := os.Getenv(prefix + "SESSION_PARAMETERS"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.SessionParameters); err != nil {
			log.WithError(err).Warnf("failed to parse %sSESSION_PARAMETERS as JSON", prefix)
			cfg.SessionParameters = map[string]interface{}{}
		}
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		err := godotenv.Load(DefaultEnvFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", DefaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Redacted returns a copy safe for display.
func (c SnowflakeConfig) Redacted() SnowflakeConfig {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}
