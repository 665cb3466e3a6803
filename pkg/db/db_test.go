package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowforge/snowforge/pkg/config"
)

func TestSnowflakeDriverConfig(t *testing.T) {
	cfg := &config.SnowflakeConfig{
		Account:           "acme-xy12345",
		User:              "loader",
		Password:          "pw",
		Warehouse:         "compute_wh",
		Database:          "analytics",
		Schema:            "raw",
		Role:              "loader_role",
		SessionParameters: map[string]interface{}{"TIMEZONE": "UTC", "STATEMENT_TIMEOUT_IN_SECONDS": float64(3600)},
	}

	driverCfg := SnowflakeDriverConfig(cfg, "nightly")
	assert.Equal(t, "acme-xy12345", driverCfg.Account)
	assert.Equal(t, "analytics", driverCfg.Database)
	require.Contains(t, driverCfg.Params, "TIMEZONE")
	assert.Equal(t, "UTC", *driverCfg.Params["TIMEZONE"])
	assert.Equal(t, "3600", *driverCfg.Params["STATEMENT_TIMEOUT_IN_SECONDS"])
	assert.Equal(t, "nightly", *driverCfg.Params["QUERY_TAG"])

	cfg.SessionParameters["QUERY_TAG"] = "explicit"
	assert.Equal(t, "explicit", *SnowflakeDriverConfig(cfg, "nightly").Params["QUERY_TAG"])

	cfg.SessionParameters = nil
	assert.NotContains(t, SnowflakeDriverConfig(cfg, "").Params, "QUERY_TAG")
}

func TestSnowflakeDSN(t *testing.T) {
	dsn, err := SnowflakeDSN(&config.SnowflakeConfig{
		Account:   "acme",
		User:      "loader",
		Password:  "pw",
		Warehouse: "compute_wh",
	}, "")
	require.NoError(t, err)
	assert.Contains(t, dsn, "loader:pw@")
	assert.Contains(t, dsn, "acme")
	assert.Contains(t, dsn, "warehouse=compute_wh")

	_, err = SnowflakeDSN(&config.SnowflakeConfig{User: "loader", Password: "pw"}, "")
	assert.Error(t, err)
}

func TestConnectRequiresURL(t *testing.T) {
	t.Setenv(LedgerURLEnv, "")
	_, err := Connect(Config{})
	assert.ErrorContains(t, err, LedgerURLEnv)
}
