package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SNOWFORGE_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 500, cfg.RetryBackoffMS)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.AuditEnabled)
	assert.False(t, cfg.LedgerEnabled)
	for _, attr := range cfg.Attributes() {
		assert.Equal(t, "default", attr.Source, attr.Name)
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := "max_retries: 5\naudit_enabled: false\nlog_level: debug\nquery_tag: nightly\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(file), 0o600))
	t.Setenv("SNOWFORGE_CONFIG_PATH", dir)
	t.Setenv("SNOWFORGE_MAX_RETRIES", "7")
	t.Setenv("SNOWFORGE_LEDGER_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, ConfigFileName), cfg.ConfigFilePath())
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, "environment", cfg.Source("max_retries"))
	assert.False(t, cfg.AuditEnabled)
	assert.Equal(t, "file", cfg.Source("audit_enabled"))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "nightly", cfg.QueryTag)
	assert.True(t, cfg.LedgerEnabled)
	assert.Equal(t, "environment", cfg.Source("ledger_enabled"))
	assert.Equal(t, "default", cfg.Source("retry_backoff_ms"))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("max_retries: [1"), 0o600))
	_, err := LoadFile(filepath.Join(dir, ConfigFileName))
	assert.Error(t, err)

	t.Setenv("SNOWFORGE_RETRY_BACKOFF_MS", "soon")
	_, err = LoadFile(filepath.Join(dir, "missing.yml"))
	assert.ErrorContains(t, err, "SNOWFORGE_RETRY_BACKOFF_MS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "too many retries", modify: func(c *Config) { c.MaxRetries = 11 }, wantErr: "max_retries"},
		{name: "negative backoff", modify: func(c *Config) { c.RetryBackoffMS = -1 }, wantErr: "retry_backoff_ms"},
		{name: "negative timeout", modify: func(c *Config) { c.StatementTimeoutS = -1 }, wantErr: "statement_timeout_s"},
		{name: "bad level", modify: func(c *Config) { c.LogLevel = "chatty" }, wantErr: "log_level"},
		{name: "subsystem level", modify: func(c *Config) { c.LogLevel = "warn,forge=debug" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFormat(t *testing.T) {
	cfg := newDefault()
	cfg.configFilePath = "snowforge.yml"

	text := cfg.FormatText()
	assert.Contains(t, text, "Config file: snowforge.yml")
	assert.Contains(t, text, "query_tag")
	assert.Contains(t, text, "(not set)")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	var decoded struct {
		ConfigFile string      `json:"config_file"`
		Attributes []Attribute `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "snowforge.yml", decoded.ConfigFile)
	assert.Len(t, decoded.Attributes, len(attributeNames()))
}

func TestGetAndReload(t *testing.T) {
	t.Setenv("SNOWFORGE_CONFIG_PATH", t.TempDir())
	t.Setenv("SNOWFORGE_QUERY_TAG", "first")
	require.NoError(t, Reload())
	assert.Equal(t, "first", Get().QueryTag)

	t.Setenv("SNOWFORGE_QUERY_TAG", "second")
	assert.Equal(t, "first", Get().QueryTag)
	require.NoError(t, Reload())
	assert.Equal(t, "second", Get().QueryTag)
}
