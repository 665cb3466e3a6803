package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/snowforge/snowforge/pkg/logger"
)

const (
	DefaultConfigPath = "."
	ConfigFileName    = "snowforge.yml"
	EnvPrefix         = "SNOWFORGE_"
)

// Config holds the settings of the snowforge tool itself. Connection
// settings live in SnowflakeConfig.
type Config struct {
	// MaxRetries bounds the retries of a transaction failing with a
	// transient Snowflake error
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// RetryBackoffMS is the base delay between retries, doubled each attempt
	RetryBackoffMS int `yaml:"retry_backoff_ms" json:"retry_backoff_ms"`

	// StatementTimeoutS limits each statement; 0 means no limit
	StatementTimeoutS int `yaml:"statement_timeout_s" json:"statement_timeout_s"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// LedgerEnabled records runs in the ledger database
	LedgerEnabled bool `yaml:"ledger_enabled" json:"ledger_enabled"`

	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// QueryTag is set as the QUERY_TAG session parameter when not empty
	QueryTag string `yaml:"query_tag" json:"query_tag"`

	sources        map[string]string
	configFilePath string
}

// fileConfig distinguishes unset keys from zero values.
type fileConfig struct {
	MaxRetries        *int    `yaml:"max_retries"`
	RetryBackoffMS    *int    `yaml:"retry_backoff_ms"`
	StatementTimeoutS *int    `yaml:"statement_timeout_s"`
	LogLevel          *string `yaml:"log_level"`
	LedgerEnabled     *bool   `yaml:"ledger_enabled"`
	AuditEnabled      *bool   `yaml:"audit_enabled"`
	QueryTag          *string `yaml:"query_tag"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary. Defaults
// are used when loading fails.
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		defer configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			log.WithError(err).Warn("using default configuration")
			cfg = newDefault()
		}
		globalConfig = cfg
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

func newDefault() *Config {
	c := &Config{
		MaxRetries:        3,
		RetryBackoffMS:    500,
		StatementTimeoutS: 0,
		LogLevel:          "info",
		LedgerEnabled:     false,
		AuditEnabled:      true,
		QueryTag:          "",
		sources:           make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = "default"
	}
	return c
}

// Load reads snowforge.yml from SNOWFORGE_CONFIG_PATH (default: the working
// directory) and applies SNOWFORGE_* overrides on top.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvPrefix + "CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile is Load with an explicit file. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	config := newDefault()
	config.configFilePath = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}
	return config, nil
}

func attributeNames() []string {
	return []string{
		"max_retries", "retry_backoff_ms", "statement_timeout_s", "log_level",
		"ledger_enabled", "audit_enabled", "query_tag",
	}
}

func (c *Config) applyFileConfig(file *fileConfig) {
	if file.MaxRetries != nil {
		c.MaxRetries = *file.MaxRetries
		c.sources["max_retries"] = "file"
	}
	if file.RetryBackoffMS != nil {
		c.RetryBackoffMS = *file.RetryBackoffMS
		c.sources["retry_backoff_ms"] = "file"
	}
	if file.StatementTimeoutS != nil {
		c.StatementTimeoutS = *file.StatementTimeoutS
		c.sources["statement_timeout_s"] = "file"
	}
	if file.LogLevel != nil {
		c.LogLevel = *file.LogLevel
		c.sources["log_level"] = "file"
	}
	if file.LedgerEnabled != nil {
		c.LedgerEnabled = *file.LedgerEnabled
		c.sources["ledger_enabled"] = "file"
	}
	if file.AuditEnabled != nil {
		c.AuditEnabled = *file.AuditEnabled
		c.sources["audit_enabled"] = "file"
	}
	if file.QueryTag != nil {
		c.QueryTag = *file.QueryTag
		c.sources["query_tag"] = "file"
	}
}

func (c *Config) applyEnvConfig() error {
	ints := map[string]*int{
		"max_retries":         &c.MaxRetries,
		"retry_backoff_ms":    &c.RetryBackoffMS,
		"statement_timeout_s": &c.StatementTimeoutS,
	}
	for name, target := range ints {
		if val := os.Getenv(envName(name)); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", envName(name), err)
			}
			*target = i
			c.sources[name] = "environment"
		}
	}

	bools := map[string]*bool{
		"ledger_enabled": &c.LedgerEnabled,
		"audit_enabled":  &c.AuditEnabled,
	}
	for name, target := range bools {
		if val := os.Getenv(envName(name)); val != "" {
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", envName(name), err)
			}
			*target = b
			c.sources[name] = "environment"
		}
	}

	if val := os.Getenv(envName("log_level")); val != "" {
		c.LogLevel = val
		c.sources["log_level"] = "environment"
	}
	if val, ok := os.LookupEnv(envName("query_tag")); ok {
		c.QueryTag = val
		c.sources["query_tag"] = "environment"
	}
	return nil
}

func envName(attribute string) string {
	return EnvPrefix + strings.ToUpper(attribute)
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// RetryBackoff returns the base retry delay.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// StatementTimeout returns the per-statement timeout, 0 for none.
func (c *Config) StatementTimeout() time.Duration {
	return time.Duration(c.StatementTimeoutS) * time.Second
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("invalid max_retries value: %d (must be between 0 and 10)", c.MaxRetries)
	}
	if c.RetryBackoffMS < 0 {
		return fmt.Errorf("invalid retry_backoff_ms value: %d", c.RetryBackoffMS)
	}
	if c.StatementTimeoutS < 0 {
		return fmt.Errorf("invalid statement_timeout_s value: %d", c.StatementTimeoutS)
	}
	if _, err := logger.NewRegistry(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level value: %w", err)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "max_retries", Value: strconv.Itoa(c.MaxRetries), Source: c.Source("max_retries")},
		{Name: "retry_backoff_ms", Value: strconv.Itoa(c.RetryBackoffMS), Source: c.Source("retry_backoff_ms")},
		{Name: "statement_timeout_s", Value: strconv.Itoa(c.StatementTimeoutS), Source: c.Source("statement_timeout_s")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "ledger_enabled", Value: strconv.FormatBool(c.LedgerEnabled), Source: c.Source("ledger_enabled")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "query_tag", Value: c.QueryTag, Source: c.Source("query_tag")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", "----", "-----", "------"))
	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-20s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
