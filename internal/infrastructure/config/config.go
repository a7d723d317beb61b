package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the dashboard generator.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site          SiteConfig          `yaml:"site"`
	HomeAssistant HomeAssistantConfig `yaml:"homeassistant"`
	Strategy      StrategyConfig      `yaml:"strategy"`
	Database      DatabaseConfig      `yaml:"database"`
	MQTT          MQTTConfig          `yaml:"mqtt"`
	API           APIConfig           `yaml:"api"`
	InfluxDB      InfluxDBConfig      `yaml:"influxdb"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// HomeAssistantConfig describes where registry snapshots come from.
//
// When SnapshotPath is set the generator reads a JSON snapshot from disk and
// never opens a websocket connection. CapturePath, when set, receives a
// snapshot of the registries at startup for later offline runs.
type HomeAssistantConfig struct {
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Timeout      int    `yaml:"timeout"`
	SnapshotPath string `yaml:"snapshot_path"`
	CapturePath  string `yaml:"capture_path"`
}

// StrategyConfig contains dashboard generation settings.
type StrategyConfig struct {
	// OptionsFile is a YAML or JSON file with the user strategy options
	// (areas, card_options, chips, domains, views, ...).
	OptionsFile string `yaml:"options_file"`

	// Language selects the translation table. Default: "en"
	Language string `yaml:"language"`

	// Output is the path the generated dashboard is written to.
	// "-" or empty writes to stdout.
	Output string `yaml:"output"`

	// Format is "json" or "yaml".
	Format string `yaml:"format"`

	// Workers bounds concurrent view and domain builders. 0 means unbounded.
	Workers int `yaml:"workers"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`

	// TopicPrefix roots every topic the generator uses. Default: "lovelace"
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. .env file in the working directory (if present)
//  4. Environment variables (override file values)
//
// Environment variables follow the pattern: LOVELACE_SECTION_KEY
// For example: LOVELACE_HOMEASSISTANT_TOKEN, LOVELACE_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// godotenv never overwrites variables that are already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "home",
			Name: "Home",
		},
		HomeAssistant: HomeAssistantConfig{
			URL:     "ws://homeassistant.local:8123/api/websocket",
			Timeout: 10,
		},
		Strategy: StrategyConfig{
			Language: "en",
			Output:   "-",
			Format:   "json",
		},
		Database: DatabaseConfig{
			Path:        "./data/lovelace.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "lovelace-strategy",
			},
			QoS:         1,
			TopicPrefix: "lovelace",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8099,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: LOVELACE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Home Assistant
	if v := os.Getenv("LOVELACE_HOMEASSISTANT_URL"); v != "" {
		cfg.HomeAssistant.URL = v
	}
	if v := os.Getenv("LOVELACE_HOMEASSISTANT_TOKEN"); v != "" {
		cfg.HomeAssistant.Token = v
	}
	if v := os.Getenv("LOVELACE_HOMEASSISTANT_SNAPSHOT"); v != "" {
		cfg.HomeAssistant.SnapshotPath = v
	}
	if v := os.Getenv("LOVELACE_HOMEASSISTANT_CAPTURE"); v != "" {
		cfg.HomeAssistant.CapturePath = v
	}

	// Strategy
	if v := os.Getenv("LOVELACE_STRATEGY_OPTIONS"); v != "" {
		cfg.Strategy.OptionsFile = v
	}
	if v := os.Getenv("LOVELACE_STRATEGY_LANGUAGE"); v != "" {
		cfg.Strategy.Language = v
	}
	if v := os.Getenv("LOVELACE_STRATEGY_OUTPUT"); v != "" {
		cfg.Strategy.Output = v
	}

	// Database
	if v := os.Getenv("LOVELACE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("LOVELACE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("LOVELACE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("LOVELACE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("LOVELACE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("LOVELACE_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = port
		}
	}

	// InfluxDB
	if v := os.Getenv("LOVELACE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	// A snapshot replaces the live connection entirely.
	if c.HomeAssistant.SnapshotPath == "" {
		if c.HomeAssistant.URL == "" {
			errs = append(errs, "homeassistant.url is required when no snapshot_path is set")
		}
		if c.HomeAssistant.Token == "" {
			errs = append(errs, "homeassistant.token is required (set LOVELACE_HOMEASSISTANT_TOKEN environment variable)")
		}
	}

	switch c.Strategy.Format {
	case "json", "yaml":
	default:
		errs = append(errs, "strategy.format must be json or yaml")
	}
	if c.Strategy.Workers < 0 {
		errs = append(errs, "strategy.workers must not be negative")
	}

	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetHomeAssistantTimeout returns the Home Assistant request timeout as a Duration.
func (c *Config) GetHomeAssistantTimeout() time.Duration {
	return time.Duration(c.HomeAssistant.Timeout) * time.Second
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
