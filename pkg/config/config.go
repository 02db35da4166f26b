// Package config loads service settings from an optional YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"mtlsdemo/pkg/log"
)

// Supported order store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the settings of both demo services.
type Config struct {
	Frontend FrontendConfig `yaml:"frontend"`
	Backend  BackendConfig  `yaml:"backend"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// FrontendConfig configures the page-serving service.
type FrontendConfig struct {
	Port            string        `yaml:"port"`
	BackendURL      string        `yaml:"backend_url"`
	SPIFFEID        string        `yaml:"spiffe_id"`
	BackendSPIFFEID string        `yaml:"backend_spiffe_id"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	RetryMax        int           `yaml:"retry_max"`
	RetryWaitMin    time.Duration `yaml:"retry_wait_min"`
	RetryWaitMax    time.Duration `yaml:"retry_wait_max"`
}

// BackendConfig configures the API service.
type BackendConfig struct {
	Port             string `yaml:"port"`
	SPIFFEID         string `yaml:"spiffe_id"`
	FrontendSPIFFEID string `yaml:"frontend_spiffe_id"`
	DatabaseSPIFFEID string `yaml:"database_spiffe_id"`
}

// DatabaseConfig configures the backend's order store.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	// Certificate files written by spiffe-helper.
	SSLCert    string `yaml:"ssl_cert"`
	SSLKey     string `yaml:"ssl_key"`
	SSLRootCA  string `yaml:"ssl_root_ca"`
	SQLitePath string `yaml:"sqlite_path"`
}

// LoggingConfig configures pkg/log.
type LoggingConfig struct {
	Format string `yaml:"format"`
	Debug  bool   `yaml:"debug"`
}

// Default returns the settings used when neither file nor environment say otherwise.
func Default() Config {
	return Config{
		Frontend: FrontendConfig{
			Port:            "8080",
			BackendURL:      "http://127.0.0.1:8001",
			SPIFFEID:        "spiffe://example.org/ns/demo/sa/frontend",
			BackendSPIFFEID: "spiffe://example.org/ns/demo/sa/backend",
			RequestTimeout:  10 * time.Second,
			RetryMax:        2,
			RetryWaitMin:    100 * time.Millisecond,
			RetryWaitMax:    time.Second,
		},
		Backend: BackendConfig{
			Port:             "9090",
			SPIFFEID:         "spiffe://example.org/ns/demo/sa/backend",
			FrontendSPIFFEID: "spiffe://example.org/ns/demo/sa/frontend",
			DatabaseSPIFFEID: "spiffe://example.org/ns/demo/sa/postgres",
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "postgres.demo.svc.cluster.local",
			Port:            "5432",
			User:            "postgres",
			Name:            "demodb",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 2 * time.Minute,
			SSLCert:         "/spiffe-certs/svid.pem",
			SSLKey:          "/spiffe-certs/svid_key.pem",
			SSLRootCA:       "/spiffe-certs/svid_bundle.pem",
			SQLitePath:      "build/data/orders.db",
		},
		Logging: LoggingConfig{
			Format: "console",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and validates the result.
// An empty path or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(content, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from environment variables. Unparsable numbers and durations are ignored.
func (c *Config) ApplyEnv(lookup LookupFunc) {
	env := envReader{lookup: lookup}

	env.str("PORT", &c.Frontend.Port)
	env.str("PORT", &c.Backend.Port)
	env.str("BACKEND_URL", &c.Frontend.BackendURL)
	env.str("SPIFFE_ID", &c.Frontend.SPIFFEID)
	env.str("SPIFFE_ID", &c.Backend.SPIFFEID)

	env.str("DB_DRIVER", &c.Database.Driver)
	env.str("DB_HOST", &c.Database.Host)
	env.str("DB_PORT", &c.Database.Port)
	env.str("DB_USER", &c.Database.User)
	env.str("DB_PASSWORD", &c.Database.Password)
	env.str("DB_NAME", &c.Database.Name)
	env.integer("DB_MAX_OPEN_CONNS", &c.Database.MaxOpenConns)
	env.integer("DB_MAX_IDLE_CONNS", &c.Database.MaxIdleConns)
	env.duration("DB_CONN_MAX_LIFETIME", &c.Database.ConnMaxLifetime)
	env.str("SSL_CERT", &c.Database.SSLCert)
	env.str("SSL_KEY", &c.Database.SSLKey)
	env.str("SSL_ROOT_CA", &c.Database.SSLRootCA)
	env.str("SQLITE_PATH", &c.Database.SQLitePath)

	env.str("LOG_FORMAT", &c.Logging.Format)
}

// Validate rejects settings the services cannot start with and fills zero pool values.
func (c *Config) Validate() error {
	if c.Frontend.Port == "" || c.Backend.Port == "" {
		return errors.New("port must not be empty")
	}

	backendURL := c.Frontend.BackendURL
	if !strings.HasPrefix(backendURL, "http://") && !strings.HasPrefix(backendURL, "https://") {
		return fmt.Errorf("backend_url %q must start with http:// or https://", backendURL)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("postgres driver requires database host and name")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return errors.New("sqlite driver requires sqlite_path")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	defaults := Default()
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns < 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = defaults.Database.ConnMaxLifetime
	}
	if c.Frontend.RetryMax < 0 {
		c.Frontend.RetryMax = 0
	}
	if c.Frontend.RetryWaitMax < c.Frontend.RetryWaitMin {
		c.Frontend.RetryWaitMax = c.Frontend.RetryWaitMin
	}

	return nil
}

type envReader struct {
	lookup LookupFunc
}

func (e envReader) get(key string) (string, bool) {
	value, ok := e.lookup(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func (e envReader) str(key string, dst *string) {
	if value, ok := e.get(key); ok {
		*dst = value
	}
}

func (e envReader) integer(key string, dst *int) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid integer in environment")
		return
	}
	*dst = parsed
}

func (e envReader) duration(key string, dst *time.Duration) {
	value, ok := e.get(key)
	if !ok {
		return
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid duration in environment")
		return
	}
	*dst = parsed
}
