package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage backends accepted by StorageBackend.
const (
	StorageSQLite  = "sqlite"
	StorageKeyring = "keyring"
	StorageRedis   = "redis"
	StorageMemory  = "memory"
)

// Config holds runtime settings for the onboarding CLI.
//
// Fields:
//   - APIURL: base URL of the backend REST API, including the /api prefix.
//   - LoginPath: entry point reported when the session is invalidated.
//   - RequestTimeout: upper bound for one HTTP exchange.
//   - OnlineCheckInterval: how often the client probes backend reachability.
//   - StorageBackend: where tokens and the user snapshot live
//     (sqlite, keyring, redis or memory).
//   - StoragePath: SQLite file; empty means onboard.db in the user data dir.
//   - RedisAddr / RedisPassword / RedisDB: used by the redis backend.
//   - StorePassphrase: when set, stored values are encrypted at rest.
//   - RateLimit: outgoing requests per second, 0 disables limiting.
//   - LogLevel / LogFormat: diagnostics written to stderr.
type Config struct {
	APIURL              string        `validate:"required,url"`
	LoginPath           string        `validate:"required,startswith=/"`
	RequestTimeout      time.Duration `validate:"gt=0"`
	OnlineCheckInterval time.Duration `validate:"gt=0"`
	StorageBackend      string        `validate:"oneof=sqlite keyring redis memory"`
	StoragePath         string
	RedisAddr           string `validate:"required_if=StorageBackend redis"`
	RedisPassword       string
	RedisDB             int `validate:"gte=0"`
	StorePassphrase     string
	RateLimit           float64 `validate:"gte=0"`
	LogLevel            string  `validate:"oneof=debug info warn error"`
	LogFormat           string  `validate:"oneof=text json console"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "http://localhost:8000/api"
	c.LoginPath = "/auth/login"
	c.RequestTimeout = 30 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.StorageBackend = StorageSQLite
	c.StoragePath = ""
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisDB = 0
	c.RateLimit = 0
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if given), the environment and command-line flags.
// Later sources take precedence over earlier ones. It panics when a source
// cannot be parsed or the result is invalid.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
