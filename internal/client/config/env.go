package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// EnvConfig maps ONBOARD_* variables. Unset variables leave the current
// value alone.
type EnvConfig struct {
	APIURL              string        `env:"ONBOARD_API_URL"`
	LoginPath           string        `env:"ONBOARD_LOGIN_PATH"`
	RequestTimeout      time.Duration `env:"ONBOARD_REQUEST_TIMEOUT"`
	OnlineCheckInterval time.Duration `env:"ONBOARD_ONLINE_CHECK_INTERVAL"`
	StorageBackend      string        `env:"ONBOARD_STORAGE"`
	StoragePath         string        `env:"ONBOARD_STORAGE_PATH"`
	RedisAddr           string        `env:"ONBOARD_REDIS_ADDR"`
	RedisPassword       string        `env:"ONBOARD_REDIS_PASSWORD"`
	StorePassphrase     string        `env:"ONBOARD_STORE_PASSPHRASE"`
	RateLimit           float64       `env:"ONBOARD_RATE_LIMIT"`
	LogLevel            string        `env:"ONBOARD_LOG_LEVEL"`
	LogFormat           string        `env:"ONBOARD_LOG_FORMAT"`
}

// envFile is the dotenv file merged into the environment before reading.
// Variables already set in the process win over the file.
var envFile = ".env"

// parseEnv overlays cfg with ONBOARD_* environment variables, after loading
// envFile when it exists. It panics on malformed values.
func parseEnv(cfg *Config) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	var ec EnvConfig
	if err := cleanenv.ReadEnv(&ec); err != nil {
		panic(err)
	}

	setString(&cfg.APIURL, ec.APIURL)
	setString(&cfg.LoginPath, ec.LoginPath)
	setString(&cfg.StorageBackend, ec.StorageBackend)
	setString(&cfg.StoragePath, ec.StoragePath)
	setString(&cfg.RedisAddr, ec.RedisAddr)
	setString(&cfg.RedisPassword, ec.RedisPassword)
	setString(&cfg.StorePassphrase, ec.StorePassphrase)
	setString(&cfg.LogLevel, ec.LogLevel)
	setString(&cfg.LogFormat, ec.LogFormat)

	if ec.RequestTimeout > 0 {
		cfg.RequestTimeout = ec.RequestTimeout
	}
	if ec.OnlineCheckInterval > 0 {
		cfg.OnlineCheckInterval = ec.OnlineCheckInterval
	}
	if ec.RateLimit > 0 {
		cfg.RateLimit = ec.RateLimit
	}
}
