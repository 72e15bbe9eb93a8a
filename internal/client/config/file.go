package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/onboarding/internal/flagx"
	"github.com/dmitrijs2005/onboarding/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. It relies on
// timex.Duration so intervals may be written as "3s" or as integer
// nanoseconds. Only members present in the file override the current values.
type FileConfig struct {
	APIURL              string          `json:"api_url" yaml:"api_url"`
	LoginPath           string          `json:"login_path" yaml:"login_path"`
	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	StorageBackend      string          `json:"storage_backend" yaml:"storage_backend"`
	StoragePath         string          `json:"storage_path" yaml:"storage_path"`
	RedisAddr           string          `json:"redis_addr" yaml:"redis_addr"`
	RedisPassword       string          `json:"redis_password" yaml:"redis_password"`
	RedisDB             *int            `json:"redis_db" yaml:"redis_db"`
	StorePassphrase     string          `json:"store_passphrase" yaml:"store_passphrase"`
	RateLimit           *float64        `json:"rate_limit" yaml:"rate_limit"`
	LogLevel            string          `json:"log_level" yaml:"log_level"`
	LogFormat           string          `json:"log_format" yaml:"log_format"`
}

// parseFile overlays cfg with the file named by -c or -config. Files ending
// in .yaml or .yml are read as YAML, everything else as JSON. It panics on
// read or decode errors.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.APIURL, fc.APIURL)
	setString(&cfg.LoginPath, fc.LoginPath)
	setString(&cfg.StorageBackend, fc.StorageBackend)
	setString(&cfg.StoragePath, fc.StoragePath)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	setString(&cfg.RedisPassword, fc.RedisPassword)
	setString(&cfg.StorePassphrase, fc.StorePassphrase)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)

	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	if fc.RateLimit != nil {
		cfg.RateLimit = *fc.RateLimit
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
