// Package config loads runtime configuration for the onboarding CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file (see parseFile) selected via -c or -config.
//  3. Environment: a .env file if present, then ONBOARD_* variables
//     (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// The result is checked by (*Config).Validate.
//
// Supported flags
//
//	-a string   base URL of the backend API
//	-i int      online status check interval (seconds)
//	-s string   storage backend (sqlite, keyring, redis, memory)
//	-t int      request timeout (seconds)
//
// # File schema
//
// Intervals use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_url": "http://localhost:8000/api",
//	  "online_check_interval": "3s",
//	  "storage_backend": "keyring"
//	}
//
// The same keys are accepted in YAML.
package config
