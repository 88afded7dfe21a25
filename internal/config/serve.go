package config

import (
	"time"

	"github.com/spf13/pflag"
)

// ServeConfig holds settings for the serve command.
type ServeConfig struct {
	Listen          string
	PGDSN           string
	StateFile       string
	ShutdownTimeout time.Duration
	LogLevel        string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"listen":           ":8080",
		"shutdown-timeout": 10 * time.Second,
		"log-level":        "info",
	})
	if err != nil {
		return ServeConfig{}, err
	}

	return ServeConfig{
		Listen:          v.GetString("listen"),
		PGDSN:           v.GetString("pg-dsn"),
		StateFile:       v.GetString("state-file"),
		ShutdownTimeout: v.GetDuration("shutdown-timeout"),
		LogLevel:        v.GetString("log-level"),
	}, nil
}
