package config

import "github.com/spf13/pflag"

// MapConfig holds settings for the map command.
type MapConfig struct {
	In             string
	PGDSN          string
	StateFile      string
	BatchSize      int
	RevisionPolicy string
	CursorName     string
	SkipInvalid    bool
	LogLevel       string
}

// LoadMap merges config file, environment variables, and flags into MapConfig.
func LoadMap(cfgFile string, flags *pflag.FlagSet) (MapConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"in":              "./data/typed_events.jsonl",
		"batch-size":      500,
		"revision-policy": "compat",
		"cursor":          "mapping",
		"log-level":       "info",
	})
	if err != nil {
		return MapConfig{}, err
	}

	return MapConfig{
		In:             v.GetString("in"),
		PGDSN:          v.GetString("pg-dsn"),
		StateFile:      v.GetString("state-file"),
		BatchSize:      v.GetInt("batch-size"),
		RevisionPolicy: v.GetString("revision-policy"),
		CursorName:     v.GetString("cursor"),
		SkipInvalid:    v.GetBool("skip-invalid"),
		LogLevel:       v.GetString("log-level"),
	}, nil
}
