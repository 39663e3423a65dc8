// Package config loads dbinspect settings from TOML or YAML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/export"
	"gopkg.in/yaml.v3"
)

// Config describes one database to inspect and how to report on it.
type Config struct {
	Backend string `toml:"backend" yaml:"backend"`
	// Driver overrides the database/sql driver picked for Backend, such as
	// "sqlite" for the pure Go SQLite driver or "pgx".
	Driver        string       `toml:"driver" yaml:"driver"`
	DSN           string       `toml:"dsn" yaml:"dsn"`
	Schema        string       `toml:"schema" yaml:"schema"`
	ExcludeTables []string     `toml:"exclude_tables" yaml:"exclude_tables"`
	Log           LogConfig    `toml:"log" yaml:"log"`
	Export        ExportConfig `toml:"export" yaml:"export"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`   // debug|info|warn|error
	Format string `toml:"format" yaml:"format"` // console|json
}

// ExportConfig controls where the snapshot command writes.
type ExportConfig struct {
	Format string `toml:"format" yaml:"format"` // json|yaml
	// Dest is a directory or an s3://bucket/prefix?region=&endpoint= URL.
	Dest string `toml:"dest" yaml:"dest"`
	Name string `toml:"name" yaml:"name"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Export: ExportConfig{
			Format: "json",
			Dest:   ".",
		},
	}
}

// Load reads a .toml, .yaml or .yml file over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = decodeTOML(data, cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, cfg)
	default:
		err = fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Validate normalizes the settings and reports the first invalid one. An
// empty backend is allowed so flags can supply it later.
func (c *Config) Validate() error {
	c.Backend = strings.TrimSpace(c.Backend)
	if c.Backend != "" {
		if _, err := adapter.ParseBackend(c.Backend); err != nil {
			return err
		}
	}
	c.Schema = strings.TrimSpace(c.Schema)

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error")
	}

	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be one of: console, json")
	}

	format, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		return fmt.Errorf("export.format: %w", err)
	}
	c.Export.Format = string(format)
	if c.Export.Dest == "" {
		c.Export.Dest = "."
	}
	return nil
}

// BackendID resolves the configured backend.
func (c *Config) BackendID() (adapter.Backend, error) {
	if c.Backend == "" {
		return "", errors.New("backend is required")
	}
	return adapter.ParseBackend(c.Backend)
}
