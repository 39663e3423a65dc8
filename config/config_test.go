package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "dbinspect.toml", `
backend = "pgx"
dsn = "postgres://localhost/app"
schema = " public "
exclude_tables = ["schema_migrations", "audit_log"]

[log]
level = "DEBUG"
format = "json"

[export]
format = "yml"
dest = "s3://snapshots/app?region=eu-west-1"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/app", cfg.DSN)
	assert.Equal(t, "public", cfg.Schema)
	assert.Equal(t, []string{"schema_migrations", "audit_log"}, cfg.ExcludeTables)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "yaml", cfg.Export.Format)
	assert.Equal(t, "s3://snapshots/app?region=eu-west-1", cfg.Export.Dest)

	b, err := cfg.BackendID()
	require.NoError(t, err)
	assert.Equal(t, adapter.Postgres, b)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "dbinspect.yaml", `
backend: sqlite
driver: sqlite
dsn: ":memory:"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "sqlite", cfg.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "json", cfg.Export.Format)
	assert.Equal(t, ".", cfg.Export.Dest)
}

func TestLoadEmptyYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = cfg.BackendID()
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]struct {
		name    string
		content string
	}{
		"unknown toml key":  {"a.toml", "backnd = \"mysql\"\n"},
		"unknown yaml key":  {"a.yaml", "backnd: mysql\n"},
		"bad backend":       {"a.toml", "backend = \"db2\"\n"},
		"bad log level":     {"a.toml", "[log]\nlevel = \"trace\"\n"},
		"bad log format":    {"a.yaml", "log:\n  format: xml\n"},
		"bad export format": {"a.yaml", "export:\n  format: csv\n"},
		"bad extension":     {"a.ini", "backend=mysql\n"},
		"malformed toml":    {"a.toml", "backend = \n"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.name, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestBadBackendIsUnsupported(t *testing.T) {
	_, err := Load(writeConfig(t, "a.toml", "backend = \"db2\"\n"))
	assert.ErrorIs(t, err, adapter.ErrUnsupportedBackend)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)

	log.Info().Msg("hidden")
	log.Warn().Str("table", "users").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"table":"users"`)
	assert.Contains(t, out, `"level":"warn"`)
}
