package adapter

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnsupportedBackend = errors.New("unsupported backend")

type Backend string

const (
	MSSQL       Backend = "mssql"
	MySQL       Backend = "mysql"
	Postgres    Backend = "postgres"
	CockroachDB Backend = "cockroachdb"
	SQLite      Backend = "sqlite"
	Oracle      Backend = "oracle"
	Scylla      Backend = "scylla"
)

var backendAliases = map[string]Backend{
	"mssql":       MSSQL,
	"sqlserver":   MSSQL,
	"mysql":       MySQL,
	"tidb":        MySQL,
	"mariadb":     MySQL,
	"postgres":    Postgres,
	"postgresql":  Postgres,
	"pg":          Postgres,
	"pgx":         Postgres,
	"yugabyte":    Postgres,
	"yugabytedb":  Postgres,
	"cockroachdb": CockroachDB,
	"cockroach":   CockroachDB,
	"crdb":        CockroachDB,
	"sqlite":      SQLite,
	"sqlite3":     SQLite,
	"oracle":      Oracle,
	"oracledb":    Oracle,
	"godror":      Oracle,
	"scylla":      Scylla,
	"scylladb":    Scylla,
	"cassandra":   Scylla,
}

// ParseBackend resolves a backend name or one of its driver aliases.
func ParseBackend(name string) (Backend, error) {
	b, ok := backendAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, name)
	}
	return b, nil
}

func Backends() []Backend {
	return []Backend{MSSQL, MySQL, Postgres, CockroachDB, SQLite, Oracle, Scylla}
}

func (b Backend) String() string {
	return string(b)
}
