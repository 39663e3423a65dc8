// Package conn opens database connections for inspection and exposes them as
// adapter.Queryer values.
package conn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	_ "github.com/godror/godror"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/row"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"
)

// DB is a database/sql connection that decodes query results into rows.
type DB struct {
	db   *sql.DB
	pool *pgxpool.Pool
}

var _ adapter.Queryer = (*DB)(nil)

// Wrap adopts an already opened *sql.DB.
func Wrap(db *sql.DB) *DB {
	return &DB{db: db}
}

// DriverName returns the database/sql driver registered for a backend.
func DriverName(b adapter.Backend) (string, error) {
	switch b {
	case adapter.MSSQL:
		return "sqlserver", nil
	case adapter.MySQL:
		return "mysql", nil
	case adapter.Postgres:
		return "postgres", nil
	case adapter.CockroachDB:
		return "pgx", nil
	case adapter.SQLite:
		return "sqlite3", nil
	case adapter.Oracle:
		return "godror", nil
	}
	return "", fmt.Errorf("%w: %s has no database/sql driver", adapter.ErrUnsupportedBackend, b)
}

// Open connects to a backend with its default driver and verifies the
// connection.
func Open(ctx context.Context, backend, connStr string) (*DB, error) {
	b, err := adapter.ParseBackend(backend)
	if err != nil {
		return nil, err
	}

	switch b {
	case adapter.CockroachDB:
		return openPool(ctx, connStr)
	case adapter.MySQL:
		connStr, err = normalizeMySQL(connStr)
		if err != nil {
			return nil, err
		}
	}

	driver, err := DriverName(b)
	if err != nil {
		return nil, err
	}
	return OpenDriver(ctx, driver, connStr)
}

// OpenDriver connects with an explicit database/sql driver name, such as
// "sqlite" for the pure Go SQLite driver or "pgx" for PostgreSQL over pgx.
func OpenDriver(ctx context.Context, driver, connStr string) (*DB, error) {
	db, err := sql.Open(driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if driver == "sqlite3" || driver == "sqlite" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	return &DB{db: db}, nil
}

func openPool(ctx context.Context, connStr string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to cockroachdb: %w", err)
	}
	return &DB{db: stdlib.OpenDBFromPool(pool), pool: pool}, nil
}

// normalizeMySQL validates a MySQL DSN. Catalog queries resolve the schema
// from DATABASE(), so the DSN has to name one.
func normalizeMySQL(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid mysql connection string: %w", err)
	}
	if cfg.DBName == "" {
		return "", errors.New("mysql connection string must name a database")
	}
	return cfg.FormatDSN(), nil
}

func (d *DB) Query(ctx context.Context, query string, args ...any) ([]row.Row, error) {
	if d == nil || d.db == nil {
		return nil, errors.New("not connected")
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return ScanRows(rows)
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) error {
	if d == nil || d.db == nil {
		return errors.New("not connected")
	}
	_, err := d.db.ExecContext(ctx, query, args...)
	return err
}

// SQL returns the underlying handle.
func (d *DB) SQL() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	err := d.db.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// ScanRows reads every row into a row.Row keyed by column name and closes
// rows. The result is never nil.
func ScanRows(rows *sql.Rows) ([]row.Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read column names: %w", err)
	}

	result := make([]row.Row, 0)
	for rows.Next() {
		dest := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r := make(row.Row, len(columns))
		for i, col := range columns {
			r[col] = dest[i]
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return result, nil
}
