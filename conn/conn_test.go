package conn

import (
	"context"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Exec(ctx, "CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT)"))
	require.NoError(t, db.Exec(ctx, "INSERT INTO teams (name) VALUES (?), (?)", "a", nil))

	rows, err := db.Query(ctx, "SELECT id, name FROM teams ORDER BY id")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), *rows[0].Int("id"))
	assert.Equal(t, "a", rows[0].Text("name"))
	assert.Nil(t, rows[1].String("name"))

	rows, err = db.Query(ctx, "SELECT id FROM teams WHERE 1 = 0")
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	_, err = db.Query(ctx, "SELECT nope FROM missing")
	assert.Error(t, err)
}

func TestOpenPureGoSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDriver(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(ctx, "SELECT 1 AS one")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), *rows[0].Int("one"))
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), "db2", "x")
	assert.ErrorIs(t, err, adapter.ErrUnsupportedBackend)

	_, err = Open(context.Background(), "scylla", "localhost/ks")
	assert.ErrorIs(t, err, adapter.ErrUnsupportedBackend)
}

func TestNormalizeMySQL(t *testing.T) {
	dsn, err := normalizeMySQL("root:secret@tcp(localhost:3306)/test_db")
	require.NoError(t, err)
	assert.Contains(t, dsn, "/test_db")

	_, err = normalizeMySQL("root:secret@tcp(localhost:3306)/")
	assert.Error(t, err)

	_, err = normalizeMySQL("not a dsn")
	assert.Error(t, err)
}

func TestNilDB(t *testing.T) {
	var db *DB
	_, err := db.Query(context.Background(), "SELECT 1")
	assert.EqualError(t, err, "not connected")
	assert.NoError(t, db.Close())
}

func TestParseScylla(t *testing.T) {
	cfg, err := ParseScylla("localhost:9042,10.0.0.2:9042/inspect?consistency=localquorum&timeout=5s")
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9042", "10.0.0.2:9042"}, cfg.Hosts)
	assert.Equal(t, "inspect", cfg.Keyspace)
	assert.Equal(t, gocql.LocalQuorum, cfg.Consistency)
	assert.Equal(t, 5*time.Second, cfg.Timeout)

	cfg, err = ParseScylla("localhost/inspect")
	require.NoError(t, err)
	assert.Equal(t, gocql.Quorum, cfg.Consistency)
	assert.Equal(t, 10*time.Second, cfg.Timeout)

	_, err = ParseScylla("localhost")
	assert.Error(t, err)
	_, err = ParseScylla("localhost/")
	assert.Error(t, err)
	_, err = ParseScylla("localhost/ks?consistency=bogus")
	assert.Error(t, err)
	_, err = ParseScylla("localhost/ks?timeout=soon")
	assert.Error(t, err)
}
