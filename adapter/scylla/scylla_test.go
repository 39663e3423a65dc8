package scylla

import (
	"context"
	"os"
	"testing"

	"github.com/jadedragon942/dbinspect/adaptertest"
	"github.com/jadedragon942/dbinspect/conn"
	"github.com/jadedragon942/dbinspect/row"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type keyspaceSession struct {
	*adaptertest.FakeQueryer
}

func (keyspaceSession) Keyspace() string { return "app" }

func fakeCatalog() *adaptertest.FakeQueryer {
	return adaptertest.NewFakeQueryer().
		Ignore("app").
		On("system_schema.tables",
			row.Row{"keyspace_name": "app", "table_name": "users"},
			row.Row{"keyspace_name": "app", "table_name": "page_visits"},
		).
		On("system_schema.columns",
			row.Row{"table_name": "users", "column_name": "email", "kind": "regular", "position": -1, "type": "text"},
			row.Row{"table_name": "users", "column_name": "created_at", "kind": "clustering", "position": 0, "type": "timestamp"},
			row.Row{"table_name": "users", "column_name": "age", "kind": "regular", "position": -1, "type": "int"},
			row.Row{"table_name": "users", "column_name": "id", "kind": "partition_key", "position": 0, "type": "uuid"},
			row.Row{"table_name": "page_visits", "column_name": "path", "kind": "partition_key", "position": 1, "type": "ascii"},
			row.Row{"table_name": "page_visits", "column_name": "day", "kind": "partition_key", "position": 0, "type": "date"},
			row.Row{"table_name": "page_visits", "column_name": "tags", "kind": "static", "position": -1, "type": "set<text>"},
		)
}

func TestScyllaTables(t *testing.T) {
	a := New(fakeCatalog(), "app")
	ctx := context.Background()

	tables, err := a.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"page_visits", "users"}, tables)

	info, err := a.TableInfo(ctx, "users")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "app", *info.Schema)
	assert.Nil(t, info.Catalog)

	has, err := a.HasTable(ctx, "foobar")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestScyllaColumnOrder(t *testing.T) {
	a := New(fakeCatalog(), "app")
	ctx := context.Background()

	refs, err := a.Columns(ctx, "")
	require.NoError(t, err)
	var got []string
	for _, r := range refs {
		got = append(got, r.Table+"."+r.Column)
	}
	assert.Equal(t, []string{
		"page_visits.day", "page_visits.path", "page_visits.tags",
		"users.id", "users.created_at", "users.age", "users.email",
	}, got)
}

func TestScyllaColumnInfo(t *testing.T) {
	a := New(fakeCatalog(), "app")
	ctx := context.Background()

	cols, err := a.ColumnInfo(ctx, "users")
	require.NoError(t, err)
	require.Len(t, cols, 4)

	id := cols[0]
	assert.Equal(t, "uuid", id.DataType)
	assert.True(t, id.IsPrimaryKey)
	assert.False(t, id.IsNullable)
	assert.False(t, id.IsUnique)
	assert.False(t, id.HasAutoIncrement)
	assert.Nil(t, id.MaxLength)

	assert.True(t, cols[1].IsPrimaryKey)

	email := cols[3]
	assert.True(t, email.IsUnbounded())
	assert.True(t, email.IsNullable)
	assert.False(t, email.IsPrimaryKey)
	assert.Nil(t, email.ForeignKeyTable)

	path, err := a.Column(ctx, "page_visits", "path")
	require.NoError(t, err)
	require.NotNil(t, path)
	assert.True(t, path.IsUnbounded())

	pk, err := a.Primary(ctx, "page_visits")
	require.NoError(t, err)
	require.NotNil(t, pk)
	assert.Equal(t, "day", *pk)

	fks, err := a.ForeignKeys(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, fks)
	assert.Empty(t, fks)
}

func TestScyllaSessionKeyspace(t *testing.T) {
	fake := fakeCatalog()
	a := New(keyspaceSession{fake}, "")

	tables, err := a.Tables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables, 2)
	assert.Equal(t, []any{"app"}, fake.Calls()[0].Args)
}

func TestScyllaNoKeyspace(t *testing.T) {
	_, err := New(fakeCatalog(), "").Tables(context.Background())
	assert.ErrorIs(t, err, errNoKeyspace)
}

func TestScyllaConformance(t *testing.T) {
	connStr := os.Getenv("SCYLLA_TEST_URL")
	if connStr == "" {
		t.Skip("SCYLLA_TEST_URL not set, skipping ScyllaDB tests")
	}

	ctx := context.Background()
	session, err := conn.OpenScylla(connStr)
	if err != nil {
		t.Fatalf("Failed to connect to ScyllaDB: %v", err)
	}
	defer session.Close()

	adaptertest.Setup(t, session, adaptertest.Fixture{
		Drop: []string{"DROP TABLE IF EXISTS teams"},
		Create: []string{`CREATE TABLE teams (
			id int,
			created_at timestamp,
			name text,
			credits int,
			PRIMARY KEY (id, created_at)
		)`},
	})

	a := New(session, "")
	has, err := a.HasTable(ctx, "teams")
	require.NoError(t, err)
	assert.True(t, has)

	refs, err := a.Columns(ctx, "teams")
	require.NoError(t, err)
	var names []string
	for _, r := range refs {
		names = append(names, r.Column)
	}
	assert.Equal(t, []string{"id", "created_at", "credits", "name"}, names)

	name, err := a.Column(ctx, "teams", "name")
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.True(t, name.IsUnbounded())
	assert.True(t, name.IsNullable)

	pk, err := a.Primary(ctx, "teams")
	require.NoError(t, err)
	require.NotNil(t, pk)
	assert.Equal(t, "id", *pk)
}
