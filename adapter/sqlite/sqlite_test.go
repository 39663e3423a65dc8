package sqlite

import (
	"context"
	"testing"

	"github.com/jadedragon942/dbinspect/adaptertest"
	"github.com/jadedragon942/dbinspect/conn"
	"github.com/jadedragon942/dbinspect/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *conn.DB {
	t.Helper()
	db, err := conn.Open(context.Background(), "sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteConformance(t *testing.T) {
	db := openMemory(t)
	adaptertest.Setup(t, db, adaptertest.SQLiteFixture)

	adaptertest.Run(t, New(db), adaptertest.Expectations{
		TableOrder:      []string{"teams", "users", "page_visits"},
		UnboundedColumn: "description",
		AutoIncrement:   true,
	})
}

func TestSQLitePureGoDriver(t *testing.T) {
	db, err := conn.OpenDriver(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	adaptertest.Setup(t, db, adaptertest.SQLiteFixture)

	adaptertest.Run(t, New(db), adaptertest.Expectations{
		TableOrder:      []string{"teams", "users", "page_visits"},
		UnboundedColumn: "description",
		AutoIncrement:   true,
	})
}

func TestSQLiteColumnDetails(t *testing.T) {
	db := openMemory(t)
	adaptertest.Setup(t, db, adaptertest.SQLiteFixture)
	a := New(db)
	ctx := context.Background()

	info, err := a.TableInfo(ctx, "teams")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Nil(t, info.Schema)
	assert.Nil(t, info.Catalog)

	name, err := a.Column(ctx, "teams", "name")
	require.NoError(t, err)
	require.NotNil(t, name)
	assert.Equal(t, "varchar", name.DataType)
	assert.Equal(t, int64(100), *name.MaxLength)
	assert.True(t, name.IsNullable)

	credits, err := a.Column(ctx, "teams", "credits")
	require.NoError(t, err)
	require.NotNil(t, credits)
	assert.Equal(t, "integer", credits.DataType)
	assert.Nil(t, credits.MaxLength)
	assert.Nil(t, credits.NumericPrecision)
	assert.Nil(t, credits.NumericScale)

	fks, err := a.ForeignKeys(ctx, "users")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Nil(t, fks[0].ConstraintName)
	assert.Equal(t, "CASCADE", *fks[0].OnDelete)
}

func TestSQLiteEdgeCases(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()
	for _, q := range []string{
		`CREATE TABLE parents (a INTEGER NOT NULL, b TEXT NOT NULL, note TEXT DEFAULT 'none', PRIMARY KEY (a, b))`,
		`CREATE TABLE children (
			id TEXT PRIMARY KEY,
			pa INTEGER,
			pb TEXT,
			amount DECIMAL(10, 2),
			code VARCHAR(8),
			FOREIGN KEY (pa, pb) REFERENCES parents
		)`,
		`CREATE UNIQUE INDEX children_pair ON children (pa, pb)`,
		`CREATE UNIQUE INDEX children_code ON children (code)`,
	} {
		require.NoError(t, db.Exec(ctx, q))
	}
	a := New(db)

	pk, err := a.Primary(ctx, "parents")
	require.NoError(t, err)
	require.NotNil(t, pk)
	assert.Equal(t, "a", *pk)

	cols, err := a.ColumnInfo(ctx, "parents")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.True(t, cols[0].IsPrimaryKey)
	assert.True(t, cols[1].IsPrimaryKey)
	assert.False(t, cols[0].HasAutoIncrement)
	assert.Equal(t, "'none'", *cols[2].DefaultValue)
	assert.True(t, cols[2].IsUnbounded())

	fks, err := a.ForeignKeys(ctx, "children")
	require.NoError(t, err)
	require.Len(t, fks, 2)
	assert.Equal(t, schema.ForeignKey{
		Table: "children", Column: "pa", ForeignKeyTable: "parents", ForeignKeyColumn: "a",
		OnUpdate: fks[0].OnUpdate, OnDelete: fks[0].OnDelete,
	}, fks[0])
	assert.Equal(t, "b", fks[1].ForeignKeyColumn)

	id, err := a.Column(ctx, "children", "id")
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.True(t, id.IsPrimaryKey)
	assert.False(t, id.HasAutoIncrement)

	pa, err := a.Column(ctx, "children", "pa")
	require.NoError(t, err)
	require.NotNil(t, pa)
	assert.False(t, pa.IsUnique)
	assert.Equal(t, "parents", *pa.ForeignKeyTable)

	code, err := a.Column(ctx, "children", "code")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.True(t, code.IsUnique)

	amount, err := a.Column(ctx, "children", "amount")
	require.NoError(t, err)
	require.NotNil(t, amount)
	assert.Equal(t, "decimal", amount.DataType)
	assert.Equal(t, int64(10), *amount.NumericPrecision)
	assert.Equal(t, int64(2), *amount.NumericScale)
	assert.Nil(t, amount.MaxLength)
}

func TestSQLiteEmptyDatabase(t *testing.T) {
	a := New(openMemory(t))
	ctx := context.Background()

	tables, err := a.Tables(ctx)
	require.NoError(t, err)
	assert.Empty(t, tables)

	for _, name := range []string{"teams", "sqlite_master", ""} {
		ok, err := a.HasTable(ctx, name)
		require.NoError(t, err)
		assert.False(t, ok, name)
	}

	cols, err := a.ColumnInfo(ctx, "")
	require.NoError(t, err)
	assert.NotNil(t, cols)
	assert.Empty(t, cols)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in        string
		name      string
		length    *int64
		precision *int64
		scale     *int64
	}{
		{"VARCHAR(100)", "varchar", i64(100), nil, nil},
		{"char(36)", "char", i64(36), nil, nil},
		{"TEXT", "text", i64(-1), nil, nil},
		{"NVARCHAR", "nvarchar", i64(-1), nil, nil},
		{"CLOB", "clob", i64(-1), nil, nil},
		{"INTEGER", "integer", nil, nil, nil},
		{"DECIMAL(10, 2)", "decimal", nil, i64(10), i64(2)},
		{"NUMERIC(8)", "numeric", nil, i64(8), i64(0)},
		{"BLOB", "blob", nil, nil, nil},
		{"", "", nil, nil, nil},
		{"VARCHAR(max)", "varchar", i64(-1), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseType(tt.in)
			assert.Equal(t, tt.name, got.Name)
			assert.Equal(t, tt.length, got.Length)
			assert.Equal(t, tt.precision, got.Precision)
			assert.Equal(t, tt.scale, got.Scale)
		})
	}
}

func i64(n int64) *int64 { return &n }
