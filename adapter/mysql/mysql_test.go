package mysql

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

// The MySQL driver returns text columns as []byte.
func fakeCatalog() *adaptertest.FakeQueryer {
	b := func(s string) []byte { return []byte(s) }
	return adaptertest.NewFakeQueryer().
		Ignore("test_db").
		On("ORDER BY t.TABLE_NAME",
			row.Row{"table_name": b("page_visits"), "table_schema": b("test_db")},
		).
		On("FROM information_schema.COLUMNS c",
			row.Row{"table_name": b("teams"), "column_name": b("id"), "data_type": b("int"), "column_default": nil, "is_nullable": b("NO"), "max_length": nil, "numeric_precision": uint64(10), "numeric_scale": uint64(0), "extra": b("auto_increment")},
			row.Row{"table_name": b("teams"), "column_name": b("uuid"), "data_type": b("char"), "is_nullable": b("NO"), "max_length": int64(36), "extra": b("")},
			row.Row{"table_name": b("teams"), "column_name": b("description"), "data_type": b("text"), "is_nullable": b("YES"), "max_length": int64(65535), "extra": b("")},
			row.Row{"table_name": b("teams"), "column_name": b("credits"), "data_type": b("decimal"), "column_default": b("0.00"), "is_nullable": b("YES"), "numeric_precision": b("8"), "numeric_scale": b("2"), "extra": b("")},
			row.Row{"table_name": b("users"), "column_name": b("team_id"), "data_type": b("int"), "is_nullable": b("NO"), "numeric_precision": uint64(10), "numeric_scale": uint64(0), "extra": b("")},
		).
		On("INDEX_NAME = 'PRIMARY'",
			row.Row{"table_name": b("teams"), "column_name": b("id")},
		).
		On("NON_UNIQUE = 0",
			row.Row{"table_name": b("teams"), "column_name": b("uuid")},
		).
		On("REFERENTIAL_CONSTRAINTS",
			row.Row{"table_name": b("users"), "column_name": b("team_id"), "foreign_key_schema": b("test_db"), "foreign_key_table": b("teams"), "foreign_key_column": b("id"), "constraint_name": b("users_team_id_foreign"), "on_update": b("CASCADE"), "on_delete": b("CASCADE")},
		)
}

func TestMySQLColumnInfo(t *testing.T) {
	a := New(fakeCatalog(), "test_db")
	ctx := context.Background()

	cols, err := a.ColumnInfo(ctx, "teams")
	require.NoError(t, err)
	require.Len(t, cols, 4)

	id := cols[0]
	assert.Equal(t, "int", id.DataType)
	assert.True(t, id.HasAutoIncrement)
	assert.True(t, id.IsPrimaryKey)
	assert.Equal(t, int64(10), *id.NumericPrecision)
	assert.Equal(t, int64(0), *id.NumericScale)

	assert.True(t, cols[1].IsUnique)
	assert.False(t, cols[1].IsNullable)

	description := cols[2]
	assert.False(t, description.IsUnbounded())
	assert.Equal(t, int64(65535), *description.MaxLength)

	credits := cols[3]
	assert.Equal(t, "0.00", *credits.DefaultValue)
	assert.Equal(t, int64(8), *credits.NumericPrecision)
	assert.Equal(t, int64(2), *credits.NumericScale)

	teamID, err := a.Column(ctx, "users", "team_id")
	require.NoError(t, err)
	require.NotNil(t, teamID)
	assert.Equal(t, "teams", *teamID.ForeignKeyTable)
	assert.Equal(t, "id", *teamID.ForeignKeyColumn)

	fks, err := a.ForeignKeys(ctx, "users")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, "users_team_id_foreign", *fks[0].ConstraintName)
}

func TestMySQLTables(t *testing.T) {
	fake := adaptertest.NewFakeQueryer().
		On("information_schema.TABLES",
			row.Row{"table_name": []byte("page_visits"), "table_schema": []byte("test_db")},
			row.Row{"table_name": []byte("teams"), "table_schema": []byte("test_db")},
		)
	a := New(fake, "")
	ctx := context.Background()

	tables, err := a.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"page_visits", "teams"}, tables)

	info, err := a.TableInfo(ctx, "teams")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "test_db", *info.Schema)
	assert.Nil(t, info.Catalog)

	assert.Contains(t, fake.Calls()[0].Query, "t.TABLE_SCHEMA = DATABASE()")
}

func TestMySQLConformance(t *testing.T) {
	connStr := os.Getenv("MYSQL_TEST_URL")
	if connStr == "" {
		t.Skip("MYSQL_TEST_URL not set, skipping MySQL tests")
	}

	ctx := context.Background()
	db, err := conn.Open(ctx, "mysql", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to MySQL: %v", err)
	}
	defer db.Close()

	adaptertest.Setup(t, db, adaptertest.MySQLFixture)
	adaptertest.Run(t, New(db, ""), adaptertest.Expectations{
		HasSchema:     true,
		TableOrder:    []string{"page_visits", "teams", "users"},
		AutoIncrement: true,
	})
}

func TestTiDBConformance(t *testing.T) {
	connStr := os.Getenv("TIDB_TEST_URL")
	if connStr == "" {
		t.Skip("TIDB_TEST_URL not set, skipping TiDB tests")
	}

	ctx := context.Background()
	db, err := conn.Open(ctx, "tidb", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to TiDB: %v", err)
	}
	defer db.Close()

	adaptertest.Setup(t, db, adaptertest.MySQLFixture)
	adaptertest.Run(t, New(db, ""), adaptertest.Expectations{
		HasSchema:     true,
		TableOrder:    []string{"page_visits", "teams", "users"},
		AutoIncrement: true,
	})
}
