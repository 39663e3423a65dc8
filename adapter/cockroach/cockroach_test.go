package cockroach

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jadedragon942/dbinspect/adaptertest"
	"github.com/jadedragon942/dbinspect/conn"
	"github.com/jadedragon942/dbinspect/row"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCockroachColumns(t *testing.T) {
	fake := adaptertest.NewFakeQueryer().
		On("FROM information_schema.columns c",
			row.Row{"table_name": "teams", "column_name": "id", "data_type": "bigint", "column_default": "unique_rowid()", "is_nullable": "NO", "numeric_precision": int64(64), "numeric_scale": int64(0), "is_identity": "NO"},
			row.Row{"table_name": "teams", "column_name": "description", "data_type": "text", "is_nullable": "YES", "is_identity": "NO"},
		).
		On("'PRIMARY KEY'",
			row.Row{"table_name": "teams", "column_name": "id"},
		).
		On("'UNIQUE'",
			row.Row{"table_name": "teams", "column_name": "description"},
		)
	a := New(fake, "")
	ctx := context.Background()

	cols, err := a.ColumnInfo(ctx, "teams")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.True(t, cols[0].HasAutoIncrement)
	assert.True(t, cols[0].IsPrimaryKey)
	assert.True(t, cols[1].IsUnbounded())
	assert.True(t, cols[1].IsUnique)

	var sawHidden, sawPKHidden bool
	for _, c := range fake.Calls() {
		if strings.Contains(c.Query, "c.is_hidden = 'NO'") {
			sawHidden = true
		}
		if strings.Contains(c.Query, "col.is_hidden = 'NO'") {
			sawPKHidden = true
		}
	}
	assert.True(t, sawHidden)
	assert.True(t, sawPKHidden)
}

func TestCockroachPrimaryWithoutKey(t *testing.T) {
	fake := adaptertest.NewFakeQueryer()
	pk, err := New(fake, "").Primary(context.Background(), "page_visits")
	require.NoError(t, err)
	assert.Nil(t, pk)
}

func TestIsRowIDDefault(t *testing.T) {
	s := "unique_rowid()"
	assert.True(t, isRowIDDefault(&s))
	s = "gen_random_uuid()"
	assert.False(t, isRowIDDefault(&s))
	assert.False(t, isRowIDDefault(nil))
}

func TestCockroachConformance(t *testing.T) {
	connStr := os.Getenv("COCKROACH_TEST_URL")
	if connStr == "" {
		t.Skip("COCKROACH_TEST_URL not set, skipping CockroachDB tests")
	}

	ctx := context.Background()
	db, err := conn.Open(ctx, "cockroachdb", connStr)
	if err != nil {
		t.Fatalf("Failed to connect to CockroachDB: %v", err)
	}
	defer db.Close()

	adaptertest.Setup(t, db, adaptertest.CockroachFixture)
	adaptertest.Run(t, New(db, ""), adaptertest.Expectations{
		Schema:          "public",
		HasCatalog:      true,
		TableOrder:      []string{"teams", "users", "page_visits"},
		UnboundedColumn: "description",
		AutoIncrement:   true,
	})
}
