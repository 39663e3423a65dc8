// Package cockroach inspects CockroachDB. It speaks the PostgreSQL catalog
// dialect with a few differences: hidden rowid columns, unique_rowid()
// defaults and no usable pg_index key vectors.
package cockroach

import (
	"context"
	"strings"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/common"
	"github.com/jadedragon942/dbinspect/adapter/postgres"
	"github.com/jadedragon942/dbinspect/schema"
)

type Catalog struct {
	*postgres.Catalog
}

func New(q adapter.Queryer, schemaName string) adapter.Adapter {
	return common.Adapt(NewCatalog(q, schemaName))
}

func NewCatalog(q adapter.Queryer, schemaName string) *Catalog {
	return &Catalog{Catalog: postgres.NewCatalog(q, schemaName)}
}

func (c *Catalog) ListColumns(ctx context.Context, table, column string) ([]common.RawColumn, error) {
	w := c.ColumnsWhere(table, column).Raw("c.is_hidden = 'NO'")
	cols, err := c.ListColumnsWhere(ctx, w)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		if isRowIDDefault(cols[i].Default) {
			cols[i].AutoIncrement = true
		}
	}
	return cols, nil
}

func isRowIDDefault(def *string) bool {
	return def != nil && strings.HasPrefix(strings.TrimSpace(*def), "unique_rowid()")
}

const primaryKeysQuery = `
SELECT kcu.table_name AS table_name, kcu.column_name AS column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON kcu.constraint_name = tc.constraint_name
	AND kcu.constraint_schema = tc.constraint_schema
	AND kcu.table_name = tc.table_name
JOIN information_schema.columns col
	ON col.table_schema = kcu.table_schema
	AND col.table_name = kcu.table_name
	AND col.column_name = kcu.column_name
%s
ORDER BY kcu.table_name, kcu.ordinal_position`

// PrimaryKeys skips the hidden rowid key CockroachDB adds to tables declared
// without a primary key.
func (c *Catalog) PrimaryKeys(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.Where().
		Raw("tc.constraint_type = 'PRIMARY KEY'").
		Raw("col.is_hidden = 'NO'").
		SchemaEq("tc.table_schema", c.Schema, c.CurrentSchema).
		EqIf("tc.table_name", table)
	rows, err := c.QueryWhere(ctx, primaryKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

func (c *Catalog) UniqueColumns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	return c.UniqueConstraintColumns(ctx, table)
}
