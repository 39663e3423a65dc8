// Package mysql inspects MySQL, MariaDB and TiDB through
// information_schema.
package mysql

import (
	"context"
	"strings"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/common"
	"github.com/jadedragon942/dbinspect/schema"
)

const currentSchema = "DATABASE()"

type Catalog struct {
	common.Base
}

func New(q adapter.Queryer, schemaName string) adapter.Adapter {
	return common.Adapt(NewCatalog(q, schemaName))
}

func NewCatalog(q adapter.Queryer, schemaName string) *Catalog {
	return &Catalog{Base: common.NewBase(q, common.Question, schemaName)}
}

// MySQL keeps no creation order, so tables are listed by name.
const tablesQuery = `
SELECT t.TABLE_NAME AS table_name, t.TABLE_SCHEMA AS table_schema
FROM information_schema.TABLES t
%s
ORDER BY t.TABLE_NAME`

func (c *Catalog) ListTables(ctx context.Context, table string) ([]schema.TableInfo, error) {
	w := c.Where().
		Raw("t.TABLE_TYPE = 'BASE TABLE'").
		SchemaEq("t.TABLE_SCHEMA", c.Schema, currentSchema).
		EqIf("t.TABLE_NAME", table)
	rows, err := c.QueryWhere(ctx, tablesQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeTables(rows), nil
}

const columnsQuery = `
SELECT
	c.TABLE_NAME AS table_name,
	c.COLUMN_NAME AS column_name,
	c.DATA_TYPE AS data_type,
	c.COLUMN_DEFAULT AS column_default,
	c.IS_NULLABLE AS is_nullable,
	c.CHARACTER_MAXIMUM_LENGTH AS max_length,
	c.NUMERIC_PRECISION AS numeric_precision,
	c.NUMERIC_SCALE AS numeric_scale,
	c.EXTRA AS extra
FROM information_schema.COLUMNS c
JOIN information_schema.TABLES t
	ON t.TABLE_SCHEMA = c.TABLE_SCHEMA
	AND t.TABLE_NAME = c.TABLE_NAME
%s
ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`

// ListColumns reports text lengths exactly as the catalog does; TEXT is
// 65535 and LONGTEXT 4294967295 rather than unbounded.
func (c *Catalog) ListColumns(ctx context.Context, table, column string) ([]common.RawColumn, error) {
	w := c.Where().
		Raw("t.TABLE_TYPE = 'BASE TABLE'").
		SchemaEq("c.TABLE_SCHEMA", c.Schema, currentSchema).
		EqIf("c.TABLE_NAME", table).
		EqIf("c.COLUMN_NAME", column)
	rows, err := c.QueryWhere(ctx, columnsQuery, w)
	if err != nil {
		return nil, err
	}

	cols := make([]common.RawColumn, 0, len(rows))
	for _, r := range rows {
		col := common.DecodeColumn(r)
		col.AutoIncrement = strings.Contains(strings.ToLower(r.Text("extra")), "auto_increment")
		cols = append(cols, col)
	}
	return cols, nil
}

const primaryKeysQuery = `
SELECT s.TABLE_NAME AS table_name, s.COLUMN_NAME AS column_name
FROM information_schema.STATISTICS s
%s
ORDER BY s.TABLE_NAME, s.SEQ_IN_INDEX`

func (c *Catalog) PrimaryKeys(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.Where().
		Raw("s.INDEX_NAME = 'PRIMARY'").
		SchemaEq("s.TABLE_SCHEMA", c.Schema, currentSchema).
		EqIf("s.TABLE_NAME", table)
	rows, err := c.QueryWhere(ctx, primaryKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

const uniqueQuery = `
SELECT s.TABLE_NAME AS table_name, MIN(s.COLUMN_NAME) AS column_name
FROM information_schema.STATISTICS s
%s
GROUP BY s.TABLE_NAME, s.INDEX_NAME
HAVING COUNT(*) = 1
ORDER BY s.TABLE_NAME, column_name`

func (c *Catalog) UniqueColumns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.Where().
		Raw("s.NON_UNIQUE = 0").
		Raw("s.INDEX_NAME <> 'PRIMARY'").
		SchemaEq("s.TABLE_SCHEMA", c.Schema, currentSchema).
		EqIf("s.TABLE_NAME", table)
	rows, err := c.QueryWhere(ctx, uniqueQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

const foreignKeysQuery = `
SELECT
	kcu.TABLE_NAME AS table_name,
	kcu.COLUMN_NAME AS column_name,
	kcu.REFERENCED_TABLE_SCHEMA AS foreign_key_schema,
	kcu.REFERENCED_TABLE_NAME AS foreign_key_table,
	kcu.REFERENCED_COLUMN_NAME AS foreign_key_column,
	kcu.CONSTRAINT_NAME AS constraint_name,
	rc.UPDATE_RULE AS on_update,
	rc.DELETE_RULE AS on_delete
FROM information_schema.KEY_COLUMN_USAGE kcu
JOIN information_schema.REFERENTIAL_CONSTRAINTS rc
	ON kcu.CONSTRAINT_NAME = rc.CONSTRAINT_NAME
	AND kcu.TABLE_SCHEMA = rc.CONSTRAINT_SCHEMA
%s
ORDER BY kcu.TABLE_NAME, kcu.CONSTRAINT_NAME, kcu.ORDINAL_POSITION`

func (c *Catalog) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	w := c.Where().
		Raw("kcu.REFERENCED_TABLE_NAME IS NOT NULL").
		SchemaEq("kcu.TABLE_SCHEMA", c.Schema, currentSchema).
		EqIf("kcu.TABLE_NAME", table)
	rows, err := c.QueryWhere(ctx, foreignKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeForeignKeys(rows), nil
}
