// Package mssql inspects Microsoft SQL Server through sys.* catalog views
// and INFORMATION_SCHEMA.
package mssql

import (
	"context"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/common"
	"github.com/jadedragon942/dbinspect/schema"
)

type Catalog struct {
	common.InfoSchema
}

func New(q adapter.Queryer, schemaName string) adapter.Adapter {
	return common.Adapt(NewCatalog(q, schemaName))
}

func NewCatalog(q adapter.Queryer, schemaName string) *Catalog {
	return &Catalog{
		InfoSchema: common.InfoSchema{
			Base:          common.NewBase(q, common.AtP, schemaName),
			CurrentSchema: "SCHEMA_NAME()",
		},
	}
}

// Tables are listed in creation order.
const tablesQuery = `
SELECT t.name AS table_name, s.name AS table_schema, DB_NAME() AS table_catalog
FROM sys.tables t
JOIN sys.schemas s ON s.schema_id = t.schema_id
%s
ORDER BY t.create_date, t.object_id`

func (c *Catalog) ListTables(ctx context.Context, table string) ([]schema.TableInfo, error) {
	w := c.Where().
		Raw("t.is_ms_shipped = 0").
		SchemaEq("s.name", c.Schema, c.CurrentSchema).
		EqIf("t.name", table)
	rows, err := c.QueryWhere(ctx, tablesQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeTables(rows), nil
}

// CHARACTER_MAXIMUM_LENGTH is already -1 for (max) types.
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
	COLUMNPROPERTY(t.object_id, c.COLUMN_NAME, 'IsIdentity') AS is_identity
FROM INFORMATION_SCHEMA.COLUMNS c
JOIN sys.tables t ON t.name = c.TABLE_NAME
JOIN sys.schemas s ON s.schema_id = t.schema_id AND s.name = c.TABLE_SCHEMA
%s
ORDER BY t.create_date, t.object_id, c.ORDINAL_POSITION`

func (c *Catalog) ListColumns(ctx context.Context, table, column string) ([]common.RawColumn, error) {
	w := c.Where().
		SchemaEq("c.TABLE_SCHEMA", c.Schema, c.CurrentSchema).
		EqIf("c.TABLE_NAME", table).
		EqIf("c.COLUMN_NAME", column)
	rows, err := c.QueryWhere(ctx, columnsQuery, w)
	if err != nil {
		return nil, err
	}

	cols := make([]common.RawColumn, 0, len(rows))
	for _, r := range rows {
		col := common.DecodeColumn(r)
		col.AutoIncrement = r.Bool("is_identity")
		col.Default = normalizeDefault(col.Default)
		cols = append(cols, col)
	}
	return cols, nil
}

// Unique constraints are backed by indexes in SQL Server, so one query over
// sys.indexes covers both.
const uniqueQuery = `
SELECT t.name AS table_name, col.name AS column_name
FROM sys.indexes i
JOIN sys.tables t ON t.object_id = i.object_id
JOIN sys.schemas s ON s.schema_id = t.schema_id
JOIN sys.index_columns ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
JOIN sys.columns col ON col.object_id = ic.object_id AND col.column_id = ic.column_id
%s
ORDER BY t.name, col.name`

func (c *Catalog) UniqueColumns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.Where().
		Raw("i.is_unique = 1").
		Raw("i.is_primary_key = 0").
		Raw("ic.is_included_column = 0").
		SchemaEq("s.name", c.Schema, c.CurrentSchema).
		EqIf("t.name", table).
		Raw(`(SELECT COUNT(*) FROM sys.index_columns ic2
	WHERE ic2.object_id = i.object_id AND ic2.index_id = i.index_id AND ic2.is_included_column = 0) = 1`)
	rows, err := c.QueryWhere(ctx, uniqueQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

// SQL Server's KEY_COLUMN_USAGE has no POSITION_IN_UNIQUE_CONSTRAINT, and a
// foreign key may reference a unique index rather than a constraint, so keys
// are read from sys.foreign_key_columns, which pairs the columns directly.
const foreignKeysQuery = `
SELECT
	pt.name AS table_name,
	pc.name AS column_name,
	rs.name AS foreign_key_schema,
	rt.name AS foreign_key_table,
	rc.name AS foreign_key_column,
	fk.name AS constraint_name,
	REPLACE(fk.update_referential_action_desc, '_', ' ') AS on_update,
	REPLACE(fk.delete_referential_action_desc, '_', ' ') AS on_delete
FROM sys.foreign_keys fk
JOIN sys.foreign_key_columns fkc ON fkc.constraint_object_id = fk.object_id
JOIN sys.tables pt ON pt.object_id = fkc.parent_object_id
JOIN sys.schemas ps ON ps.schema_id = pt.schema_id
JOIN sys.columns pc ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
JOIN sys.tables rt ON rt.object_id = fkc.referenced_object_id
JOIN sys.schemas rs ON rs.schema_id = rt.schema_id
JOIN sys.columns rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
%s
ORDER BY pt.name, fk.name, fkc.constraint_column_id`

func (c *Catalog) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	w := c.Where().
		SchemaEq("ps.name", c.Schema, c.CurrentSchema).
		EqIf("pt.name", table)
	rows, err := c.QueryWhere(ctx, foreignKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeForeignKeys(rows), nil
}

// normalizeDefault strips the parentheses SQL Server wraps around stored
// default expressions: ((0)) becomes 0 and ('x') becomes 'x'.
func normalizeDefault(def *string) *string {
	if def == nil {
		return nil
	}
	s := *def
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && balanced(s[1:len(s)-1]) {
		s = s[1 : len(s)-1]
	}
	return &s
}

func balanced(s string) bool {
	depth := 0
	quoted := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			quoted = !quoted
		case '(':
			if !quoted {
				depth++
			}
		case ')':
			if !quoted {
				depth--
				if depth < 0 {
					return false
				}
			}
		}
	}
	return depth == 0
}
