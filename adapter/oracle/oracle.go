// Package oracle inspects Oracle Database through the ALL_* dictionary
// views. The schema option names the owning user; without it the session
// user is inspected.
package oracle

import (
	"context"
	"strings"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/common"
	"github.com/jadedragon942/dbinspect/row"
	"github.com/jadedragon942/dbinspect/schema"
)

const currentSchema = "USER"

type Catalog struct {
	common.Base
}

func New(q adapter.Queryer, owner string) adapter.Adapter {
	return common.Adapt(NewCatalog(q, owner))
}

func NewCatalog(q adapter.Queryer, owner string) *Catalog {
	return &Catalog{Base: common.NewBase(q, common.Colon, owner)}
}

const tablesQuery = `
SELECT t.table_name AS table_name, t.owner AS table_schema
FROM all_tables t
JOIN all_objects o
	ON o.owner = t.owner
	AND o.object_name = t.table_name
	AND o.object_type = 'TABLE'
%s
ORDER BY o.created, o.object_id`

func (c *Catalog) ListTables(ctx context.Context, table string) ([]schema.TableInfo, error) {
	w := c.Where().
		Raw("t.nested = 'NO'").
		Raw("t.secondary = 'N'").
		Raw("t.dropped = 'NO'").
		SchemaEq("t.owner", c.Schema, currentSchema).
		EqIf("t.table_name", table)
	rows, err := c.QueryWhere(ctx, tablesQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeTables(rows), nil
}

// Character large objects and LONG have no declared length. Binary types
// (BLOB, LONG RAW) report no length at all.
var unboundedTypes = map[string]bool{
	"clob":  true,
	"nclob": true,
	"long":  true,
}

const columnsQuery = `
SELECT
	c.table_name AS table_name,
	c.column_name AS column_name,
	c.data_type AS data_type,
	c.data_default AS column_default,
	c.nullable AS is_nullable,
	c.char_length AS max_length,
	c.data_precision AS numeric_precision,
	c.data_scale AS numeric_scale,
	c.identity_column AS is_identity
FROM all_tab_columns c
JOIN all_tables t
	ON t.owner = c.owner
	AND t.table_name = c.table_name
JOIN all_objects o
	ON o.owner = t.owner
	AND o.object_name = t.table_name
	AND o.object_type = 'TABLE'
%s
ORDER BY o.created, o.object_id, c.column_id`

func (c *Catalog) ListColumns(ctx context.Context, table, column string) ([]common.RawColumn, error) {
	w := c.Where().
		Raw("t.nested = 'NO'").
		Raw("t.secondary = 'N'").
		Raw("t.dropped = 'NO'").
		SchemaEq("c.owner", c.Schema, currentSchema).
		EqIf("c.table_name", table).
		EqIf("c.column_name", column)
	rows, err := c.QueryWhere(ctx, columnsQuery, w)
	if err != nil {
		return nil, err
	}

	cols := make([]common.RawColumn, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, decodeColumn(r))
	}
	return cols, nil
}

func decodeColumn(r row.Row) common.RawColumn {
	col := common.DecodeColumn(r)
	col.AutoIncrement = r.Bool("is_identity")

	// DATA_DEFAULT keeps the declaration's trailing whitespace and newlines.
	if col.Default != nil {
		def := strings.TrimSpace(*col.Default)
		if def == "" || strings.EqualFold(def, "NULL") {
			col.Default = nil
		} else {
			col.Default = &def
		}
	}

	// CHAR_LENGTH is 0 for every non-character type.
	if col.MaxLength != nil && *col.MaxLength == 0 {
		col.MaxLength = nil
	}
	if unboundedTypes[strings.ToLower(col.DataType)] {
		col.MaxLength = schema.Int64Ptr(schema.UnboundedLength)
	}
	return col
}

const primaryKeysQuery = `
SELECT cc.table_name AS table_name, cc.column_name AS column_name
FROM all_constraints k
JOIN all_cons_columns cc
	ON cc.owner = k.owner
	AND cc.constraint_name = k.constraint_name
%s
ORDER BY cc.table_name, cc.position`

func (c *Catalog) PrimaryKeys(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.Where().
		Raw("k.constraint_type = 'P'").
		SchemaEq("k.owner", c.Schema, currentSchema).
		EqIf("k.table_name", table)
	rows, err := c.QueryWhere(ctx, primaryKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

const uniqueQuery = `
SELECT ic.table_name AS table_name, ic.column_name AS column_name
FROM all_indexes i
JOIN all_ind_columns ic
	ON ic.index_owner = i.owner
	AND ic.index_name = i.index_name
%s
ORDER BY ic.table_name, ic.column_name`

func (c *Catalog) UniqueColumns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.Where().
		Raw("i.uniqueness = 'UNIQUE'").
		Raw(`(SELECT COUNT(*) FROM all_ind_columns x
			WHERE x.index_owner = i.owner AND x.index_name = i.index_name) = 1`).
		Raw(`NOT EXISTS (SELECT 1 FROM all_constraints p
			WHERE p.owner = i.table_owner
			AND p.index_name = i.index_name
			AND p.constraint_type = 'P')`).
		SchemaEq("i.table_owner", c.Schema, currentSchema).
		EqIf("i.table_name", table)
	rows, err := c.QueryWhere(ctx, uniqueQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

// Oracle has no ON UPDATE actions, so on_update is always NULL.
const foreignKeysQuery = `
SELECT
	cc.table_name AS table_name,
	cc.column_name AS column_name,
	rc.owner AS foreign_key_schema,
	rc.table_name AS foreign_key_table,
	rc.column_name AS foreign_key_column,
	k.constraint_name AS constraint_name,
	NULL AS on_update,
	k.delete_rule AS on_delete
FROM all_constraints k
JOIN all_cons_columns cc
	ON cc.owner = k.owner
	AND cc.constraint_name = k.constraint_name
JOIN all_cons_columns rc
	ON rc.owner = k.r_owner
	AND rc.constraint_name = k.r_constraint_name
	AND rc.position = cc.position
%s
ORDER BY cc.table_name, k.constraint_name, cc.position`

func (c *Catalog) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	w := c.Where().
		Raw("k.constraint_type = 'R'").
		SchemaEq("k.owner", c.Schema, currentSchema).
		EqIf("k.table_name", table)
	rows, err := c.QueryWhere(ctx, foreignKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeForeignKeys(rows), nil
}
