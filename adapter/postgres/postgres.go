// Package postgres inspects PostgreSQL (and wire compatible YugabyteDB)
// through pg_catalog and information_schema.
package postgres

import (
	"context"
	"strings"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/common"
	"github.com/jadedragon942/dbinspect/row"
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
			Base:          common.NewBase(q, common.Dollar, schemaName),
			CurrentSchema: "current_schema()",
		},
	}
}

// Tables are listed by oid, which follows creation order.
const tablesQuery = `
SELECT c.relname AS table_name, n.nspname AS table_schema, current_database() AS table_catalog
FROM pg_catalog.pg_class c
JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
%s
ORDER BY c.oid`

func (c *Catalog) ListTables(ctx context.Context, table string) ([]schema.TableInfo, error) {
	w := c.Where().
		Raw("c.relkind IN ('r', 'p')").
		SchemaEq("n.nspname", c.Schema, c.CurrentSchema).
		EqIf("c.relname", table)
	rows, err := c.QueryWhere(ctx, tablesQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeTables(rows), nil
}

const columnsQuery = `
SELECT
	c.table_name AS table_name,
	c.column_name AS column_name,
	c.data_type AS data_type,
	c.udt_name AS udt_name,
	c.column_default AS column_default,
	c.is_nullable AS is_nullable,
	c.character_maximum_length AS max_length,
	c.numeric_precision AS numeric_precision,
	c.numeric_scale AS numeric_scale,
	c.is_identity AS is_identity
FROM information_schema.columns c
JOIN pg_catalog.pg_namespace n ON n.nspname = c.table_schema
JOIN pg_catalog.pg_class pc ON pc.relname = c.table_name AND pc.relnamespace = n.oid
%s
ORDER BY pc.oid, c.ordinal_position`

// ColumnsWhere builds the column listing predicate so wire compatible
// backends can narrow it further.
func (c *Catalog) ColumnsWhere(table, column string) *common.Where {
	return c.Where().
		Raw("pc.relkind IN ('r', 'p')").
		SchemaEq("c.table_schema", c.Schema, c.CurrentSchema).
		EqIf("c.table_name", table).
		EqIf("c.column_name", column)
}

func (c *Catalog) ListColumns(ctx context.Context, table, column string) ([]common.RawColumn, error) {
	return c.ListColumnsWhere(ctx, c.ColumnsWhere(table, column))
}

func (c *Catalog) ListColumnsWhere(ctx context.Context, w *common.Where) ([]common.RawColumn, error) {
	rows, err := c.QueryWhere(ctx, columnsQuery, w)
	if err != nil {
		return nil, err
	}
	cols := make([]common.RawColumn, 0, len(rows))
	for _, r := range rows {
		cols = append(cols, DecodeColumn(r))
	}
	return cols, nil
}

// DecodeColumn maps an information_schema.columns row. Enum, domain and
// array types report their underlying udt name; text and length-less
// character varying are unbounded.
func DecodeColumn(r row.Row) common.RawColumn {
	col := common.DecodeColumn(r)
	switch col.DataType {
	case "USER-DEFINED", "ARRAY":
		if udt := r.Text("udt_name"); udt != "" {
			col.DataType = udt
		}
	}

	if col.MaxLength == nil && unboundedText(col.DataType) {
		col.MaxLength = schema.Int64Ptr(schema.UnboundedLength)
	}
	col.AutoIncrement = r.Bool("is_identity") || IsSequenceDefault(col.Default)
	return col
}

func unboundedText(dataType string) bool {
	switch strings.ToLower(dataType) {
	case "text", "character varying", "varchar", "citext", "string":
		return true
	}
	return false
}

// IsSequenceDefault reports whether a default draws from a sequence.
func IsSequenceDefault(def *string) bool {
	return def != nil && strings.HasPrefix(strings.TrimSpace(*def), "nextval(")
}

const uniqueQuery = `
SELECT t.relname AS table_name, a.attname AS column_name
FROM pg_catalog.pg_index i
JOIN pg_catalog.pg_class t ON t.oid = i.indrelid
JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = i.indkey[0]
%s
ORDER BY t.relname, a.attname`

// UniqueColumns covers unique constraints and plain unique indexes alike;
// partial and expression indexes are skipped.
func (c *Catalog) UniqueColumns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.Where().
		Raw("i.indisunique").
		Raw("NOT i.indisprimary").
		Raw("i.indnatts = 1").
		Raw("i.indpred IS NULL").
		SchemaEq("n.nspname", c.Schema, c.CurrentSchema).
		EqIf("t.relname", table)
	rows, err := c.QueryWhere(ctx, uniqueQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}
