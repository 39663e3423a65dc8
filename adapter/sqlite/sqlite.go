// Package sqlite inspects SQLite databases through sqlite_master and the
// table-valued PRAGMA functions.
package sqlite

import (
	"context"
	"strconv"
	"strings"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/common"
	"github.com/jadedragon942/dbinspect/schema"
)

type Catalog struct {
	common.Base
}

func New(q adapter.Queryer) adapter.Adapter {
	return common.Adapt(NewCatalog(q))
}

func NewCatalog(q adapter.Queryer) *Catalog {
	return &Catalog{Base: common.NewBase(q, common.Question, "")}
}

func (c *Catalog) userTables(table string) *common.Where {
	return c.Where().
		Raw("m.type = 'table'").
		Raw("substr(m.name, 1, 7) <> 'sqlite_'").
		EqIf("m.name", table)
}

// sqlite_master rowids follow creation order.
const tablesQuery = `
SELECT m.name AS table_name
FROM sqlite_master m
%s
ORDER BY m.rowid`

func (c *Catalog) ListTables(ctx context.Context, table string) ([]schema.TableInfo, error) {
	rows, err := c.QueryWhere(ctx, tablesQuery, c.userTables(table))
	if err != nil {
		return nil, err
	}
	return common.DecodeTables(rows), nil
}

const columnsQuery = `
SELECT
	m.name AS table_name,
	p.name AS column_name,
	p.type AS data_type,
	p.dflt_value AS column_default,
	p."notnull" AS not_null,
	p.pk AS pk,
	(SELECT COUNT(*) FROM pragma_table_info(m.name) k WHERE k.pk > 0) AS pk_count
FROM sqlite_master m
JOIN pragma_table_info(m.name) p
%s
ORDER BY m.rowid, p.cid`

func (c *Catalog) ListColumns(ctx context.Context, table, column string) ([]common.RawColumn, error) {
	w := c.userTables(table).EqIf("p.name", column)
	rows, err := c.QueryWhere(ctx, columnsQuery, w)
	if err != nil {
		return nil, err
	}

	cols := make([]common.RawColumn, 0, len(rows))
	for _, r := range rows {
		declared := r.Text("data_type")
		t := ParseType(declared)

		// A lone INTEGER PRIMARY KEY aliases the rowid: it is assigned
		// automatically and can never hold NULL.
		pk := r.Int("pk")
		pkCount := r.Int("pk_count")
		rowid := pk != nil && *pk > 0 && pkCount != nil && *pkCount == 1 &&
			strings.EqualFold(strings.TrimSpace(declared), "integer")

		cols = append(cols, common.RawColumn{
			Table:         r.Text("table_name"),
			Name:          r.Text("column_name"),
			DataType:      t.Name,
			Default:       r.String("column_default"),
			Nullable:      !r.Bool("not_null") && !rowid,
			MaxLength:     t.Length,
			Precision:     t.Precision,
			Scale:         t.Scale,
			AutoIncrement: rowid,
		})
	}
	return cols, nil
}

const primaryKeysQuery = `
SELECT m.name AS table_name, p.name AS column_name
FROM sqlite_master m
JOIN pragma_table_info(m.name) p
%s
ORDER BY m.rowid, p.pk`

func (c *Catalog) PrimaryKeys(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	rows, err := c.QueryWhere(ctx, primaryKeysQuery, c.userTables(table).Raw("p.pk > 0"))
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

const uniqueQuery = `
SELECT m.name AS table_name, ii.name AS column_name
FROM sqlite_master m
JOIN pragma_index_list(m.name) il
JOIN pragma_index_info(il.name) ii
%s
ORDER BY m.rowid, ii.name`

func (c *Catalog) UniqueColumns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := c.userTables(table).
		Raw(`il."unique" = 1`).
		Raw("il.origin <> 'pk'").
		Raw("(SELECT COUNT(*) FROM pragma_index_info(il.name)) = 1")
	rows, err := c.QueryWhere(ctx, uniqueQuery, w)
	if err != nil {
		return nil, err
	}
	return common.DecodeRefs(rows), nil
}

const foreignKeysQuery = `
SELECT
	m.name AS table_name,
	f."from" AS column_name,
	f."table" AS foreign_key_table,
	f."to" AS foreign_key_column,
	f.seq AS seq,
	f.on_update AS on_update,
	f.on_delete AS on_delete
FROM sqlite_master m
JOIN pragma_foreign_key_list(m.name) f
%s
ORDER BY m.rowid, f.id, f.seq`

// ForeignKeys lists declared references. SQLite constraints are unnamed, and
// a reference without a column list points at the parent's primary key.
func (c *Catalog) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	rows, err := c.QueryWhere(ctx, foreignKeysQuery, c.userTables(table))
	if err != nil {
		return nil, err
	}

	parentKeys := map[string][]string{}
	fks := make([]schema.ForeignKey, 0, len(rows))
	for _, r := range rows {
		fk := schema.ForeignKey{
			Table:            r.Text("table_name"),
			Column:           r.Text("column_name"),
			ForeignKeyTable:  r.Text("foreign_key_table"),
			ForeignKeyColumn: r.Text("foreign_key_column"),
			OnUpdate:         r.String("on_update"),
			OnDelete:         r.String("on_delete"),
		}
		if fk.ForeignKeyColumn == "" && fk.ForeignKeyTable != "" {
			keys, ok := parentKeys[fk.ForeignKeyTable]
			if !ok {
				refs, err := c.PrimaryKeys(ctx, fk.ForeignKeyTable)
				if err != nil {
					return nil, err
				}
				for _, ref := range refs {
					keys = append(keys, ref.Column)
				}
				parentKeys[fk.ForeignKeyTable] = keys
			}
			if seq := r.Int("seq"); seq != nil && *seq >= 0 && int(*seq) < len(keys) {
				fk.ForeignKeyColumn = keys[*seq]
			}
		}
		if fk.Table == "" || fk.Column == "" || fk.ForeignKeyTable == "" || fk.ForeignKeyColumn == "" {
			continue
		}
		fks = append(fks, fk)
	}
	return fks, nil
}

// Type is a declared column type split into its name and parameters.
type Type struct {
	Name      string
	Length    *int64
	Precision *int64
	Scale     *int64
}

// ParseType splits a declared type such as VARCHAR(100) or DECIMAL(10, 2).
// Text affinity types without a declared length are unbounded.
func ParseType(declared string) Type {
	decl := strings.ToLower(strings.TrimSpace(declared))
	name, params, hasParams := strings.Cut(decl, "(")
	name = strings.TrimSpace(name)
	t := Type{Name: name}

	var args []int64
	if hasParams {
		params, _, _ = strings.Cut(params, ")")
		for _, p := range strings.Split(params, ",") {
			n, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
			if err != nil {
				args = nil
				break
			}
			args = append(args, n)
		}
	}

	if textAffinity(name) {
		if len(args) > 0 {
			t.Length = &args[0]
		} else {
			t.Length = schema.Int64Ptr(schema.UnboundedLength)
		}
		return t
	}

	if len(args) > 0 && numericType(name) {
		t.Precision = &args[0]
		scale := int64(0)
		if len(args) > 1 {
			scale = args[1]
		}
		t.Scale = &scale
	}
	return t
}

func textAffinity(name string) bool {
	return strings.Contains(name, "char") || strings.Contains(name, "clob") || strings.Contains(name, "text")
}

func numericType(name string) bool {
	switch name {
	case "decimal", "numeric", "number", "float", "double", "real", "double precision":
		return true
	}
	return false
}
