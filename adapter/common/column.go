package common

import (
	"strings"

	"github.com/jadedragon942/dbinspect/row"
	"github.com/jadedragon942/dbinspect/schema"
)

// RawColumn is a column as one catalog describes it, before key information
// from other catalog views is merged in.
type RawColumn struct {
	Table         string
	Name          string
	DataType      string
	Default       *string
	Nullable      bool
	MaxLength     *int64
	Precision     *int64
	Scale         *int64
	AutoIncrement bool
}

func (c RawColumn) Ref() schema.ColumnRef {
	return schema.ColumnRef{Table: c.Table, Column: c.Name}
}

// Keys indexes the constraint facts of one or more tables by column.
type Keys struct {
	primary map[schema.ColumnRef]bool
	unique  map[schema.ColumnRef]bool
	foreign map[schema.ColumnRef]schema.ForeignKey
}

// NewKeys indexes key facts. When a column belongs to several foreign keys
// the one with the lowest constraint name wins, falling back to the first
// listed for unnamed constraints.
func NewKeys(primary, unique []schema.ColumnRef, foreign []schema.ForeignKey) Keys {
	k := Keys{
		primary: make(map[schema.ColumnRef]bool, len(primary)),
		unique:  make(map[schema.ColumnRef]bool, len(unique)),
		foreign: make(map[schema.ColumnRef]schema.ForeignKey, len(foreign)),
	}
	for _, ref := range primary {
		k.primary[ref] = true
	}
	for _, ref := range unique {
		k.unique[ref] = true
	}
	for _, fk := range foreign {
		ref := schema.ColumnRef{Table: fk.Table, Column: fk.Column}
		existing, ok := k.foreign[ref]
		if !ok || lowerName(fk.ConstraintName, existing.ConstraintName) {
			k.foreign[ref] = fk
		}
	}
	return k
}

func lowerName(candidate, current *string) bool {
	if candidate == nil || current == nil {
		return false
	}
	return *candidate < *current
}

// BuildColumnInfo merges a raw catalog column with its key facts.
func BuildColumnInfo(c RawColumn, keys Keys) schema.ColumnInfo {
	ref := c.Ref()
	info := schema.ColumnInfo{
		Name:             c.Name,
		Table:            c.Table,
		DataType:         strings.ToLower(strings.TrimSpace(c.DataType)),
		DefaultValue:     c.Default,
		MaxLength:        c.MaxLength,
		NumericPrecision: c.Precision,
		NumericScale:     c.Scale,
		IsNullable:       c.Nullable,
		IsUnique:         keys.unique[ref],
		IsPrimaryKey:     keys.primary[ref],
		HasAutoIncrement: c.AutoIncrement,
	}
	if info.NumericPrecision == nil {
		info.NumericScale = nil
	}
	if fk, ok := keys.foreign[ref]; ok {
		info.ForeignKeyTable = schema.StringPtr(fk.ForeignKeyTable)
		info.ForeignKeyColumn = schema.StringPtr(fk.ForeignKeyColumn)
	}
	return info
}

// Decoders for the column aliases shared by every catalog query.

func DecodeTables(rows []row.Row) []schema.TableInfo {
	out := make([]schema.TableInfo, 0, len(rows))
	for _, r := range rows {
		name := r.Text("table_name")
		if name == "" {
			continue
		}
		out = append(out, schema.TableInfo{
			Name:    name,
			Schema:  nonEmpty(r.String("table_schema")),
			Catalog: nonEmpty(r.String("table_catalog")),
		})
	}
	return out
}

func DecodeRefs(rows []row.Row) []schema.ColumnRef {
	out := make([]schema.ColumnRef, 0, len(rows))
	for _, r := range rows {
		ref := schema.ColumnRef{Table: r.Text("table_name"), Column: r.Text("column_name")}
		if ref.Table == "" || ref.Column == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func DecodeForeignKeys(rows []row.Row) []schema.ForeignKey {
	out := make([]schema.ForeignKey, 0, len(rows))
	for _, r := range rows {
		fk := schema.ForeignKey{
			Table:            r.Text("table_name"),
			Column:           r.Text("column_name"),
			ForeignKeySchema: nonEmpty(r.String("foreign_key_schema")),
			ForeignKeyTable:  r.Text("foreign_key_table"),
			ForeignKeyColumn: r.Text("foreign_key_column"),
			ConstraintName:   nonEmpty(r.String("constraint_name")),
			OnUpdate:         nonEmpty(r.String("on_update")),
			OnDelete:         nonEmpty(r.String("on_delete")),
		}
		if fk.Table == "" || fk.Column == "" || fk.ForeignKeyTable == "" || fk.ForeignKeyColumn == "" {
			continue
		}
		out = append(out, fk)
	}
	return out
}

// DecodeColumn reads the column aliases common to the SQL catalogs. Callers
// adjust data type spellings, auto-increment and length sentinels afterwards.
func DecodeColumn(r row.Row) RawColumn {
	c := RawColumn{
		Table:     r.Text("table_name"),
		Name:      r.Text("column_name"),
		DataType:  r.Text("data_type"),
		Default:   r.String("column_default"),
		Nullable:  r.Bool("is_nullable"),
		MaxLength: r.Int("max_length"),
		Precision: r.Int("numeric_precision"),
		Scale:     r.Int("numeric_scale"),
	}
	return c
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
