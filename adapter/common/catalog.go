package common

import (
	"context"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/schema"
)

// Catalog is the per-backend part of an adapter. An empty table argument
// means every table; results follow the backend's table order and, within a
// table, declaration or key position order.
type Catalog interface {
	ListTables(ctx context.Context, table string) ([]schema.TableInfo, error)
	ListColumns(ctx context.Context, table, column string) ([]RawColumn, error)
	PrimaryKeys(ctx context.Context, table string) ([]schema.ColumnRef, error)
	// UniqueColumns lists columns that alone carry a unique constraint or
	// unique index, excluding the primary key.
	UniqueColumns(ctx context.Context, table string) ([]schema.ColumnRef, error)
	ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)
}

type catalogAdapter struct {
	c Catalog
}

// Adapt derives the full Adapter contract from a Catalog.
func Adapt(c Catalog) adapter.Adapter {
	return &catalogAdapter{c: c}
}

func (a *catalogAdapter) Tables(ctx context.Context) ([]string, error) {
	tables, err := a.c.ListTables(ctx, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, t.Name)
	}
	return names, nil
}

func (a *catalogAdapter) TableInfo(ctx context.Context, table string) (*schema.TableInfo, error) {
	if table == "" {
		return nil, nil
	}
	tables, err := a.c.ListTables(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if t.Name == table {
			return &t, nil
		}
	}
	return nil, nil
}

func (a *catalogAdapter) AllTableInfo(ctx context.Context) ([]schema.TableInfo, error) {
	tables, err := a.c.ListTables(ctx, "")
	if err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []schema.TableInfo{}
	}
	return tables, nil
}

func (a *catalogAdapter) HasTable(ctx context.Context, table string) (bool, error) {
	info, err := a.TableInfo(ctx, table)
	if err != nil {
		return false, err
	}
	return info != nil, nil
}

func (a *catalogAdapter) Columns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	cols, err := a.c.ListColumns(ctx, table, "")
	if err != nil {
		return nil, err
	}
	refs := make([]schema.ColumnRef, 0, len(cols))
	for _, c := range cols {
		refs = append(refs, c.Ref())
	}
	return refs, nil
}

func (a *catalogAdapter) ColumnInfo(ctx context.Context, table string) ([]schema.ColumnInfo, error) {
	cols, err := a.c.ListColumns(ctx, table, "")
	if err != nil {
		return nil, err
	}
	out := make([]schema.ColumnInfo, 0, len(cols))
	if len(cols) == 0 {
		return out, nil
	}
	keys, err := a.keys(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		out = append(out, BuildColumnInfo(c, keys))
	}
	return out, nil
}

func (a *catalogAdapter) Column(ctx context.Context, table, column string) (*schema.ColumnInfo, error) {
	if table == "" || column == "" {
		return nil, nil
	}
	cols, err := a.c.ListColumns(ctx, table, column)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		if c.Table != table || c.Name != column {
			continue
		}
		keys, err := a.keys(ctx, table)
		if err != nil {
			return nil, err
		}
		info := BuildColumnInfo(c, keys)
		return &info, nil
	}
	return nil, nil
}

func (a *catalogAdapter) Primary(ctx context.Context, table string) (*string, error) {
	if table == "" {
		return nil, nil
	}
	pks, err := a.c.PrimaryKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	for _, pk := range pks {
		if pk.Table == table {
			return schema.StringPtr(pk.Column), nil
		}
	}
	return nil, nil
}

func (a *catalogAdapter) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	fks, err := a.c.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	if fks == nil {
		fks = []schema.ForeignKey{}
	}
	return fks, nil
}

func (a *catalogAdapter) keys(ctx context.Context, table string) (Keys, error) {
	pks, err := a.c.PrimaryKeys(ctx, table)
	if err != nil {
		return Keys{}, err
	}
	uniques, err := a.c.UniqueColumns(ctx, table)
	if err != nil {
		return Keys{}, err
	}
	fks, err := a.c.ForeignKeys(ctx, table)
	if err != nil {
		return Keys{}, err
	}
	return NewKeys(pks, uniques, fks), nil
}
