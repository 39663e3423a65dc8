// Package inspector reads the schema of a relational database into the
// backend-independent model of package schema.
//
// An Inspector is bound to one backend when it is created and delegates every
// call to that backend's adapter:
//
//	db, err := conn.Open(ctx, "postgres", dsn)
//	...
//	ins, err := inspector.New(db, "postgres", inspector.WithSchema("public"))
//	...
//	cols, err := ins.ColumnInfo(ctx, "users")
//
// Missing tables and columns are reported as nil or empty results, never as
// errors. An Inspector holds no state besides its configuration and is safe
// for concurrent use.
package inspector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/cockroach"
	"github.com/jadedragon942/dbinspect/adapter/mssql"
	"github.com/jadedragon942/dbinspect/adapter/mysql"
	"github.com/jadedragon942/dbinspect/adapter/oracle"
	"github.com/jadedragon942/dbinspect/adapter/postgres"
	"github.com/jadedragon942/dbinspect/adapter/scylla"
	"github.com/jadedragon942/dbinspect/adapter/sqlite"
	"github.com/jadedragon942/dbinspect/schema"
)

var ErrNilQueryer = errors.New("inspector requires a queryer")

type Inspector struct {
	backend adapter.Backend
	adapter adapter.Adapter
	opts    *options
}

var _ adapter.Adapter = (*Inspector)(nil)

// New resolves the adapter for backend, which may be a backend name or a
// driver alias such as "sqlserver" or "pgx".
func New(q adapter.Queryer, backend string, opts ...Option) (*Inspector, error) {
	if q == nil {
		return nil, ErrNilQueryer
	}
	b, err := adapter.ParseBackend(backend)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	a, err := newAdapter(q, b, o.schema)
	if err != nil {
		return nil, err
	}
	return &Inspector{backend: b, adapter: a, opts: o}, nil
}

func newAdapter(q adapter.Queryer, b adapter.Backend, schemaName string) (adapter.Adapter, error) {
	switch b {
	case adapter.MSSQL:
		return mssql.New(q, schemaName), nil
	case adapter.MySQL:
		return mysql.New(q, schemaName), nil
	case adapter.Postgres:
		return postgres.New(q, schemaName), nil
	case adapter.CockroachDB:
		return cockroach.New(q, schemaName), nil
	case adapter.SQLite:
		return sqlite.New(q), nil
	case adapter.Oracle:
		return oracle.New(q, schemaName), nil
	case adapter.Scylla:
		return scylla.New(q, schemaName), nil
	}
	return nil, fmt.Errorf("%w: %q", adapter.ErrUnsupportedBackend, b)
}

// Backend reports the backend the Inspector was bound to.
func (i *Inspector) Backend() adapter.Backend {
	return i.backend
}

func (i *Inspector) excluded(table string) bool {
	return i.opts.excludeTables[table]
}

func (i *Inspector) Tables(ctx context.Context) ([]string, error) {
	tables, err := i.adapter.Tables(ctx)
	if err != nil {
		return nil, err
	}
	return filter(tables, func(t string) bool { return !i.excluded(t) }), nil
}

func (i *Inspector) TableInfo(ctx context.Context, table string) (*schema.TableInfo, error) {
	if i.excluded(table) {
		return nil, nil
	}
	return i.adapter.TableInfo(ctx, table)
}

func (i *Inspector) AllTableInfo(ctx context.Context) ([]schema.TableInfo, error) {
	tables, err := i.adapter.AllTableInfo(ctx)
	if err != nil {
		return nil, err
	}
	return filter(tables, func(t schema.TableInfo) bool { return !i.excluded(t.Name) }), nil
}

func (i *Inspector) HasTable(ctx context.Context, table string) (bool, error) {
	if i.excluded(table) {
		return false, nil
	}
	return i.adapter.HasTable(ctx, table)
}

// Columns lists the columns of table, or of every table when table is empty.
func (i *Inspector) Columns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	if i.excluded(table) {
		return []schema.ColumnRef{}, nil
	}
	refs, err := i.adapter.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	return filter(refs, func(r schema.ColumnRef) bool { return !i.excluded(r.Table) }), nil
}

// ColumnInfo describes the columns of table, or of every table when table
// is empty.
func (i *Inspector) ColumnInfo(ctx context.Context, table string) ([]schema.ColumnInfo, error) {
	if i.excluded(table) {
		return []schema.ColumnInfo{}, nil
	}
	cols, err := i.adapter.ColumnInfo(ctx, table)
	if err != nil {
		return nil, err
	}
	cols = filter(cols, func(c schema.ColumnInfo) bool { return !i.excluded(c.Table) })
	for n := range cols {
		i.hideReference(&cols[n])
	}
	return cols, nil
}

func (i *Inspector) Column(ctx context.Context, table, column string) (*schema.ColumnInfo, error) {
	if i.excluded(table) {
		return nil, nil
	}
	col, err := i.adapter.Column(ctx, table, column)
	if err != nil || col == nil {
		return col, err
	}
	i.hideReference(col)
	return col, nil
}

// hideReference drops a foreign key that points at an excluded table.
func (i *Inspector) hideReference(col *schema.ColumnInfo) {
	if col.ForeignKeyTable != nil && i.excluded(*col.ForeignKeyTable) {
		col.ForeignKeyTable = nil
		col.ForeignKeyColumn = nil
	}
}

// Primary returns the first primary key column of table, or nil when the
// table has no primary key.
func (i *Inspector) Primary(ctx context.Context, table string) (*string, error) {
	if i.excluded(table) {
		return nil, nil
	}
	return i.adapter.Primary(ctx, table)
}

// ForeignKeys lists the foreign key columns declared on table, or on every
// table when table is empty. Keys referencing an excluded table are left out.
func (i *Inspector) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	if i.excluded(table) {
		return []schema.ForeignKey{}, nil
	}
	fks, err := i.adapter.ForeignKeys(ctx, table)
	if err != nil {
		return nil, err
	}
	return filter(fks, func(fk schema.ForeignKey) bool {
		return !i.excluded(fk.Table) && !i.excluded(fk.ForeignKeyTable)
	}), nil
}

func filter[T any](items []T, keep func(T) bool) []T {
	if len(items) == 0 {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
