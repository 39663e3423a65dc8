package adapter

import (
	"context"

	"github.com/jadedragon942/dbinspect/row"
	"github.com/jadedragon942/dbinspect/schema"
)

// Queryer runs a catalog query and returns every row decoded into named
// columns. It is the only thing adapters need from a database connection.
type Queryer interface {
	Query(ctx context.Context, query string, args ...any) ([]row.Row, error)
}

// QueryFunc adapts a plain function to Queryer.
type QueryFunc func(ctx context.Context, query string, args ...any) ([]row.Row, error)

func (f QueryFunc) Query(ctx context.Context, query string, args ...any) ([]row.Row, error) {
	return f(ctx, query, args...)
}

// Adapter inspects one backend. Missing tables and columns yield nil or empty
// results; errors are reserved for failed queries.
type Adapter interface {
	Tables(ctx context.Context) ([]string, error)
	TableInfo(ctx context.Context, table string) (*schema.TableInfo, error)
	AllTableInfo(ctx context.Context) ([]schema.TableInfo, error)
	HasTable(ctx context.Context, table string) (bool, error)
	// Columns and ColumnInfo cover every table when table is empty.
	Columns(ctx context.Context, table string) ([]schema.ColumnRef, error)
	ColumnInfo(ctx context.Context, table string) ([]schema.ColumnInfo, error)
	Column(ctx context.Context, table, column string) (*schema.ColumnInfo, error)
	Primary(ctx context.Context, table string) (*string, error)
	ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)
}
