// Package scylla inspects ScyllaDB and Cassandra keyspaces through
// system_schema. CQL has no unique or foreign key constraints and no
// auto-increment, so those facts are never reported.
package scylla

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/adapter/common"
	"github.com/jadedragon942/dbinspect/row"
	"github.com/jadedragon942/dbinspect/schema"
)

// Key column kinds in system_schema.columns.
const (
	kindPartitionKey = "partition_key"
	kindClustering   = "clustering"
)

var errNoKeyspace = errors.New("no keyspace selected")

var unboundedTypes = map[string]bool{
	"text":    true,
	"varchar": true,
	"ascii":   true,
}

// keyspacer is implemented by sessions bound to a keyspace, such as
// *conn.Session.
type keyspacer interface {
	Keyspace() string
}

type Catalog struct {
	common.Base
}

// New inspects keyspace, or the session's keyspace when keyspace is empty.
func New(q adapter.Queryer, keyspace string) adapter.Adapter {
	return common.Adapt(NewCatalog(q, keyspace))
}

func NewCatalog(q adapter.Queryer, keyspace string) *Catalog {
	if keyspace == "" {
		if ks, ok := q.(keyspacer); ok {
			keyspace = ks.Keyspace()
		}
	}
	return &Catalog{Base: common.NewBase(q, common.Question, keyspace)}
}

func (c *Catalog) keyspace() (string, error) {
	if c.Schema == "" {
		return "", errNoKeyspace
	}
	return c.Schema, nil
}

const tablesQuery = `SELECT keyspace_name, table_name FROM system_schema.tables %s`

func (c *Catalog) ListTables(ctx context.Context, table string) ([]schema.TableInfo, error) {
	ks, err := c.keyspace()
	if err != nil {
		return nil, err
	}
	w := c.Where().Eq("keyspace_name", ks).EqIf("table_name", table)
	rows, err := c.QueryWhere(ctx, tablesQuery, w)
	if err != nil {
		return nil, err
	}

	tables := make([]schema.TableInfo, 0, len(rows))
	for _, r := range rows {
		name := r.Text("table_name")
		if name == "" {
			continue
		}
		tables = append(tables, schema.TableInfo{Name: name, Schema: schema.StringPtr(ks)})
	}
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

const columnsQuery = `SELECT table_name, column_name, kind, position, type FROM system_schema.columns %s`

// cqlColumn is one system_schema.columns row.
type cqlColumn struct {
	table    string
	name     string
	kind     string
	position int64
	dataType string
}

func decodeColumn(r row.Row) cqlColumn {
	c := cqlColumn{
		table:    r.Text("table_name"),
		name:     r.Text("column_name"),
		kind:     strings.ToLower(r.Text("kind")),
		dataType: r.Text("type"),
	}
	if p := r.Int("position"); p != nil {
		c.position = *p
	}
	return c
}

func (c cqlColumn) rank() int {
	switch c.kind {
	case kindPartitionKey:
		return 0
	case kindClustering:
		return 1
	}
	return 2
}

func (c cqlColumn) isKey() bool {
	return c.rank() < 2
}

// less orders columns by table, then partition keys and clustering columns
// by position, then the remaining columns by name.
func less(a, b cqlColumn) bool {
	if a.table != b.table {
		return a.table < b.table
	}
	if a.rank() != b.rank() {
		return a.rank() < b.rank()
	}
	if a.isKey() && a.position != b.position {
		return a.position < b.position
	}
	return a.name < b.name
}

func (c *Catalog) listColumns(ctx context.Context, table, column string) ([]cqlColumn, error) {
	ks, err := c.keyspace()
	if err != nil {
		return nil, err
	}
	w := c.Where().Eq("keyspace_name", ks).EqIf("table_name", table)
	if table != "" {
		w.EqIf("column_name", column)
	}
	rows, err := c.QueryWhere(ctx, columnsQuery, w)
	if err != nil {
		return nil, err
	}

	cols := make([]cqlColumn, 0, len(rows))
	for _, r := range rows {
		col := decodeColumn(r)
		if col.table == "" || col.name == "" {
			continue
		}
		cols = append(cols, col)
	}
	sort.SliceStable(cols, func(i, j int) bool { return less(cols[i], cols[j]) })
	return cols, nil
}

func (c *Catalog) ListColumns(ctx context.Context, table, column string) ([]common.RawColumn, error) {
	cols, err := c.listColumns(ctx, table, column)
	if err != nil {
		return nil, err
	}

	out := make([]common.RawColumn, 0, len(cols))
	for _, col := range cols {
		raw := common.RawColumn{
			Table:    col.table,
			Name:     col.name,
			DataType: col.dataType,
			Nullable: !col.isKey(),
		}
		if unboundedTypes[strings.ToLower(col.dataType)] {
			raw.MaxLength = schema.Int64Ptr(schema.UnboundedLength)
		}
		out = append(out, raw)
	}
	return out, nil
}

func (c *Catalog) PrimaryKeys(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	cols, err := c.listColumns(ctx, table, "")
	if err != nil {
		return nil, err
	}

	refs := make([]schema.ColumnRef, 0)
	for _, col := range cols {
		if col.isKey() {
			refs = append(refs, schema.ColumnRef{Table: col.table, Column: col.name})
		}
	}
	return refs, nil
}

func (c *Catalog) UniqueColumns(context.Context, string) ([]schema.ColumnRef, error) {
	return []schema.ColumnRef{}, nil
}

func (c *Catalog) ForeignKeys(context.Context, string) ([]schema.ForeignKey, error) {
	return []schema.ForeignKey{}, nil
}
