package common

import (
	"context"
	"errors"
	"fmt"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/row"
)

// Base provides the query plumbing shared by the SQL catalogs.
type Base struct {
	Q           adapter.Queryer
	Placeholder func(int) string
	// Schema restricts inspection to one schema. Empty means the
	// connection's current schema.
	Schema string
}

func NewBase(q adapter.Queryer, placeholder func(int) string, schemaName string) Base {
	return Base{Q: q, Placeholder: placeholder, Schema: schemaName}
}

// ValidateQueryer checks that a query primitive was supplied
func ValidateQueryer(q adapter.Queryer) error {
	if q == nil {
		return errors.New("not connected")
	}
	return nil
}

func (b *Base) Where() *Where {
	return NewWhere(b.Placeholder)
}

// Query traces and runs a catalog query, wrapping driver failures.
func (b *Base) Query(ctx context.Context, query string, args ...any) ([]row.Row, error) {
	if err := ValidateQueryer(b.Q); err != nil {
		return nil, err
	}
	adapter.DebugLog(query, args...)
	rows, err := b.Q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	return rows, nil
}

// QueryWhere runs query with the rendered predicate substituted for the
// single %s verb.
func (b *Base) QueryWhere(ctx context.Context, query string, w *Where) ([]row.Row, error) {
	return b.Query(ctx, fmt.Sprintf(query, w.String()), w.Args()...)
}
