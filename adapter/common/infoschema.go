package common

import (
	"context"

	"github.com/jadedragon942/dbinspect/schema"
)

// InfoSchema answers key and foreign key questions from the standard
// INFORMATION_SCHEMA views. Identifiers are upper-case so the queries run
// unchanged on SQL Server and fold correctly on PostgreSQL.
type InfoSchema struct {
	Base
	// CurrentSchema is the SQL expression for the connection's default
	// schema, used when Base.Schema is empty.
	CurrentSchema string
}

const primaryKeysQuery = `
SELECT kcu.TABLE_NAME AS table_name, kcu.COLUMN_NAME AS column_name
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
	ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
	AND kcu.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA
	AND kcu.TABLE_NAME = tc.TABLE_NAME
%s
ORDER BY kcu.TABLE_NAME, kcu.ORDINAL_POSITION`

func (s *InfoSchema) PrimaryKeys(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := s.Where().
		Raw("tc.CONSTRAINT_TYPE = 'PRIMARY KEY'").
		SchemaEq("tc.TABLE_SCHEMA", s.Schema, s.CurrentSchema).
		EqIf("tc.TABLE_NAME", table)
	rows, err := s.QueryWhere(ctx, primaryKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return DecodeRefs(rows), nil
}

const uniqueConstraintsQuery = `
SELECT kcu.TABLE_NAME AS table_name, kcu.COLUMN_NAME AS column_name
FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
	ON kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
	AND kcu.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA
	AND kcu.TABLE_NAME = tc.TABLE_NAME
%s
ORDER BY kcu.TABLE_NAME, kcu.COLUMN_NAME`

// UniqueConstraintColumns lists the columns of single-column UNIQUE
// constraints. Unique indexes are not constraints and are not seen here.
func (s *InfoSchema) UniqueConstraintColumns(ctx context.Context, table string) ([]schema.ColumnRef, error) {
	w := s.Where().
		Raw("tc.CONSTRAINT_TYPE = 'UNIQUE'").
		SchemaEq("tc.TABLE_SCHEMA", s.Schema, s.CurrentSchema).
		EqIf("tc.TABLE_NAME", table).
		Raw(`(SELECT COUNT(*) FROM INFORMATION_SCHEMA.KEY_COLUMN_USAGE k2
	WHERE k2.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
	AND k2.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA
	AND k2.TABLE_NAME = tc.TABLE_NAME) = 1`)
	rows, err := s.QueryWhere(ctx, uniqueConstraintsQuery, w)
	if err != nil {
		return nil, err
	}
	return DecodeRefs(rows), nil
}

// POSITION_IN_UNIQUE_CONSTRAINT pairs each referencing column with the
// referenced one even when the key lists them in a different order.
const foreignKeysQuery = `
SELECT
	kcu1.TABLE_NAME AS table_name,
	kcu1.COLUMN_NAME AS column_name,
	kcu2.TABLE_SCHEMA AS foreign_key_schema,
	kcu2.TABLE_NAME AS foreign_key_table,
	kcu2.COLUMN_NAME AS foreign_key_column,
	rc.CONSTRAINT_NAME AS constraint_name,
	rc.UPDATE_RULE AS on_update,
	rc.DELETE_RULE AS on_delete
FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS rc
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu1
	ON kcu1.CONSTRAINT_NAME = rc.CONSTRAINT_NAME
	AND kcu1.CONSTRAINT_SCHEMA = rc.CONSTRAINT_SCHEMA
JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu2
	ON kcu2.CONSTRAINT_NAME = rc.UNIQUE_CONSTRAINT_NAME
	AND kcu2.CONSTRAINT_SCHEMA = rc.UNIQUE_CONSTRAINT_SCHEMA
	AND kcu2.ORDINAL_POSITION = kcu1.POSITION_IN_UNIQUE_CONSTRAINT
%s
ORDER BY kcu1.TABLE_NAME, rc.CONSTRAINT_NAME, kcu1.ORDINAL_POSITION`

func (s *InfoSchema) ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error) {
	w := s.Where().
		SchemaEq("kcu1.TABLE_SCHEMA", s.Schema, s.CurrentSchema).
		EqIf("kcu1.TABLE_NAME", table)
	rows, err := s.QueryWhere(ctx, foreignKeysQuery, w)
	if err != nil {
		return nil, err
	}
	return DecodeForeignKeys(rows), nil
}
