// Package schema holds the backend-independent description of a database
// that every adapter produces.
package schema

// UnboundedLength is reported as MaxLength for text types that have no fixed
// length limit (varchar(max), text, CLOB). A nil MaxLength means the type is
// not length-bounded at all.
const UnboundedLength int64 = -1

type TableInfo struct {
	Name    string  `json:"name" yaml:"name"`
	Schema  *string `json:"schema" yaml:"schema"`
	Catalog *string `json:"catalog" yaml:"catalog"`
}

type ColumnRef struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
}

type ColumnInfo struct {
	Name             string  `json:"name" yaml:"name"`
	Table            string  `json:"table" yaml:"table"`
	DataType         string  `json:"data_type" yaml:"data_type"`
	DefaultValue     *string `json:"default_value" yaml:"default_value"`
	MaxLength        *int64  `json:"max_length" yaml:"max_length"`
	NumericPrecision *int64  `json:"numeric_precision" yaml:"numeric_precision"`
	NumericScale     *int64  `json:"numeric_scale" yaml:"numeric_scale"`
	IsNullable       bool    `json:"is_nullable" yaml:"is_nullable"`
	IsUnique         bool    `json:"is_unique" yaml:"is_unique"`
	IsPrimaryKey     bool    `json:"is_primary_key" yaml:"is_primary_key"`
	HasAutoIncrement bool    `json:"has_auto_increment" yaml:"has_auto_increment"`
	ForeignKeyTable  *string `json:"foreign_key_table" yaml:"foreign_key_table"`
	ForeignKeyColumn *string `json:"foreign_key_column" yaml:"foreign_key_column"`
}

// IsUnbounded reports whether the column is a text type without a length cap.
func (c ColumnInfo) IsUnbounded() bool {
	return c.MaxLength != nil && *c.MaxLength == UnboundedLength
}

func (c ColumnInfo) Ref() ColumnRef {
	return ColumnRef{Table: c.Table, Column: c.Name}
}

// ForeignKey is one declared column reference. Composite constraints are
// reported as one ForeignKey per column pair.
type ForeignKey struct {
	Table            string  `json:"table" yaml:"table"`
	Column           string  `json:"column" yaml:"column"`
	ForeignKeySchema *string `json:"foreign_key_schema" yaml:"foreign_key_schema"`
	ForeignKeyTable  string  `json:"foreign_key_table" yaml:"foreign_key_table"`
	ForeignKeyColumn string  `json:"foreign_key_column" yaml:"foreign_key_column"`
	ConstraintName   *string `json:"constraint_name" yaml:"constraint_name"`
	OnUpdate         *string `json:"on_update" yaml:"on_update"`
	OnDelete         *string `json:"on_delete" yaml:"on_delete"`
}

// Snapshot is a full inspection of one database.
type Snapshot struct {
	Backend     string       `json:"backend" yaml:"backend"`
	Tables      []TableInfo  `json:"tables" yaml:"tables"`
	Columns     []ColumnInfo `json:"columns" yaml:"columns"`
	ForeignKeys []ForeignKey `json:"foreign_keys" yaml:"foreign_keys"`
}

func New(backend string) *Snapshot {
	return &Snapshot{
		Backend:     backend,
		Tables:      []TableInfo{},
		Columns:     []ColumnInfo{},
		ForeignKeys: []ForeignKey{},
	}
}

func (s *Snapshot) Table(name string) (*TableInfo, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// ColumnsOf returns the columns of table in declaration order.
func (s *Snapshot) ColumnsOf(table string) []ColumnInfo {
	out := []ColumnInfo{}
	for _, c := range s.Columns {
		if c.Table == table {
			out = append(out, c)
		}
	}
	return out
}

func (s *Snapshot) Column(table, column string) (*ColumnInfo, bool) {
	for i := range s.Columns {
		if s.Columns[i].Table == table && s.Columns[i].Name == column {
			return &s.Columns[i], true
		}
	}
	return nil, false
}

func StringPtr(s string) *string {
	return &s
}

func Int64Ptr(n int64) *int64 {
	return &n
}
