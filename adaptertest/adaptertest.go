package adaptertest

import (
	"context"
	"strings"
	"testing"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/schema"
)

// Expectations describes how a backend reports the fixture tables.
type Expectations struct {
	// Schema is the expected TableInfo schema. When empty, HasSchema tells
	// whether some schema (such as the connected database or user) is
	// reported at all.
	Schema     string
	HasSchema  bool
	HasCatalog bool
	// TableOrder, when set, is the order Tables must report the fixture in.
	TableOrder []string
	// UnboundedColumn names a teams column reported with UnboundedLength.
	UnboundedColumn string
	AutoIncrement   bool
}

var (
	fixtureTables = []string{"teams", "users", "page_visits"}
	teamsColumns  = []string{"id", "uuid", "name", "description", "credits", "created_at", "activated_at"}
)

// Run checks an adapter against the teams / users / page_visits fixture.
func Run(t *testing.T, a adapter.Adapter, exp Expectations) {
	ctx := context.Background()

	tables, err := a.Tables(ctx)
	if err != nil {
		t.Fatalf("failed listing tables: %v", err)
	}
	got := only(tables, fixtureTables)
	if len(got) != len(fixtureTables) {
		t.Fatalf("expected fixture tables %v, got %v", fixtureTables, tables)
	}
	if exp.TableOrder != nil && strings.Join(got, ",") != strings.Join(exp.TableOrder, ",") {
		t.Errorf("expected table order %v, got %v", exp.TableOrder, got)
	}

	for _, name := range tables {
		info, err := a.TableInfo(ctx, name)
		if err != nil {
			t.Fatalf("failed table info for %s: %v", name, err)
		}
		has, err := a.HasTable(ctx, name)
		if err != nil {
			t.Fatalf("failed has table for %s: %v", name, err)
		}
		if info == nil || !has {
			t.Errorf("listed table %s: info=%v has=%v", name, info, has)
		}
	}

	checkTableInfo(ctx, t, a, exp)
	checkColumns(ctx, t, a)
	checkColumnInfo(ctx, t, a, exp)
	checkPrimary(ctx, t, a)
	checkForeignKeys(ctx, t, a)
}

func checkTableInfo(ctx context.Context, t *testing.T, a adapter.Adapter, exp Expectations) {
	info, err := a.TableInfo(ctx, "teams")
	if err != nil || info == nil {
		t.Fatalf("expected teams table info, got %v err=%v", info, err)
	}
	if info.Name != "teams" {
		t.Errorf("expected name teams, got %q", info.Name)
	}
	switch {
	case exp.Schema == "" && exp.HasSchema != (info.Schema != nil):
		t.Errorf("expected schema present=%v, got %v", exp.HasSchema, info.Schema)
	case exp.Schema != "" && (info.Schema == nil || *info.Schema != exp.Schema):
		t.Errorf("expected schema %q, got %v", exp.Schema, info.Schema)
	}
	if exp.HasCatalog != (info.Catalog != nil) {
		t.Errorf("expected catalog present=%v, got %v", exp.HasCatalog, info.Catalog)
	}

	missing, err := a.TableInfo(ctx, "foobar")
	if err != nil || missing != nil {
		t.Errorf("expected nil info for missing table, got %v err=%v", missing, err)
	}
	has, err := a.HasTable(ctx, "foobar")
	if err != nil || has {
		t.Errorf("expected missing table to not exist, got %v err=%v", has, err)
	}

	all, err := a.AllTableInfo(ctx)
	if err != nil {
		t.Fatalf("failed listing table info: %v", err)
	}
	var names []string
	for _, ti := range all {
		names = append(names, ti.Name)
	}
	if len(only(names, fixtureTables)) != len(fixtureTables) {
		t.Errorf("expected fixture tables in table info, got %v", names)
	}
}

func checkColumns(ctx context.Context, t *testing.T, a adapter.Adapter) {
	refs, err := a.Columns(ctx, "teams")
	if err != nil {
		t.Fatalf("failed listing teams columns: %v", err)
	}
	var names []string
	for _, r := range refs {
		if r.Table != "teams" {
			t.Errorf("unexpected table in teams columns: %+v", r)
		}
		names = append(names, r.Column)
	}
	if strings.Join(names, ",") != strings.Join(teamsColumns, ",") {
		t.Errorf("expected teams columns %v, got %v", teamsColumns, names)
	}

	infos, err := a.ColumnInfo(ctx, "teams")
	if err != nil {
		t.Fatalf("failed column info for teams: %v", err)
	}
	if len(infos) != len(refs) {
		t.Fatalf("columns and column info disagree: %d vs %d", len(refs), len(infos))
	}
	for i := range infos {
		if infos[i].Ref() != refs[i] {
			t.Errorf("column %d: %+v vs %+v", i, infos[i].Ref(), refs[i])
		}
	}

	all, err := a.Columns(ctx, "")
	if err != nil {
		t.Fatalf("failed listing all columns: %v", err)
	}
	tables, err := a.Tables(ctx)
	if err != nil {
		t.Fatalf("failed listing tables: %v", err)
	}
	var want []schema.ColumnRef
	for _, table := range tables {
		refs, err := a.Columns(ctx, table)
		if err != nil {
			t.Fatalf("failed listing columns of %s: %v", table, err)
		}
		want = append(want, refs...)
	}
	if len(all) != len(want) {
		t.Fatalf("expected %d columns across tables %v, got %d", len(want), tables, len(all))
	}
	for i := range all {
		if all[i] != want[i] {
			t.Errorf("column %d: expected %+v in table order, got %+v", i, want[i], all[i])
		}
	}

	empty, err := a.ColumnInfo(ctx, "foobar")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty column info for missing table, got %v err=%v", empty, err)
	}
	col, err := a.Column(ctx, "teams", "foobar")
	if err != nil || col != nil {
		t.Errorf("expected nil for missing column, got %v err=%v", col, err)
	}
	col, err = a.Column(ctx, "foobar", "id")
	if err != nil || col != nil {
		t.Errorf("expected nil for column of missing table, got %v err=%v", col, err)
	}
}

func checkColumnInfo(ctx context.Context, t *testing.T, a adapter.Adapter, exp Expectations) {
	get := func(table, column string) schema.ColumnInfo {
		t.Helper()
		c, err := a.Column(ctx, table, column)
		if err != nil || c == nil {
			t.Fatalf("expected column %s.%s, got %v err=%v", table, column, c, err)
		}
		if c.DataType != strings.ToLower(c.DataType) {
			t.Errorf("%s.%s: data type %q is not lower case", table, column, c.DataType)
		}
		return *c
	}

	id := get("teams", "id")
	if !id.IsPrimaryKey || id.IsNullable {
		t.Errorf("teams.id: expected non-null primary key, got %+v", id)
	}
	if id.HasAutoIncrement != exp.AutoIncrement {
		t.Errorf("teams.id: expected auto increment %v", exp.AutoIncrement)
	}
	if id.ForeignKeyTable != nil || id.ForeignKeyColumn != nil {
		t.Errorf("teams.id: expected no foreign key, got %v.%v", id.ForeignKeyTable, id.ForeignKeyColumn)
	}

	uuid := get("teams", "uuid")
	if uuid.IsPrimaryKey {
		t.Errorf("teams.uuid: unexpected primary key")
	}
	if !uuid.IsUnique || uuid.IsNullable {
		t.Errorf("teams.uuid: expected unique not null, got %+v", uuid)
	}
	if uuid.MaxLength == nil || *uuid.MaxLength != 36 {
		t.Errorf("teams.uuid: expected max length 36, got %v", uuid.MaxLength)
	}

	name := get("teams", "name")
	if name.MaxLength == nil || *name.MaxLength != 100 {
		t.Errorf("teams.name: expected max length 100, got %v", name.MaxLength)
	}
	if name.IsUnique || name.IsPrimaryKey {
		t.Errorf("teams.name: unexpected key flags %+v", name)
	}

	if exp.UnboundedColumn != "" {
		c := get("teams", exp.UnboundedColumn)
		if !c.IsUnbounded() {
			t.Errorf("teams.%s: expected unbounded length, got %v", exp.UnboundedColumn, c.MaxLength)
		}
	}

	credits := get("teams", "credits")
	if credits.MaxLength != nil {
		t.Errorf("teams.credits: expected no max length, got %d", *credits.MaxLength)
	}
	if credits.NumericPrecision == nil && credits.NumericScale != nil {
		t.Errorf("teams.credits: scale without precision")
	}
	if !credits.IsNullable {
		t.Errorf("teams.credits: expected nullable")
	}

	teamID := get("users", "team_id")
	if teamID.ForeignKeyTable == nil || *teamID.ForeignKeyTable != "teams" ||
		teamID.ForeignKeyColumn == nil || *teamID.ForeignKeyColumn != "id" {
		t.Errorf("users.team_id: expected foreign key to teams.id, got %v.%v", teamID.ForeignKeyTable, teamID.ForeignKeyColumn)
	}
	if teamID.IsNullable {
		t.Errorf("users.team_id: expected not null")
	}
	userID := get("users", "id")
	if userID.ForeignKeyTable != nil {
		t.Errorf("users.id: expected no foreign key, got %v", *userID.ForeignKeyTable)
	}
}

func checkPrimary(ctx context.Context, t *testing.T, a adapter.Adapter) {
	pk, err := a.Primary(ctx, "teams")
	if err != nil || pk == nil || *pk != "id" {
		t.Errorf("expected teams primary key id, got %v err=%v", pk, err)
	}
	pk, err = a.Primary(ctx, "page_visits")
	if err != nil || pk != nil {
		t.Errorf("expected no primary key on page_visits, got %v err=%v", pk, err)
	}
	pk, err = a.Primary(ctx, "foobar")
	if err != nil || pk != nil {
		t.Errorf("expected no primary key on missing table, got %v err=%v", pk, err)
	}
}

func checkForeignKeys(ctx context.Context, t *testing.T, a adapter.Adapter) {
	fks, err := a.ForeignKeys(ctx, "users")
	if err != nil {
		t.Fatalf("failed listing foreign keys: %v", err)
	}
	found := false
	for _, fk := range fks {
		if fk.Table != "users" {
			t.Errorf("unexpected foreign key table %q", fk.Table)
		}
		if fk.Column == "team_id" && fk.ForeignKeyTable == "teams" && fk.ForeignKeyColumn == "id" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected users.team_id -> teams.id, got %+v", fks)
	}

	none, err := a.ForeignKeys(ctx, "page_visits")
	if err != nil || len(none) != 0 {
		t.Errorf("expected no foreign keys on page_visits, got %v err=%v", none, err)
	}
}

// only returns the elements of list that are in keep, preserving order.
func only(list, keep []string) []string {
	var out []string
	for _, v := range list {
		for _, k := range keep {
			if v == k {
				out = append(out, v)
				break
			}
		}
	}
	return out
}
