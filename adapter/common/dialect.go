package common

import (
	"fmt"
	"strings"
)

// Placeholder styles used by the supported drivers.
func Question(int) string { return "?" }

func Dollar(i int) string { return fmt.Sprintf("$%d", i) }

func AtP(i int) string { return fmt.Sprintf("@p%d", i) }

func Colon(i int) string { return fmt.Sprintf(":%d", i) }

// Where accumulates AND-ed predicates and their bind arguments, numbering
// placeholders in the driver's style.
type Where struct {
	placeholder func(int) string
	clauses     []string
	args        []any
}

func NewWhere(placeholder func(int) string) *Where {
	if placeholder == nil {
		placeholder = Question
	}
	return &Where{placeholder: placeholder}
}

// Bind registers an argument and returns its placeholder.
func (w *Where) Bind(v any) string {
	w.args = append(w.args, v)
	return w.placeholder(len(w.args))
}

func (w *Where) Eq(expr string, v any) *Where {
	w.clauses = append(w.clauses, expr+" = "+w.Bind(v))
	return w
}

// EqIf adds the predicate only when v is not empty.
func (w *Where) EqIf(expr, v string) *Where {
	if v == "" {
		return w
	}
	return w.Eq(expr, v)
}

// SchemaEq filters expr by an explicit schema, or by the connection's current
// schema expression when none was configured.
func (w *Where) SchemaEq(expr, schemaName, current string) *Where {
	if schemaName != "" {
		return w.Eq(expr, schemaName)
	}
	return w.Raw(expr + " = " + current)
}

func (w *Where) Raw(clause string) *Where {
	w.clauses = append(w.clauses, clause)
	return w
}

// String renders "WHERE a AND b", or nothing when no predicate was added.
func (w *Where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *Where) Args() []any {
	return w.args
}
