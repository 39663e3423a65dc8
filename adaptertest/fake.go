package adaptertest

import (
	"context"
	"strings"
	"sync"

	"github.com/jadedragon942/dbinspect/row"
)

// Call records one query received by a FakeQueryer.
type Call struct {
	Query string
	Args  []any
}

type response struct {
	match string
	rows  []row.Row
	err   error
}

// FakeQueryer returns canned catalog rows. A query is answered by the first
// registered response whose match text it contains, ignoring case; queries
// nothing matches return no rows.
type FakeQueryer struct {
	mu        sync.Mutex
	responses []response
	calls     []Call
	ignore    map[string]bool
}

func NewFakeQueryer() *FakeQueryer {
	return &FakeQueryer{ignore: map[string]bool{}}
}

// Ignore marks bound values that never filter canned rows.
func (f *FakeQueryer) Ignore(values ...string) *FakeQueryer {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range values {
		f.ignore[v] = true
	}
	return f
}

func (f *FakeQueryer) On(match string, rows ...row.Row) *FakeQueryer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response{match: strings.ToLower(match), rows: rows})
	return f
}

func (f *FakeQueryer) Fail(match string, err error) *FakeQueryer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, response{match: strings.ToLower(match), err: err})
	return f
}

func (f *FakeQueryer) Query(ctx context.Context, query string, args ...any) ([]row.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Query: query, Args: args})

	q := strings.ToLower(query)
	for _, r := range f.responses {
		if !strings.Contains(q, r.match) {
			continue
		}
		if r.err != nil {
			return nil, r.err
		}
		return f.filter(r.rows, args), nil
	}
	return nil, nil
}

// Calls returns the queries received so far.
func (f *FakeQueryer) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// filter narrows canned rows by the bound string arguments, so one canned
// result serves filtered and unfiltered queries alike. Arguments registered
// with Ignore (schema or keyspace names) are skipped; the first remaining one
// filters table_name and the second column_name.
func (f *FakeQueryer) filter(rows []row.Row, args []any) []row.Row {
	var keys []string
	for _, a := range args {
		s, ok := a.(string)
		if !ok || f.ignore[s] {
			continue
		}
		keys = append(keys, s)
	}

	out := make([]row.Row, 0, len(rows))
	for _, r := range rows {
		if len(keys) > 0 && r.Has("table_name") && r.Text("table_name") != keys[0] {
			continue
		}
		if len(keys) > 1 && r.Has("column_name") && r.Text("column_name") != keys[1] {
			continue
		}
		out = append(out, r)
	}
	return out
}
