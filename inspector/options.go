package inspector

// Option configures an Inspector.
type Option func(*options)

type options struct {
	schema        string
	excludeTables map[string]bool
}

func defaultOptions() *options {
	return &options{excludeTables: map[string]bool{}}
}

// WithSchema restricts inspection to one schema (the keyspace on ScyllaDB,
// the owner on Oracle). When not specified, the connection's current schema
// is inspected.
func WithSchema(name string) Option {
	return func(o *options) {
		o.schema = name
	}
}

// WithExcludeTables hides tables from every result, as if they did not
// exist.
func WithExcludeTables(tables ...string) Option {
	return func(o *options) {
		for _, t := range tables {
			o.excludeTables[t] = true
		}
	}
}
