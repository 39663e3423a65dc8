package conn

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/row"
)

// Session is a ScyllaDB session whose query results decode into rows.
type Session struct {
	session  *gocql.Session
	keyspace string
}

var _ adapter.Queryer = (*Session)(nil)

// ScyllaConfig is a parsed ScyllaDB connection string.
type ScyllaConfig struct {
	Hosts       []string
	Keyspace    string
	Consistency gocql.Consistency
	Timeout     time.Duration
}

// ParseScylla parses "host1,host2/keyspace?consistency=quorum&timeout=10s".
func ParseScylla(connStr string) (ScyllaConfig, error) {
	cfg := ScyllaConfig{Consistency: gocql.Quorum, Timeout: 10 * time.Second}

	parts := strings.Split(connStr, "/")
	if len(parts) != 2 || parts[0] == "" {
		return cfg, errors.New("invalid connection string format, expected: hosts/keyspace?options")
	}
	cfg.Hosts = strings.Split(parts[0], ",")

	keyspaceParts := strings.SplitN(parts[1], "?", 2)
	cfg.Keyspace = keyspaceParts[0]
	if cfg.Keyspace == "" {
		return cfg, errors.New("connection string must name a keyspace")
	}
	if len(keyspaceParts) == 1 {
		return cfg, nil
	}

	for _, opt := range strings.Split(keyspaceParts[1], "&") {
		key, value, ok := strings.Cut(opt, "=")
		if !ok {
			continue
		}
		switch key {
		case "consistency":
			c, err := parseConsistency(value)
			if err != nil {
				return cfg, err
			}
			cfg.Consistency = c
		case "timeout":
			d, err := time.ParseDuration(value)
			if err != nil {
				return cfg, fmt.Errorf("invalid timeout format: %w", err)
			}
			cfg.Timeout = d
		}
	}
	return cfg, nil
}

func parseConsistency(value string) (gocql.Consistency, error) {
	switch strings.ToLower(value) {
	case "any":
		return gocql.Any, nil
	case "one":
		return gocql.One, nil
	case "two":
		return gocql.Two, nil
	case "three":
		return gocql.Three, nil
	case "quorum":
		return gocql.Quorum, nil
	case "all":
		return gocql.All, nil
	case "localone":
		return gocql.LocalOne, nil
	case "localquorum":
		return gocql.LocalQuorum, nil
	case "eachquorum":
		return gocql.EachQuorum, nil
	}
	return gocql.Quorum, fmt.Errorf("unsupported consistency level: %s", value)
}

// OpenScylla connects to a ScyllaDB or Cassandra cluster.
func OpenScylla(connStr string) (*Session, error) {
	cfg, err := ParseScylla(connStr)
	if err != nil {
		return nil, err
	}

	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = cfg.Consistency
	cluster.ProtoVersion = 4
	cluster.ConnectTimeout = cfg.Timeout
	cluster.Timeout = cfg.Timeout

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create ScyllaDB session: %w", err)
	}
	return &Session{session: session, keyspace: cfg.Keyspace}, nil
}

func (s *Session) Keyspace() string {
	return s.keyspace
}

func (s *Session) Query(ctx context.Context, query string, args ...any) ([]row.Row, error) {
	if s == nil || s.session == nil {
		return nil, errors.New("not connected")
	}
	iter := s.session.Query(query, args...).WithContext(ctx).Iter()

	result := make([]row.Row, 0)
	for {
		m := make(map[string]any)
		if !iter.MapScan(m) {
			break
		}
		result = append(result, row.Row(m))
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Session) Exec(ctx context.Context, query string, args ...any) error {
	if s == nil || s.session == nil {
		return errors.New("not connected")
	}
	return s.session.Query(query, args...).WithContext(ctx).Exec()
}

func (s *Session) Close() error {
	if s != nil && s.session != nil {
		s.session.Close()
	}
	return nil
}
