// Package export captures a full schema snapshot through an inspector and
// writes it out as JSON or YAML.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jadedragon942/dbinspect/adapter"
	"github.com/jadedragon942/dbinspect/schema"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Source is the part of inspector.Inspector a snapshot needs.
type Source interface {
	Backend() adapter.Backend
	AllTableInfo(ctx context.Context) ([]schema.TableInfo, error)
	ColumnInfo(ctx context.Context, table string) ([]schema.ColumnInfo, error)
	ForeignKeys(ctx context.Context, table string) ([]schema.ForeignKey, error)
}

// Capture reads every table, column and foreign key of the inspected schema.
func Capture(ctx context.Context, src Source) (*schema.Snapshot, error) {
	snap := schema.New(src.Backend().String())

	tables, err := src.AllTableInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	cols, err := src.ColumnInfo(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to describe columns: %w", err)
	}
	fks, err := src.ForeignKeys(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}

	snap.Tables = append(snap.Tables, tables...)
	snap.Columns = append(snap.Columns, cols...)
	snap.ForeignKeys = append(snap.ForeignKeys, fks...)

	adapter.Logger().Debug().
		Str("backend", snap.Backend).
		Int("tables", len(snap.Tables)).
		Int("columns", len(snap.Columns)).
		Int("foreign_keys", len(snap.ForeignKeys)).
		Msg("captured snapshot")
	return snap, nil
}

type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	return string(f)
}

func (f Format) ContentType() string {
	if f == YAML {
		return "application/yaml"
	}
	return "application/json"
}

// Encode renders v, usually a *schema.Snapshot, in the given format.
func Encode(v any, format Format) ([]byte, error) {
	switch format {
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal json: %w", err)
		}
		return append(data, '\n'), nil
	case YAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
}

// Decode parses a snapshot written by Encode.
func Decode(data []byte, format Format) (*schema.Snapshot, error) {
	snap := &schema.Snapshot{}
	var err error
	switch format {
	case JSON:
		err = json.Unmarshal(data, snap)
	case YAML:
		err = yaml.Unmarshal(data, snap)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(format))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Writer stores an encoded snapshot under a name.
type Writer interface {
	Write(ctx context.Context, name string, data []byte, format Format) error
}

// FileName is the default object name for a snapshot of backend.
func FileName(backend string, format Format) string {
	return backend + "-schema." + format.Ext()
}

// Save encodes snap and hands it to w.
func Save(ctx context.Context, w Writer, snap *schema.Snapshot, name string, format Format) error {
	data, err := Encode(snap, format)
	if err != nil {
		return err
	}
	if name == "" {
		name = FileName(snap.Backend, format)
	}
	return w.Write(ctx, name, data, format)
}
