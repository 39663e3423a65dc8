// Package row decodes catalog query results. A Row maps column names to the
// scalar values a driver produced, and its getters normalize the many ways
// drivers encode the same value without ever panicking.
package row

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

type Row map[string]any

// Value returns the raw value stored under key. Keys match case-insensitively
// since some engines upper-case unquoted aliases.
func (r Row) Value(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	if v, ok := r[key]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func (r Row) Has(key string) bool {
	_, ok := r.Value(key)
	return ok
}

// String returns the value as a string, or nil when it is absent, NULL or
// not representable as text.
func (r Row) String(key string) *string {
	v, ok := r.Value(key)
	if !ok {
		return nil
	}
	s, ok := toString(v)
	if !ok {
		return nil
	}
	return &s
}

// Text is String with NULL folded to "".
func (r Row) Text(key string) string {
	if s := r.String(key); s != nil {
		return *s
	}
	return ""
}

// Int returns the value as an int64. Numeric strings such as "10" or "10.0"
// are accepted because several drivers hand back DECIMAL columns as text.
func (r Row) Int(key string) *int64 {
	v, ok := r.Value(key)
	if !ok {
		return nil
	}
	n, ok := toInt(v)
	if !ok {
		return nil
	}
	return &n
}

// Bool reports the value as a boolean flag, false when it can't be read.
func (r Row) Bool(key string) bool {
	b, _ := r.BoolOK(key)
	return b
}

func (r Row) BoolOK(key string) (bool, bool) {
	v, ok := r.Value(key)
	if !ok {
		return false, false
	}
	return toBool(v)
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func toString(v any) (string, bool) {
	v = deref(v)
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case bool:
		return strconv.FormatBool(val), true
	case fmt.Stringer:
		return val.String(), true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), true
	}
	return "", false
}

func toInt(v any) (int64, bool) {
	v = deref(v)
	if v == nil {
		return 0, false
	}
	if b, ok := v.([]byte); ok {
		return parseInt(string(b))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt(rv.Float())
	case reflect.String:
		return parseInt(rv.String())
	}

	if s, ok := v.(fmt.Stringer); ok {
		return parseInt(s.String())
	}
	return 0, false
}

func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
	if f >= 1<<63 || f < -(1<<63) {
		return 0, false
	}
	return int64(f), true
}

func toBool(v any) (bool, bool) {
	v = deref(v)
	if v == nil {
		return false, false
	}
	if b, ok := v.(bool); ok {
		return b, true
	}
	if n, ok := toInt(v); ok {
		return n != 0, true
	}
	s, ok := toString(v)
	if !ok {
		return false, false
	}
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "YES", "Y", "TRUE", "T", "ON":
		return true, true
	case "NO", "N", "FALSE", "F", "OFF":
		return false, true
	}
	return false, false
}
