package row

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type number string

type label struct{ v string }

func (l label) String() string { return l.v }

func TestValueCaseInsensitive(t *testing.T) {
	r := Row{"COLUMN_NAME": "id", "table_name": "teams"}

	v, ok := r.Value("column_name")
	assert.True(t, ok)
	assert.Equal(t, "id", v)

	v, ok = r.Value("TABLE_NAME")
	assert.True(t, ok)
	assert.Equal(t, "teams", v)

	_, ok = r.Value("missing")
	assert.False(t, ok)

	var empty Row
	_, ok = empty.Value("anything")
	assert.False(t, ok)
	assert.False(t, empty.Has("anything"))
}

func TestString(t *testing.T) {
	s := "abc"
	tests := []struct {
		name string
		in   any
		want *string
	}{
		{"string", "teams", ptr("teams")},
		{"bytes", []byte("varchar"), ptr("varchar")},
		{"pointer", &s, ptr("abc")},
		{"named kind", number("12"), ptr("12")},
		{"stringer", label{"x"}, ptr("x")},
		{"int", int64(7), ptr("7")},
		{"nil", nil, nil},
		{"nil pointer", (*string)(nil), nil},
		{"unsupported", []int{1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Row{"v": tt.in}
			got := r.String("v")
			if tt.want == nil {
				assert.Nil(t, got)
				assert.Equal(t, "", r.Text("v"))
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}

	assert.Nil(t, Row{}.String("missing"))
}

func TestInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *int64
	}{
		{"int", 10, i64(10)},
		{"int32", int32(-1), i64(-1)},
		{"uint8", uint8(3), i64(3)},
		{"float integral", float64(255), i64(255)},
		{"float fractional", 1.5, nil},
		{"numeric string", "10", i64(10)},
		{"decimal string", "10.0", i64(10)},
		{"bytes", []byte("36"), i64(36)},
		{"named string kind", number("38"), i64(38)},
		{"stringer", label{"4"}, i64(4)},
		{"float min int64", float64(math.MinInt64), i64(math.MinInt64)},
		{"float 2^63", float64(1 << 63), nil},
		{"float below min int64", -2 * float64(1<<63), nil},
		{"string 2^63", "9223372036854775808", nil},
		{"not a number", "max", nil},
		{"empty", "", nil},
		{"nil", nil, nil},
		{"bool", true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Row{"v": tt.in}.Int("v")
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestBool(t *testing.T) {
	truthy := []any{true, "YES", "yes", "Y", "TRUE", "t", "1", "ON", 1, int64(2), []byte("YES")}
	for _, v := range truthy {
		b, ok := Row{"v": v}.BoolOK("v")
		assert.True(t, ok, "%v", v)
		assert.True(t, b, "%v", v)
	}

	falsy := []any{false, "NO", "n", "FALSE", "F", "0", "off", 0, int8(0)}
	for _, v := range falsy {
		b, ok := Row{"v": v}.BoolOK("v")
		assert.True(t, ok, "%v", v)
		assert.False(t, b, "%v", v)
	}

	_, ok := Row{"v": "maybe"}.BoolOK("v")
	assert.False(t, ok)
	_, ok = Row{"v": nil}.BoolOK("v")
	assert.False(t, ok)
	assert.False(t, Row{}.Bool("missing"))
}

func ptr(s string) *string { return &s }

func i64(n int64) *int64 { return &n }
