package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is one result row with columns kept in query order.
type Row struct {
	columns []string
	values  []any
}

// NewRow pairs columns with values; extra values are dropped.
func NewRow(columns []string, values []any) Row {
	n := min(len(columns), len(values))
	return Row{
		columns: append([]string(nil), columns[:n]...),
		values:  append([]any(nil), values[:n]...),
	}
}

func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r Row) Len() int {
	return len(r.columns)
}

// Get returns the value of the named column. Matching is case-sensitive.
func (r Row) Get(name string) (any, bool) {
	for i, c := range r.columns {
		if c == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// First returns the value of the first column, or nil for an empty row.
func (r Row) First() any {
	if len(r.values) == 0 {
		return nil
	}
	return r.values[0]
}

// Map returns the row as an unordered map.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		m[c] = r.values[i]
	}
	return m
}

// MarshalJSON renders the row as an object preserving column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			val, _ = json.Marshal(fmt.Sprint(r.values[i]))
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DeepCopy lets snapshot copies keep the unexported columns and values.
func (r Row) DeepCopy() any {
	return NewRow(r.columns, r.values)
}
