package task

import (
	"encoding/json"
	"fmt"
)

// Result is the untyped field bundle parsed from a model reply. Values are
// strings, float64, bool, []any or map[string]any and must be coerced
// before typed use.
type Result map[string]any

// String renders a field as text. Non-string values are rendered as JSON.
func (r Result) String(name string) string {
	v, ok := r[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Has reports whether the reply carried the field.
func (r Result) Has(name string) bool {
	_, ok := r[name]
	return ok
}
