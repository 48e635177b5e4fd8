package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Context is the input mapping of known and partially-known fields about a
// contact, company, and the sender. It is the single source of truth for
// inference, scoring, and template resolution.
type Context map[string]any

// Has reports whether key is present with a non-nil, non-empty value.
// Empty strings count as missing.
func (c Context) Has(key string) bool {
	v, ok := c[key]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// String returns the value at key rendered as a string, or "" if absent.
// Numeric values are formatted without a trailing ".0" where possible.
func (c Context) String(key string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return ""
	}
	return Stringify(v)
}

// Float returns the value at key as a float64. Strings are parsed after
// stripping common formatting ("$", ","). ok is false when the value is
// absent or not numeric.
func (c Context) Float(key string) (float64, bool) {
	v, present := c[key]
	if !present || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(n))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Map returns a nested mapping at key, or nil. Both Context and plain
// map[string]any values (e.g. decoded JSON) are accepted.
func (c Context) Map(key string) map[string]any {
	switch m := c[key].(type) {
	case map[string]any:
		return m
	case Context:
		return m
	}
	return nil
}

// Slice returns a list value at key, or nil.
func (c Context) Slice(key string) []any {
	if s, ok := c[key].([]any); ok {
		return s
	}
	return nil
}

// Clone returns a shallow copy. Nested maps are shared; callers that merge
// inferred values only write top-level keys.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Stringify renders an arbitrary context value for template substitution.
func Stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
