package params

import (
	"net/url"
)

// Values holds the typed parameters of one request keyed by parameter name.
// Integers are int64, numbers float64, booleans bool.
type Values map[string]any

// Has reports whether name resolved to a value.
func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// Int returns the named value as an int64.
func (v Values) Int(name string) (int64, bool) {
	switch n := v[name].(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return floatToInt(n)
	}
	return 0, false
}

// Float returns the named value as a float64.
func (v Values) Float(name string) (float64, bool) {
	f, ok := toFloat(v[name])
	return f, ok
}

// Bool returns the named value as a bool.
func (v Values) Bool(name string) (bool, bool) {
	b, ok := v[name].(bool)
	return b, ok
}

// String returns the named value as a string.
func (v Values) String(name string) (string, bool) {
	s, ok := v[name].(string)
	return s, ok
}

// FromValues flattens a url.Values into the raw map Parse expects, keeping
// the first value of every key. A nil input yields a nil map.
func FromValues(values url.Values) map[string]string {
	if values == nil {
		return nil
	}
	raw := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		raw[key] = vals[0]
	}
	return raw
}
