package params

import (
	"encoding/json"
	"math"
	"strconv"
)

// Origin tells where a resolved value came from.
type Origin int

const (
	OriginNone Origin = iota
	OriginRaw
	OriginDefault
	OriginExample
)

// Resolve picks the effective value for spec: the raw value when present,
// then the schema default, then the example.
func Resolve(raw map[string]string, spec ParameterSpec) (any, Origin) {
	if raw != nil {
		if v, ok := raw[spec.Name]; ok {
			return v, OriginRaw
		}
	}
	if spec.Schema.Default != nil {
		return spec.Schema.Default, OriginDefault
	}
	if spec.Example != nil {
		return spec.Example, OriginExample
	}
	return nil, OriginNone
}

// Parse coerces raw into the types declared by specs. A nil raw map is
// treated as empty. Keys of raw without a matching spec are dropped and specs
// that resolve to nothing are omitted. The only error is a *FormatError for
// a value that cannot be read as an integer or number.
func Parse(raw map[string]string, specs []ParameterSpec) (Values, error) {
	out := make(Values, len(specs))
	for _, spec := range specs {
		value, origin := Resolve(raw, spec)
		if origin == OriginNone {
			continue
		}

		coerced, err := coerce(spec, value)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = coerced
	}
	return out, nil
}

type coerceFunc func(spec ParameterSpec, value any) (any, error)

var coercers = map[SchemaType]coerceFunc{
	TypeInteger: coerceInteger,
	TypeNumber:  coerceNumber,
	TypeBoolean: coerceBoolean,
	TypeString:  passThrough,
	TypeOther:   passThrough,
}

func coerce(spec ParameterSpec, value any) (any, error) {
	fn, ok := coercers[spec.Schema.Type]
	if !ok {
		fn = passThrough
	}
	return fn(spec, value)
}

func passThrough(_ ParameterSpec, value any) (any, error) {
	return value, nil
}

func coerceInteger(spec ParameterSpec, value any) (any, error) {
	if s, ok := value.(string); ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, &FormatError{Name: spec.Name, Value: s, Type: TypeInteger, Err: err}
		}
		return n, nil
	}

	f, ok := toFloat(value)
	if !ok {
		return value, nil
	}
	if i, ok := value.(int64); ok {
		return i, nil
	}
	if i, ok := floatToInt(f); ok {
		return i, nil
	}
	return value, nil
}

// floatToInt converts f when it is a whole number inside the int64 range.
func floatToInt(f float64) (int64, bool) {
	if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func coerceNumber(spec ParameterSpec, value any) (any, error) {
	if s, ok := value.(string); ok {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &FormatError{Name: spec.Name, Value: s, Type: TypeNumber, Err: err}
		}
		return f, nil
	}

	if f, ok := toFloat(value); ok {
		return f, nil
	}
	return value, nil
}

func coerceBoolean(_ ParameterSpec, value any) (any, error) {
	if s, ok := value.(string); ok {
		return s == "true", nil
	}
	return value, nil
}

func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
