package api

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const maxMockDepth = 8

// mockResponse builds the answer of an operation without a controller: the
// first declared 2xx response (or default) with its JSON example, its first
// named example, or a sample generated from its schema.
func mockResponse(op *openapi3.Operation) (int, any) {
	status, response := successResponse(op)
	if response == nil {
		return status, nil
	}

	media := response.Content.Get("application/json")
	if media == nil {
		return status, nil
	}
	if media.Example != nil {
		return status, media.Example
	}
	if len(media.Examples) > 0 {
		names := make([]string, 0, len(media.Examples))
		for name := range media.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if ref := media.Examples[name]; ref != nil && ref.Value != nil && ref.Value.Value != nil {
				return status, ref.Value.Value
			}
		}
	}
	if media.Schema != nil {
		return status, sampleValue(media.Schema.Value, 0)
	}
	return status, nil
}

func successResponse(op *openapi3.Operation) (int, *openapi3.Response) {
	if op == nil || op.Responses == nil {
		return http.StatusOK, nil
	}

	codes := make([]string, 0, op.Responses.Len())
	for code := range op.Responses.Map() {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		status, ok := successStatus(code)
		if !ok {
			continue
		}
		if ref := op.Responses.Value(code); ref != nil && ref.Value != nil {
			return status, ref.Value
		}
	}

	if ref := op.Responses.Default(); ref != nil && ref.Value != nil {
		return http.StatusOK, ref.Value
	}
	return http.StatusOK, nil
}

func successStatus(code string) (int, bool) {
	if strings.EqualFold(code, "2XX") {
		return http.StatusOK, true
	}
	status, err := strconv.Atoi(code)
	if err != nil || status < 200 || status > 299 {
		return 0, false
	}
	return status, true
}

func sampleValue(s *openapi3.Schema, depth int) any {
	if s == nil || depth > maxMockDepth {
		return nil
	}
	if s.Example != nil {
		return s.Example
	}
	if s.Default != nil {
		return s.Default
	}
	if len(s.Enum) > 0 {
		return s.Enum[0]
	}
	if len(s.AllOf) > 0 {
		merged := map[string]any{}
		for _, ref := range s.AllOf {
			if part, ok := sampleValue(ref.Value, depth+1).(map[string]any); ok {
				for k, v := range part {
					merged[k] = v
				}
			}
		}
		return merged
	}
	for _, alternatives := range []openapi3.SchemaRefs{s.OneOf, s.AnyOf} {
		if len(alternatives) > 0 && alternatives[0] != nil {
			return sampleValue(alternatives[0].Value, depth+1)
		}
	}

	switch {
	case isType(s, openapi3.TypeObject) || (s.Type == nil && len(s.Properties) > 0):
		obj := make(map[string]any, len(s.Properties))
		for name, ref := range s.Properties {
			if ref == nil || ref.Value == nil {
				continue
			}
			obj[name] = sampleValue(ref.Value, depth+1)
		}
		return obj
	case isType(s, openapi3.TypeArray):
		if s.Items == nil {
			return []any{}
		}
		return []any{sampleValue(s.Items.Value, depth+1)}
	case isType(s, openapi3.TypeString):
		return sampleString(s.Format)
	case isType(s, openapi3.TypeInteger):
		if s.Min != nil {
			return int64(*s.Min)
		}
		return int64(0)
	case isType(s, openapi3.TypeNumber):
		if s.Min != nil {
			return *s.Min
		}
		return float64(0)
	case isType(s, openapi3.TypeBoolean):
		return true
	default:
		return nil
	}
}

func sampleString(format string) string {
	switch format {
	case "date-time":
		return "1970-01-01T00:00:00Z"
	case "date":
		return "1970-01-01"
	case "email":
		return "user@example.com"
	case "uuid":
		return "00000000-0000-0000-0000-000000000000"
	case "uri", "url":
		return "https://example.com"
	default:
		return "string"
	}
}

func isType(s *openapi3.Schema, name string) bool {
	return s.Type != nil && s.Type.Includes(name)
}
