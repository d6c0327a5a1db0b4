package compiler

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"

	"github.com/google/uuid"
)

// WellKnownFormats returns predicates for OpenAPI formats that JSON Schema does
// not define: int32, int64, float, double and byte, plus a strict uuid.
// Predicates accept values of other JSON types, as JSON Schema formats do.
func WellKnownFormats() map[string]func(any) bool {
	return map[string]func(any) bool{
		"int32":  integerIn(math.MinInt32, math.MaxInt32),
		"int64":  integerIn(math.MinInt64, math.MaxInt64),
		"float":  floatIn(math.MaxFloat32),
		"double": floatIn(math.MaxFloat64),
		"byte":   isBase64,
		"uuid":   isUUID,
	}
}

func integerIn(lo, hi float64) func(any) bool {
	return func(v any) bool {
		f, ok := toFloat(v)
		if !ok {
			return true
		}
		if n, isNum := v.(json.Number); isNum {
			// exact check for values beyond float64 integer precision
			if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
				return float64(i) >= lo && float64(i) <= hi
			}
		}
		return f == math.Trunc(f) && f >= lo && f <= hi
	}
}

func floatIn(limit float64) func(any) bool {
	return func(v any) bool {
		f, ok := toFloat(v)
		if !ok {
			return true
		}
		return !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) <= limit
	}
}

func isBase64(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

func isUUID(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	// uuid.Parse also accepts the urn and braced forms; JSON Schema wants the bare form.
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
