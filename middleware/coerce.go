package middleware

import (
	"strconv"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
)

// propertySchema returns the schema of one parameter from a group schema.
func propertySchema(group map[string]any, name string) map[string]any {
	prop, _ := schemautil.Properties(group)[name].(map[string]any)
	return prop
}

// coerceValues converts raw parameter values to the type their schema
// declares. Arrays accept repeated values or one comma-separated value.
// Values that do not parse are kept as strings for the validator to reject.
func coerceValues(values []string, schema map[string]any) any {
	if schemautil.PrimaryType(schema) == "array" {
		items, _ := schema["items"].(map[string]any)
		if len(values) == 1 && strings.Contains(values[0], ",") {
			values = strings.Split(values[0], ",")
		}
		out := make([]any, len(values))
		for i, v := range values {
			out[i] = coerceValue(v, items)
		}
		return out
	}
	if len(values) == 1 {
		return coerceValue(values[0], schema)
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = coerceValue(v, schema)
	}
	return out
}

// coerceValue converts a string value to the appropriate type based on schema.
func coerceValue(value string, schema map[string]any) any {
	if schema == nil {
		return value
	}

	switch schemautil.PrimaryType(schema) {
	case "integer":
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		return value
	case "number":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		return value
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		return value
	default:
		return value
	}
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
