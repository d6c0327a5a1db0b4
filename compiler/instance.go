package compiler

import (
	stdjson "encoding/json"
	"fmt"

	"github.com/go-json-experiment/json"
)

// toJSONValue converts v into the value space the validator understands:
// nil, bool, string, float64, []any and map[string]any.
// Common Go shapes are converted directly; anything else takes a JSON round trip.
func toJSONValue(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t, nil
	case stdjson.Number:
		if f, err := t.Float64(); err == nil {
			return f, nil
		}
		return string(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case float32:
		return float64(t), nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			cv, err := toJSONValue(item)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			cv, err := toJSONValue(item)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, nil
	case map[string][]string:
		out := make(map[string]any, len(t))
		for k, list := range t {
			items := make([]any, len(list))
			for i, s := range list {
				items[i] = s
			}
			out[k] = items
		}
		return out, nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("value of type %T is not JSON-compatible: %w", v, err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("value of type %T is not JSON-compatible: %w", v, err)
	}
	return out, nil
}

// schemaDocument converts a schema tree to its JSON value form.
func schemaDocument(schema map[string]any) (map[string]any, error) {
	if schema == nil {
		return map[string]any{}, nil
	}
	v, err := toJSONValue(schema)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("schema must be an object, got %T", v)
	}
	return doc, nil
}
