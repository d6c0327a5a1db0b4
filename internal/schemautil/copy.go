package schemautil

// DeepCopy recursively copies a JSON-compatible value.
// Maps and slices are duplicated; scalars and unknown types are returned as-is.
func DeepCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopySchema(t)
	case []any:
		cp := make([]any, len(t))
		for i, item := range t {
			cp[i] = DeepCopy(item)
		}
		return cp
	case []string:
		cp := make([]string, len(t))
		copy(cp, t)
		return cp
	default:
		return v
	}
}

// CopySchema deep copies a schema object. A nil schema yields nil.
func CopySchema(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	cp := make(map[string]any, len(schema))
	for k, v := range schema {
		cp[k] = DeepCopy(v)
	}
	return cp
}
