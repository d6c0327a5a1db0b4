package schemautil

// Types returns the type(s) declared by a schema, accepting both the single
// string form ("string") and the list form (["string", "null"]).
func Types(schema map[string]any) []string {
	if schema == nil {
		return nil
	}
	switch t := schema["type"].(type) {
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []any:
		result := make([]string, 0, len(t))
		for _, v := range t {
			if s, ok := v.(string); ok {
				result = append(result, s)
			}
		}
		return result
	case []string:
		return t
	}
	return nil
}

// PrimaryType returns the first non-null type of a schema, or "" when it declares none.
func PrimaryType(schema map[string]any) string {
	types := Types(schema)
	for _, t := range types {
		if t != "null" {
			return t
		}
	}
	if len(types) > 0 {
		return types[0]
	}
	return ""
}

// HasType reports whether the schema includes the given type.
func HasType(schema map[string]any, target string) bool {
	for _, t := range Types(schema) {
		if t == target {
			return true
		}
	}
	return false
}

// Properties returns the "properties" member of an object schema.
func Properties(schema map[string]any) map[string]any {
	props, _ := schema["properties"].(map[string]any)
	return props
}

// Required returns the "required" member of an object schema.
func Required(schema map[string]any) []string {
	r, _ := requiredList(schema["required"])
	return r
}
