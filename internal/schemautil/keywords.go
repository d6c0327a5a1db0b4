package schemautil

// Keywords whose value is a single subschema.
var schemaValueKeywords = []string{
	"items", "additionalItems", "additionalProperties", "not",
	"if", "then", "else", "contains", "propertyNames",
	"unevaluatedItems", "unevaluatedProperties",
}

// Keywords whose value is a list of subschemas.
var schemaListKeywords = []string{"allOf", "anyOf", "oneOf", "prefixItems"}

// Keywords whose value maps names to subschemas.
var schemaMapKeywords = []string{
	"properties", "patternProperties", "definitions", "$defs", "dependentSchemas",
}

// walkSubschemas calls fn for every direct subschema of node and stores the
// returned value in its place. Values under enum, const, default and the example
// keywords are instance data and are never visited.
func walkSubschemas(node map[string]any, fn func(map[string]any) map[string]any) {
	for _, kw := range schemaValueKeywords {
		switch v := node[kw].(type) {
		case map[string]any:
			node[kw] = fn(v)
		case []any:
			// items as a tuple (draft 4 style)
			if kw == "items" {
				node[kw] = walkList(v, fn)
			}
		}
	}
	for _, kw := range schemaListKeywords {
		if list, ok := node[kw].([]any); ok {
			node[kw] = walkList(list, fn)
		}
	}
	for _, kw := range schemaMapKeywords {
		if m, ok := node[kw].(map[string]any); ok {
			out := make(map[string]any, len(m))
			for name, sub := range m {
				if s, ok := sub.(map[string]any); ok {
					out[name] = fn(s)
				} else {
					out[name] = sub
				}
			}
			node[kw] = out
		}
	}
}

func walkList(list []any, fn func(map[string]any) map[string]any) []any {
	out := make([]any, len(list))
	for i, item := range list {
		if s, ok := item.(map[string]any); ok {
			out[i] = fn(s)
		} else {
			out[i] = item
		}
	}
	return out
}
