package schemautil

// ExpandNullable returns a copy of schema with every "nullable" marker rewritten
// into the strict dialect. The first matching rule applies to a nullable node:
//
//   - enum: the node becomes oneOf [{type: null}, {type: <type>, enum: <enum>}]
//   - type: "null" joins the type, so "string" becomes ["string", "null"]
//   - allOf: the node becomes anyOf [{allOf: <allOf>}, {type: null}]
//   - oneOf or anyOf: {type: null} is appended to the list
//
// The marker itself is removed from every node, including nodes where it is false.
func ExpandNullable(schema map[string]any) map[string]any {
	if schema == nil {
		return nil
	}
	return expandNullable(CopySchema(schema))
}

// expandNullable rewrites node in place. node must be exclusively owned.
func expandNullable(node map[string]any) map[string]any {
	nullable, _ := node["nullable"].(bool)
	delete(node, "nullable")
	if nullable {
		applyNullable(node)
	}
	walkSubschemas(node, expandNullable)
	return node
}

func applyNullable(node map[string]any) {
	if enum, ok := node["enum"].([]any); ok {
		branch := map[string]any{"enum": enum}
		if t, ok := node["type"]; ok {
			branch["type"] = t
		}
		delete(node, "enum")
		delete(node, "type")
		if existing, ok := node["oneOf"]; ok {
			// keep an existing oneOf as a conjunct rather than dropping it
			allOf, _ := node["allOf"].([]any)
			node["allOf"] = append(allOf, map[string]any{"oneOf": existing})
		}
		node["oneOf"] = []any{nullSchema(), branch}
		return
	}

	switch t := node["type"].(type) {
	case string:
		if t != "null" {
			node["type"] = []any{t, "null"}
		}
		return
	case []any:
		if !containsString(t, "null") {
			node["type"] = append(t, "null")
		}
		return
	case []string:
		types := make([]any, 0, len(t)+1)
		for _, s := range t {
			types = append(types, s)
		}
		if !containsString(types, "null") {
			types = append(types, "null")
		}
		node["type"] = types
		return
	}

	if allOf, ok := node["allOf"].([]any); ok {
		delete(node, "allOf")
		anyOf := []any{map[string]any{"allOf": allOf}, nullSchema()}
		if existing, ok := node["anyOf"]; ok {
			node["allOf"] = []any{map[string]any{"anyOf": existing}}
		}
		node["anyOf"] = anyOf
		return
	}

	for _, kw := range []string{"oneOf", "anyOf"} {
		if list, ok := node[kw].([]any); ok {
			if !hasNullBranch(list) {
				node[kw] = append(list, nullSchema())
			}
			return
		}
	}
}

func nullSchema() map[string]any {
	return map[string]any{"type": "null"}
}

func hasNullBranch(list []any) bool {
	for _, item := range list {
		if s, ok := item.(map[string]any); ok && len(s) == 1 && s["type"] == "null" {
			return true
		}
	}
	return false
}

func containsString(list []any, want string) bool {
	for _, v := range list {
		if s, ok := v.(string); ok && s == want {
			return true
		}
	}
	return false
}
