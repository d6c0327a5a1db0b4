package schemautil

// Resolver returns the schema a $ref points to. ok is false when the target is
// unknown, in which case the reference is left untouched.
type Resolver func(ref string) (schema map[string]any, ok bool)

// StripReadOnlyRequired returns a copy of schema in which every object that has
// both "properties" and "required" no longer lists its readOnly properties as
// required. The properties themselves are kept.
//
// The rewrite descends through properties, items, allOf, oneOf and anyOf. When
// resolve is non-nil, $ref nodes are replaced by a copy of their target before
// descending. A reference already being expanded further up the tree is left as
// a $ref, so self-referential schemas terminate.
func StripReadOnlyRequired(schema map[string]any, resolve Resolver) map[string]any {
	if schema == nil {
		return nil
	}
	s := &readOnlyStripper{resolve: resolve, visiting: make(map[string]bool)}
	return s.strip(CopySchema(schema))
}

type readOnlyStripper struct {
	resolve  Resolver
	visiting map[string]bool
}

// strip rewrites node in place. node must be exclusively owned.
func (s *readOnlyStripper) strip(node map[string]any) map[string]any {
	if ref, ok := node["$ref"].(string); ok && s.resolve != nil {
		if s.visiting[ref] {
			return node
		}
		target, ok := s.resolve(ref)
		if !ok {
			return node
		}
		s.visiting[ref] = true
		defer delete(s.visiting, ref)
		return s.strip(CopySchema(target))
	}

	props, hasProps := node["properties"].(map[string]any)
	if hasProps {
		out := make(map[string]any, len(props))
		for name, sub := range props {
			if m, ok := sub.(map[string]any); ok {
				out[name] = s.strip(m)
			} else {
				out[name] = sub
			}
		}
		node["properties"] = out
		props = out
	}

	switch items := node["items"].(type) {
	case map[string]any:
		node["items"] = s.strip(items)
	case []any:
		node["items"] = walkList(items, s.strip)
	}
	for _, kw := range []string{"allOf", "oneOf", "anyOf"} {
		if list, ok := node[kw].([]any); ok {
			node[kw] = walkList(list, s.strip)
		}
	}

	if !hasProps {
		return node
	}
	required, ok := requiredList(node["required"])
	if !ok {
		return node
	}
	kept := make([]any, 0, len(required))
	for _, name := range required {
		if prop, ok := props[name].(map[string]any); ok && isReadOnly(prop) {
			continue
		}
		kept = append(kept, name)
	}
	node["required"] = kept
	return node
}

func isReadOnly(schema map[string]any) bool {
	ro, _ := schema["readOnly"].(bool)
	return ro
}

// requiredList reads a "required" value decoded from YAML or JSON.
func requiredList(v any) ([]string, bool) {
	switch r := v.(type) {
	case []string:
		return r, true
	case []any:
		out := make([]string, 0, len(r))
		for _, item := range r {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}
