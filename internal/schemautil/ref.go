package schemautil

import "strings"

// Prefixes under which named schemas are addressed by local references.
var namedSchemaPrefixes = []string{
	"#/components/schemas/",
	"#/definitions/",
	"#/$defs/",
}

// RefName extracts the schema name from a local reference such as
// "#/components/schemas/Pet" or "#/definitions/Pet". ok is false for any other form.
func RefName(ref string) (name string, ok bool) {
	for _, prefix := range namedSchemaPrefixes {
		if rest, found := strings.CutPrefix(ref, prefix); found && rest != "" && !strings.Contains(rest, "/") {
			return UnescapePointer(rest), true
		}
	}
	return "", false
}

// UnescapePointer decodes a single JSON Pointer token (RFC 6901).
func UnescapePointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

// EscapePointer encodes a string as a single JSON Pointer token (RFC 6901).
func EscapePointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

// PoolResolver resolves named-schema references against pool.
func PoolResolver(pool map[string]any) Resolver {
	return func(ref string) (map[string]any, bool) {
		name, ok := RefName(ref)
		if !ok {
			return nil, false
		}
		schema, ok := pool[name].(map[string]any)
		return schema, ok
	}
}

// ChainResolvers returns a Resolver that tries each resolver in order.
func ChainResolvers(resolvers ...Resolver) Resolver {
	return func(ref string) (map[string]any, bool) {
		for _, r := range resolvers {
			if r == nil {
				continue
			}
			if s, ok := r(ref); ok {
				return s, true
			}
		}
		return nil, false
	}
}
