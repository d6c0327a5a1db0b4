package schemautil

// Normalize converts a parameter schema to the strict dialect.
func Normalize(schema map[string]any) map[string]any {
	return ExpandNullable(schema)
}

// NormalizeBody converts a request body schema to the strict dialect. readOnly
// properties are released from "required" before nullable markers are expanded.
// The two rewrites commute.
func NormalizeBody(schema map[string]any, resolve Resolver) map[string]any {
	return ExpandNullable(StripReadOnlyRequired(schema, resolve))
}
