// Package schemautil rewrites schemas from the OpenAPI dialect into the strict
// JSON Schema dialect the compiler expects.
//
// Schemas are plain map[string]any trees as produced by decoding YAML or JSON.
// Every function here returns a new tree and never mutates its input, so the same
// named schema can be shared by several operations without aliasing.
//
// Two rewrites are provided:
//
//   - [ExpandNullable] replaces the OpenAPI "nullable" marker with an explicit null type.
//   - [StripReadOnlyRequired] drops readOnly properties from "required" lists, for
//     schemas that validate client-submitted request bodies.
//
// [Normalize] and [NormalizeBody] compose them in the order validators are built.
package schemautil
