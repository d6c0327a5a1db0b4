// Package parser decodes OpenAPI 2.0 and 3.x descriptions into per-operation
// request contracts.
//
// The document is decoded with go.yaml.in/yaml/v4 into generic maps, so any
// schema keyword survives untouched. Local $ref pointers are then expanded in
// place; a reference that would close a cycle is left as a $ref and reported
// through [ParseResult.HasCircularRefs].
//
// Each (path, method) pair becomes an [EndpointSpec] holding its merged
// parameter list, its structured request body (3.x) and the document's pool of
// named schemas:
//
//	result, err := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ep, ok := result.Endpoint("/pets/{petId}", "GET")
//
// Decoding failures and malformed structures are reported as
// [oaserrors.ParseError]; unresolvable references as [oaserrors.ReferenceError].
package parser
