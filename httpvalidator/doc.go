// Package httpvalidator validates HTTP requests against the operations of an
// OpenAPI document.
//
// # Overview
//
// For each operation a ValidatorSet is compiled once: one validator for each
// of the header, path, query and form data parameters, one for a legacy body
// parameter, and one per media type of a structured request body. Validation
// of a request is a synchronous, allocation-light walk over those validators
// and never returns an error; an invalid request yields a Result.
//
// # Schema normalization
//
// Schemas are rewritten before compilation. A "nullable" marker becomes an
// explicit null type or branch. For request bodies, readOnly properties are
// removed from "required" lists, resolving local references on the way.
//
// # Outcomes
//
//   - Schema violations: status 400, one ValidationError per violation.
//   - Required body missing: status 400, one error carrying the declared schema.
//   - Content-Type not declared: status 415.
//   - Required body without a Content-Type: reported as a "required" violation.
//
// Violations take precedence over a missing body, which takes precedence over
// an unsupported media type.
//
// # Usage
//
//	parsed, err := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	v, err := httpvalidator.NewFromParsed(parsed,
//	    httpvalidator.WithAdditionalQueryProperties(false),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := v.Validate(httpvalidator.RequestContext{
//	    Resource: "/pets/{petId}",
//	    Method:   "GET",
//	    Params:   map[string]any{"petId": 42},
//	})
//
// # Error mapping
//
// Each ValidationError carries an errorCode of the form
// "<keyword>.openapi.requestValidation", a dotted path relative to its request
// part, a message and a location (path, query, headers or body). Violations of
// "$ref" carry a schema pointer instead of an errorCode. WithErrorTransformer
// rewrites errors before they are returned.
package httpvalidator
