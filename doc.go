// Package reqvalidator validates HTTP requests against the operations of an
// OpenAPI document.
//
// Each operation's parameters and request body are turned into JSON Schemas
// once, compiled, and kept as a ValidatorSet. Validating a request then runs
// every compiled validator and reports the violations with stable error codes
// and paths. Swagger 2.0 and OpenAPI 3.x documents are supported.
//
// # Packages
//
//   - parser: decode a document, expand local $refs, extract each operation
//   - compiler: JSON Schema compiler with custom formats and keywords
//   - httpvalidator: validator sets, the validation pipeline and error mapping
//   - middleware: net/http and chi middleware that answers 400, 413 and 415
//   - artifact: persist compile-ready schemas and rebuild validators from them
//   - oaserrors: typed errors for setup failures
//
// # Quick Start
//
//	parsed, err := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	v, err := httpvalidator.NewFromParsed(parsed)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := v.Validate(httpvalidator.RequestContext{
//		Resource: "/pets/{petId}",
//		Method:   "GET",
//		Params:   map[string]any{"petId": 42},
//	})
//	if result != nil {
//		fmt.Println(result.Status, result.Errors)
//	}
//
// Serve the same checks from a chi router:
//
//	validate, _ := middleware.New(v)
//	r := chi.NewRouter()
//	r.Group(func(r chi.Router) {
//		r.Use(validate)
//		r.Get("/pets/{petId}", getPet)
//	})
//
// # Command Line
//
// The reqvalidator command validates a request described as JSON, writes
// artifact bundles, and serves the validator to MCP clients:
//
//	reqvalidator validate --spec openapi.yaml --request req.json
//	reqvalidator normalize --spec openapi.yaml -o validators.yaml
//	reqvalidator mcp
package reqvalidator
