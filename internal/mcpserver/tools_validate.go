package mcpserver

import (
	"context"

	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/httputil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type validateRequestInput struct {
	Spec     specInput      `json:"spec"              jsonschema:"The OAS document declaring the operation"`
	Resource string         `json:"resource"          jsonschema:"Path template of the operation, e.g. /pets/{petId}"`
	Method   string         `json:"method"            jsonschema:"HTTP method (case-insensitive)"`
	Path     string         `json:"path,omitempty"    jsonschema:"Concrete request path, e.g. /pets/42"`
	Headers  map[string]any `json:"headers,omitempty" jsonschema:"Request headers by name"`
	Query    map[string]any `json:"query,omitempty"   jsonschema:"Query parameters with their JSON types; repeated values as arrays"`
	Params   map[string]any `json:"params,omitempty"  jsonschema:"Path parameters with their JSON types"`
	Body     any            `json:"body,omitempty"    jsonschema:"Decoded request body; omit when the request has none"`

	HeadersLowercase          *bool `json:"headers_lowercase,omitempty"           jsonschema:"Match header names case-insensitively (default true)"`
	AdditionalQueryProperties *bool `json:"additional_query_properties,omitempty" jsonschema:"Allow query parameters the operation does not declare (default true)"`
}

type validateRequestOutput struct {
	Valid      bool                           `json:"valid"`
	Operation  string                         `json:"operation"`
	Status     int                            `json:"status,omitempty"`
	ErrorCount int                            `json:"error_count"`
	Errors     []httpvalidator.ValidationError `json:"errors,omitempty"`
}

func handleValidateRequest(_ context.Context, _ *mcp.CallToolRequest, input validateRequestInput) (*mcp.CallToolResult, validateRequestOutput, error) {
	spec, err := input.Spec.resolve(validatorFlags{
		HeadersLowercase:          input.HeadersLowercase,
		AdditionalQueryProperties: input.AdditionalQueryProperties,
	})
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}

	result, err := spec.validator.Validate(httpvalidator.RequestContext{
		Path:     input.Path,
		Resource: input.Resource,
		Method:   input.Method,
		Headers:  input.Headers,
		Query:    input.Query,
		Params:   input.Params,
		Body:     input.Body,
	})
	if err != nil {
		return errResult(err), validateRequestOutput{}, nil
	}

	output := validateRequestOutput{
		Valid:     result == nil,
		Operation: httputil.NormalizeMethod(input.Method) + " " + input.Resource,
	}
	if result != nil {
		output.Status = result.Status
		output.ErrorCount = len(result.Errors)
		output.Errors = result.Errors
	}
	return nil, output, nil
}
