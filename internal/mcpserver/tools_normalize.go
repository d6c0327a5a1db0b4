package mcpserver

import (
	"context"
	"fmt"

	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type normalizeEndpointInput struct {
	Spec     specInput `json:"spec"     jsonschema:"The OAS document declaring the operation"`
	Resource string    `json:"resource" jsonschema:"Path template of the operation, e.g. /pets/{petId}"`
	Method   string    `json:"method"   jsonschema:"HTTP method (case-insensitive)"`

	HeadersLowercase          *bool `json:"headers_lowercase,omitempty"           jsonschema:"Lowercase header names in the headers schema (default true)"`
	AdditionalQueryProperties *bool `json:"additional_query_properties,omitempty" jsonschema:"Allow query parameters the operation does not declare (default true)"`
}

type normalizeEndpointOutput struct {
	Operation    string                    `json:"operation"`
	OperationID  string                    `json:"operation_id,omitempty"`
	Headers      map[string]any            `json:"headers,omitempty"`
	Path         map[string]any            `json:"path,omitempty"`
	Query        map[string]any            `json:"query,omitempty"`
	FormData     map[string]any            `json:"form_data,omitempty"`
	Body         map[string]any            `json:"body,omitempty"`
	Bodies       map[string]map[string]any `json:"bodies,omitempty"`
	BodyRequired bool                      `json:"body_required,omitempty"`
}

func handleNormalizeEndpoint(_ context.Context, _ *mcp.CallToolRequest, input normalizeEndpointInput) (*mcp.CallToolResult, normalizeEndpointOutput, error) {
	spec, err := input.Spec.resolve(validatorFlags{
		HeadersLowercase:          input.HeadersLowercase,
		AdditionalQueryProperties: input.AdditionalQueryProperties,
	})
	if err != nil {
		return errResult(err), normalizeEndpointOutput{}, nil
	}

	set, ok := spec.validator.Set(input.Resource, input.Method)
	if !ok {
		return errResult(fmt.Errorf("%w: %s %s", httpvalidator.ErrUnknownOperation, input.Method, input.Resource)), normalizeEndpointOutput{}, nil
	}
	s := set.Schemas()
	output := normalizeEndpointOutput{
		Operation:    set.Key(),
		Headers:      s.Headers,
		Path:         s.Path,
		Query:        s.Query,
		FormData:     s.FormData,
		Body:         s.LegacyBody,
		Bodies:       s.Bodies,
		BodyRequired: s.BodyRequired,
	}
	if ep, ok := spec.parsed.Endpoint(input.Resource, input.Method); ok {
		output.OperationID = ep.OperationID
	}
	return nil, output, nil
}
