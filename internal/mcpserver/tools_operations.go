package mcpserver

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/httputil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type listOperationsInput struct {
	Spec     specInput `json:"spec"               jsonschema:"The OAS document to list"`
	Method   string    `json:"method,omitempty"   jsonschema:"Only operations with this HTTP method"`
	Resource string    `json:"resource,omitempty" jsonschema:"Only resources starting with this prefix, e.g. /pets"`
	Offset   int       `json:"offset,omitempty"   jsonschema:"Skip the first N operations (for pagination)"`
	Limit    int       `json:"limit,omitempty"    jsonschema:"Maximum number of operations to return (default 100)"`
}

type operationSummary struct {
	Resource     string         `json:"resource"`
	Method       string         `json:"method"`
	OperationID  string         `json:"operation_id,omitempty"`
	Parameters   map[string]int `json:"parameters,omitempty"`
	MediaTypes   []string       `json:"media_types,omitempty"`
	BodyRequired bool           `json:"body_required,omitempty"`
}

type listOperationsOutput struct {
	Total      int                `json:"total"`
	Returned   int                `json:"returned"`
	Operations []operationSummary `json:"operations,omitempty"`
}

func handleListOperations(_ context.Context, _ *mcp.CallToolRequest, input listOperationsInput) (*mcp.CallToolResult, listOperationsOutput, error) {
	spec, err := input.Spec.resolve(validatorFlags{})
	if err != nil {
		return errResult(err), listOperationsOutput{}, nil
	}

	method := httputil.NormalizeMethod(input.Method)
	var matched []*parser.EndpointSpec
	for _, ep := range spec.parsed.Endpoints {
		if method != "" && ep.Method != method {
			continue
		}
		if !strings.HasPrefix(ep.Resource, input.Resource) {
			continue
		}
		matched = append(matched, ep)
	}

	page := paginate(matched, input.Offset, input.Limit)
	output := listOperationsOutput{
		Total:      len(matched),
		Returned:   len(page),
		Operations: makeSlice[operationSummary](len(page)),
	}
	for _, ep := range page {
		output.Operations = append(output.Operations, summarize(ep))
	}
	return nil, output, nil
}

func summarize(ep *parser.EndpointSpec) operationSummary {
	s := operationSummary{
		Resource:    ep.Resource,
		Method:      ep.Method,
		OperationID: ep.OperationID,
	}
	for _, p := range ep.Parameters {
		if p == nil {
			continue
		}
		if s.Parameters == nil {
			s.Parameters = make(map[string]int)
		}
		s.Parameters[p.In]++
		if p.Required && (p.In == parser.LocationBody || p.In == parser.LocationFormData) {
			s.BodyRequired = true
		}
	}
	if ep.RequestBody != nil {
		s.MediaTypes = slices.Sorted(maps.Keys(ep.RequestBody.Content))
		s.BodyRequired = ep.RequestBody.Required
	}
	return s
}
