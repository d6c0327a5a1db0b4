package parser

import (
	"fmt"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/httputil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/oaserrors"
)

// Parameter locations.
const (
	LocationPath     = "path"
	LocationQuery    = "query"
	LocationHeader   = "header"
	LocationCookie   = "cookie"
	LocationBody     = "body"
	LocationFormData = "formData"
)

// Keys of a 2.0 parameter object that are not part of its inline schema.
var parameterOnlyKeys = map[string]bool{
	"name":             true,
	"in":               true,
	"required":         true,
	"description":      true,
	"collectionFormat": true,
	"allowEmptyValue":  true,
	"style":            true,
	"explode":          true,
	"allowReserved":    true,
	"example":          true,
	"examples":         true,
	"deprecated":       true,
	"content":          true,
}

// EndpointSpec is the request contract of one operation.
// It is treated as immutable once built.
type EndpointSpec struct {
	// Resource is the path template, e.g. "/pets/{petId}"
	Resource string
	// Method is the upper-case HTTP method
	Method string
	// OperationID is copied from the operation, if declared
	OperationID string
	// Parameters are the individually declared inputs, path-level ones merged in
	Parameters []*Parameter
	// RequestBody is the 3.x structured body, nil when not declared
	RequestBody *RequestBody
	// Definitions is the document's pool of named schemas. It is shared between
	// endpoints of the same document and must not be modified.
	Definitions map[string]any
}

// Key returns "METHOD resource", a stable identifier for the operation.
func (e *EndpointSpec) Key() string {
	return e.Method + " " + e.Resource
}

// Parameter is one individually declared request input.
type Parameter struct {
	Name     string
	In       string
	Required bool
	Schema   map[string]any
}

// RequestBody is a structured request body: one schema per media type.
type RequestBody struct {
	Required bool
	// Content maps a media type (possibly with wildcards) to its schema
	Content map[string]map[string]any
}

func extractEndpoints(data map[string]any, definitions map[string]any) ([]*EndpointSpec, error) {
	paths, ok := data["paths"].(map[string]any)
	if !ok {
		return nil, nil
	}

	var endpoints []*EndpointSpec
	for _, resource := range sortedKeys(paths) {
		if strings.HasPrefix(resource, "x-") {
			continue
		}
		item, ok := paths[resource].(map[string]any)
		if !ok {
			continue
		}
		itemPointer := "/paths/" + schemautil.EscapePointer(resource)

		shared, err := decodeParameters(data, item["parameters"], itemPointer+"/parameters")
		if err != nil {
			return nil, err
		}

		for _, method := range httputil.Methods {
			op, ok := item[method].(map[string]any)
			if !ok {
				continue
			}
			opPointer := itemPointer + "/" + method

			own, err := decodeParameters(data, op["parameters"], opPointer+"/parameters")
			if err != nil {
				return nil, err
			}
			body, err := decodeRequestBody(data, op["requestBody"], opPointer+"/requestBody")
			if err != nil {
				return nil, err
			}
			opID, _ := op["operationId"].(string)

			endpoints = append(endpoints, &EndpointSpec{
				Resource:    resource,
				Method:      httputil.NormalizeMethod(method),
				OperationID: opID,
				Parameters:  MergeParameters(shared, own),
				RequestBody: body,
				Definitions: definitions,
			})
		}
	}
	return endpoints, nil
}

// MergeParameters combines path-item and operation parameters. An operation
// parameter replaces a path-item parameter with the same location and name.
func MergeParameters(pathLevel, opLevel []*Parameter) []*Parameter {
	if len(pathLevel) == 0 {
		return opLevel
	}
	overridden := make(map[string]bool, len(opLevel))
	for _, p := range opLevel {
		overridden[p.In+":"+p.Name] = true
	}
	merged := make([]*Parameter, 0, len(pathLevel)+len(opLevel))
	for _, p := range pathLevel {
		if !overridden[p.In+":"+p.Name] {
			merged = append(merged, p)
		}
	}
	return append(merged, opLevel...)
}

func decodeParameters(root map[string]any, v any, pointer string) ([]*Parameter, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &oaserrors.ParseError{
			Pointer: pointer,
			Message: fmt.Sprintf("parameters must be a sequence, got %T", v),
		}
	}
	params := make([]*Parameter, 0, len(list))
	for i, entry := range list {
		entry, err := deref(root, entry)
		if err != nil {
			return nil, err
		}
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, &oaserrors.ParseError{
				Pointer: fmt.Sprintf("%s/%d", pointer, i),
				Message: fmt.Sprintf("parameter must be an object, got %T", entry),
			}
		}
		name, _ := obj["name"].(string)
		in, _ := obj["in"].(string)
		if name == "" || in == "" {
			return nil, &oaserrors.ParseError{
				Pointer: fmt.Sprintf("%s/%d", pointer, i),
				Message: "parameter requires both name and in",
			}
		}
		required, _ := obj["required"].(bool)
		params = append(params, &Parameter{
			Name:     name,
			In:       in,
			Required: required,
			Schema:   parameterSchema(obj),
		})
	}
	return params, nil
}

// parameterSchema returns the schema member when present (3.x, and 2.0 body
// parameters), otherwise the parameter object without its parameter-only keys.
// A 2.0 "file" type becomes "string".
func parameterSchema(obj map[string]any) map[string]any {
	if schema, ok := obj["schema"].(map[string]any); ok {
		return schema
	}
	if content, ok := obj["content"].(map[string]any); ok {
		for _, mt := range sortedKeys(content) {
			if m, ok := content[mt].(map[string]any); ok {
				if schema, ok := m["schema"].(map[string]any); ok {
					return schema
				}
			}
		}
	}
	schema := make(map[string]any, len(obj))
	for k, v := range obj {
		if parameterOnlyKeys[k] || strings.HasPrefix(k, "x-") {
			continue
		}
		schema[k] = v
	}
	// 2.0 file uploads have no JSON Schema type; the form value is the file name.
	if schema["type"] == "file" {
		schema["type"] = "string"
	}
	return schema
}

func decodeRequestBody(root map[string]any, v any, pointer string) (*RequestBody, error) {
	if v == nil {
		return nil, nil
	}
	v, err := deref(root, v)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &oaserrors.ParseError{
			Pointer: pointer,
			Message: fmt.Sprintf("requestBody must be an object, got %T", v),
		}
	}
	required, _ := obj["required"].(bool)
	body := &RequestBody{Required: required, Content: map[string]map[string]any{}}

	content, _ := obj["content"].(map[string]any)
	for mt, entry := range content {
		schema := map[string]any{}
		if m, ok := entry.(map[string]any); ok {
			if s, ok := m["schema"].(map[string]any); ok {
				schema = s
			}
		}
		body.Content[mt] = schema
	}
	return body, nil
}

// deref follows $ref chains on parameter and requestBody objects, which matters
// when the document was parsed without dereferencing.
func deref(root map[string]any, v any) (any, error) {
	r := NewRefResolver()
	for range MaxRefDepth {
		obj, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		ref, ok := obj["$ref"].(string)
		if !ok {
			return v, nil
		}
		if r.resolving[ref] {
			return nil, &oaserrors.ReferenceError{Ref: ref, RefType: "local", IsCircular: true}
		}
		r.resolving[ref] = true
		next, err := r.ResolveLocal(root, ref)
		if err != nil {
			return nil, err
		}
		v = next
	}
	return nil, &oaserrors.ResourceLimitError{ResourceType: "ref_depth", Limit: MaxRefDepth}
}
