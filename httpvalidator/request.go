package httpvalidator

import (
	"fmt"
	"net/http"

	"github.com/TheManSpeaker/openapi-request-validator-generator/compiler"
	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/httputil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
)

// RequestContext is the request to validate. Parameter values are expected
// in their declared types; see the middleware package for coercion from raw
// HTTP values.
type RequestContext struct {
	// Path is the concrete request path, e.g. "/pets/42"
	Path string `json:"path,omitempty"`
	// Resource is the path template of the operation, e.g. "/pets/{petId}"
	Resource string `json:"resource"`
	Method   string `json:"method"`
	// Headers keys are used as received; lookups are case-insensitive when
	// header lowercasing is enabled
	Headers map[string]any `json:"headers,omitempty"`
	Query   map[string]any `json:"query,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	// Body is nil when the request has no body
	Body any `json:"body,omitempty"`
}

// ValidatorSet holds the compiled validators of one operation. It is
// immutable and safe for concurrent use.
type ValidatorSet struct {
	schemas Schemas

	headers    *compiler.Validator
	path       *compiler.Validator
	query      *compiler.Validator
	formData   *compiler.Validator
	legacyBody *compiler.Validator
	bodies     map[string]*compiler.Validator

	transform ErrorTransformer
	log       parser.Logger
}

// Key returns "METHOD resource".
func (s *ValidatorSet) Key() string {
	return s.schemas.Key()
}

// Schemas returns the schemas the set was compiled from. They must not be modified.
func (s *ValidatorSet) Schemas() Schemas {
	return s.schemas
}

// Validate checks a request against the operation. It returns nil when the
// request is valid.
//
// Every request part is checked, in order: legacy body, request body, form
// data, path, headers, query. Schema violations take precedence over a
// missing body, which takes precedence over an unsupported media type.
func (s *ValidatorSet) Validate(req RequestContext) *Result {
	var (
		violations  []RawViolation
		missing     *ValidationError
		unsupported *ValidationError
	)

	if s.legacyBody != nil {
		switch {
		case req.Body != nil:
			violations = run(violations, s.legacyBody, bodyInstance(req.Body), LocationBody)
		case s.schemas.BodyRequired:
			missing = bodyMissing(s.schemas.DeclaredLegacyBody)
		}
	}

	if s.schemas.RequestBody {
		contentType := headerValue(req.Headers, "content-type")
		mediaType, err := httputil.MatchMediaType(contentType, s.bodies)
		if err != nil {
			s.log.Warn("malformed content type", "operation", s.Key(), "content_type", contentType, "error", err)
			mediaType = ""
		}
		switch {
		case mediaType == "" && contentType != "":
			unsupported = &ValidationError{
				Message:  fmt.Sprintf("media type %s is not supported", contentType),
				Location: LocationBody,
			}
		case mediaType == "":
			if s.schemas.BodyRequired {
				violations = append(violations, RawViolation{
					Violation: compiler.Violation{
						Keyword:      "required",
						InstancePath: "/body",
						Message:      "media type is not specified",
					},
					Location: LocationBody,
				})
			}
		case req.Body != nil:
			violations = run(violations, s.bodies[mediaType], bodyInstance(req.Body), LocationBody)
		case s.schemas.BodyRequired:
			missing = bodyMissing(s.schemas.DeclaredBodies[mediaType])
		}
	}

	if s.formData != nil && missing == nil {
		body := req.Body
		if body == nil {
			body = map[string]any{}
		}
		violations = run(violations, s.formData, body, LocationBody)
	}
	if s.path != nil {
		violations = run(violations, s.path, orEmpty(req.Params), LocationPath)
	}
	if s.headers != nil {
		headers := orEmpty(req.Headers)
		if s.schemas.HeadersLowercase {
			headers = lowerHeaders(headers)
		}
		violations = run(violations, s.headers, headers, LocationHeaders)
	}
	if s.query != nil {
		violations = run(violations, s.query, orEmpty(req.Query), LocationQuery)
	}

	switch {
	case len(violations) > 0:
		return &Result{Status: http.StatusBadRequest, Errors: mapViolations(violations, s.transform)}
	case missing != nil:
		return &Result{Status: http.StatusBadRequest, Errors: []ValidationError{*missing}}
	case unsupported != nil:
		return &Result{Status: http.StatusUnsupportedMediaType, Errors: []ValidationError{*unsupported}}
	}
	return nil
}

func run(out []RawViolation, v *compiler.Validator, instance any, location string) []RawViolation {
	for _, violation := range v.Validate(instance) {
		out = append(out, RawViolation{Violation: violation, Location: location})
	}
	return out
}

func bodyInstance(body any) map[string]any {
	return map[string]any{"body": body}
}

func bodyMissing(schema map[string]any) *ValidationError {
	return &ValidationError{
		Message:  "body parameter is required",
		Location: LocationBody,
		Schema:   schema,
	}
}
