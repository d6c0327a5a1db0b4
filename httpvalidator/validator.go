package httpvalidator

import (
	"fmt"
	"maps"
	"slices"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/httputil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
)

// Validator validates requests for every operation of a document.
// It supports both OAS 2.0 (Swagger) and OAS 3.x documents.
//
// Create a Validator with NewFromParsed:
//
//	parsed, _ := parser.ParseWithOptions(parser.WithFilePath("openapi.yaml"))
//	v, err := httpvalidator.NewFromParsed(parsed)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := v.Validate(httpvalidator.RequestContext{...})
//	if result != nil {
//	    // Respond with result.Status and result.Errors
//	}
type Validator struct {
	sets map[string]*ValidatorSet
}

// Build compiles the validators of a single operation.
func Build(spec *parser.EndpointSpec, opts ...Option) (*ValidatorSet, error) {
	env, err := newEnvironment(opts)
	if err != nil {
		return nil, err
	}
	return env.build(spec)
}

// Describe returns the compile-ready schemas of a single operation without
// compiling them.
func Describe(spec *parser.EndpointSpec, opts ...Option) (Schemas, error) {
	env, err := newEnvironment(opts)
	if err != nil {
		return Schemas{}, err
	}
	s, err := env.describe(spec)
	if err != nil {
		return Schemas{}, fmt.Errorf("httpvalidator: %w", err)
	}
	return s, nil
}

// Compile rebuilds a ValidatorSet from its schemas.
func Compile(s Schemas, opts ...Option) (*ValidatorSet, error) {
	env, err := newEnvironment(opts)
	if err != nil {
		return nil, err
	}
	return env.compile(s)
}

// NewFromParsed builds a ValidatorSet for every operation of a parsed
// document. All sets share one compiler.
func NewFromParsed(parsed *parser.ParseResult, opts ...Option) (*Validator, error) {
	if parsed == nil {
		return nil, fmt.Errorf("httpvalidator: parsed result cannot be nil")
	}
	env, err := newEnvironment(opts)
	if err != nil {
		return nil, err
	}
	v := &Validator{sets: make(map[string]*ValidatorSet, len(parsed.Endpoints))}
	for _, spec := range parsed.Endpoints {
		set, err := env.build(spec)
		if err != nil {
			return nil, err
		}
		v.sets[set.Key()] = set
	}
	return v, nil
}

// NewFromSchemas compiles previously described operations, e.g. ones read
// from an artifact bundle.
func NewFromSchemas(list []Schemas, opts ...Option) (*Validator, error) {
	env, err := newEnvironment(opts)
	if err != nil {
		return nil, err
	}
	v := &Validator{sets: make(map[string]*ValidatorSet, len(list))}
	for _, s := range list {
		set, err := env.compile(s)
		if err != nil {
			return nil, err
		}
		v.sets[set.Key()] = set
	}
	return v, nil
}

// Set returns the ValidatorSet of an operation. method is case-insensitive.
func (v *Validator) Set(resource, method string) (*ValidatorSet, bool) {
	set, ok := v.sets[httputil.NormalizeMethod(method)+" "+resource]
	return set, ok
}

// Sets returns every ValidatorSet ordered by key.
func (v *Validator) Sets() []*ValidatorSet {
	out := make([]*ValidatorSet, 0, len(v.sets))
	for _, key := range slices.Sorted(maps.Keys(v.sets)) {
		out = append(out, v.sets[key])
	}
	return out
}

// Validate checks a request against the operation named by its Resource and
// Method. It returns nil when the request is valid. The error is reserved for
// requests naming an operation the document does not declare.
func (v *Validator) Validate(req RequestContext) (*Result, error) {
	set, ok := v.Set(req.Resource, req.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", ErrUnknownOperation, httputil.NormalizeMethod(req.Method), req.Resource)
	}
	return set.Validate(req), nil
}
