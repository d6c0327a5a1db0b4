package httpvalidator

import (
	"fmt"
	"maps"
	"slices"

	"github.com/TheManSpeaker/openapi-request-validator-generator/compiler"
	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/schemautil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/oaserrors"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
)

// Schemas is the declarative form of a ValidatorSet: the compile-ready
// schemas of every slot plus what the pipeline needs to report a missing body.
// Compiling the same Schemas always yields an equivalent ValidatorSet.
type Schemas struct {
	Resource string `json:"resource" yaml:"resource"`
	Method   string `json:"method" yaml:"method"`

	Headers  map[string]any `json:"headers,omitempty" yaml:"headers,omitempty"`
	Path     map[string]any `json:"path,omitempty" yaml:"path,omitempty"`
	Query    map[string]any `json:"query,omitempty" yaml:"query,omitempty"`
	FormData map[string]any `json:"formData,omitempty" yaml:"formData,omitempty"`

	// LegacyBody validates {"body": <request body>} for a body parameter
	LegacyBody map[string]any `json:"legacyBody,omitempty" yaml:"legacyBody,omitempty"`
	// DeclaredLegacyBody is the body parameter schema as written in the document
	DeclaredLegacyBody map[string]any `json:"declaredLegacyBody,omitempty" yaml:"declaredLegacyBody,omitempty"`

	// RequestBody is true when the operation declares a structured request body
	RequestBody bool `json:"requestBody,omitzero" yaml:"requestBody,omitempty"`
	// Bodies validate {"body": <request body>}, keyed by declared media type
	Bodies map[string]map[string]any `json:"bodies,omitempty" yaml:"bodies,omitempty"`
	// DeclaredBodies are the request body schemas as written in the document
	DeclaredBodies map[string]map[string]any `json:"declaredBodies,omitempty" yaml:"declaredBodies,omitempty"`

	BodyRequired     bool `json:"bodyRequired,omitzero" yaml:"bodyRequired,omitempty"`
	HeadersLowercase bool `json:"headersLowercase,omitzero" yaml:"headersLowercase,omitempty"`
}

// Key returns "METHOD resource".
func (s Schemas) Key() string {
	return s.Method + " " + s.Resource
}

// environment is a configured compiler shared by the sets built from one
// option list.
type environment struct {
	cfg  *config
	comp *compiler.Compiler
	log  parser.Logger
}

func newEnvironment(opts []Option) (*environment, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("httpvalidator: invalid options: %w", err)
		}
	}
	if cfg.compiler != nil && len(cfg.compilerOptions) > 0 {
		return nil, &oaserrors.ConfigError{Option: "compiler", Message: "compiler options cannot be combined with a compiler"}
	}

	log := cfg.logger
	if cfg.loggingKey != "" {
		log = parser.NewPrefixLogger(log.With("logging_key", cfg.loggingKey), cfg.loggingKey)
	}

	comp := cfg.compiler
	if comp == nil {
		var err error
		comp, err = compiler.New(append([]compiler.Option{compiler.WithLogger(log)}, cfg.compilerOptions...)...)
		if err != nil {
			return nil, fmt.Errorf("httpvalidator: %w", err)
		}
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.customFormats)) {
		if err := comp.RegisterFormat(name, cfg.customFormats[name]); err != nil {
			return nil, fmt.Errorf("httpvalidator: %w", err)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.customKeywords)) {
		if err := comp.RegisterKeyword(name, cfg.customKeywords[name]); err != nil {
			return nil, fmt.Errorf("httpvalidator: %w", err)
		}
	}
	for _, registry := range []map[string]map[string]any{cfg.schemas, cfg.externalSchemas} {
		for _, id := range slices.Sorted(maps.Keys(registry)) {
			if err := comp.AddSchema(id, registry[id]); err != nil {
				return nil, fmt.Errorf("httpvalidator: %w", err)
			}
		}
	}

	return &environment{cfg: cfg, comp: comp, log: log}, nil
}

// describe derives the compile-ready schemas of an operation.
func (e *environment) describe(spec *parser.EndpointSpec) (Schemas, error) {
	if spec == nil {
		return Schemas{}, &oaserrors.ConfigError{Option: "spec", Message: "endpoint spec is required"}
	}
	s := Schemas{
		Resource:         spec.Resource,
		Method:           spec.Method,
		HeadersLowercase: e.cfg.headersLowercase,
	}
	pools := e.newPools(spec.Definitions)
	groups := groupParameters(spec.Parameters)

	if ps := groups[parser.LocationHeader]; len(ps) > 0 {
		s.Headers = pools.attach(groupSchema(ps, e.cfg.headersLowercase), false)
	}
	if ps := groups[parser.LocationPath]; len(ps) > 0 {
		s.Path = pools.attach(groupSchema(ps, false), false)
	}
	if ps := groups[parser.LocationQuery]; len(ps) > 0 {
		query := groupSchema(ps, false)
		if !e.cfg.additionalQueryProperties {
			query["additionalProperties"] = false
		}
		s.Query = pools.attach(query, false)
	}
	if ps := groups[parser.LocationFormData]; len(ps) > 0 {
		s.FormData = pools.attach(groupSchema(ps, false), false)
	}
	if ps := groups[parser.LocationBody]; len(ps) > 0 {
		if len(ps) > 1 {
			e.log.Warn("operation declares more than one body parameter; using the first", "operation", spec.Key())
		}
		declared := schemautil.CopySchema(paramSchema(ps[0]))
		s.DeclaredLegacyBody = declared
		s.LegacyBody = pools.attach(wrapBody(schemautil.NormalizeBody(declared, pools.resolve)), true)
	}
	for _, p := range spec.Parameters {
		if p != nil && p.Required && (p.In == parser.LocationBody || p.In == parser.LocationFormData) {
			s.BodyRequired = true
		}
	}

	if rb := spec.RequestBody; rb != nil {
		s.RequestBody = true
		s.BodyRequired = rb.Required
		s.Bodies = make(map[string]map[string]any, len(rb.Content))
		s.DeclaredBodies = make(map[string]map[string]any, len(rb.Content))
		for _, mediaType := range slices.Sorted(maps.Keys(rb.Content)) {
			declared := schemautil.CopySchema(rb.Content[mediaType])
			if declared == nil {
				declared = map[string]any{}
			}
			s.DeclaredBodies[mediaType] = declared
			s.Bodies[mediaType] = pools.attach(wrapBody(schemautil.NormalizeBody(declared, pools.resolve)), true)
		}
	}
	return s, nil
}

// compile compiles every slot of s.
func (e *environment) compile(s Schemas) (*ValidatorSet, error) {
	set := &ValidatorSet{
		schemas:   s,
		transform: e.cfg.errorTransformer,
		log:       e.log,
	}
	slots := []struct {
		name   string
		schema map[string]any
		dst    **compiler.Validator
	}{
		{"headers", s.Headers, &set.headers},
		{"path", s.Path, &set.path},
		{"query", s.Query, &set.query},
		{"formData", s.FormData, &set.formData},
		{"body", s.LegacyBody, &set.legacyBody},
	}
	for _, slot := range slots {
		if slot.schema == nil {
			continue
		}
		v, err := e.comp.Compile(slot.schema)
		if err != nil {
			return nil, fmt.Errorf("httpvalidator: compiling %s schema for %s: %w", slot.name, s.Key(), err)
		}
		*slot.dst = v
	}
	if len(s.Bodies) > 0 {
		set.bodies = make(map[string]*compiler.Validator, len(s.Bodies))
	}
	for _, mediaType := range slices.Sorted(maps.Keys(s.Bodies)) {
		v, err := e.comp.Compile(s.Bodies[mediaType])
		if err != nil {
			return nil, fmt.Errorf("httpvalidator: compiling %s body schema for %s: %w", mediaType, s.Key(), err)
		}
		set.bodies[mediaType] = v
	}
	e.log.Debug("built validator set", "operation", s.Key(), "media_types", len(set.bodies))
	return set, nil
}

func (e *environment) build(spec *parser.EndpointSpec) (*ValidatorSet, error) {
	s, err := e.describe(spec)
	if err != nil {
		return nil, fmt.Errorf("httpvalidator: %w", err)
	}
	return e.compile(s)
}

// wrapBody nests a body schema under "body"; the request body is validated as
// {"body": <body>}.
func wrapBody(schema map[string]any) map[string]any {
	return map[string]any{
		"properties": map[string]any{"body": schema},
	}
}

// pools holds the named schemas local references resolve to, normalized once
// per flavor on first use.
type pools struct {
	raw     map[string]any
	resolve schemautil.Resolver
	param   map[string]any
	body    map[string]any
}

func (e *environment) newPools(definitions map[string]any) *pools {
	raw := make(map[string]any, len(definitions)+len(e.cfg.componentSchemas))
	maps.Copy(raw, definitions)
	for name, schema := range e.cfg.componentSchemas {
		raw[name] = schema
	}
	p := &pools{raw: raw}
	p.resolve = schemautil.ChainResolvers(schemautil.PoolResolver(raw), e.registryResolver)
	return p
}

// registryResolver resolves references to schemas registered with the
// compiler. Targets that contain references of their own are not inlined,
// since those references are relative to the registered document.
func (e *environment) registryResolver(ref string) (map[string]any, bool) {
	if ref == "" || ref[0] == '#' {
		return nil, false
	}
	target, ok := e.comp.Lookup(ref)
	if !ok || containsRef(target) {
		return nil, false
	}
	return target, true
}

// attach embeds the pool in schema when schema still holds local references,
// under both "components/schemas" and "definitions".
func (p *pools) attach(schema map[string]any, body bool) map[string]any {
	if len(p.raw) == 0 || !containsLocalRef(schema) {
		return schema
	}
	var pool map[string]any
	if body {
		if p.body == nil {
			p.body = p.normalize(func(s map[string]any) map[string]any {
				return schemautil.NormalizeBody(s, p.resolve)
			})
		}
		pool = p.body
	} else {
		if p.param == nil {
			p.param = p.normalize(schemautil.Normalize)
		}
		pool = p.param
	}
	schema["components"] = map[string]any{"schemas": pool}
	schema["definitions"] = pool
	return schema
}

func (p *pools) normalize(fn func(map[string]any) map[string]any) map[string]any {
	out := make(map[string]any, len(p.raw))
	for name, v := range p.raw {
		if m, ok := v.(map[string]any); ok {
			out[name] = fn(m)
		} else {
			out[name] = v
		}
	}
	return out
}

func containsRef(v any) bool {
	return findRef(v, func(string) bool { return true })
}

func containsLocalRef(v any) bool {
	return findRef(v, func(ref string) bool { return ref != "" && ref[0] == '#' })
}

func findRef(v any, match func(string) bool) bool {
	switch t := v.(type) {
	case map[string]any:
		if ref, ok := t["$ref"].(string); ok && match(ref) {
			return true
		}
		for k, child := range t {
			if k == "enum" || k == "const" || k == "default" || k == "example" || k == "examples" {
				continue
			}
			if findRef(child, match) {
				return true
			}
		}
	case []any:
		for _, child := range t {
			if findRef(child, match) {
				return true
			}
		}
	}
	return false
}
