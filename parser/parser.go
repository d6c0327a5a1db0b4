package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/httputil"
	"github.com/TheManSpeaker/openapi-request-validator-generator/oaserrors"
	"go.yaml.in/yaml/v4"
)

// OASVersion identifies the major family of an API description.
type OASVersion int

const (
	// Unknown means neither "swagger" nor "openapi" was found.
	Unknown OASVersion = iota
	// OASVersion2 is Swagger / OpenAPI 2.0.
	OASVersion2
	// OASVersion3 is OpenAPI 3.x.
	OASVersion3
)

// String returns a short label for the version family.
func (v OASVersion) String() string {
	switch v {
	case OASVersion2:
		return "2.0"
	case OASVersion3:
		return "3.x"
	}
	return "unknown"
}

// Parser decodes API descriptions. The zero value parses without dereferencing;
// use New for the defaults.
type Parser struct {
	// ResolveRefs enables local $ref dereferencing
	ResolveRefs bool
	// MaxRefDepth bounds the dereferencing walk; zero means MaxRefDepth
	MaxRefDepth int
	// Logger receives diagnostics; nil discards them
	Logger Logger
}

// New creates a Parser with default settings.
func New() *Parser {
	return &Parser{ResolveRefs: true}
}

func (p *Parser) log() Logger {
	if p.Logger == nil {
		return NopLogger{}
	}
	return p.Logger
}

// ParseResult is a decoded, dereferenced API description and the per-operation
// contracts extracted from it.
type ParseResult struct {
	// SourcePath is the file path, or "ParseBytes"/"ParseReader" for in-memory input
	SourcePath string
	// Version is the raw "swagger" or "openapi" value
	Version string
	// OASVersion is the version family
	OASVersion OASVersion
	// Data is the whole document as generic maps, with local refs expanded
	Data map[string]any
	// Definitions is the pool of named schemas ("definitions" for 2.0,
	// "components.schemas" for 3.x)
	Definitions map[string]any
	// Endpoints lists every operation, sorted by resource then method
	Endpoints []*EndpointSpec
	// HasCircularRefs is true when some cycles were left as $ref
	HasCircularRefs bool
}

// Endpoint returns the operation for a resource template and method.
// The method is matched case-insensitively.
func (pr *ParseResult) Endpoint(resource, method string) (*EndpointSpec, bool) {
	method = httputil.NormalizeMethod(method)
	for _, ep := range pr.Endpoints {
		if ep.Resource == resource && ep.Method == method {
			return ep, true
		}
	}
	return nil, false
}

// IsOAS2 reports whether the document is Swagger / OpenAPI 2.0.
func (pr *ParseResult) IsOAS2() bool {
	return pr.OASVersion == OASVersion2
}

// IsOAS3 reports whether the document is OpenAPI 3.x.
func (pr *ParseResult) IsOAS3() bool {
	return pr.OASVersion == OASVersion3
}

// Parse reads and parses the file at specPath.
func (p *Parser) Parse(specPath string) (*ParseResult, error) {
	data, err := os.ReadFile(specPath)
	if err != nil {
		return nil, fmt.Errorf("parser: failed to read file: %w", err)
	}
	res, err := p.parse(data, specPath)
	if err != nil {
		return nil, err
	}
	res.SourcePath = specPath
	return res, nil
}

// ParseReader parses an API description read from r.
func (p *Parser) ParseReader(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("parser: failed to read data: %w", err)
	}
	return p.parse(data, "ParseReader")
}

// ParseBytes parses an API description held in memory.
func (p *Parser) ParseBytes(data []byte) (*ParseResult, error) {
	return p.parse(data, "ParseBytes")
}

func (p *Parser) parse(data []byte, source string) (*ParseResult, error) {
	var raw map[string]any
	// JSON is a subset of YAML, so one decoder handles both formats.
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "failed to decode document", Cause: err}
	}
	if raw == nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "document is empty"}
	}
	raw = stringKeys(raw).(map[string]any)

	version, family, err := detectVersion(raw)
	if err != nil {
		return nil, &oaserrors.ParseError{Path: source, Cause: err}
	}

	result := &ParseResult{
		SourcePath: source,
		Version:    version,
		OASVersion: family,
		Data:       raw,
	}

	if p.ResolveRefs {
		resolver := NewRefResolver()
		resolver.maxDepth = p.MaxRefDepth
		resolver.logger = p.log()
		if err := resolver.ResolveAllRefs(raw); err != nil {
			return nil, fmt.Errorf("parser: %s: %w", source, err)
		}
		result.HasCircularRefs = resolver.HasCircularRefs()
	}

	result.Definitions = namedSchemas(raw, family)
	endpoints, err := extractEndpoints(raw, result.Definitions)
	if err != nil {
		var pe *oaserrors.ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = source
		}
		return nil, err
	}
	result.Endpoints = endpoints

	p.log().Debug("parsed API description",
		"source", source,
		"version", version,
		"endpoints", len(endpoints),
		"circular_refs", result.HasCircularRefs,
	)
	return result, nil
}

// detectVersion reads the "swagger" or "openapi" root member.
func detectVersion(data map[string]any) (string, OASVersion, error) {
	if v, ok := data["swagger"]; ok {
		return versionString(v), OASVersion2, nil
	}
	if v, ok := data["openapi"]; ok {
		s := versionString(v)
		if !strings.HasPrefix(s, "3") {
			return "", Unknown, fmt.Errorf("unsupported openapi version %q", s)
		}
		return s, OASVersion3, nil
	}
	return "", Unknown, fmt.Errorf("unable to detect OpenAPI version: document must contain either 'swagger: \"2.0\"' or 'openapi: \"3.x.x\"' at the root level")
}

// versionString accepts unquoted YAML versions such as swagger: 2.0.
func versionString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.1f", t)
	default:
		return fmt.Sprint(t)
	}
}

func namedSchemas(data map[string]any, family OASVersion) map[string]any {
	var pool map[string]any
	if family == OASVersion2 {
		pool, _ = data["definitions"].(map[string]any)
	} else if components, ok := data["components"].(map[string]any); ok {
		pool, _ = components["schemas"].(map[string]any)
	}
	if pool == nil {
		return map[string]any{}
	}
	return pool
}

// stringKeys rewrites mappings with non-string keys (such as unquoted status
// codes) into map[string]any so the whole tree has a single map type.
func stringKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = stringKeys(val)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = stringKeys(item)
		}
		return t
	default:
		return v
	}
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
