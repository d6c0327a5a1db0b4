package artifact

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	reqvalidator "github.com/TheManSpeaker/openapi-request-validator-generator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/oaserrors"
	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.yaml.in/yaml/v4"
)

// FormatVersion is the bundle layout written by this package.
const FormatVersion = 1

// Format is a bundle encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Bundle holds the schemas of every operation of a document.
type Bundle struct {
	Version int `json:"version" yaml:"version"`
	// Generator identifies the tool that wrote the bundle
	Generator  string                 `json:"generator,omitempty" yaml:"generator,omitempty"`
	Operations []httpvalidator.Schemas `json:"operations" yaml:"operations"`
}

// FromValidator snapshots the schemas of every operation of v, ordered by
// operation key.
func FromValidator(v *httpvalidator.Validator) *Bundle {
	b := &Bundle{
		Version:   FormatVersion,
		Generator: reqvalidator.UserAgent(),
	}
	for _, set := range v.Sets() {
		b.Operations = append(b.Operations, set.Schemas())
	}
	return b
}

// Compile rebuilds a document validator from the bundle.
func (b *Bundle) Compile(opts ...httpvalidator.Option) (*httpvalidator.Validator, error) {
	v, err := httpvalidator.NewFromSchemas(b.Operations, opts...)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	return v, nil
}

// Operation returns the schemas stored for one operation.
func (b *Bundle) Operation(resource, method string) (httpvalidator.Schemas, bool) {
	method = strings.ToUpper(method)
	for _, s := range b.Operations {
		if s.Resource == resource && s.Method == method {
			return s, true
		}
	}
	return httpvalidator.Schemas{}, false
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatYAML, FormatJSON:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", &oaserrors.ConfigError{Option: "format", Value: name, Message: "must be yaml or json"}
}

// FormatFromPath picks the encoding from a file extension. Anything but
// ".json" is YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Write encodes b to w. JSON output is indented with sorted keys, so equal
// bundles produce equal bytes in both formats.
func Write(w io.Writer, b *Bundle, format Format) error {
	if b == nil {
		return fmt.Errorf("artifact: bundle cannot be nil")
	}
	switch format {
	case FormatJSON:
		if err := json.MarshalWrite(w, b, json.Deterministic(true), jsontext.WithIndent("  ")); err != nil {
			return fmt.Errorf("artifact: marshaling to json: %w", err)
		}
		_, err := io.WriteString(w, "\n")
		return err
	case FormatYAML:
		data, err := yaml.Marshal(b)
		if err != nil {
			return fmt.Errorf("artifact: marshaling to yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("artifact: %w", &oaserrors.ConfigError{Option: "format", Value: string(format), Message: "must be yaml or json"})
}

// Read decodes a bundle written by Write in either format.
func Read(r io.Reader) (*Bundle, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("artifact: reading bundle: %w", err)
	}
	return decode(data, "bundle")
}

// WriteFile writes b to path in the format its extension names.
func WriteFile(path string, b *Bundle) error {
	var buf bytes.Buffer
	if err := Write(&buf, b, FormatFromPath(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("artifact: %w", err)
	}
	return nil
}

// ReadFile reads a bundle from path.
func ReadFile(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("artifact: %w", err)
	}
	return decode(data, path)
}

func decode(data []byte, source string) (*Bundle, error) {
	var b Bundle
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, &oaserrors.ParseError{Path: source, Message: "failed to decode json bundle", Cause: err}
		}
	} else if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &oaserrors.ParseError{Path: source, Message: "failed to decode yaml bundle", Cause: err}
	}
	if b.Version != FormatVersion {
		return nil, &oaserrors.ParseError{Path: source, Message: fmt.Sprintf("unsupported bundle version %d", b.Version)}
	}
	for i := range b.Operations {
		op := &b.Operations[i]
		if op.Resource == "" || op.Method == "" {
			return nil, &oaserrors.ParseError{Path: source, Pointer: fmt.Sprintf("/operations/%d", i), Message: "operation needs a resource and a method"}
		}
		op.Method = strings.ToUpper(op.Method)
	}
	return &b, nil
}
