package compiler

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// KeywordFunc validates one instance value. A non-nil error is a violation and
// its text becomes the violation message.
type KeywordFunc func(instance any) error

// Keyword defines a custom schema keyword.
type Keyword struct {
	// MetaSchema optionally constrains schema objects that use the keyword,
	// as JSON Schema text. Empty accepts any value.
	MetaSchema string

	// Compile receives the keyword's value from the schema (numbers arrive as
	// json.Number) and returns the function that validates instances.
	Compile func(value any) (KeywordFunc, error)
}

// keywordExtension adapts a Keyword to the library's extension interfaces.
type keywordExtension struct {
	name string
	kw   Keyword
}

func (e keywordExtension) Compile(_ jsonschema.CompilerContext, m map[string]interface{}) (jsonschema.ExtSchema, error) {
	value, ok := m[e.name]
	if !ok {
		return nil, nil
	}
	fn, err := e.kw.Compile(value)
	if err != nil {
		return nil, fmt.Errorf("keyword %s: %w", e.name, err)
	}
	if fn == nil {
		return nil, nil
	}
	return keywordSchema{name: e.name, fn: fn}, nil
}

type keywordSchema struct {
	name string
	fn   KeywordFunc
}

func (s keywordSchema) Validate(ctx jsonschema.ValidationContext, v interface{}) error {
	if err := s.fn(v); err != nil {
		return ctx.Error(s.name, "%s", err.Error())
	}
	return nil
}

// metaSchema compiles a keyword's meta schema in a private compiler.
func metaSchema(name, text string) (*jsonschema.Schema, error) {
	if strings.TrimSpace(text) == "" {
		text = "{}"
	}
	mc := jsonschema.NewCompiler()
	url := "mem://keywords/" + name + ".json"
	if err := mc.AddResource(url, strings.NewReader(text)); err != nil {
		return nil, err
	}
	return mc.Compile(url)
}
