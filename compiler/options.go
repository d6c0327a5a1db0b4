package compiler

import (
	"fmt"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultBaseURL is the URL under which schemas are registered when no base is configured.
const DefaultBaseURL = "mem://schemas/"

// Option is a functional option for configuring a Compiler.
type Option func(*config) error

type config struct {
	draft            *jsonschema.Draft
	baseURL          string
	formats          map[string]func(any) bool
	keywords         map[string]Keyword
	wellKnownFormats bool
	logger           parser.Logger
}

func defaultConfig() *config {
	return &config{
		draft:            jsonschema.Draft7,
		baseURL:          DefaultBaseURL,
		wellKnownFormats: true,
		logger:           parser.NopLogger{},
	}
}

// WithDraft selects the JSON Schema draft used for schemas without "$schema".
// Default is draft 7, the closest match to OpenAPI schema objects.
func WithDraft(d *jsonschema.Draft) Option {
	return func(c *config) error {
		if d == nil {
			return fmt.Errorf("compiler: draft cannot be nil")
		}
		c.draft = d
		return nil
	}
}

// WithBaseURL sets the URL that relative schema ids are resolved against.
func WithBaseURL(base string) Option {
	return func(c *config) error {
		if !strings.Contains(base, "://") {
			return fmt.Errorf("compiler: base URL %q must be absolute", base)
		}
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		c.baseURL = base
		return nil
	}
}

// WithFormats registers format predicates. They take precedence over the
// built-in and well-known formats of the same name.
func WithFormats(formats map[string]func(any) bool) Option {
	return func(c *config) error {
		if c.formats == nil {
			c.formats = make(map[string]func(any) bool, len(formats))
		}
		for name, fn := range formats {
			c.formats[name] = fn
		}
		return nil
	}
}

// WithKeywords registers custom keywords.
func WithKeywords(keywords map[string]Keyword) Option {
	return func(c *config) error {
		if c.keywords == nil {
			c.keywords = make(map[string]Keyword, len(keywords))
		}
		for name, kw := range keywords {
			c.keywords[name] = kw
		}
		return nil
	}
}

// WithWellKnownFormats enables the OpenAPI formats returned by WellKnownFormats.
// Default is true.
func WithWellKnownFormats(enabled bool) Option {
	return func(c *config) error {
		c.wellKnownFormats = enabled
		return nil
	}
}

// WithLogger sets the logger for compile diagnostics.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}
