package httpvalidator

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/TheManSpeaker/openapi-request-validator-generator/compiler"
	"github.com/TheManSpeaker/openapi-request-validator-generator/oaserrors"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
)

// Option is a functional option for configuring validation.
type Option func(*config) error

// config holds the configuration shared by every ValidatorSet built from it.
type config struct {
	logger     parser.Logger
	loggingKey string

	headersLowercase          bool
	additionalQueryProperties bool
	errorTransformer          ErrorTransformer

	// Compiler extensions
	customFormats  map[string]func(any) bool
	customKeywords map[string]compiler.Keyword

	// Schema registries
	componentSchemas map[string]map[string]any
	schemas          map[string]map[string]any
	externalSchemas  map[string]map[string]any

	compiler        *compiler.Compiler
	compilerOptions []compiler.Option
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		logger:                    parser.NopLogger{},
		headersLowercase:          true,
		additionalQueryProperties: true,
	}
}

// WithLogger sets the logger for setup diagnostics and malformed request
// headers. Request bodies are never logged.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		if l == nil {
			l = parser.NopLogger{}
		}
		c.logger = l
		return nil
	}
}

// WithLoggingKey prefixes every logged message with key.
func WithLoggingKey(key string) Option {
	return func(c *config) error {
		c.loggingKey = key
		return nil
	}
}

// WithHeadersLowercase sets whether header names are matched
// case-insensitively. When false, request header names must match the
// declared names exactly.
// Default is true.
func WithHeadersLowercase(enabled bool) Option {
	return func(c *config) error {
		c.headersLowercase = enabled
		return nil
	}
}

// WithErrorTransformer sets a function applied to every mapped error.
func WithErrorTransformer(fn ErrorTransformer) Option {
	return func(c *config) error {
		c.errorTransformer = fn
		return nil
	}
}

// WithCustomFormats registers format predicates with the compiler.
// Every predicate must be non-nil.
func WithCustomFormats(formats map[string]func(any) bool) Option {
	return func(c *config) error {
		for _, name := range slices.Sorted(maps.Keys(formats)) {
			if formats[name] == nil {
				return &oaserrors.ConfigError{Option: "customFormats", Value: name, Message: "format predicate is nil"}
			}
		}
		if c.customFormats == nil {
			c.customFormats = make(map[string]func(any) bool, len(formats))
		}
		maps.Copy(c.customFormats, formats)
		return nil
	}
}

// WithCustomKeywords registers keywords with the compiler.
// Every keyword must have a Compile function.
func WithCustomKeywords(keywords map[string]compiler.Keyword) Option {
	return func(c *config) error {
		for _, name := range slices.Sorted(maps.Keys(keywords)) {
			if keywords[name].Compile == nil {
				return &oaserrors.ConfigError{Option: "customKeywords", Value: name, Message: "keyword has no compile function"}
			}
		}
		if c.customKeywords == nil {
			c.customKeywords = make(map[string]compiler.Keyword, len(keywords))
		}
		maps.Copy(c.customKeywords, keywords)
		return nil
	}
}

// WithComponentSchemas adds named schemas that "#/components/schemas/<name>"
// and "#/definitions/<name>" references resolve to. They take precedence over
// the document's own schemas of the same name.
func WithComponentSchemas(schemas map[string]map[string]any) Option {
	return func(c *config) error {
		if c.componentSchemas == nil {
			c.componentSchemas = make(map[string]map[string]any, len(schemas))
		}
		maps.Copy(c.componentSchemas, schemas)
		return nil
	}
}

// WithSchemas registers schemas with the compiler by id. A schema registered
// as "money.json" is reached with {"$ref": "money.json"}.
func WithSchemas(schemas map[string]map[string]any) Option {
	return func(c *config) error {
		if c.schemas == nil {
			c.schemas = make(map[string]map[string]any, len(schemas))
		}
		maps.Copy(c.schemas, schemas)
		return nil
	}
}

// WithExternalSchemas registers schemas with the compiler by absolute URL,
// e.g. "https://schemas.example.com/money.json".
func WithExternalSchemas(schemas map[string]map[string]any) Option {
	return func(c *config) error {
		for _, url := range slices.Sorted(maps.Keys(schemas)) {
			if !strings.Contains(url, "://") {
				return &oaserrors.ConfigError{Option: "externalSchemas", Value: url, Message: "schema URL must be absolute"}
			}
		}
		if c.externalSchemas == nil {
			c.externalSchemas = make(map[string]map[string]any, len(schemas))
		}
		maps.Copy(c.externalSchemas, schemas)
		return nil
	}
}

// WithAdditionalQueryProperties sets whether query parameters the operation
// does not declare are accepted.
// Default is true.
func WithAdditionalQueryProperties(allowed bool) Option {
	return func(c *config) error {
		c.additionalQueryProperties = allowed
		return nil
	}
}

// WithCompiler uses an existing compiler. Custom formats, keywords and schemas
// from other options are registered with it.
func WithCompiler(comp *compiler.Compiler) Option {
	return func(c *config) error {
		if comp == nil {
			return fmt.Errorf("httpvalidator: compiler cannot be nil")
		}
		c.compiler = comp
		return nil
	}
}

// WithCompilerOptions passes options to the compiler created for validation.
// It cannot be combined with WithCompiler.
func WithCompilerOptions(opts ...compiler.Option) Option {
	return func(c *config) error {
		c.compilerOptions = append(c.compilerOptions, opts...)
		return nil
	}
}
