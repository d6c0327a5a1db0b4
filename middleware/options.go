package middleware

import (
	"fmt"
	"net/http"

	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
)

// DefaultMaxBodySize is the largest request body read for validation.
const DefaultMaxBodySize = 10 << 20

// ResultHandler writes the response for an invalid request.
type ResultHandler func(w http.ResponseWriter, r *http.Request, result *httpvalidator.Result)

// Option is a functional option for configuring the middleware.
type Option func(*config) error

type config struct {
	resource      func(*http.Request) string
	basePath      string
	resultHandler ResultHandler
	maxBodySize   int64
	coerce        bool
	rejectUnknown bool
	logger        parser.Logger
}

func defaultConfig() *config {
	return &config{
		resultHandler: WriteResult,
		maxBodySize:   DefaultMaxBodySize,
		coerce:        true,
		logger:        parser.NopLogger{},
	}
}

// WithResourceResolver replaces the chi route pattern as the source of the
// operation's path template.
func WithResourceResolver(fn func(*http.Request) string) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("middleware: resource resolver cannot be nil")
		}
		c.resource = fn
		return nil
	}
}

// WithBasePath strips a mount prefix from the route pattern, for routers
// mounted below the document's paths, e.g. "/api/v1".
func WithBasePath(prefix string) Option {
	return func(c *config) error {
		c.basePath = prefix
		return nil
	}
}

// WithResultHandler replaces WriteResult.
func WithResultHandler(fn ResultHandler) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("middleware: result handler cannot be nil")
		}
		c.resultHandler = fn
		return nil
	}
}

// WithMaxBodySize sets the maximum request body size in bytes.
// Larger bodies are rejected with 413.
// Default: 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("middleware: maxBodySize must be positive")
		}
		c.maxBodySize = n
		return nil
	}
}

// WithCoercion sets whether string parameters are converted to their
// declared integer, number, boolean and array types before validation.
// Default is true.
func WithCoercion(enabled bool) Option {
	return func(c *config) error {
		c.coerce = enabled
		return nil
	}
}

// WithRejectUnknown answers requests for operations the document does not
// declare with 404 instead of passing them through.
func WithRejectUnknown(reject bool) Option {
	return func(c *config) error {
		c.rejectUnknown = reject
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		if l == nil {
			l = parser.NopLogger{}
		}
		c.logger = l
		return nil
	}
}
