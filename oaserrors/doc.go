// Package oaserrors provides structured error types for setup-time failures.
//
// Request validation never fails with a Go error: violations are returned as data
// (see httpvalidator.Result). The types here cover what can go wrong before the
// first request is served: decoding the API description, resolving its references,
// and building validators from it.
//
// # Error Types
//
//   - [ParseError]: YAML/JSON decoding failures and structural problems in the description
//   - [ReferenceError]: $ref targets that cannot be resolved
//   - [ResourceLimitError]: nesting beyond the configured limits
//   - [ConfigError]: invalid options such as a nil custom format predicate
//
// # Sentinel Errors
//
//   - [ErrParse]: Matches any [ParseError]
//   - [ErrReference]: Matches any [ReferenceError]
//   - [ErrCircularReference]: Matches [ReferenceError] with IsCircular=true
//   - [ErrResourceLimit]: Matches any [ResourceLimitError]
//   - [ErrConfig]: Matches any [ConfigError]
//
// Check error category with errors.Is():
//
//	v, err := httpvalidator.New(spec, httpvalidator.WithCustomFormats(formats))
//	if errors.Is(err, oaserrors.ErrConfig) {
//	    // Fix the option set; retrying will not help
//	}
//
// Extract details with errors.As():
//
//	var cfgErr *oaserrors.ConfigError
//	if errors.As(err, &cfgErr) {
//	    log.Printf("bad option %s: %s", cfgErr.Option, cfgErr.Message)
//	}
package oaserrors
