package httpvalidator

import (
	"github.com/TheManSpeaker/openapi-request-validator-generator/compiler"
)

// Locations reported on a ValidationError.
const (
	LocationPath    = "path"
	LocationQuery   = "query"
	LocationHeaders = "headers"
	LocationBody    = "body"
)

// Result is the outcome of validating an invalid request. A valid request has
// no Result.
type Result struct {
	// Status is http.StatusBadRequest or http.StatusUnsupportedMediaType
	Status int `json:"status" yaml:"status"`
	// Errors is never empty
	Errors []ValidationError `json:"errors" yaml:"errors"`
}

// ValidationError is one entry of a Result.
type ValidationError struct {
	// ErrorCode is "<keyword>.openapi.requestValidation". It is empty for $ref
	// violations and for missing bodies.
	ErrorCode string `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
	// Path is the dotted location of the offending value within its request
	// part, e.g. "items.0.name". Empty when the value is the part itself.
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Message  string `json:"message" yaml:"message"`
	Location string `json:"location" yaml:"location"`
	// Schema is {"$ref": target} for $ref violations, or the declared body
	// schema when a required body is missing.
	Schema any `json:"schema,omitempty" yaml:"schema,omitempty"`
}

// RawViolation is a compiler violation tagged with the request part it came from.
type RawViolation struct {
	compiler.Violation
	Location string
}

// ErrorTransformer rewrites a mapped error. It receives the raw violation the
// error was mapped from; its return value is reported as is.
type ErrorTransformer func(mapped ValidationError, raw RawViolation) ValidationError
