package commands

import (
	"errors"
	"flag"
	"fmt"
	"time"

	reqvalidator "github.com/TheManSpeaker/openapi-request-validator-generator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/artifact"
	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
	"github.com/go-json-experiment/json"
)

// ValidateFlags contains flags for the validate command
type ValidateFlags struct {
	Spec               string
	Bundle             string
	Request            string
	Format             string
	Quiet              bool
	NoLowercaseHeaders bool
	StrictQuery        bool
	LogLevel           string
	LogFormat          string
}

// SetupValidateFlags creates and configures a FlagSet for the validate command.
// Returns the FlagSet and a ValidateFlags struct with bound flag variables.
func SetupValidateFlags() (*flag.FlagSet, *ValidateFlags) {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags := &ValidateFlags{}

	fs.StringVar(&flags.Spec, "spec", "", "OpenAPI document declaring the operation")
	fs.StringVar(&flags.Bundle, "bundle", "", "artifact bundle written by 'reqvalidator normalize' (instead of --spec)")
	fs.StringVar(&flags.Request, "request", "", "request description as JSON, or '-' for stdin")
	fs.StringVar(&flags.Format, "format", FormatText, "output format: text, json, or yaml")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: only output the validation result")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: only output the validation result")
	fs.BoolVar(&flags.NoLowercaseHeaders, "no-lowercase-headers", false, "match header names case-sensitively")
	fs.BoolVar(&flags.StrictQuery, "strict-query", false, "reject query parameters the operation does not declare")
	fs.StringVar(&flags.LogLevel, "log-level", "warn", "log level: debug, info, warn, or error")
	fs.StringVar(&flags.LogFormat, "log-format", FormatText, "log format: text or json")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqvalidator validate [flags]\n\n")
		Writef(fs.Output(), "Validate an HTTP request against an operation of an OpenAPI document.\n\n")
		Writef(fs.Output(), "The request is a JSON object:\n")
		Writef(fs.Output(), "  {\"resource\": \"/pets/{petId}\", \"method\": \"GET\", \"params\": {\"petId\": 42},\n")
		Writef(fs.Output(), "   \"query\": {...}, \"headers\": {...}, \"body\": ...}\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  reqvalidator validate --spec openapi.yaml --request req.json\n")
		Writef(fs.Output(), "  reqvalidator validate --bundle validators.yaml --request req.json\n")
		Writef(fs.Output(), "  cat req.json | reqvalidator validate --spec openapi.yaml --request - --format json\n")
		Writef(fs.Output(), "\nExit Codes:\n")
		Writef(fs.Output(), "  0    Request is valid\n")
		Writef(fs.Output(), "  1    Request is invalid, or the command failed\n")
	}

	return fs, flags
}

// validateOutput is the structured form of a validation.
type validateOutput struct {
	Valid     bool                            `json:"valid" yaml:"valid"`
	Operation string                          `json:"operation" yaml:"operation"`
	Status    int                             `json:"status,omitzero" yaml:"status,omitempty"`
	Errors    []httpvalidator.ValidationError `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// HandleValidate executes the validate command
func HandleValidate(args []string) error {
	fs, flags := SetupValidateFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("validate command takes no positional arguments")
	}
	if (flags.Spec == "") == (flags.Bundle == "") {
		fs.Usage()
		return fmt.Errorf("validate command requires exactly one of --spec or --bundle")
	}
	if flags.Request == "" {
		fs.Usage()
		return fmt.Errorf("validate command requires --request")
	}
	if err := ValidateOutputFormat(flags.Format); err != nil {
		return err
	}

	logger, err := ConfigureLogger(flags.LogLevel, flags.LogFormat)
	if err != nil {
		return err
	}

	req, err := readRequest(flags.Request)
	if err != nil {
		return err
	}

	startTime := time.Now()
	v, err := loadValidator(flags, logger)
	if err != nil {
		return err
	}
	loadTime := time.Since(startTime)

	result, err := v.Validate(req)
	if err != nil {
		return err
	}
	set, _ := v.Set(req.Resource, req.Method)

	output := validateOutput{Valid: result == nil, Operation: set.Key()}
	if result != nil {
		output.Status = result.Status
		output.Errors = result.Errors
	}

	if flags.Format == FormatJSON || flags.Format == FormatYAML {
		if err := OutputStructured(output, flags.Format); err != nil {
			return err
		}
	} else {
		writeValidateText(flags, output, loadTime)
	}

	if !output.Valid {
		return ErrRequestRejected
	}
	return nil
}

func writeValidateText(flags *ValidateFlags, output validateOutput, loadTime time.Duration) {
	if !flags.Quiet {
		source := flags.Spec
		if source == "" {
			source = flags.Bundle
		}
		Writef(stderr, "OpenAPI Request Validator\n")
		Writef(stderr, "=========================\n\n")
		Writef(stderr, "reqvalidator version: %s\n", reqvalidator.Version())
		Writef(stderr, "Specification: %s\n", FormatSpecPath(source))
		Writef(stderr, "Operation: %s\n", output.Operation)
		Writef(stderr, "Load Time: %v\n\n", loadTime)
	}

	if output.Valid {
		Writef(stdout, "✓ Request is valid\n")
		return
	}
	Writef(stdout, "✗ Request rejected with status %d: %d error(s)\n", output.Status, len(output.Errors))
	for _, e := range output.Errors {
		code := e.ErrorCode
		if code == "" {
			code = "-"
		}
		if e.Path != "" {
			Writef(stdout, "  [%s] %s: %s (%s)\n", e.Location, e.Path, e.Message, code)
		} else {
			Writef(stdout, "  [%s] %s (%s)\n", e.Location, e.Message, code)
		}
	}
}

func readRequest(path string) (httpvalidator.RequestContext, error) {
	var req httpvalidator.RequestContext
	data, err := readInput(path)
	if err != nil {
		return req, fmt.Errorf("reading request: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("decoding request %s: %w", FormatSpecPath(path), err)
	}
	if req.Resource == "" || req.Method == "" {
		return req, fmt.Errorf("request %s needs a resource and a method", FormatSpecPath(path))
	}
	return req, nil
}

func loadValidator(flags *ValidateFlags, logger parser.Logger) (*httpvalidator.Validator, error) {
	opts := []httpvalidator.Option{
		httpvalidator.WithLogger(logger),
		httpvalidator.WithHeadersLowercase(!flags.NoLowercaseHeaders),
		httpvalidator.WithAdditionalQueryProperties(!flags.StrictQuery),
	}
	if flags.Bundle != "" {
		bundle, err := artifact.ReadFile(flags.Bundle)
		if err != nil {
			return nil, err
		}
		return bundle.Compile(opts...)
	}

	parsed, err := parser.ParseWithOptions(parser.WithFilePath(flags.Spec), parser.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("parsing file: %w", err)
	}
	return httpvalidator.NewFromParsed(parsed, opts...)
}
