package commands

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TheManSpeaker/openapi-request-validator-generator/artifact"
	"github.com/TheManSpeaker/openapi-request-validator-generator/httpvalidator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/parser"
)

// NormalizeFlags contains flags for the normalize command
type NormalizeFlags struct {
	Output             string
	Format             string
	Quiet              bool
	NoLowercaseHeaders bool
	StrictQuery        bool
	LogLevel           string
	LogFormat          string
}

// SetupNormalizeFlags creates and configures a FlagSet for the normalize command.
func SetupNormalizeFlags() (*flag.FlagSet, *NormalizeFlags) {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	flags := &NormalizeFlags{}

	fs.StringVar(&flags.Output, "o", "", "output file (default: stdout)")
	fs.StringVar(&flags.Output, "output", "", "output file (default: stdout)")
	fs.StringVar(&flags.Format, "format", "", "bundle format: yaml or json (default: from the output extension, else yaml)")
	fs.BoolVar(&flags.Quiet, "q", false, "quiet mode: no diagnostic messages")
	fs.BoolVar(&flags.Quiet, "quiet", false, "quiet mode: no diagnostic messages")
	fs.BoolVar(&flags.NoLowercaseHeaders, "no-lowercase-headers", false, "keep header names as declared")
	fs.BoolVar(&flags.StrictQuery, "strict-query", false, "reject query parameters the operation does not declare")
	fs.StringVar(&flags.LogLevel, "log-level", "warn", "log level: debug, info, warn, or error")
	fs.StringVar(&flags.LogFormat, "log-format", FormatText, "log format: text or json")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqvalidator normalize [flags] <file|->\n\n")
		Writef(fs.Output(), "Write the compile-ready request schemas of every operation as an artifact bundle.\n")
		Writef(fs.Output(), "Every schema is compiled first, so a bundle that is written also loads.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nExamples:\n")
		Writef(fs.Output(), "  reqvalidator normalize openapi.yaml\n")
		Writef(fs.Output(), "  reqvalidator normalize -o validators.json openapi.yaml\n")
		Writef(fs.Output(), "  cat openapi.yaml | reqvalidator normalize --format json -\n")
	}

	return fs, flags
}

// HandleNormalize executes the normalize command
func HandleNormalize(args []string) error {
	fs, flags := SetupNormalizeFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("normalize command requires exactly one file path or '-' for stdin")
	}
	specPath := fs.Arg(0)

	format := artifact.FormatYAML
	switch {
	case flags.Format != "":
		f, err := artifact.ParseFormat(flags.Format)
		if err != nil {
			return err
		}
		format = f
	case flags.Output != "":
		format = artifact.FormatFromPath(flags.Output)
	}

	logger, err := ConfigureLogger(flags.LogLevel, flags.LogFormat)
	if err != nil {
		return err
	}

	data, err := readInput(specPath)
	if err != nil {
		return fmt.Errorf("reading specification: %w", err)
	}
	parsed, err := parser.ParseWithOptions(
		parser.WithBytes(data),
		parser.WithSourceName(FormatSpecPath(specPath)),
		parser.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("parsing file: %w", err)
	}
	v, err := httpvalidator.NewFromParsed(parsed,
		httpvalidator.WithLogger(logger),
		httpvalidator.WithHeadersLowercase(!flags.NoLowercaseHeaders),
		httpvalidator.WithAdditionalQueryProperties(!flags.StrictQuery),
	)
	if err != nil {
		return err
	}
	bundle := artifact.FromValidator(v)

	if flags.Output == "" {
		return artifact.Write(stdout, bundle, format)
	}

	var inputs []string
	if specPath != StdinFilePath {
		inputs = append(inputs, specPath)
	}
	if err := ValidateOutputPath(flags.Output, inputs); err != nil {
		return err
	}
	cleaned := filepath.Clean(flags.Output)
	if err := RejectSymlinkOutput(cleaned); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := artifact.Write(&buf, bundle, format); err != nil {
		return err
	}
	if err := os.WriteFile(cleaned, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if !flags.Quiet {
		Writef(stderr, "Wrote %d operation(s) from %s (%s) to %s\n",
			len(bundle.Operations), FormatSpecPath(specPath), parsed.Version, cleaned)
	}
	return nil
}
