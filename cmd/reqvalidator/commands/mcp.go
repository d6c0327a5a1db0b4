package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TheManSpeaker/openapi-request-validator-generator/internal/mcpserver"
)

// MCPFlags contains flags for the mcp command
type MCPFlags struct {
	LogLevel  string
	LogFormat string
}

// SetupMCPFlags creates and configures a FlagSet for the mcp command.
func SetupMCPFlags() (*flag.FlagSet, *MCPFlags) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	flags := &MCPFlags{}

	fs.StringVar(&flags.LogLevel, "log-level", "warn", "log level: debug, info, warn, or error")
	fs.StringVar(&flags.LogFormat, "log-format", FormatJSON, "log format: text or json")

	fs.Usage = func() {
		Writef(fs.Output(), "Usage: reqvalidator mcp [flags]\n\n")
		Writef(fs.Output(), "Serve the validate_request, normalize_endpoint and list_operations tools\n")
		Writef(fs.Output(), "to an MCP client over stdio. Logs go to stderr.\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nConfiguration is read from REQVALIDATOR_* environment variables.\n")
	}

	return fs, flags
}

// HandleMCP executes the mcp command. It blocks until the client disconnects
// or the process is interrupted.
func HandleMCP(args []string) error {
	fs, flags := SetupMCPFlags()

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return fmt.Errorf("mcp command takes no positional arguments")
	}
	if _, err := ConfigureLogger(flags.LogLevel, flags.LogFormat); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}
