package main

import (
	"errors"
	"fmt"
	"os"

	reqvalidator "github.com/TheManSpeaker/openapi-request-validator-generator"
	"github.com/TheManSpeaker/openapi-request-validator-generator/cmd/reqvalidator/commands"
)

var handlers = map[string]func(args []string) error{
	"validate":  commands.HandleValidate,
	"normalize": commands.HandleNormalize,
	"mcp":       commands.HandleMCP,
}

// commandNames lists every command, for suggestions.
var commandNames = []string{"validate", "normalize", "mcp", "version", "help"}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 1
	}

	command := args[0]
	switch command {
	case "version", "-v", "--version":
		fmt.Printf("reqvalidator %s\n", reqvalidator.Version())
		return 0
	case "help", "-h", "--help":
		printUsage()
		return 0
	}

	handle, ok := handlers[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		if suggestion := suggestCommand(command); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Did you mean '%s'?\n", suggestion)
		}
		fmt.Fprintln(os.Stderr)
		printUsage()
		return 1
	}
	if err := handle(args[1:]); err != nil {
		if !errors.Is(err, commands.ErrRequestRejected) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// suggestCommand returns the command closest to input within an edit
// distance of 2, or "".
func suggestCommand(input string) string {
	best, bestDistance := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDistance {
			best, bestDistance = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	fmt.Println(`reqvalidator - OpenAPI request validation

Usage:
  reqvalidator <command> [options]

Commands:
  validate    Validate a request against an operation of an OpenAPI document
  normalize   Write the request schemas of every operation as an artifact bundle
  mcp         Serve validation tools to an MCP client over stdio
  version     Show version information
  help        Show this help message

Examples:
  reqvalidator validate --spec openapi.yaml --request req.json
  reqvalidator normalize -o validators.yaml openapi.yaml
  reqvalidator validate --bundle validators.yaml --request req.json --format json

Run 'reqvalidator <command> --help' for more information on a command.`)
}
