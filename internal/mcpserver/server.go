// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes request validation as MCP tools over stdio.
package mcpserver

import (
	"context"
	"regexp"

	reqvalidator "github.com/TheManSpeaker/openapi-request-validator-generator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `reqvalidator MCP server: checks HTTP requests against the operations of an OpenAPI document.

Configuration: defaults are read from REQVALIDATOR_* environment variables set in your MCP client config.

Key settings:
- REQVALIDATOR_CACHE_ENABLED (default: true): cache compiled validators per spec
- REQVALIDATOR_CACHE_FILE_TTL (default: 15m): cache TTL for file specs
- REQVALIDATOR_CACHE_CONTENT_TTL (default: 15m): cache TTL for inline specs
- REQVALIDATOR_HEADERS_LOWERCASE (default: true): match header names case-insensitively
- REQVALIDATOR_ADDITIONAL_QUERY_PROPERTIES (default: true): allow undeclared query parameters
- REQVALIDATOR_LIST_LIMIT (default: 100): default result limit for list_operations

Caching: compiled validators are cached per session. File entries use path+mtime as key (auto-invalidated on change). A background sweeper removes expired entries.

Workflow: call list_operations to find the resource template and method, then validate_request with the request's headers, query, path params and body. normalize_endpoint shows the JSON Schemas a request is checked against.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	return RunWithTransport(ctx, &mcp.StdioTransport{})
}

// RunWithTransport starts the MCP server on t.
func RunWithTransport(ctx context.Context, t mcp.Transport) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}
	return newServer().Run(ctx, t)
}

func newServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "reqvalidator", Version: reqvalidator.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_request",
		Description: "Validate an HTTP request against an operation of an OpenAPI document (2.0 or 3.x). Identify the operation by resource (the path template, e.g. /pets/{petId}) and method. Pass path params, query, headers and the decoded body with their JSON types. Returns valid=true, or the status a server would answer (400 or 415) with one error per violation: errorCode, path, message and location (path, query, headers or body).",
	}, handleValidateRequest)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "normalize_endpoint",
		Description: "Show the JSON Schemas an operation's requests are validated against: one schema per parameter location and one per request body media type, after nullable expansion and read-only stripping. Bodies are wrapped as {body: <schema>}.",
	}, handleNormalizeEndpoint)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_operations",
		Description: "List the operations of an OpenAPI document with their resource template, method, parameter counts and request body media types. Filter by method or resource prefix. Use offset/limit to paginate; the default limit is configurable via REQVALIDATOR_LIST_LIMIT.",
	}, handleListOperations)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.ListLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.ListLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}
