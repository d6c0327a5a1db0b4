package parser

import (
	"log/slog"
)

// Logger is the structured logging interface shared by every package in this module.
//
// Attributes are alternating key-value pairs, the same convention as log/slog:
//
//	logger.Debug("compiled validator", "resource", "/pets", "slot", "query")
//
// Any logging library can be plugged in with a small adapter. For log/slog use
// [NewSlogAdapter]:
//
//	logger := parser.NewSlogAdapter(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
//
//	result, err := parser.ParseWithOptions(
//	    parser.WithFilePath("api.yaml"),
//	    parser.WithLogger(logger),
//	)
//
// A zap adapter is equally short:
//
//	type ZapAdapter struct{ logger *zap.SugaredLogger }
//
//	func (z *ZapAdapter) Debug(msg string, attrs ...any) { z.logger.Debugw(msg, attrs...) }
//	func (z *ZapAdapter) Info(msg string, attrs ...any)  { z.logger.Infow(msg, attrs...) }
//	func (z *ZapAdapter) Warn(msg string, attrs ...any)  { z.logger.Warnw(msg, attrs...) }
//	func (z *ZapAdapter) Error(msg string, attrs ...any) { z.logger.Errorw(msg, attrs...) }
//	func (z *ZapAdapter) With(attrs ...any) parser.Logger {
//	    return &ZapAdapter{logger: z.logger.With(attrs...)}
//	}
type Logger interface {
	// Debug logs detailed diagnostic information.
	Debug(msg string, attrs ...any)

	// Info logs general operational information.
	Info(msg string, attrs ...any)

	// Warn logs recoverable problems, such as a malformed Content-Type header.
	Warn(msg string, attrs ...any)

	// Error logs error conditions.
	Error(msg string, attrs ...any)

	// With returns a Logger that prepends attrs to every entry.
	With(attrs ...any) Logger
}

// NopLogger discards all output. It is the default when no logger is configured.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(_ string, _ ...any) {}

// Info implements Logger.
func (NopLogger) Info(_ string, _ ...any) {}

// Warn implements Logger.
func (NopLogger) Warn(_ string, _ ...any) {}

// Error implements Logger.
func (NopLogger) Error(_ string, _ ...any) {}

// With implements Logger.
func (n NopLogger) With(_ ...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter wraps a *slog.Logger to implement the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter from a *slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Debug implements Logger.
func (s *SlogAdapter) Debug(msg string, attrs ...any) {
	s.logger.Debug(msg, attrs...)
}

// Info implements Logger.
func (s *SlogAdapter) Info(msg string, attrs ...any) {
	s.logger.Info(msg, attrs...)
}

// Warn implements Logger.
func (s *SlogAdapter) Warn(msg string, attrs ...any) {
	s.logger.Warn(msg, attrs...)
}

// Error implements Logger.
func (s *SlogAdapter) Error(msg string, attrs ...any) {
	s.logger.Error(msg, attrs...)
}

// With implements Logger.
func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)

// PrefixLogger prepends a fixed prefix to every message before delegating.
// A zero-length prefix passes messages through unchanged.
type PrefixLogger struct {
	logger Logger
	prefix string
}

// NewPrefixLogger returns a Logger that writes "<prefix> <msg>" to logger.
// If logger is nil, NopLogger is used.
func NewPrefixLogger(logger Logger, prefix string) *PrefixLogger {
	if logger == nil {
		logger = NopLogger{}
	}
	return &PrefixLogger{logger: logger, prefix: prefix}
}

func (p *PrefixLogger) msg(m string) string {
	if p.prefix == "" {
		return m
	}
	return p.prefix + " " + m
}

// Debug implements Logger.
func (p *PrefixLogger) Debug(msg string, attrs ...any) { p.logger.Debug(p.msg(msg), attrs...) }

// Info implements Logger.
func (p *PrefixLogger) Info(msg string, attrs ...any) { p.logger.Info(p.msg(msg), attrs...) }

// Warn implements Logger.
func (p *PrefixLogger) Warn(msg string, attrs ...any) { p.logger.Warn(p.msg(msg), attrs...) }

// Error implements Logger.
func (p *PrefixLogger) Error(msg string, attrs ...any) { p.logger.Error(p.msg(msg), attrs...) }

// With implements Logger.
func (p *PrefixLogger) With(attrs ...any) Logger {
	return &PrefixLogger{logger: p.logger.With(attrs...), prefix: p.prefix}
}

var _ Logger = (*PrefixLogger)(nil)
