// Package logger provides the zerolog-backed structured logger used across
// the API, workers and migration tooling. Request-scoped fields (request id,
// user id, envelope id) travel inside context.Context, so handlers and
// services log through the same *Logger without threading field sets around.
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/signflowhq/signflow-backend/pkg/env"
)

// Options configures a logger instance. Level defaults to info and Output
// to stdout.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Output      io.Writer
}

// Logger is the shared structured logger. It is safe for concurrent use.
type Logger struct {
	base      *zerolog.Logger
	warnStack bool
}

type ctxKey struct{}

// New builds a JSON logger tagged with the service name. Setting
// LOG_FORMAT=console switches to human-readable output for local runs.
func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}

	var output io.Writer = opts.Output
	if output == nil {
		output = os.Stdout
	}
	if env.Get("LOG_FORMAT", "json") == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: "15:04:05",
			NoColor:    false,
		}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	base := zerolog.
		New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(opts.Level)

	return &Logger{
		base:      &base,
		warnStack: opts.WarnStack,
	}
}

// ParseLevel maps a config string to a zerolog level, falling back to info
// on anything it does not recognize.
func ParseLevel(value string) zerolog.Level {
	name := strings.ToLower(strings.TrimSpace(value))
	if name == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) fromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return l.base
	}
	if scoped, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return scoped
	}
	return l.base
}

func (l *Logger) store(ctx context.Context, scoped zerolog.Logger) context.Context {
	copied := scoped
	return context.WithValue(ctx, ctxKey{}, &copied)
}

// WithField returns a context whose logger carries key=value on every
// subsequent log line.
func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	scoped := l.fromContext(ctx)
	return l.store(ctx, scoped.With().Interface(key, value).Logger())
}

// WithFields attaches several fields at once.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	builder := l.fromContext(ctx).With()
	for k, v := range fields {
		builder = builder.Interface(k, v)
	}
	return l.store(ctx, builder.Logger())
}

// WithRequestID tags the context logger with the request id assigned by the
// RequestID middleware.
func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

// WithUserID tags the context logger with the authenticated user.
func (l *Logger) WithUserID(ctx context.Context, userID string) context.Context {
	return l.WithField(ctx, "user_id", userID)
}

// WithEnvelopeID tags the context logger with the envelope a workflow
// operation is acting on.
func (l *Logger) WithEnvelopeID(ctx context.Context, envelopeID string) context.Context {
	return l.WithField(ctx, "envelope_id", envelopeID)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.fromContext(ctx).Info().Msg(msg)
}

func (l *Logger) Warn(ctx context.Context, msg string) {
	event := l.fromContext(ctx).Warn()
	if l.warnStack {
		event = event.Str("stack", stackTrace())
	}
	event.Msg(msg)
}

// Error always records a stack trace alongside the error chain.
func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.fromContext(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Str("stack", stackTrace()).Msg(msg)
}

func stackTrace() string {
	return strings.TrimSpace(string(debug.Stack()))
}
