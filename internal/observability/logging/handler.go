package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

type HandlerOptions struct {
	Level         slog.Leveler
	Service       ServiceInfo
	Environment   Environment
	DefaultModule Module
	GCPProjectID  string
}

// Handler decorates a JSON handler with service, request and trace fields.
type Handler struct {
	inner         slog.Handler
	defaultModule Module
	projectID     string
}

func NewHandler(w io.Writer, opts HandlerOptions) *Handler {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}

	attrs := []slog.Attr{
		slog.String("service", opts.Service.Name),
		slog.String("environment", string(opts.Environment)),
	}
	if opts.Service.Version != "" {
		attrs = append(attrs, slog.String("version", opts.Service.Version))
	}
	if opts.Service.Revision != "" {
		attrs = append(attrs, slog.String("revision", opts.Service.Revision))
	}

	inner := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceAttr,
	}).WithAttrs(attrs)

	return &Handler{inner: inner, defaultModule: opts.DefaultModule, projectID: opts.GCPProjectID}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	module := h.defaultModule
	if m, ok := ModuleFromContext(ctx); ok {
		module = m
	}
	if module != "" {
		r.AddAttrs(slog.String("module", string(module)))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
		r.AddAttrs(gcpTraceAttrs(ctx, h.projectID)...)
	}
	return h.inner.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), defaultModule: h.defaultModule, projectID: h.projectID}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), defaultModule: h.defaultModule, projectID: h.projectID}
}

// replaceAttr renames the level and message keys to the ones Cloud Logging
// reads.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.LevelKey:
		return slog.String("severity", a.Value.String())
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: a.Value}
	}
	return a
}

// ParseLevel maps LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
