package security

import (
	"context"
	"log/slog"
)

// RedactingHandler wraps a slog.Handler and redacts secrets from all string
// attribute values and the log message itself before delegating.
type RedactingHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

// NewRedactingHandler wraps inner so that every record passing through it is
// scrubbed by redactor.
func NewRedactingHandler(inner slog.Handler, redactor *Redactor) *RedactingHandler {
	return &RedactingHandler{
		inner:    inner,
		redactor: redactor,
	}
}

func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, h.redactor.Redact(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(h.redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		cleaned = append(cleaned, h.redactAttr(attr))
	}
	return &RedactingHandler{
		inner:    h.inner.WithAttrs(cleaned),
		redactor: h.redactor,
	}
}

func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		inner:    h.inner.WithGroup(name),
		redactor: h.redactor,
	}
}

func (h *RedactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	val := attr.Value.Resolve()
	switch val.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, h.redactor.Redact(val.String()))
	case slog.KindGroup:
		members := val.Group()
		cleaned := make([]any, 0, len(members))
		for _, member := range members {
			cleaned = append(cleaned, h.redactAttr(member))
		}
		return slog.Group(attr.Key, cleaned...)
	case slog.KindAny:
		if s, ok := val.Any().(string); ok {
			return slog.String(attr.Key, h.redactor.Redact(s))
		}
		return attr
	default:
		return attr
	}
}
