package security

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func redactingLogger(t *testing.T, secrets ...string) (*slog.Logger, *bytes.Buffer) {
	t.Helper()

	r := NewRedactor()
	for _, s := range secrets {
		r.AddLiteral(s)
	}
	var buf bytes.Buffer
	h := NewRedactingHandler(slog.NewTextHandler(&buf, nil), r)
	return slog.New(h), &buf
}

func TestHandlerRedactsMessage(t *testing.T) {
	t.Parallel()

	logger, buf := redactingLogger(t, "hunter2")
	logger.Info("loaded secret hunter2 from config")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("output leaked secret: %s", out)
	}
	if !strings.Contains(out, RedactPlaceholder) {
		t.Errorf("output missing placeholder: %s", out)
	}
}

func TestHandlerRedactsAttrs(t *testing.T) {
	t.Parallel()

	logger, buf := redactingLogger(t, "hunter2")
	logger.Info("config loaded", "token", "hunter2", "path", "/etc/app.yaml")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("output leaked attr secret: %s", out)
	}
	if !strings.Contains(out, "/etc/app.yaml") {
		t.Errorf("non-secret attr mangled: %s", out)
	}
}

func TestHandlerRedactsGroupedAttrs(t *testing.T) {
	t.Parallel()

	logger, buf := redactingLogger(t, "hunter2")
	logger.Info("request", slog.Group("auth", slog.String("token", "hunter2")))

	if out := buf.String(); strings.Contains(out, "hunter2") {
		t.Errorf("output leaked grouped secret: %s", out)
	}
}

func TestHandlerRedactsWithAttrs(t *testing.T) {
	t.Parallel()

	logger, buf := redactingLogger(t, "hunter2")
	logger.With("token", "hunter2").Info("subsystem starting")

	if out := buf.String(); strings.Contains(out, "hunter2") {
		t.Errorf("output leaked With() secret: %s", out)
	}
}

func TestHandlerKeepsNonStringAttrs(t *testing.T) {
	t.Parallel()

	logger, buf := redactingLogger(t)
	logger.Info("stats", "count", 42, "ratio", 0.5)

	out := buf.String()
	if !strings.Contains(out, "count=42") {
		t.Errorf("int attr lost: %s", out)
	}
}
