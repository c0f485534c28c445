// Package telemetry exports traces via OTLP/HTTP. The module is optional;
// when absent the relay engine's spans are recorded against the global
// no-op tracer provider and cost nothing.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/flemzord/transbridge/internal/core"
)

func init() {
	core.RegisterModule(&Module{})
}

var (
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
	_ core.Starter      = (*Module)(nil)
	_ core.Stopper      = (*Module)(nil)
)

// Config holds the tracing module configuration.
type Config struct {
	// Endpoint is the OTLP/HTTP collector endpoint, host:port.
	Endpoint string `yaml:"endpoint"`
	// Insecure disables TLS for the exporter connection.
	Insecure bool `yaml:"insecure"`
	// ServiceName overrides the resource service.name attribute.
	ServiceName string `yaml:"service_name"`
	// SampleRatio is the fraction of traces to sample, 0 to 1.
	SampleRatio float64 `yaml:"sample_ratio"`
}

func (c *Config) defaults() {
	if c.ServiceName == "" {
		c.ServiceName = "transbridge"
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1.0
	}
}

func (c *Config) validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("telemetry.otel: endpoint is required")
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("telemetry.otel: sample_ratio must be between 0 and 1, got %v", c.SampleRatio)
	}
	return nil
}

// Module configures a tracer provider and installs it globally.
type Module struct {
	config   Config
	logger   *slog.Logger
	provider *sdktrace.TracerProvider
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "telemetry.otel",
		New: func() core.Module { return &Module{} },
	}
}

func (m *Module) Configure(node *yaml.Node) error {
	if node != nil {
		if err := node.Decode(&m.config); err != nil {
			return fmt.Errorf("telemetry.otel: decode config: %w", err)
		}
	}
	m.config.defaults()
	return nil
}

func (m *Module) Provision(appCtx *core.AppContext) error {
	m.logger = appCtx.Logger
	return nil
}

func (m *Module) Validate() error {
	return m.config.validate()
}

func (m *Module) Start() error {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(m.config.Endpoint),
	}
	if m.config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return fmt.Errorf("telemetry.otel: create exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(m.config.ServiceName),
	))
	if err != nil {
		return fmt.Errorf("telemetry.otel: build resource: %w", err)
	}

	m.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(m.config.SampleRatio))),
	)
	otel.SetTracerProvider(m.provider)

	m.logger.Info("tracing enabled",
		"endpoint", m.config.Endpoint,
		"sample_ratio", m.config.SampleRatio)
	return nil
}

func (m *Module) Stop(ctx context.Context) error {
	if m.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := m.provider.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("telemetry.otel: shutdown: %w", err)
	}
	return nil
}
