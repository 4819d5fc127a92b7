// Package telemetry configures OpenTelemetry tracing.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "pantrychef"

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled      bool
	Environment  string
	SamplingRate float64
}

// TracingProvider owns the SDK tracer provider, if tracing is enabled.
type TracingProvider struct {
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
}

// NewTracingProvider installs a global tracer provider exporting over OTLP/HTTP.
// The exporter endpoint comes from the standard OTEL_EXPORTER_OTLP_* variables.
// When tracing is disabled the global no-op provider stays in place.
func NewTracingProvider(ctx context.Context, cfg TracingConfig, logger *zap.Logger) (*TracingProvider, error) {
	logger = logger.Named("tracing")
	if !cfg.Enabled {
		logger.Info("tracing is disabled")
		return &TracingProvider{logger: logger}, nil
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("deployment.environment", cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	rate := cfg.SamplingRate
	if rate <= 0 {
		rate = 1
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("tracing initialized",
		zap.String("environment", cfg.Environment),
		zap.Float64("sampling_rate", rate))

	return &TracingProvider{provider: tp, logger: logger}, nil
}

// Enabled reports whether spans are exported.
func (t *TracingProvider) Enabled() bool {
	return t.provider != nil
}

// Shutdown flushes pending spans.
func (t *TracingProvider) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	t.logger.Info("tracing shut down")
	return nil
}
