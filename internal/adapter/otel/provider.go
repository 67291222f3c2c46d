package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const tracerName = "github.com/neomorfeo/rentiq/internal/adapter/otel"

// Exporter kinds accepted by Setup.
const (
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
	ExporterNone   = "none"
)

// Config holds OpenTelemetry provider configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Exporter       string  // ExporterStdout, ExporterOTLP or ExporterNone
	Insecure       bool    // plain HTTP for OTLP
	SampleRatio    float64 // fraction of root traces kept; 0 or 1 keeps all
}

// Providers carries the shutdown hook that flushes pending telemetry.
type Providers struct {
	Shutdown func(ctx context.Context) error
}

type exporters struct {
	spans   trace.SpanExporter
	metrics metric.Exporter
}

// Setup installs global tracer and meter providers for the service.
// With ExporterNone the global no-op providers stay in place.
func Setup(ctx context.Context, cfg Config) (*Providers, error) {
	if cfg.Exporter == ExporterNone {
		return &Providers{Shutdown: func(context.Context) error { return nil }}, nil
	}

	exp, err := newExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithProcessRuntimeName(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating otel resource: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithBatcher(exp.spans),
		trace.WithSampler(sampler(cfg.SampleRatio)),
	)
	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(exp.metrics)),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Providers{Shutdown: func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}}, nil
}

func newExporters(ctx context.Context, cfg Config) (exporters, error) {
	var (
		exp  exporters
		err1 error
		err2 error
	)
	switch cfg.Exporter {
	case ExporterOTLP:
		var traceOpts []otlptracehttp.Option
		var metricOpts []otlpmetrichttp.Option
		if cfg.Insecure {
			traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
			metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
		}
		exp.spans, err1 = otlptracehttp.New(ctx, traceOpts...)
		exp.metrics, err2 = otlpmetrichttp.New(ctx, metricOpts...)
	case ExporterStdout:
		exp.spans, err1 = stdouttrace.New(stdouttrace.WithPrettyPrint())
		exp.metrics, err2 = stdoutmetric.New()
	default:
		return exporters{}, fmt.Errorf("unsupported exporter %q (want %q, %q or %q)",
			cfg.Exporter, ExporterStdout, ExporterOTLP, ExporterNone)
	}
	if err := errors.Join(err1, err2); err != nil {
		return exporters{}, fmt.Errorf("creating %s exporters: %w", cfg.Exporter, err)
	}
	return exp, nil
}

func sampler(ratio float64) trace.Sampler {
	if ratio > 0 && ratio < 1 {
		return trace.ParentBased(trace.TraceIDRatioBased(ratio))
	}
	return trace.AlwaysSample()
}
