// Package otel wires OpenTelemetry tracing for arena processes.
package otel

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/ffa-arena/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationPrefix = "github.com/louisbranch/ffa-arena/"

// Settings controls trace export.
type Settings struct {
	// Endpoint is the OTLP HTTP collector URL. Empty disables export.
	Endpoint string `env:"ARENA_OTEL_ENDPOINT"`
	// Enabled set to "false" disables export even with an endpoint.
	Enabled string `env:"ARENA_OTEL_ENABLED"`
	// SampleRatio is the fraction of root traces kept, in [0, 1]. Store
	// spans follow their parent's decision.
	SampleRatio float64 `env:"ARENA_OTEL_SAMPLE_RATIO" envDefault:"1"`
	// Instance tags spans with the arena instance that produced them.
	Instance string `env:"ARENA_INSTANCE"`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := config.ParseEnv(&s); err != nil {
		return Settings{}, err
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	if s.SampleRatio < 0 || s.SampleRatio > 1 {
		return fmt.Errorf("otel sample ratio %v outside [0, 1]", s.SampleRatio)
	}
	return nil
}

// exporting reports whether traces leave the process.
func (s Settings) exporting() bool {
	return strings.TrimSpace(s.Endpoint) != "" && !strings.EqualFold(strings.TrimSpace(s.Enabled), "false")
}

func (s Settings) sampler() sdktrace.Sampler {
	if s.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))
}

// Setup registers a global tracer provider for serviceName using the
// environment settings. Without an endpoint it registers nothing and returns
// a no-op shutdown. The returned shutdown flushes pending spans.
func Setup(ctx context.Context, serviceName string) (func(context.Context) error, error) {
	settings, err := LoadSettings()
	if err != nil {
		return nil, err
	}
	return SetupWithSettings(ctx, serviceName, settings)
}

// SetupWithSettings is Setup with explicit settings.
func SetupWithSettings(ctx context.Context, serviceName string, settings Settings) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if err := settings.validate(); err != nil {
		return nil, err
	}
	if !settings.exporting() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(settings.Endpoint))
	if err != nil {
		return noop, fmt.Errorf("create otlp exporter: %w", err)
	}

	attrs := []resource.Option{resource.WithAttributes(semconv.ServiceName(serviceName))}
	if instance := strings.TrimSpace(settings.Instance); instance != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceInstanceID(instance)))
	}
	res, err := resource.New(ctx, attrs...)
	if err != nil {
		return noop, fmt.Errorf("build otel resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(settings.sampler()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// Tracer returns a tracer from the global provider scoped to an arena package.
// It resolves lazily, so tracers obtained before Setup still export once a
// provider is registered.
func Tracer(pkg string) trace.Tracer {
	return otel.Tracer(instrumentationPrefix + strings.TrimPrefix(pkg, "/"))
}
