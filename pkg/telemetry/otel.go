// pkg/telemetry/otel.go
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

/*
TraceOptions selects where and how report runs are traced.

  - ServiceName:    Reported as service.name.
  - ServiceVersion: Reported as service.version; usually the config version.
  - Endpoint:       OTLP/HTTP collector URL. Empty disables tracing.
  - SampleRatio:    Fraction of runs sampled; values outside (0, 1] sample every run.
  - Disabled:       Turns tracing off even when Endpoint is set.
*/
type TraceOptions struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	SampleRatio    float64
	Disabled       bool
}

// Active reports whether Setup will register a tracer provider.
func (o TraceOptions) Active() bool {
	return !o.Disabled && o.Endpoint != ""
}

/*
Setup registers an OTLP/HTTP tracer provider for a report run.

When opts is not Active, Setup returns a no-op shutdown function and
leaves the global provider untouched. The returned shutdown function
flushes pending spans and should be called before the process exits.
*/
func Setup(ctx context.Context, opts TraceOptions) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if !opts.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(opts.Endpoint),
	)
	if err != nil {
		return noop, err
	}

	res, err := newResource(ctx, opts)
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(opts.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

func newResource(ctx context.Context, opts TraceOptions) (*resource.Resource, error) {
	attrs := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(opts.ServiceName)),
		resource.WithHost(),
	}
	if opts.ServiceVersion != "" {
		attrs = append(attrs, resource.WithAttributes(semconv.ServiceVersion(opts.ServiceVersion)))
	}
	return resource.New(ctx, attrs...)
}

// sampler samples every run unless ratio is a proper fraction.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio <= 0 || ratio >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.TraceIDRatioBased(ratio)
}
