package observability

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records pipeline step counts and durations through an
// OpenTelemetry meter exported on the Prometheus default registry.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	stepCounter   otelmetric.Int64Counter
	stepDuration  otelmetric.Float64Histogram
}

func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

// NewWithReader builds an instance on a caller-supplied reader, e.g. a
// metric.ManualReader in tests.
func NewWithReader(reader metric.Reader, serviceName string) *Observability {
	return newWithProvider(metric.NewMeterProvider(metric.WithReader(reader)), serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) *Observability {
	meter := provider.Meter(serviceName)

	stepCounter, _ := meter.Int64Counter(
		"explorer.steps",
		otelmetric.WithDescription("Number of pipeline steps executed"),
	)

	stepDuration, _ := meter.Float64Histogram(
		"explorer.step.duration",
		otelmetric.WithDescription("Pipeline step duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
	}
}

// RecordStep counts one execution of step and records its duration.
func (o *Observability) RecordStep(ctx context.Context, step, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	if o.stepCounter != nil {
		o.stepCounter.Add(ctx, 1, attrs)
	}
	if o.stepDuration != nil {
		o.stepDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
