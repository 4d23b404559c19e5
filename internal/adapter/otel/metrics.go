package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "foreman"

// Metrics holds all foreman metric instruments.
type Metrics struct {
	Dispatched       metric.Int64Counter
	Failed           metric.Int64Counter
	Rejected         metric.Int64Counter
	DispatchDuration metric.Float64Histogram
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.Dispatched, err = meter.Int64Counter("foreman.dispatches",
		metric.WithDescription("Number of dispatches that reached a specialist"))
	if err != nil {
		return nil, err
	}

	m.Failed, err = meter.Int64Counter("foreman.dispatches.failed",
		metric.WithDescription("Number of dispatches whose invocation failed"))
	if err != nil {
		return nil, err
	}

	m.Rejected, err = meter.Int64Counter("foreman.dispatches.rejected",
		metric.WithDescription("Number of dispatches rejected before invocation (structural errors)"))
	if err != nil {
		return nil, err
	}

	m.DispatchDuration, err = meter.Float64Histogram("foreman.dispatch.duration_seconds",
		metric.WithDescription("Invocation duration in seconds"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
