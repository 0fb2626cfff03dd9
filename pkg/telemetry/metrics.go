package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/faultlinechaos/faultline-go/pkg/types"
)

const MeterName = "faultlinechaos.io/faultline-go"

// Metrics holds the chaos client's instruments. A nil *Metrics is valid and
// records nothing, so callers that skip telemetry need no guards.
type Metrics struct {
	started      metric.Int64Counter
	reverted     metric.Int64Counter
	revertFailed metric.Int64Counter
	duration     metric.Float64Histogram
}

// NewMetrics registers the chaos experiment instruments on the global meter
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(MeterName)

	started, err := meter.Int64Counter("chaos_experiments_started_total",
		metric.WithDescription("Experiments successfully started on the control plane"))
	if err != nil {
		return nil, err
	}
	reverted, err := meter.Int64Counter("chaos_experiments_reverted_total",
		metric.WithDescription("Experiments whose fault was cleanly rolled back"))
	if err != nil {
		return nil, err
	}
	revertFailed, err := meter.Int64Counter("chaos_experiment_revert_failures_total",
		metric.WithDescription("Experiments whose rollback call failed"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("chaos_experiment_duration_seconds",
		metric.WithDescription("Wall time from start call to release"))
	if err != nil {
		return nil, err
	}

	return &Metrics{
		started:      started,
		reverted:     reverted,
		revertFailed: revertFailed,
		duration:     duration,
	}, nil
}

// ExperimentStarted counts one started experiment
func (m *Metrics) ExperimentStarted(ctx context.Context, chaosType types.ChaosType, target string) {
	if m == nil {
		return
	}
	m.started.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chaos_type", chaosType.String()),
		attribute.String("target_service", target),
	))
}

// ExperimentReverted counts one clean rollback and records the experiment's
// wall time
func (m *Metrics) ExperimentReverted(ctx context.Context, chaosType types.ChaosType, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("chaos_type", chaosType.String()))
	m.reverted.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RevertFailed counts one failed rollback
func (m *Metrics) RevertFailed(ctx context.Context, chaosType types.ChaosType) {
	if m == nil {
		return
	}
	m.revertFailed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chaos_type", chaosType.String()),
	))
}
