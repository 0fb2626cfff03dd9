package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/faultlinechaos/faultline-go/pkg/log"
	"github.com/faultlinechaos/faultline-go/pkg/result"
	"github.com/faultlinechaos/faultline-go/pkg/scenario"
	"github.com/faultlinechaos/faultline-go/pkg/telemetry"
)

// Experiment identifies one running fault injection: the uuid the control
// plane knows it by, a log-friendly name, and the scenario behind it.
type Experiment struct {
	ID        string
	Name      string
	Scenario  scenario.Scenario
	StartedAt time.Time
}

// Handle owns the rollback of one started experiment. It moves from open to
// closed exactly once; closing again is a no-op.
type Handle struct {
	experiment Experiment
	transport  Transport
	registry   *result.Registry
	metrics    *telemetry.Metrics

	mu     sync.Mutex
	closed bool
}

// ID returns the experiment id the control plane tracks the fault under
func (h *Handle) ID() string {
	return h.experiment.ID
}

// Name returns the log-friendly experiment name
func (h *Handle) Name() string {
	return h.experiment.Name
}

// Scenario returns the scenario the experiment was started with
func (h *Handle) Scenario() scenario.Scenario {
	return h.experiment.Scenario
}

// StartedAt returns when the start call was issued
func (h *Handle) StartedAt() time.Time {
	return h.experiment.StartedAt
}

// Closed reports whether the handle has been released
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close reverts the experiment's fault. It issues at most one stop call no
// matter how many goroutines race here, and it never reports an error: a
// failed rollback is logged and recorded in the verdict registry instead.
// The stop call runs on a fresh background context so that a cancelled
// caller context cannot block the rollback; the transport's own timeouts
// still bound it. Stopping an experiment the remote side already expired
// counts as success.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true

	ctx, span := telemetry.StartExperimentSpan(context.Background(), "chaos.stop")
	defer span.End()

	scn := h.experiment.Scenario
	elapsed := time.Since(h.experiment.StartedAt)

	if err := h.transport.Stop(ctx, h.experiment.ID); err != nil {
		log.ErrorWithValues("[Revert]: Failed to revert the chaos experiment, the fault may still be active on the target", logrus.Fields{
			"ExperimentID": h.experiment.ID,
			"Name":         h.experiment.Name,
			"ChaosType":    scn.Type().String(),
			"Target":       scn.TargetService(),
			"Elapsed":      elapsed.Round(time.Millisecond).String(),
			"Reason":       err.Error(),
		})
		h.registry.RecordRevertFailure(h.experiment.ID, err.Error())
		h.metrics.RevertFailed(ctx, scn.Type())
		return
	}

	log.InfoWithValues("[Revert]: Chaos experiment reverted", logrus.Fields{
		"ExperimentID": h.experiment.ID,
		"Name":         h.experiment.Name,
		"ChaosType":    scn.Type().String(),
		"Target":       scn.TargetService(),
		"Elapsed":      elapsed.Round(time.Millisecond).String(),
	})
	h.registry.RecordReverted(h.experiment.ID)
	h.metrics.ExperimentReverted(ctx, scn.Type(), elapsed)
}
