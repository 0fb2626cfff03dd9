package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/palantir/stacktrace"
	"github.com/sirupsen/logrus"

	"github.com/faultlinechaos/faultline-go/pkg/cerrors"
	"github.com/faultlinechaos/faultline-go/pkg/environment"
	"github.com/faultlinechaos/faultline-go/pkg/log"
	"github.com/faultlinechaos/faultline-go/pkg/result"
	"github.com/faultlinechaos/faultline-go/pkg/safety"
	"github.com/faultlinechaos/faultline-go/pkg/scenario"
	"github.com/faultlinechaos/faultline-go/pkg/telemetry"
	"github.com/faultlinechaos/faultline-go/pkg/transport"
	"github.com/faultlinechaos/faultline-go/pkg/utils/stringutils"
)

// Transport is the slice of the control plane client the orchestrator needs.
// *transport.Client satisfies it; tests substitute fakes.
type Transport interface {
	Start(ctx context.Context, experimentID string, scn scenario.Scenario) error
	Stop(ctx context.Context, experimentID string) error
}

// Orchestrator composes the safety gate, scenario validation and the transport
// into the chaos operations a test suite calls. All collaborators are injected;
// it holds no process-global state.
type Orchestrator struct {
	cfg       environment.Reader
	transport Transport
	gate      *safety.Gate
	registry  *result.Registry
	metrics   *telemetry.Metrics
}

// Option adjusts an Orchestrator under construction
type Option func(*Orchestrator)

// WithGate substitutes the safety gate
func WithGate(gate *safety.Gate) Option {
	return func(o *Orchestrator) {
		o.gate = gate
	}
}

// WithRegistry substitutes the verdict registry shared across orchestrators
func WithRegistry(registry *result.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithMetrics enables instrument recording for every experiment
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = metrics
	}
}

// NewFromEnvironment wires an orchestrator from the process environment: the
// transport points at the CHAOS_ENDPOINT env and the safety gate reads
// TARGET_ENVIRONMENT and CHAOS_PROD_OVERRIDE live on every call
func NewFromEnvironment(opts ...Option) (*Orchestrator, error) {
	cfg := environment.OSReader{}
	client, err := transport.New(cfg.ChaosEndpoint())
	if err != nil {
		return nil, err
	}
	return New(cfg, client, opts...)
}

// New builds an orchestrator around the given environment reader and transport
func New(cfg environment.Reader, client Transport, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, cerrors.Config{Field: "reader", Reason: "an environment reader is required"}
	}
	if client == nil {
		return nil, cerrors.Config{Field: "transport", Reason: "a chaos transport is required"}
	}
	o := &Orchestrator{
		cfg:       cfg,
		transport: client,
		gate:      safety.New(),
		registry:  result.NewRegistry(),
	}
	for _, opt := range opts {
		opt(o)
	}
	// a nil gate or registry would panic at first use, only metrics is nil-tolerant
	if o.gate == nil {
		o.gate = safety.New()
	}
	if o.registry == nil {
		o.registry = result.NewRegistry()
	}
	return o, nil
}

// Results returns the verdict registry, for suite teardown health checks
func (o *Orchestrator) Results() *result.Registry {
	return o.registry
}

// StartChaos checks the safety gate, then asks the control plane to begin
// injecting the scenario's fault. The returned handle owns the rollback.
// The environment is read live on every call.
func (o *Orchestrator) StartChaos(ctx context.Context, scn scenario.Scenario) (*Handle, error) {
	envName := o.cfg.EnvironmentName()
	if err := o.gate.Check(envName, o.cfg.ProdOverrideAllowed()); err != nil {
		return nil, err
	}
	if !scn.Type().Valid() {
		return nil, cerrors.Validation{
			Field:  "type",
			Target: scn.TargetService(),
			Reason: "scenario must be built through one of the scenario constructors",
		}
	}

	experiment := Experiment{
		ID:        uuid.New().String(),
		Name:      scn.Type().String() + "-" + stringutils.GetRunID(),
		Scenario:  scn,
		StartedAt: time.Now(),
	}

	ctx, span := telemetry.StartExperimentSpan(ctx, "chaos.start")
	defer span.End()

	log.InfoWithValues("[Chaos]: Starting the chaos experiment", logrus.Fields{
		"ExperimentID": experiment.ID,
		"Name":         experiment.Name,
		"ChaosType":    scn.Type().String(),
		"Target":       scn.TargetService(),
		"Environment":  envName,
		"Duration":     scn.Duration().String(),
	})

	if err := o.transport.Start(ctx, experiment.ID, scn); err != nil {
		return nil, stacktrace.Propagate(err, "could not start chaos on the control plane")
	}

	o.registry.RecordStarted(experiment.ID, experiment.Name, scn)
	o.metrics.ExperimentStarted(ctx, scn.Type(), scn.TargetService())

	return &Handle{
		experiment: experiment,
		transport:  o.transport,
		registry:   o.registry,
		metrics:    o.metrics,
	}, nil
}

// InjectLatency delays every response of the target service by the given amount
func (o *Orchestrator) InjectLatency(ctx context.Context, service string, latency, duration time.Duration) (*Handle, error) {
	scn, err := scenario.Latency(service, latency, duration)
	if err != nil {
		return nil, err
	}
	return o.StartChaos(ctx, scn)
}

// InjectErrorRate makes the given percentage of the target service's responses
// fail with the given status code
func (o *Orchestrator) InjectErrorRate(ctx context.Context, service string, statusCode, percentage int, duration time.Duration) (*Handle, error) {
	scn, err := scenario.HTTPError(service, statusCode, percentage, duration)
	if err != nil {
		return nil, err
	}
	return o.StartChaos(ctx, scn)
}

// KillService terminates the target service process
func (o *Orchestrator) KillService(ctx context.Context, service string, duration time.Duration) (*Handle, error) {
	scn, err := scenario.Kill(service, duration)
	if err != nil {
		return nil, err
	}
	return o.StartChaos(ctx, scn)
}

// IsolateNetwork cuts the target service off from its network peers
func (o *Orchestrator) IsolateNetwork(ctx context.Context, service string, duration time.Duration) (*Handle, error) {
	scn, err := scenario.NetworkIsolation(service, duration)
	if err != nil {
		return nil, err
	}
	return o.StartChaos(ctx, scn)
}

// WithExperiment runs fn while the scenario's fault is active and releases the
// experiment on every exit path, including panics, which are re-raised after
// the rollback
func (o *Orchestrator) WithExperiment(ctx context.Context, scn scenario.Scenario, fn func(context.Context) error) error {
	handle, err := o.StartChaos(ctx, scn)
	if err != nil {
		return err
	}
	defer handle.Close()
	return fn(ctx)
}
