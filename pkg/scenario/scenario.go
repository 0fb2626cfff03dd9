package scenario

import (
	"strings"
	"time"

	"github.com/faultlinechaos/faultline-go/pkg/cerrors"
	"github.com/faultlinechaos/faultline-go/pkg/types"
)

// Scenario is the immutable, validated description of a single fault to inject:
// what fault, against which service, for how long. Values are only obtainable
// through the validated constructors, so a Scenario in hand never fails
// validation further down the pipeline.
type Scenario struct {
	chaosType     types.ChaosType
	targetService string
	duration      time.Duration
	parameters    map[string]interface{}
}

// Latency describes a fixed response delay injected into the target service
func Latency(service string, latency, duration time.Duration) (Scenario, error) {
	if err := validateCommon(service, duration); err != nil {
		return Scenario{}, err
	}
	if latency < time.Millisecond {
		return Scenario{}, cerrors.Validation{
			Field:  types.ParamLatencyMs,
			Target: service,
			Reason: "latency must be a positive number of milliseconds",
		}
	}
	return Scenario{
		chaosType:     types.ChaosTypeLatency,
		targetService: service,
		duration:      duration,
		parameters: map[string]interface{}{
			types.ParamLatencyMs: latency.Milliseconds(),
		},
	}, nil
}

// HTTPError describes a chosen percentage of responses failing with the given status code
func HTTPError(service string, statusCode, percentage int, duration time.Duration) (Scenario, error) {
	if err := validateCommon(service, duration); err != nil {
		return Scenario{}, err
	}
	if statusCode < 400 || statusCode > 599 {
		return Scenario{}, cerrors.Validation{
			Field:  types.ParamStatusCode,
			Target: service,
			Reason: "status code must be within [400,599]",
		}
	}
	if percentage < 1 || percentage > 100 {
		return Scenario{}, cerrors.Validation{
			Field:  types.ParamPercentage,
			Target: service,
			Reason: "percentage must be within [1,100]",
		}
	}
	return Scenario{
		chaosType:     types.ChaosTypeHTTPError,
		targetService: service,
		duration:      duration,
		parameters: map[string]interface{}{
			types.ParamStatusCode: statusCode,
			types.ParamPercentage: percentage,
		},
	}, nil
}

// Kill describes terminating the target service process
func Kill(service string, duration time.Duration) (Scenario, error) {
	if err := validateCommon(service, duration); err != nil {
		return Scenario{}, err
	}
	return Scenario{
		chaosType:     types.ChaosTypeKill,
		targetService: service,
		duration:      duration,
		parameters:    map[string]interface{}{},
	}, nil
}

// NetworkIsolation describes cutting the target service off from its network peers
func NetworkIsolation(service string, duration time.Duration) (Scenario, error) {
	if err := validateCommon(service, duration); err != nil {
		return Scenario{}, err
	}
	return Scenario{
		chaosType:     types.ChaosTypeNetworkIsolation,
		targetService: service,
		duration:      duration,
		parameters:    map[string]interface{}{},
	}, nil
}

// validateCommon holds the checks shared by every fault class.
// Durations below 1ms are rejected rather than rounded: the wire carries whole
// milliseconds and a 0ms experiment would never auto-expire remotely.
func validateCommon(service string, duration time.Duration) error {
	if strings.TrimSpace(service) == "" {
		return cerrors.Validation{
			Field:  "targetService",
			Reason: "target service must not be blank",
		}
	}
	if duration < time.Millisecond {
		return cerrors.Validation{
			Field:  "duration",
			Target: service,
			Reason: "chaos duration must be a positive number of milliseconds",
		}
	}
	return nil
}

// Type returns the fault class of the scenario
func (s Scenario) Type() types.ChaosType {
	return s.chaosType
}

// TargetService returns the service the fault is aimed at
func (s Scenario) TargetService() string {
	return s.targetService
}

// Duration returns the requested fault lifetime; the control plane auto-expires
// the experiment once it elapses
func (s Scenario) Duration() time.Duration {
	return s.duration
}

// Parameters returns a copy of the type-specific parameters
func (s Scenario) Parameters() map[string]interface{} {
	params := make(map[string]interface{}, len(s.parameters))
	for k, v := range s.parameters {
		params[k] = v
	}
	return params
}

// ToWire serializes the scenario into its start-request shape. It is total:
// any constructed Scenario serializes without a failure mode.
func (s Scenario) ToWire() types.WireScenario {
	return types.WireScenario{
		Type:          s.chaosType,
		TargetService: s.targetService,
		DurationMs:    s.duration.Milliseconds(),
		Parameters:    s.Parameters(),
	}
}
