package types

// ChaosType identifies one of the fault classes supported by the chaos control plane
type ChaosType string

const (
	// ChaosTypeLatency injects a fixed response delay into the target service
	ChaosTypeLatency ChaosType = "latency"
	// ChaosTypeHTTPError makes a percentage of responses return a chosen status code
	ChaosTypeHTTPError ChaosType = "http-error"
	// ChaosTypeKill terminates the target service process
	ChaosTypeKill ChaosType = "kill"
	// ChaosTypeNetworkIsolation cuts the target service off from its network peers
	ChaosTypeNetworkIsolation ChaosType = "network-isolation"
)

func (c ChaosType) String() string {
	return string(c)
}

// Valid reports whether c belongs to the closed set of supported fault classes
func (c ChaosType) Valid() bool {
	switch c {
	case ChaosTypeLatency, ChaosTypeHTTPError, ChaosTypeKill, ChaosTypeNetworkIsolation:
		return true
	}
	return false
}

// Parameter keys used inside the scenario parameters mapping on the wire
const (
	ParamLatencyMs  = "latencyMs"
	ParamStatusCode = "statusCode"
	ParamPercentage = "percentage"
)

const (
	// PhaseStart marks the exchange that creates an experiment on the control plane
	PhaseStart string = "start"
	// PhaseStop marks the exchange that reverts an experiment
	PhaseStop string = "stop"
)

const (
	// AwaitedVerdict marked while the experiment is still running
	AwaitedVerdict string = "Awaited"
	// RevertedVerdict marked once the stop call has been acknowledged
	RevertedVerdict string = "Reverted"
	// RevertFailedVerdict marked when the stop call failed and manual remediation may be needed
	RevertFailedVerdict string = "RevertFailed"
)

// WireScenario is the JSON shape of a scenario inside a start request
type WireScenario struct {
	Type          ChaosType              `json:"type"`
	TargetService string                 `json:"targetService"`
	DurationMs    int64                  `json:"durationMs"`
	Parameters    map[string]interface{} `json:"parameters"`
}

// StartRequest is the body of POST {endpoint}/experiments/start
type StartRequest struct {
	ExperimentID string       `json:"experimentId"`
	Scenario     WireScenario `json:"scenario"`
}

// StopRequest is the body of POST {endpoint}/experiments/stop
type StopRequest struct {
	ExperimentID string `json:"experimentId"`
}
