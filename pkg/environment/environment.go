package environment

import (
	"os"
	"strconv"
)

// ENV names consumed by the orchestrator
const (
	// ChaosEndpointEnv points at the chaos control plane, e.g. http://chaos.qa.internal:8080
	ChaosEndpointEnv = "CHAOS_ENDPOINT"
	// TargetEnvironmentEnv names the environment the suite currently runs against
	TargetEnvironmentEnv = "TARGET_ENVIRONMENT"
	// ProdOverrideEnv unlocks chaos injection in the production environment
	ProdOverrideEnv = "CHAOS_PROD_OVERRIDE"
)

// Reader exposes the live configuration consulted on every chaos operation.
// Implementations must not cache: the gate decision has to reflect the
// environment at the moment of each startChaos invocation.
type Reader interface {
	ChaosEndpoint() string
	EnvironmentName() string
	ProdOverrideAllowed() bool
}

// OSReader resolves every read straight from the process environment
type OSReader struct{}

func (OSReader) ChaosEndpoint() string {
	return Getenv(ChaosEndpointEnv, "")
}

func (OSReader) EnvironmentName() string {
	return Getenv(TargetEnvironmentEnv, "")
}

func (OSReader) ProdOverrideAllowed() bool {
	allowed, _ := strconv.ParseBool(Getenv(ProdOverrideEnv, "false"))
	return allowed
}

// Getenv fetch the env and set the default value, if any
func Getenv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return value
}
