package cerrors

import "fmt"

// Validation reports a malformed scenario, raised before any network interaction.
type Validation struct {
	Field  string
	Target string
	Reason string
}

func (e Validation) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("scenario validation failed, %s", e.Reason)
	}
	return fmt.Sprintf("scenario validation failed for '%s', %s", e.Target, e.Reason)
}

func (e Validation) UserFriendly() bool {
	return true
}

func (e Validation) ErrorType() ErrorType {
	return ErrorTypeScenarioValidation
}

// Config reports a broken transport configuration, raised at client construction.
type Config struct {
	Field  string
	Reason string
}

func (e Config) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("chaos transport configuration invalid, %s", e.Reason)
	}
	return fmt.Sprintf("chaos transport configuration invalid: '%s', %s", e.Field, e.Reason)
}

func (e Config) UserFriendly() bool {
	return true
}

func (e Config) ErrorType() ErrorType {
	return ErrorTypeConfig
}

// SafetyViolation is raised when the production gate rejects a chaos request,
// strictly before any network call is made.
type SafetyViolation struct {
	Environment string
	Reason      string
}

func (e SafetyViolation) Error() string {
	return fmt.Sprintf("chaos injection blocked in '%s' environment, %s", e.Environment, e.Reason)
}

func (e SafetyViolation) UserFriendly() bool {
	return true
}

func (e SafetyViolation) ErrorType() ErrorType {
	return ErrorTypeSafetyViolation
}

// Transport reports a failed start/stop exchange with the chaos control plane.
// StatusCode is 0 when the request never produced a response.
type Transport struct {
	Phase      string
	Target     string
	StatusCode int
	Reason     string
}

func (e Transport) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("failed to %s experiment '%s', %s", e.Phase, e.Target, e.Reason)
	}
	if e.Reason == "" {
		return fmt.Sprintf("failed to %s experiment '%s' (status: %d)", e.Phase, e.Target, e.StatusCode)
	}
	return fmt.Sprintf("failed to %s experiment '%s' (status: %d), %s", e.Phase, e.Target, e.StatusCode, e.Reason)
}

func (e Transport) UserFriendly() bool {
	return true
}

func (e Transport) ErrorType() ErrorType {
	return ErrorTypeTransport
}

// Timeout reports an action that exhausted its allotted time.
type Timeout struct {
	Reason string
}

func (e Timeout) Error() string {
	return e.Reason
}

func (e Timeout) UserFriendly() bool {
	return true
}

func (e Timeout) ErrorType() ErrorType {
	return ErrorTypeTimeout
}

// Generic carries a phase-tagged error that fits no dedicated class.
type Generic struct {
	Phase  string
	Reason string
}

func (e Generic) Error() string {
	if e.Phase == "" {
		return e.Reason
	}
	return fmt.Sprintf("[%s]: %s", e.Phase, e.Reason)
}

func (e Generic) UserFriendly() bool {
	return true
}

func (e Generic) ErrorType() ErrorType {
	return ErrorTypeGeneric
}
