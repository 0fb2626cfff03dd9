package cerrors

import "github.com/palantir/stacktrace"

type ErrorType string

const (
	ErrorTypeNonUserFriendly    ErrorType = "NON_USER_FRIENDLY_ERROR"
	ErrorTypeGeneric            ErrorType = "GENERIC_ERROR"
	ErrorTypeScenarioValidation ErrorType = "SCENARIO_VALIDATION_ERROR"
	ErrorTypeConfig             ErrorType = "CONFIG_ERROR"
	ErrorTypeSafetyViolation    ErrorType = "SAFETY_VIOLATION_ERROR"
	ErrorTypeTransport          ErrorType = "TRANSPORT_ERROR"
	ErrorTypeTimeout            ErrorType = "TIMEOUT_ERROR"
)

type userFriendly interface {
	UserFriendly() bool
	ErrorType() ErrorType
}

// IsUserFriendly returns true if err is marked as safe to present to the caller
func IsUserFriendly(err error) bool {
	ufe, ok := err.(userFriendly)
	return ok && ufe.UserFriendly()
}

// GetErrorType returns the type of error if the error is user-friendly
func GetErrorType(err error) ErrorType {
	if ufe, ok := err.(userFriendly); ok {
		return ufe.ErrorType()
	}
	return ErrorTypeNonUserFriendly
}

func GetRootCauseAndErrorCode(err error) (string, ErrorType) {
	rootCause := stacktrace.RootCause(err)
	errorType := GetErrorType(rootCause)
	if !IsUserFriendly(rootCause) {
		return err.Error(), errorType
	}
	return rootCause.Error(), errorType
}
