package authflow

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Error codes surfaced by the flow.
const (
	CodeValidationError      = "VALIDATION_ERROR"
	CodeInvalidCode          = "INVALID_CODE"
	CodeIdentityNotFound     = "IDENTITY_NOT_FOUND"
	CodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
	CodeDependencyFailure    = "DEPENDENCY_FAILURE"
)
