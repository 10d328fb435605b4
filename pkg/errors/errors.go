package errors

import "fmt"

// ErrNotFound indicates a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized indicates missing or invalid credentials
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	return e.Message
}

// ErrBackend carries an error message returned by the upstream POS backend.
// The message is surfaced to the user verbatim.
type ErrBackend struct {
	StatusCode int
	Message    string
}

func (e *ErrBackend) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// ErrMalformedResponse indicates the upstream backend returned a body that
// does not parse into the expected shape
type ErrMalformedResponse struct {
	Endpoint string
	Reason   string
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

// ErrUnavailable indicates the upstream backend could not be reached
// (network failure or open circuit breaker)
type ErrUnavailable struct {
	Cause error
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("backend unavailable: %v", e.Cause)
}

func (e *ErrUnavailable) Unwrap() error {
	return e.Cause
}

// ErrInvalidStateTransition indicates an invalid checkout state change
type ErrInvalidStateTransition struct {
	From interface{}
	To   interface{}
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %v to %v", e.From, e.To)
}
