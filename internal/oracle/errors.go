// Package oracle provides typed clients for the external analysis, scoring,
// and suggestion service.
package oracle

import "fmt"

// genericOracleMessage is used when the oracle returns a failure without a
// usable message of its own.
const genericOracleMessage = "the optimization service could not complete the request; please try again"

// ValidationError indicates a caller-side precondition was violated before
// any network call was attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// PreconditionError indicates an oracle call requiring an active analysis
// session was invoked with none. It is user-actionable, not a crash.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	if e.Message == "" {
		return "run an analysis first"
	}
	return e.Message
}

// OracleError represents any failure returned by or in transit to the
// oracle: timeouts, non-success statuses, malformed responses.
type OracleError struct {
	Op         string
	StatusCode int
	Message    string
	Cause      error
}

func (e *OracleError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = genericOracleMessage
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

func (e *OracleError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message suitable for the error-reporting surface:
// the oracle's own message when it provided one, a generic fallback otherwise.
func (e *OracleError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return genericOracleMessage
}
