package store

import "fmt"

// TransportError describes a failed remote-store interaction: a network
// failure, a non-success HTTP status, or a success=false payload. Callers
// surface the message to the user and roll the operation back to its
// pre-attempt state.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("store: %s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("store: %s: unexpected status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("store: %s failed", e.Op)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

func transportErr(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

func statusErr(op string, status int, message string) *TransportError {
	return &TransportError{Op: op, Status: status, Message: message}
}
