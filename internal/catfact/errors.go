package catfact

import (
	"errors"
	"fmt"
)

// ErrExternalService matches every failure of the fact API via errors.Is.
var ErrExternalService = errors.New("external service error")

var errMissingFact = errors.New(`response body has no "fact" field`)

// ExternalServiceError describes a failed call to the fact API.
type ExternalServiceError struct {
	Op         string // "throttle", "request", "status" or "decode"
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *ExternalServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fact api %s %s (status %d): %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fact api %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// Is reports ErrExternalService as a match so callers need not type-assert.
func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}
