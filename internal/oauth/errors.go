package oauth

import (
	"errors"
	"fmt"

	"github.com/garrettladley/ebaynotify/internal/env"
)

var (
	ErrInvalidCredentials = errors.New("client id, client secret and environment are required")
	ErrUpstreamAuth       = errors.New("application token request failed")
)

// UpstreamAuthError is returned when the client-credentials exchange fails,
// either on transport or with a non-success status.
type UpstreamAuthError struct {
	Environment env.Environment
	StatusCode  int
	Cause       error
}

func (e *UpstreamAuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s returned %d: %v", ErrUpstreamAuth, e.Environment, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", ErrUpstreamAuth, e.Environment, e.Cause)
}

func (e *UpstreamAuthError) Unwrap() error { return e.Cause }

func (e *UpstreamAuthError) Is(target error) bool { return target == ErrUpstreamAuth }
