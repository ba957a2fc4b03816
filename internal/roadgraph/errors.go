package roadgraph

import (
	"errors"
	"fmt"
	"net"
)

// RequestError is a failed call to an external road-graph service,
// classified for retry decisions.
type RequestError struct {
	Endpoint   string
	StatusCode int // 0 for transport-level failures
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("request to %s failed with status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying. Timeouts,
// gateway errors and generic network failures are; a 400 means the request
// itself is wrong, and retrying a 429 would only worsen the rate limiting.
func (e *RequestError) Retryable() bool {
	switch e.StatusCode {
	case 0:
		return true // timeout or network-level failure
	case 502, 503, 504:
		return true
	default:
		return false
	}
}

// IsRetryable classifies any error for the retry loop.
func IsRetryable(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Retryable()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
