package hive

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from TheHive API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hive API error %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the failure is worth retrying on a later
// heartbeat for reasons other than a broken request: rate limits and
// server-side errors. Auth rejections and malformed requests are not.
func (e *APIError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsTransient classifies any client error. Network-level failures
// (no *APIError in the chain) are always transient.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return true
}
