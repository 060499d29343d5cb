package brightdata

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned before any network call when no API key is configured.
	ErrMissingAPIKey = errors.New("brightdata: api key is required")
	// ErrMissingProxyCredential is returned when the proxy customer id, zone or password is empty.
	ErrMissingProxyCredential = errors.New("brightdata: proxy credentials are incomplete")
	// ErrInvalidRequest marks input rejected before a request is sent.
	ErrInvalidRequest = errors.New("brightdata: invalid request")
	// ErrMalformedResponse marks a success status whose body could not be decoded.
	ErrMalformedResponse = errors.New("brightdata: malformed response")
)

// APIError is a non-success HTTP status returned by the vendor.
type APIError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: API error: %d %s", e.Operation, e.StatusCode, e.Body)
}

// TransportError wraps network level failures (DNS, TLS, timeouts).
type TransportError struct {
	Operation string
	URL       string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AsAPIError extracts an *APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
