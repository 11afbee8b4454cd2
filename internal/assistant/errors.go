package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned by Session.Send while another inquiry is in flight.
	ErrBusy = errors.New("an inquiry is already in flight")

	// ErrNotConfigured is returned by DisabledGateway.
	ErrNotConfigured = errors.New("assistant gateway is not configured")

	// ErrEmptyInquiry is returned for blank inquiry text.
	ErrEmptyInquiry = errors.New("inquiry text is empty")

	// ErrInquiryTooLong is returned for inquiries above the length limit.
	ErrInquiryTooLong = errors.New("inquiry text is too long")

	// ErrStoreFull is returned by Store when every stored session is busy.
	ErrStoreFull = errors.New("too many active assistant sessions")
)

// GatewayError describes a failed gateway call. Code is an abstract bucket
// such as "timeout", "network_error", "http_unauthorized" or "empty_response";
// Status is the HTTP status when one was received.
type GatewayError struct {
	Code    string
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("assistant gateway %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("assistant gateway %s: %s", e.Code, e.Message)
}

// ErrorCode extracts the bucket of a gateway failure for logs and metrics.
func ErrorCode(err error) string {
	var gwErr *GatewayError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &gwErr):
		return gwErr.Code
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	default:
		return "unknown_error"
	}
}

// statusBucket converts an HTTP status code to an abstract bucket.
func statusBucket(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "success"
	case code == 400:
		return "bad_request"
	case code == 401:
		return "unauthorized"
	case code == 403:
		return "forbidden"
	case code == 404:
		return "not_found"
	case code == 429:
		return "rate_limited"
	case code >= 500:
		return "server_error"
	default:
		return "unknown_error"
	}
}
