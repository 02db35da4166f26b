package demo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrProbeInFlight is returned by RunProbe when another probe has not finished yet.
var ErrProbeInFlight = errors.New("probe already in flight")

// NetworkError is returned when no response was obtained from the demo endpoint.
type NetworkError struct {
	Err error
}

func (e NetworkError) Error() string {
	return e.Err.Error()
}

func (e NetworkError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the demo endpoint answered outside the 2xx range.
type StatusError struct {
	StatusCode int
	StatusText string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
}

// ParseError is returned when the response body is not a demo result.
type ParseError struct {
	Err error
}

func (e ParseError) Error() string {
	return "invalid demo result: " + e.Err.Error()
}

func (e ParseError) Unwrap() error {
	return e.Err
}

// Kind names the class of a probe error for logs and metrics labels.
func Kind(err error) string {
	var (
		statusErr  StatusError
		parseErr   ParseError
		networkErr NetworkError
	)

	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrProbeInFlight):
		return "in_flight"

	case errors.As(err, &statusErr):
		return "status"

	case errors.As(err, &parseErr):
		return "parse"

	case IsTimeout(err):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	case errors.As(err, &networkErr):
		return "network"

	default:
		return "internal"
	}
}

// HTTPStatus maps a probe error to the status a proxying handler should answer with.
// Upstream status errors are passed through unchanged.
func HTTPStatus(err error) int {
	var statusErr StatusError

	switch {
	case err == nil:
		return http.StatusOK

	case errors.As(err, &statusErr):
		return statusErr.StatusCode

	case errors.Is(err, ErrProbeInFlight):
		return http.StatusConflict

	case IsTimeout(err):
		return http.StatusGatewayTimeout

	case errors.As(err, new(NetworkError)):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// IsTimeout reports whether err comes from an expired deadline or a network timeout.
// The whole chain is searched since wrappers such as *url.Error only report the
// timeout of the error directly beneath them.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	for ; err != nil; err = errors.Unwrap(err) {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return true
		}
	}
	return false
}
