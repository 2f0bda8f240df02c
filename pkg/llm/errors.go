package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

var (
	ErrUpstreamUnavailable = errors.New("text generation backend unavailable")
	ErrUpstreamRejected    = errors.New("text generation request rejected")
	ErrUpstreamTimeout     = errors.New("text generation timed out")
)

// Classify maps a transport error or a non-2xx status onto the upstream
// error taxonomy. status is ignored when err is non-nil.
func Classify(err error, status int, body string) error {
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrUpstreamRejected) || errors.Is(err, ErrUpstreamTimeout) {
			return err
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d, body: %s", ErrUpstreamTimeout, status, body)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: status %d, body: %s", ErrUpstreamUnavailable, status, body)
	default:
		return fmt.Errorf("%w: status %d, body: %s", ErrUpstreamRejected, status, body)
	}
}

// IsUpstream reports whether err belongs to the upstream taxonomy.
func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrUpstreamRejected) || errors.Is(err, ErrUpstreamTimeout)
}
