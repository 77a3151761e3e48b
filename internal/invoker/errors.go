package invoker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Kind classifies the outcome of a failed backend call.
type Kind string

const (
	KindThrottled          Kind = "throttled"
	KindBackendUnavailable Kind = "backend_unavailable"
	KindBackendRejected    Kind = "backend_rejected"
	KindTimeout            Kind = "timeout"
	KindUnknown            Kind = "unknown"
)

// InvocationError is the single error type crossing the invoker boundary.
// Raw SDK faults never reach the response-formatting layer.
type InvocationError struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("backend invocation failed (%s): %s", e.Kind, e.Message)
}

func (e *InvocationError) Unwrap() error { return e.cause }

// classify converts a backend-thrown fault into an InvocationError.
func classify(err error) *InvocationError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &InvocationError{
			Kind:    KindTimeout,
			Message: "backend call exceeded deadline",
			cause:   err,
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &InvocationError{
				Kind:    KindTimeout,
				Message: "backend call timed out",
				cause:   err,
			}
		}
		return &InvocationError{
			Kind:    KindBackendUnavailable,
			Message: "backend unreachable",
			cause:   err,
		}
	}

	return &InvocationError{
		Kind:    KindUnknown,
		Message: "backend call failed",
		cause:   err,
	}
}

func classifyStatus(status int, err error) *InvocationError {
	switch {
	case status == http.StatusTooManyRequests:
		return &InvocationError{
			Kind:    KindThrottled,
			Message: "backend rate limit exceeded",
			cause:   err,
		}
	case status == http.StatusBadRequest ||
		status == http.StatusRequestEntityTooLarge ||
		status == http.StatusUnprocessableEntity:
		return &InvocationError{
			Kind:    KindBackendRejected,
			Message: "backend rejected the request",
			cause:   err,
		}
	case status == http.StatusGatewayTimeout:
		return &InvocationError{
			Kind:    KindTimeout,
			Message: "backend call timed out",
			cause:   err,
		}
	case status >= http.StatusInternalServerError:
		return &InvocationError{
			Kind:    KindBackendUnavailable,
			Message: "backend temporarily unavailable",
			cause:   err,
		}
	default:
		return &InvocationError{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("unexpected backend status %d", status),
			cause:   err,
		}
	}
}
