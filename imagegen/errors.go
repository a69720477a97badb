// Package imagegen orchestrates photorealistic image generation across an
// ordered chain of external providers, with per-provider retry policies,
// error classification, and a content store for results.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorClass classifies a provider failure for retry decisions and
// user-facing messaging.
type ErrorClass int

const (
	// ErrorClassNone means no classification applies.
	ErrorClassNone ErrorClass = iota

	// ErrorClassServer is a 5xx response: the provider is unhealthy but
	// likely to recover, so the attempt is retried on the short schedule.
	ErrorClassServer

	// ErrorClassRateLimited is a 429 response: retried on the longer
	// rate-limit backoff schedule.
	ErrorClassRateLimited

	// ErrorClassNetwork covers transport failures and timeouts; retried on
	// the short schedule.
	ErrorClassNetwork

	// ErrorClassClient is a 4xx response other than 429: the request
	// itself is bad for this provider, so retrying cannot help. The
	// orchestrator moves straight to the next provider.
	ErrorClassClient
)

// String returns the lowercase class name used in logs and status events.
func (c ErrorClass) String() string {
	switch c {
	case ErrorClassServer:
		return "server_error"
	case ErrorClassRateLimited:
		return "rate_limited"
	case ErrorClassNetwork:
		return "network_error"
	case ErrorClassClient:
		return "client_error"
	default:
		return "none"
	}
}

// Retryable reports whether another attempt against the same provider can
// succeed. Client errors are the only terminal class.
func (c ErrorClass) Retryable() bool {
	switch c {
	case ErrorClassServer, ErrorClassRateLimited, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

// ProviderError wraps a failed provider call with its classification.
// The raw provider error is logged but never shown to users.
type ProviderError struct {
	Provider   string
	Class      ErrorClass
	StatusCode int // HTTP status when available, 0 otherwise
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("imagegen: provider %s failed (%s, status %d): %v",
			e.Provider, e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("imagegen: provider %s failed (%s): %v", e.Provider, e.Class, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ClassifyStatus maps an HTTP status code to an error class.
func ClassifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimited
	case status >= 500:
		return ErrorClassServer
	case status >= 400:
		return ErrorClassClient
	default:
		return ErrorClassNone
	}
}

// Classify extracts the error class from any provider error. Timeouts and
// transport failures classify as network errors; an already-classified
// ProviderError keeps its class.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorClassNone
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Class
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassNetwork
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorClassNetwork
	}

	return ErrorClassNetwork
}

// ExhaustedError is returned when every provider in the chain has been
// exhausted. Its message is the user-safe category derived from the LAST
// error encountered; the underlying error stays available via Unwrap for
// logging.
type ExhaustedError struct {
	LastErr error
}

func (e *ExhaustedError) Error() string {
	return UserFacingMessage(e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// UserFacingMessage maps an error to one of a small set of human-readable
// categories. Raw provider exception text never passes through here.
func UserFacingMessage(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch pe.Class {
		case ErrorClassServer:
			return "The image service is experiencing a temporary outage. Please try again in a few minutes."
		case ErrorClassRateLimited:
			return "The image service is handling too many requests right now. Please try again shortly."
		case ErrorClassNetwork:
			return "A network problem interrupted image generation. Check your connection and try again."
		case ErrorClassClient:
			if pe.StatusCode == http.StatusUnauthorized || pe.StatusCode == http.StatusForbidden {
				return "The image service rejected the configured credentials. Check the API key configuration."
			}
			return "The image request was rejected by the service. Adjust the garden description and try again."
		}
	}

	if Classify(err) == ErrorClassNetwork {
		return "A network problem interrupted image generation. Check your connection and try again."
	}
	return "Image generation failed. Please try again."
}
