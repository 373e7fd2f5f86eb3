package domain

import (
	"errors"
	"net/http"
)

// Transport and auth failures, classified by the provider's HTTP status
// so each maps to a distinct user-facing message.
var (
	ErrSessionExpired = errors.New("provider_session_expired")
	ErrForbidden      = errors.New("provider_forbidden")
	ErrNotFound       = errors.New("provider_resource_missing")
	ErrInvalidPayload = errors.New("provider_invalid_payload")
	ErrProvider       = errors.New("provider_error")
	ErrConnectivity   = errors.New("provider_unreachable")
)

// ClassifyStatus maps a provider HTTP status to a sentinel error, or
// nil for success statuses.
func ClassifyStatus(status int) error {
	switch {
	case status < http.StatusBadRequest:
		return nil
	case status == http.StatusUnauthorized:
		return ErrSessionExpired
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusUnprocessableEntity:
		return ErrInvalidPayload
	case status >= http.StatusInternalServerError:
		return ErrProvider
	default:
		return ErrInvalidPayload
	}
}
