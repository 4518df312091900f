package shopify

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies Admin API failures so handlers can surface the right
// status indicator to the operator. No kind triggers an automatic retry.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindAuth
	KindRateLimit
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "network"
	}
}

// Hint returns an operator-readable troubleshooting hint for the error kind.
func (k Kind) Hint() string {
	switch k {
	case KindAuth:
		return "Your access token is invalid, expired, or missing the read_products/write_products scopes. Generate a new token in your Shopify admin."
	case KindRateLimit:
		return "Too many requests in a short time. Wait a few minutes before trying again."
	case KindNotFound:
		return "The resource was not found. The shop URL may be incorrect or the image may have been deleted."
	case KindValidation:
		return "Shopify rejected the value. Alt text is limited to 512 characters."
	default:
		return "Could not reach Shopify. Check your network connection and shop URL."
	}
}

// APIError is the error type returned by every Admin API call.
type APIError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("shopify: %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("shopify: %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func newStatusError(statusCode int, body string) *APIError {
	kind := KindNetwork
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindAuth
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusTooManyRequests:
		kind = KindRateLimit
	case http.StatusUnprocessableEntity:
		kind = KindValidation
	}
	return &APIError{
		Kind:       kind,
		StatusCode: statusCode,
		Message:    body,
	}
}

// ErrKind extracts the error kind, defaulting to KindNetwork for errors that
// did not come out of this package.
func ErrKind(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

func IsAuth(err error) bool       { return ErrKind(err) == KindAuth }
func IsRateLimit(err error) bool  { return ErrKind(err) == KindRateLimit }
func IsNotFound(err error) bool   { return ErrKind(err) == KindNotFound }
func IsValidation(err error) bool { return ErrKind(err) == KindValidation }
