// Package apierror defines the error taxonomy of the HTTP API and the single
// JSON shape every error response uses.
package apierror

import (
	"encoding/json"
	"net/http"

	"emperror.dev/errors"
)

// Kind classifies an error by how it is surfaced to the client
type Kind int

const (
	Internal Kind = iota
	Auth
	RateLimit
	Validation
	Upstream
	Store
	NotFound
)

// Status returns the HTTP status code for the kind
func (k Kind) Status() int {
	switch k {
	case Auth:
		return http.StatusForbidden
	case RateLimit:
		return http.StatusTooManyRequests
	case Validation:
		return http.StatusBadRequest
	case Upstream:
		return http.StatusBadGateway
	case NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case Auth:
		return "auth"
	case RateLimit:
		return "rate_limit"
	case Validation:
		return "validation"
	case Upstream:
		return "upstream"
	case Store:
		return "store"
	case NotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is an API error. Message is what the client sees; the wrapped cause is not exposed.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an API error without an underlying cause
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a client-facing message and kind to err
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Common client-facing messages
const (
	MsgForbidden       = "Forbidden"
	MsgTooManyRequests = "Too Many Requests"
	MsgNotFound        = "Not Found"
	MsgInternal        = "Internal Server Error"
)

// Forbidden is returned by the access gate
func Forbidden() *Error { return New(Auth, MsgForbidden) }

// TooManyRequests is returned by the throttle
func TooManyRequests() *Error { return New(RateLimit, MsgTooManyRequests) }

// RouteNotFound is returned for unmatched API routes
func RouteNotFound() *Error { return New(NotFound, MsgNotFound) }

// StoreFailure hides a record store failure behind the generic 500 message
func StoreFailure(err error) *Error { return Wrap(Store, MsgInternal, err) }

// KindOf classifies any error. Errors that are not API errors are Internal.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return Internal
}

// Body is the JSON error envelope
type Body struct {
	Error string `json:"error"`
}

// Write renders err as a JSON error response. Non-API errors become a generic 500.
func Write(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = New(Internal, MsgInternal)
	}

	message := apiErr.Message
	if message == "" {
		message = http.StatusText(apiErr.Kind.Status())
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Kind.Status())
	_ = json.NewEncoder(w).Encode(Body{Error: message})
}
