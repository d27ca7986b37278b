package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind classifies an application error.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidIdentifier
	KindBadRequest
	KindStoreUnavailable
	KindPaymentProvider
	KindCanceled
)

// StatusClientClosedRequest is the non-standard status for a request the caller abandoned.
const StatusClientClosedRequest = 499

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidIdentifier:
		return "invalid_identifier"
	case KindBadRequest:
		return "bad_request"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindPaymentProvider:
		return "payment_provider"
	case KindCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// Status maps the kind onto an HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalidIdentifier, KindBadRequest:
		return http.StatusBadRequest
	case KindStoreUnavailable:
		return http.StatusServiceUnavailable
	case KindPaymentProvider:
		return http.StatusBadGateway
	case KindCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// AppError represents an application error
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func Conflict(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func InvalidIdentifier(id string, err error) *AppError {
	return &AppError{Kind: KindInvalidIdentifier, Message: fmt.Sprintf("invalid identifier %q", id), Err: err}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{Kind: KindBadRequest, Message: message, Err: err}
}

func StoreUnavailable(err error) *AppError {
	return &AppError{Kind: KindStoreUnavailable, Message: "store unavailable", Err: err}
}

func PaymentProvider(err error) *AppError {
	return &AppError{Kind: KindPaymentProvider, Message: "payment provider error", Err: err}
}

func Canceled(err error) *AppError {
	return &AppError{Kind: KindCanceled, Message: "request canceled", Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf reports the kind of the first AppError in err's chain, KindInternal otherwise.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries an AppError of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// FromStore wraps a driver error. Connectivity failures become StoreUnavailable
// and a caller that went away becomes Canceled.
func FromStore(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return err
	}
	if stderrors.Is(err, context.Canceled) {
		return Canceled(err)
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) ||
		stderrors.Is(err, mongo.ErrClientDisconnected) ||
		stderrors.Is(err, context.DeadlineExceeded) {
		return StoreUnavailable(err)
	}
	return Internal(err)
}
