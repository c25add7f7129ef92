package errorutil

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"

	"github.com/chatventas/commerce-service/internal/delegation"
	"github.com/chatventas/commerce-service/internal/erp"
	"github.com/chatventas/commerce-service/internal/sequence"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Errors from the ERP
// and allocation layers keep their taxonomy so clients can distinguish a slow
// host system from a broken request.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		de, _ := NewNotFound("resource", nil).(*DomainError)
		return de
	case errors.Is(err, erp.ErrEmptySearchTerm), errors.Is(err, erp.ErrUnsafeSearchTerm):
		de, _ := NewValidationError(err.Error(), nil).(*DomainError)
		return de
	case errors.Is(err, erp.ErrTimeout):
		return &DomainError{
			Code:       "ERP_TIMEOUT",
			Message:    "host system did not answer in time",
			HTTPStatus: http.StatusGatewayTimeout,
			Err:        err,
		}
	case errors.Is(err, erp.ErrConnectFailed), errors.Is(err, erp.ErrIO), errors.Is(err, erp.ErrMalformedResponse):
		return &DomainError{
			Code:       "ERP_UNAVAILABLE",
			Message:    "host system unavailable",
			HTTPStatus: http.StatusBadGateway,
			Err:        err,
		}
	case errors.Is(err, sequence.ErrAllocationUnavailable):
		return &DomainError{
			Code:       "ALLOCATION_UNAVAILABLE",
			Message:    "identifier allocation unavailable",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	case errors.Is(err, delegation.ErrNoAgentAvailable):
		return &DomainError{
			Code:       "NO_AGENT_AVAILABLE",
			Message:    "no agent available for this conversation",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}

	var remote *erp.RemoteError
	if errors.As(err, &remote) {
		return &DomainError{
			Code:       "ERP_REMOTE_ERROR",
			Message:    remote.Message,
			HTTPStatus: http.StatusBadGateway,
			Details:    map[string]any{"erp_code": remote.Code},
			Err:        err,
		}
	}

	de, _ := NewInternalError(err).(*DomainError)
	return de
}

func MapError(err error) error {
	return ToDomainError(err)
}
