package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by every service. Handlers map them onto HTTP
// statuses, the coordinator maps storage failures onto them.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeNotFound         = "NOT_FOUND"
	CodeResourceNotFound = "RESOURCE_NOT_FOUND"
	CodeInvalidSlot      = "INVALID_SLOT"
	CodeSlotConflict     = "SLOT_CONFLICT"
	CodeBusy             = "BUSY"
	CodeConflict         = "CONFLICT"
	CodeTimeout          = "TIMEOUT"
	CodeInternal         = "INTERNAL_ERROR"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
)

// AppError is the one error type that crosses layer boundaries. It
// carries a machine-readable code, a caller-facing message and the
// wrapped cause for logs.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// Retryable reports whether the caller may retry the same request
// unchanged. Conflicts are terminal; contention and timeouts are not.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case CodeBusy, CodeTimeout, CodeUnavailable:
		return true
	}
	return false
}

// WithDetails attaches a key-value pair for the response body. Returns
// the receiver so calls chain.
func (e *AppError) WithDetails(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func New(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

func Wrap(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

func NotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func NotFoundWithID(entity, id string) *AppError {
	e := NotFound(entity)
	return e.WithDetails("id", id)
}

// ResourceNotFound marks an unknown bookable resource identity.
func ResourceNotFound(resourceID string) *AppError {
	e := New(CodeResourceNotFound, "resource not found", http.StatusNotFound)
	return e.WithDetails("resource_id", resourceID)
}

// InvalidSlot rejects a candidate slot that is off-grid, outside the
// effective hours or too close to now. Not retried automatically.
func InvalidSlot(message string) *AppError {
	return New(CodeInvalidSlot, message, http.StatusUnprocessableEntity)
}

// SlotConflict is terminal for the attempt: the slot is taken and the
// caller should re-query availability before trying another one.
func SlotConflict(resourceID, date, start string) *AppError {
	e := New(CodeSlotConflict, "slot already reserved", http.StatusConflict)
	e.WithDetails("resource_id", resourceID)
	e.WithDetails("date", date)
	return e.WithDetails("start_time", start)
}

// Busy signals transient contention on the (resource, date) token.
// Distinct from SlotConflict: the same request may succeed on retry.
func Busy(message string) *AppError {
	return New(CodeBusy, message, http.StatusServiceUnavailable)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal error", http.StatusInternalServerError)
}

func Timeout(operation string) *AppError {
	return New(CodeTimeout, fmt.Sprintf("%s timed out", operation), http.StatusGatewayTimeout)
}

func Unavailable(message string) *AppError {
	return New(CodeUnavailable, message, http.StatusServiceUnavailable)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
