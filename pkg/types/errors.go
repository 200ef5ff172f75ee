package types

import (
	"errors"
	"fmt"
)

// ErrorCode is the stable kind of a resource failure as seen by callers.
type ErrorCode string

const (
	ErrCodePermissionDenied     ErrorCode = "PERMISSION_DENIED"
	ErrCodeContainerUnavailable ErrorCode = "CONTAINER_UNAVAILABLE"
	ErrCodeContainerAccess      ErrorCode = "CONTAINER_ACCESS_ERROR"
	ErrCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrCodeQueryFailed          ErrorCode = "QUERY_FAILED"
	ErrCodeResolution           ErrorCode = "RESOLUTION_ERROR"
	ErrCodeSessionBusy          ErrorCode = "SESSION_BUSY"
	ErrCodeInvalidArgument      ErrorCode = "INVALID_ARGUMENT"
	ErrCodeTimeout              ErrorCode = "TIMEOUT"
	ErrCodePickerUnavailable    ErrorCode = "PICKER_UNAVAILABLE"
	ErrCodeInternal             ErrorCode = "INTERNAL"
)

// ResourceError carries a code, a human readable message and an optional cause.
type ResourceError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ResourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}

// Is matches any *ResourceError with the same code, so the sentinels below
// work with errors.Is.
func (e *ResourceError) Is(target error) bool {
	var t *ResourceError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	ErrPermissionDenied     = &ResourceError{Code: ErrCodePermissionDenied}
	ErrContainerUnavailable = &ResourceError{Code: ErrCodeContainerUnavailable}
	ErrContainerAccess      = &ResourceError{Code: ErrCodeContainerAccess}
	ErrNotFound             = &ResourceError{Code: ErrCodeNotFound}
	ErrQueryFailed          = &ResourceError{Code: ErrCodeQueryFailed}
	ErrResolution           = &ResourceError{Code: ErrCodeResolution}
	ErrSessionBusy          = &ResourceError{Code: ErrCodeSessionBusy}
	ErrInvalidArgument      = &ResourceError{Code: ErrCodeInvalidArgument}
	ErrTimeout              = &ResourceError{Code: ErrCodeTimeout}
	ErrPickerUnavailable    = &ResourceError{Code: ErrCodePickerUnavailable}
)

func NewResourceError(code ErrorCode, message string, cause error) *ResourceError {
	return &ResourceError{Code: code, Message: message, Cause: cause}
}

func NewPermissionDeniedError(kind Kind) error {
	return NewResourceError(ErrCodePermissionDenied, fmt.Sprintf("%s library access not granted", kind), nil)
}

func NewContainerUnavailableError(message string) error {
	return NewResourceError(ErrCodeContainerUnavailable, message, nil)
}

func NewContainerAccessError(cause error) error {
	return NewResourceError(ErrCodeContainerAccess, "failed to read cloud container", cause)
}

func NewNotFoundError(message string) error {
	return NewResourceError(ErrCodeNotFound, message, nil)
}

func NewQueryFailedError(cause error) error {
	return NewResourceError(ErrCodeQueryFailed, "query failed", cause)
}

func NewResolutionError(message string, cause error) error {
	return NewResourceError(ErrCodeResolution, message, cause)
}

func NewSessionBusyError(sessionID string) error {
	return NewResourceError(ErrCodeSessionBusy, fmt.Sprintf("picker session %s is still pending", sessionID), nil)
}

func NewInvalidArgumentError(message string) error {
	return NewResourceError(ErrCodeInvalidArgument, message, nil)
}

func NewTimeoutError(cause error) error {
	return NewResourceError(ErrCodeTimeout, "operation timed out", cause)
}

func NewPickerUnavailableError() error {
	return NewResourceError(ErrCodePickerUnavailable, "no picker presenter is attached", nil)
}

// CodeOf returns the code of the outermost ResourceError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var re *ResourceError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrCodeInternal
}

func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}
