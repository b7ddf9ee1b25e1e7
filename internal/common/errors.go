package common

import "errors"

// Stable error codes shared between the core services and the HTTP layer.
// Handlers map codes to status lines, clients key user-facing copy off them.
const (
	CodeTemplateNotFound         = "TEMPLATE_NOT_FOUND"
	CodeCredentialsNotConfigured = "CREDENTIALS_NOT_CONFIGURED"
	CodeCredentialsCorrupt       = "CREDENTIALS_CORRUPT"
	CodeVariantNotFound          = "VARIANT_NOT_FOUND"
	CodeGatewayCallFailed        = "GATEWAY_CALL_FAILED"
	CodePageNotFound             = "PAGE_NOT_FOUND"
	CodeUploadFailed             = "UPLOAD_FAILED"
	CodeBadRequest               = "BAD_REQUEST"
	CodeInternal                 = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// AsAppError extracts an AppError from the chain if present.
func AsAppError(err error) (*AppError, bool) {
	var target *AppError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
