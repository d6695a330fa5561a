// Package apierror provides the error envelope returned by every 4xx/5xx response.
// Handlers never write raw errors; database details only travel in Debug and only
// outside production.
package apierror

// Error codes shared with the SPA.
const (
	CodeAuthRequired    = "AUTH_REQUIRED"
	CodeTokenInvalid    = "TOKEN_INVALID"
	CodeAccountDisabled = "ACCOUNT_DISABLED"
	CodeForbidden       = "FORBIDDEN"
	CodeValidation      = "VALIDATION"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInUse           = "IN_USE"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL"
)

// APIError is the canonical error envelope.
type APIError struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Debug  string            `json:"debug,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func WithCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// NewValidation wraps multiple field errors.
func NewValidation(fields map[string]string) *APIError {
	return &APIError{Detail: "Error de validacion", Code: CodeValidation, Fields: fields}
}

// WithDebug attaches an internal message; callers decide whether the environment allows it.
func (e *APIError) WithDebug(msg string) *APIError {
	e.Debug = msg
	return e
}
