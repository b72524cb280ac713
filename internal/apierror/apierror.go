// Package apierror defines the error envelopes returned to API clients.
// Adapter and store errors never reach a client raw; handlers translate them
// into one of these shapes at the workflow boundary.
package apierror

// APIError is the canonical envelope for 4xx/5xx responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError carries per-field failures from request validation.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
