package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrConfiguration = errors.New("configuration_error")
	ErrUpstream      = errors.New("upstream_error")
	ErrParse         = errors.New("parse_error")
	ErrValidation    = errors.New("validation_error")

	ErrNotFound             = errors.New("not_found")
	ErrGenerationInProgress = errors.New("generation_in_progress")
	ErrRateLimited          = errors.New("rate_limited")
	ErrInvalidFormat        = errors.New("invalid_format")
	ErrDuplicateNumber      = errors.New("duplicate_invoice_number")
)

// Upstream error codes reported by language model providers.
const (
	CodeInvalidAPIKey = "invalid_api_key"
	CodeModelNotFound = "model_not_found"
	CodeTimeout       = "timeout"
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error is a classified generation failure carrying one human-readable
// message. errors.Is matches it against its Kind sentinel.
type Error struct {
	Kind    error
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func NewConfigurationError(message string) *Error {
	return &Error{Kind: ErrConfiguration, Message: message}
}

func NewUpstreamError(code, message string, cause error) *Error {
	return &Error{Kind: ErrUpstream, Code: code, Message: message, Err: cause}
}

func NewParseError(message string, cause error) *Error {
	return &Error{Kind: ErrParse, Message: message, Err: cause}
}

// NewValidationError joins the field messages into a single message.
func NewValidationError(fields ...FieldError) *Error {
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f.Message)
	}
	message := "invalid invoice"
	if len(msgs) > 0 {
		message = strings.Join(msgs, "; ")
	}
	return &Error{Kind: ErrValidation, Message: message, Fields: fields}
}

// RateLimitError reports an exhausted generation allowance.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return "Too many invoices generated. Please wait a moment and try again."
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// KindName returns a low-cardinality label for err.
func KindName(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrGenerationInProgress):
		return "in_progress"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	default:
		return "internal"
	}
}
