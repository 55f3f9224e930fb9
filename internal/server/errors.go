package server

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/promptinvoice/internal/auth/domain"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if seconds := retryAfterSeconds(lastErr.Err); seconds > 0 {
			c.Header("Retry-After", strconv.Itoa(seconds))
		}
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case errors.Is(err, invoicedomain.ErrValidation):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: domainMessage(err, "validation error"),
			Errors:  domainFields(err),
		}
	case errors.Is(err, invoicedomain.ErrInvalidFormat):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{Field: "format", Code: "invalid_format", Message: "format must be pdf or html"},
			},
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrMissingToken),
		errors.Is(err, authdomain.ErrInvalidToken),
		errors.Is(err, authdomain.ErrTokenExpired):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, invoicedomain.ErrGenerationInProgress):
		return http.StatusConflict, errorPayload{
			Type:    "generation_in_progress",
			Message: "An invoice is already being generated. Please wait for it to finish.",
		}
	case errors.Is(err, invoicedomain.ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: err.Error(),
		}
	case errors.Is(err, invoicedomain.ErrParse):
		return http.StatusBadGateway, errorPayload{
			Type:    "parse_error",
			Message: domainMessage(err, "Failed to parse the generated invoice data. Please try again."),
		}
	case errors.Is(err, invoicedomain.ErrUpstream):
		return http.StatusBadGateway, errorPayload{
			Type:    "upstream_error",
			Message: domainMessage(err, "Failed to generate invoice. Please try again."),
		}
	case errors.Is(err, invoicedomain.ErrConfiguration):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "configuration_error",
			Message: domainMessage(err, "service unavailable"),
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the error type and code written to request logs.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if asValidationErrors(err) != nil {
		return "validation_error", ""
	}

	var derr *invoicedomain.Error
	if errors.As(err, &derr) {
		return invoicedomain.KindName(err), derr.Code
	}

	_, payload := mapError(err)
	return payload.Type, ""
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func domainMessage(err error, fallback string) string {
	var derr *invoicedomain.Error
	if errors.As(err, &derr) && derr.Message != "" {
		return derr.Message
	}
	return fallback
}

func domainFields(err error) []ValidationError {
	var derr *invoicedomain.Error
	if !errors.As(err, &derr) {
		return nil
	}
	out := make([]ValidationError, 0, len(derr.Fields))
	for _, f := range derr.Fields {
		out = append(out, ValidationError{Field: f.Field, Code: f.Code, Message: f.Message})
	}
	return out
}

func retryAfterSeconds(err error) int {
	var rlErr *invoicedomain.RateLimitError
	if !errors.As(err, &rlErr) || rlErr.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(rlErr.RetryAfter.Seconds()))
}
