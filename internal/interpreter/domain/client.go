package domain

import (
	"context"

	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
)

// CompletionRequest is one system + user exchange with a language model.
type CompletionRequest struct {
	Model  string
	System string
	User   string
	// JSONResponse asks the provider for a strict JSON object.
	JSONResponse bool
}

// Client sends a completion to a language model provider. Implementations
// return *invoicedomain.Error values for classified failures.
type Client interface {
	Provider() string
	Model() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Interpreter turns a free-text prompt into a draft invoice.
type Interpreter interface {
	Interpret(ctx context.Context, prompt string) (invoicedomain.Draft, error)
}
