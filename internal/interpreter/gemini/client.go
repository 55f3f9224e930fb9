package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/smallbiznis/promptinvoice/internal/config"
	interpreterdomain "github.com/smallbiznis/promptinvoice/internal/interpreter/domain"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

const (
	missingKeyMessage    = "Please set your Gemini API key in the .env file (GEMINI_API_KEY)."
	invalidKeyMessage    = "Invalid Gemini API key. Please check the key configured in GEMINI_API_KEY."
	modelMissingMessage  = "The selected Gemini model is not available. Please try again later."
	blockedMessage       = "The request was blocked by the model's safety filters. Please rephrase the prompt."
	emptyResponseMessage = "No response received from Gemini"
	fallbackMessage      = "Failed to generate invoice. Please try again."

	reasonAPIKeyInvalid = "API_KEY_INVALID"
)

// Client generates drafts with a Gemini model.
type Client struct {
	api   *genai.Client
	model string
}

var _ interpreterdomain.Client = (*Client)(nil)

// NewClient dials Gemini when a key is configured. Without a key it returns a
// client that reports a configuration error on every call.
func NewClient(lc fx.Lifecycle, cfg config.LLMConfig) (*Client, error) {
	c := &Client{model: strings.TrimSpace(cfg.GeminiModel)}
	if c.model == "" {
		c.model = "gemini-1.5-flash"
	}

	key := strings.TrimSpace(cfg.GeminiAPIKey)
	if key == "" {
		return c, nil
	}

	api, err := genai.NewClient(context.Background(), option.WithAPIKey(key))
	if err != nil {
		return nil, err
	}
	c.api = api

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return api.Close()
			},
		})
	}
	return c, nil
}

func (c *Client) Provider() string { return config.ProviderGemini }

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, req interpreterdomain.CompletionRequest) (string, error) {
	if c.api == nil {
		return "", invoicedomain.NewConfigurationError(missingKeyMessage)
	}

	name := strings.TrimSpace(req.Model)
	if name == "" {
		name = c.model
	}

	model := c.api.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	if req.JSONResponse {
		model.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.User))
	if err != nil {
		return "", mapError(err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", invoicedomain.NewParseError(emptyResponseMessage, nil)
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return "", invoicedomain.NewParseError(emptyResponseMessage, nil)
	}
	return content, nil
}

func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return invoicedomain.NewUpstreamError("blocked", blockedMessage, err)
	}

	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		return invoicedomain.NewUpstreamError("", fallbackMessage, err)
	}

	switch {
	case apiErr.Reason() == reasonAPIKeyInvalid:
		return invoicedomain.NewUpstreamError(invoicedomain.CodeInvalidAPIKey, invalidKeyMessage, err)
	case apiErr.HTTPCode() == http.StatusNotFound:
		return invoicedomain.NewUpstreamError(invoicedomain.CodeModelNotFound, modelMissingMessage, err)
	case apiErr.HTTPCode() == http.StatusUnauthorized || apiErr.HTTPCode() == http.StatusForbidden:
		return invoicedomain.NewUpstreamError(invoicedomain.CodeInvalidAPIKey, invalidKeyMessage, err)
	}
	return invoicedomain.NewUpstreamError(strings.ToLower(apiErr.Reason()), fallbackMessage, err)
}
