package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/smallbiznis/promptinvoice/internal/config"
	interpreterdomain "github.com/smallbiznis/promptinvoice/internal/interpreter/domain"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
)

const (
	missingKeyMessage    = "Please set your OpenAI API key in the .env file. You can find your API key at https://platform.openai.com/account/api-keys"
	invalidKeyMessage    = "Invalid OpenAI API key. Please check your API key at https://platform.openai.com/account/api-keys"
	modelMissingMessage  = "The selected OpenAI model is not available. Please try again later."
	emptyResponseMessage = "No response received from OpenAI"
	fallbackMessage      = "Failed to generate invoice. Please try again."
)

// Client talks to the OpenAI chat completions API. A client built without a
// usable key reports a configuration error on every call.
type Client struct {
	api   *openai.Client
	model string
}

var _ interpreterdomain.Client = (*Client)(nil)

func NewClient(cfg config.LLMConfig) *Client {
	c := &Client{model: strings.TrimSpace(cfg.OpenAIModel)}
	if c.model == "" {
		c.model = openai.GPT3Dot5Turbo
	}

	key := strings.TrimSpace(cfg.OpenAIAPIKey)
	if key == "" || key == config.PlaceholderOpenAIKey {
		return c
	}

	clientCfg := openai.DefaultConfig(key)
	if baseURL := strings.TrimSpace(cfg.OpenAIBaseURL); baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	c.api = openai.NewClientWithConfig(clientCfg)
	return c
}

func (c *Client) Provider() string { return config.ProviderOpenAI }

func (c *Client) Model() string { return c.model }

func (c *Client) Complete(ctx context.Context, req interpreterdomain.CompletionRequest) (string, error) {
	if c.api == nil {
		return "", invoicedomain.NewConfigurationError(missingKeyMessage)
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = c.model
	}

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.JSONResponse {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", invoicedomain.NewParseError(emptyResponseMessage, nil)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", invoicedomain.NewParseError(emptyResponseMessage, nil)
	}
	return content, nil
}

// mapError classifies API failures. Context errors are returned unchanged so
// the caller can report them as timeouts.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return invoicedomain.NewUpstreamError("", fallbackMessage, err)
	}

	code := ""
	if apiErr.Code != nil {
		code = fmt.Sprint(apiErr.Code)
	}

	switch {
	case code == invoicedomain.CodeInvalidAPIKey || apiErr.HTTPStatusCode == http.StatusUnauthorized:
		return invoicedomain.NewUpstreamError(invoicedomain.CodeInvalidAPIKey, invalidKeyMessage, err)
	case code == invoicedomain.CodeModelNotFound:
		return invoicedomain.NewUpstreamError(invoicedomain.CodeModelNotFound, modelMissingMessage, err)
	}

	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = fallbackMessage
	}
	return invoicedomain.NewUpstreamError(code, message, err)
}
