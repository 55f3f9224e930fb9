package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smallbiznis/promptinvoice/internal/config"
	interpreterdomain "github.com/smallbiznis/promptinvoice/internal/interpreter/domain"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.LLMConfig{
		OpenAIAPIKey:  "sk-test",
		OpenAIModel:   "gpt-3.5-turbo",
		OpenAIBaseURL: srv.URL + "/v1",
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    "invalid_request_error",
			"code":    code,
		},
	})
}

func TestComplete_SendsJSONFormat(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-3.5-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": `{"items": []}`},
			}},
		})
	})

	content, err := client.Complete(context.Background(), interpreterdomain.CompletionRequest{
		System:       "system",
		User:         "bill acme",
		JSONResponse: true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, content)

	assert.Equal(t, "gpt-3.5-turbo", got["model"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
	messages, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, messages, 2)
}

func TestComplete_MapsAPIErrors(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		code     string
		wantCode string
		wantMsg  string
	}{
		{"invalid key", http.StatusUnauthorized, "invalid_api_key", invoicedomain.CodeInvalidAPIKey, invalidKeyMessage},
		{"missing model", http.StatusNotFound, "model_not_found", invoicedomain.CodeModelNotFound, modelMissingMessage},
		{"other", http.StatusBadRequest, "context_length_exceeded", "context_length_exceeded", "prompt too long"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeError(w, tc.status, tc.code, "prompt too long")
			})

			_, err := client.Complete(context.Background(), interpreterdomain.CompletionRequest{User: "x"})
			require.Error(t, err)
			assert.True(t, errors.Is(err, invoicedomain.ErrUpstream))

			var derr *invoicedomain.Error
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tc.wantCode, derr.Code)
			assert.Equal(t, tc.wantMsg, derr.Message)
		})
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	})

	_, err := client.Complete(context.Background(), interpreterdomain.CompletionRequest{User: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, invoicedomain.ErrParse))
	assert.Equal(t, emptyResponseMessage, err.Error())
}

func TestComplete_MissingKey(t *testing.T) {
	for _, key := range []string{"", "  ", config.PlaceholderOpenAIKey} {
		client := NewClient(config.LLMConfig{OpenAIAPIKey: key})
		_, err := client.Complete(context.Background(), interpreterdomain.CompletionRequest{User: "x"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, invoicedomain.ErrConfiguration))
		assert.Equal(t, "gpt-3.5-turbo", client.Model())
	}
}
