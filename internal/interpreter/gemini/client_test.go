package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/smallbiznis/promptinvoice/internal/config"
	interpreterdomain "github.com/smallbiznis/promptinvoice/internal/interpreter/domain"
	invoicedomain "github.com/smallbiznis/promptinvoice/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestComplete_MissingKey(t *testing.T) {
	client, err := NewClient(nil, config.LLMConfig{})
	require.NoError(t, err)
	assert.Equal(t, "gemini-1.5-flash", client.Model())

	_, err = client.Complete(context.Background(), interpreterdomain.CompletionRequest{User: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, invoicedomain.ErrConfiguration))
}

func TestMapError(t *testing.T) {
	notFound, ok := apierror.FromError(&googleapi.Error{Code: http.StatusNotFound, Message: "models/gemini-x is not found"})
	require.True(t, ok)

	err := mapError(notFound)
	var derr *invoicedomain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, invoicedomain.CodeModelNotFound, derr.Code)

	err = mapError(errors.New("dial tcp: connection refused"))
	require.True(t, errors.As(err, &derr))
	assert.True(t, errors.Is(err, invoicedomain.ErrUpstream))
	assert.Empty(t, derr.Code)

	assert.ErrorIs(t, mapError(context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"items":`), genai.Text(` []}`)}},
		}},
	}
	content, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, content)

	_, err = responseText(&genai.GenerateContentResponse{})
	assert.True(t, errors.Is(err, invoicedomain.ErrParse))
}
