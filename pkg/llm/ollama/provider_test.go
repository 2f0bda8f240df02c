package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legal-aid-be/pkg/llm"
)

func TestOllamaProvider_Chat(t *testing.T) {
	var captured ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:   captured.Model,
			Message: ollamaMessage{Role: "assistant", Content: "Namaste"},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma:2b", 5*time.Second)
	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleUser, Content: "hello"},
		{Role: llm.RoleModel, Content: "hi"},
		{Role: llm.RoleUser, Content: "how are you"},
	}, llm.WithSystemPrompt("you are Genie"), llm.WithMaxTokens(64))

	require.NoError(t, err)
	assert.Equal(t, "Namaste", out)
	assert.Equal(t, "gemma:2b", captured.Model)
	require.Len(t, captured.Messages, 4)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "assistant", captured.Messages[2].Role)
	assert.Equal(t, 64, captured.Options.NumPredict)
	assert.Nil(t, captured.Format)
}

func TestOllamaProvider_GenerateWithChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotNil(t, req.Format)
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: `"true"`},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma:2b", 5*time.Second)
	out, err := p.Generate(context.Background(), "is this a summon?", llm.WithChoices("true", "false"))

	require.NoError(t, err)
	assert.Equal(t, "true", out)
}

func TestOllamaProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "server error", status: http.StatusInternalServerError, want: llm.ErrUpstreamUnavailable},
		{name: "bad request", status: http.StatusBadRequest, want: llm.ErrUpstreamRejected},
		{name: "gateway timeout", status: http.StatusGatewayTimeout, want: llm.ErrUpstreamTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", tt.status)
			}))
			defer srv.Close()

			p := NewOllamaProvider(srv.URL, "gemma:2b", 5*time.Second)
			_, err := p.Generate(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOllamaProvider_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOllamaProvider(url, "gemma:2b", time.Second)
	_, err := p.Generate(context.Background(), "x")
	assert.ErrorIs(t, err, llm.ErrUpstreamUnavailable)
}
