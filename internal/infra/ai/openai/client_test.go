package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/complyhub/internal/domain/ai"
)

func server(t *testing.T, status int, body any) (*Client, *openai.ChatCompletionRequest) {
	t.Helper()
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	return NewClientWithConfig(cfg, ""), &got
}

func TestBrief(t *testing.T) {
	c, got := server(t, http.StatusOK, map[string]any{
		"id": "chatcmpl-1",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]any{"role": "assistant", "content": "Risk is elevated."}},
		},
	})

	text, err := c.Brief(context.Background(), ai.BriefRequest{AssessmentID: "asm-1", RiskScore: 6.5})
	require.NoError(t, err)
	assert.Equal(t, "Risk is elevated.", text)
	assert.Equal(t, defaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "asm-1")
	assert.Equal(t, maxTokens, got.MaxTokens)
}

func TestBrief_Quota(t *testing.T) {
	c, _ := server(t, http.StatusTooManyRequests, map[string]any{
		"error": map[string]any{"message": "You exceeded your current quota", "type": "insufficient_quota", "code": "insufficient_quota"},
	})

	_, err := c.Brief(context.Background(), ai.BriefRequest{AssessmentID: "asm-1"})
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestBrief_NoChoices(t *testing.T) {
	c, _ := server(t, http.StatusOK, map[string]any{"id": "x", "choices": []any{}})

	_, err := c.Brief(context.Background(), ai.BriefRequest{AssessmentID: "asm-1"})
	assert.ErrorIs(t, err, ai.ErrEmptyResponse)
}

func TestReasoningModel(t *testing.T) {
	assert.True(t, reasoningModel("o3-mini"))
	assert.True(t, reasoningModel("gpt-5"))
	assert.False(t, reasoningModel("gpt-4o-mini"))
}
