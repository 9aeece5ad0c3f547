package llm_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vuebench/vuebench/internal/llm"
)

const chatResponse = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "test-model",
  "choices": [
    {"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}
  ],
  "usage": {"prompt_tokens": 10, "completion_tokens": 42, "total_tokens": 52}
}`

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatResponse))
	}))
	defer srv.Close()

	client := llm.NewOllamaClient(srv.URL, 5*time.Second)
	res, err := client.Chat(context.Background(), "test-model", []llm.Message{
		{Role: llm.RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if res.Text != "hello" {
		t.Errorf("expected text 'hello', got %q", res.Text)
	}
	if res.Tokens != 42 {
		t.Errorf("expected 42 completion tokens, got %d", res.Tokens)
	}
	if res.Duration <= 0 {
		t.Error("expected a positive duration")
	}
}

func TestChatModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": {"message": "model \"missing\" not found", "type": "api_error"}}`))
	}))
	defer srv.Close()

	client := llm.NewOllamaClient(srv.URL, 5*time.Second)
	_, err := client.Chat(context.Background(), "missing", nil)
	if !errors.Is(err, llm.ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestChatConnectionRefused(t *testing.T) {
	// Reserve a port, then close it so nothing is listening.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client := llm.NewOllamaClient(addr, 5*time.Second)
	_, err := client.Chat(context.Background(), "any", nil)
	if !errors.Is(err, llm.ErrConnection) {
		t.Errorf("expected ErrConnection, got %v", err)
	}
}

func TestChatTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(chatResponse))
	}))
	defer srv.Close()

	client := llm.NewOllamaClient(srv.URL, 50*time.Millisecond)
	_, err := client.Chat(context.Background(), "slow", nil)
	if !errors.Is(err, llm.ErrTimedOut) {
		t.Errorf("expected ErrTimedOut, got %v", err)
	}
}

func TestTokensPerSec(t *testing.T) {
	res := &llm.ChatResult{Tokens: 100, Duration: 2 * time.Second}
	if got := res.TokensPerSec(); got != 50 {
		t.Errorf("expected 50 tok/s, got %f", got)
	}
	res = &llm.ChatResult{Tokens: 0, Duration: time.Second}
	if got := res.TokensPerSec(); got != 0 {
		t.Errorf("expected 0 for missing token counts, got %f", got)
	}
}
