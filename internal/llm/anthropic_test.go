package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestAnthropicClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-ant-test" {
			t.Errorf("Expected x-api-key sk-ant-test, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Unexpected anthropic-version: %s", r.Header.Get("anthropic-version"))
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.System != "You are a fact-checking analyst." {
			t.Errorf("System message not lifted: %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser {
			t.Errorf("Expected single user message, got %+v", req.Messages)
		}

		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Yes, this is accurate. Credibility score: 95%."}],
			"usage": {"input_tokens": 30, "output_tokens": 12}
		}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(Config{
		APIKey:  "sk-ant-test",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	resp, err := client.Complete(context.Background(), verdictMessages())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "Yes, this is accurate. Credibility score: 95%." {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 42 {
		t.Errorf("Expected 42 tokens, got %d", resp.TokensUsed)
	}
}

func TestAnthropicClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(Config{APIKey: "sk-ant-bad", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.Complete(context.Background(), verdictMessages())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "authentication_error") {
		t.Errorf("Expected error type in message, got: %v", err)
	}
}

func TestAnthropicClient_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "msg_1", "content": []}`))
	}))
	defer server.Close()

	client, err := NewAnthropicClient(Config{APIKey: "sk-ant-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if _, err := client.Complete(context.Background(), verdictMessages()); err == nil {
		t.Fatal("Expected error for empty content, got nil")
	}
}

func TestAnthropicClient_Complete_SystemOnly(t *testing.T) {
	client, err := NewAnthropicClient(Config{APIKey: "sk-ant-test", BaseURL: "http://127.0.0.1:0"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.Complete(context.Background(), []Message{{Role: RoleSystem, Content: "only system"}})
	if err == nil {
		t.Fatal("Expected error when no user message is present")
	}
}

func TestAnthropicClient_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicClient(Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}
