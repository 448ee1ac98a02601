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

func TestOllamaClient_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("Expected path /api/chat, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Expected stream=false")
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
			t.Errorf("Unexpected messages: %+v", req.Messages)
		}

		resp := ollamaResponse{
			Model:           "llama3.1",
			Message:         ollamaMessage{Role: "assistant", Content: "Credibility score: 50%. Mixed evidence."},
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := NewOllamaClient(Config{
		BaseURL: server.URL,
		Model:   "llama3.1",
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	resp, err := client.Complete(context.Background(), verdictMessages())
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "Credibility score: 50%. Mixed evidence." {
		t.Errorf("Unexpected text: %q", resp.Text)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Expected 30 tokens, got %d", resp.TokensUsed)
	}
}

func TestOllamaClient_Complete_MissingModel(t *testing.T) {
	client, err := NewOllamaClient(Config{})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.Complete(context.Background(), verdictMessages())
	if err == nil || !strings.Contains(err.Error(), "model must be specified") {
		t.Errorf("Expected missing model error, got %v", err)
	}
}

func TestOllamaClient_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'nope' not found"}`))
	}))
	defer server.Close()

	client, err := NewOllamaClient(Config{BaseURL: server.URL, Model: "nope"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.Complete(context.Background(), verdictMessages())
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestOllamaClient_Complete_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, err := NewOllamaClient(Config{BaseURL: url, Model: "llama3.1", Timeout: time.Second})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	if _, err := client.Complete(context.Background(), verdictMessages()); err == nil {
		t.Fatal("Expected connection error, got nil")
	}
}
