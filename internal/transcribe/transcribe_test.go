package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVEfmt "), 0644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestOpenAITranscriber_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("Expected path /audio/transcriptions, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("Expected model whisper-1, got %s", got)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("Expected file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "  Five G towers spread viruses. "}`))
	}))
	defer server.Close()

	tr, err := NewOpenAITranscriber(Config{APIKey: "sk-proj-test", BaseURL: server.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Failed to create transcriber: %v", err)
	}

	text, err := tr.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "Five G towers spread viruses." {
		t.Errorf("Unexpected text: %q", text)
	}
}

func TestOpenAITranscriber_Silence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": ""}`))
	}))
	defer server.Close()

	tr, err := NewOpenAITranscriber(Config{APIKey: "sk-proj-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create transcriber: %v", err)
	}

	text, err := tr.Transcribe(context.Background(), writeAudio(t))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty transcript, got %q", text)
	}
}

func TestOpenAITranscriber_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "Invalid file format.", "type": "invalid_request_error"}}`))
	}))
	defer server.Close()

	tr, err := NewOpenAITranscriber(Config{APIKey: "sk-proj-test", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create transcriber: %v", err)
	}

	if _, err := tr.Transcribe(context.Background(), writeAudio(t)); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAITranscriber_MissingFile(t *testing.T) {
	tr, err := NewOpenAITranscriber(Config{APIKey: "sk-proj-test"})
	if err != nil {
		t.Fatalf("Failed to create transcriber: %v", err)
	}

	if _, err := tr.Transcribe(context.Background(), filepath.Join(t.TempDir(), "none.wav")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestNewOpenAITranscriber_RequiresKey(t *testing.T) {
	if _, err := NewOpenAITranscriber(Config{}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}
