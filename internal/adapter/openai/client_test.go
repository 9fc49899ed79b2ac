package openai_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docreview/docreview/internal/adapter/openai"
	"github.com/docreview/docreview/internal/config"
	"github.com/docreview/docreview/internal/domain"
	"github.com/docreview/docreview/internal/resilience"
)

func testConfig(baseURL string) config.OpenAI {
	return config.OpenAI{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.3,
		MaxTokens:   2000,
		Timeout:     5 * time.Second,
	}
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Fatalf("unexpected auth: %q", auth)
		}

		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		msgs, ok := req["messages"].([]any)
		if !ok || len(msgs) != 2 {
			t.Fatalf("expected system+user messages, got %v", req["messages"])
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"analysis text"}}]}`))
	}))
	defer srv.Close()

	client := openai.NewClient(testConfig(srv.URL))
	out, err := client.Complete(context.Background(), "review this", "you are a reviewer")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out != "analysis text" {
		t.Fatalf("unexpected content: %q", out)
	}
}

func TestCompleteNoSystemPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		msgs, _ := req["messages"].([]any)
		if len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %d", len(msgs))
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := openai.NewClient(testConfig(srv.URL))
	if _, err := client.Complete(context.Background(), "prompt", ""); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded"}}`))
	}))
	defer srv.Close()

	client := openai.NewClient(testConfig(srv.URL))
	_, err := client.Complete(context.Background(), "prompt", "")
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := openai.NewClient(testConfig(srv.URL))
	_, err := client.Complete(context.Background(), "prompt", "")
	if !errors.Is(err, domain.ErrBackend) {
		t.Fatalf("expected ErrBackend, got %v", err)
	}
}

func TestCompleteBreakerOpens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := openai.NewClient(testConfig(srv.URL))
	client.SetBreaker(resilience.NewBreaker(2, time.Minute))

	for range 2 {
		_, _ = client.Complete(context.Background(), "prompt", "")
	}

	_, err := client.Complete(context.Background(), "prompt", "")
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}
