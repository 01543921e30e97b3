package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/veracity/internal/model"
)

func TestOllamaProvider_Verify_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Decode request: %v", err)
		}
		if req.Format != "json" || req.Stream || req.Options.NumPredict != 1500 {
			t.Errorf("Unexpected request %+v", req)
		}

		resp := ollamaResponse{
			Model:           "llama3.1",
			Response:        verificationJSON,
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL:        server.URL,
		Model:          "llama3.1",
		Timeout:        5 * time.Second,
		StrictEvidence: true,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Verify(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !approxDist(resp.Draft, model.Distribution{True: 0.1, False: 0.7, Uncertain: 0.2}) || resp.Model != "llama3.1" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if len(resp.SourceURLs) != 1 {
		t.Errorf("Expected one allowed source, got %v", resp.SourceURLs)
	}
	if resp.TokensUsed != 30 {
		t.Errorf("Unexpected token usage: %d", resp.TokensUsed)
	}
}

func TestOllamaProvider_Verify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "model not loaded"}`))
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5 * time.Second})
	_, err := provider.Verify(context.Background(), testRequest())
	if err == nil {
		t.Fatal("Expected error for API failure")
	}
	if !strings.Contains(err.Error(), "model not loaded") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestOllamaProvider_Verify_MissingModel(t *testing.T) {
	provider, _ := NewOllamaProvider(Config{})
	if _, err := provider.Verify(context.Background(), testRequest()); err == nil {
		t.Error("Expected error when no model is configured")
	}
}

func TestOllamaProvider_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := provider.Verify(ctx, testRequest()); err == nil {
		t.Error("Expected error when the context deadline expires")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	provider, _ := NewOllamaProvider(Config{BaseURL: server.URL + "/"})
	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be available")
	}

	server.Close()
	if provider.IsAvailable(context.Background()) {
		t.Error("Expected provider to be unavailable after shutdown")
	}
}
