package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bhanu100141/StudyBuddy/internal/models"
)

func geminiServer(t *testing.T, reply string, capture *models.GeminiRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("api key missing from query, got %q", r.URL.Query().Get("key"))
		}
		if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		resp := models.GeminiResponse{
			Candidates: []models.GeminiCandidate{{
				Content: models.GeminiContent{
					Role:  "model",
					Parts: []models.GeminiPart{{Text: reply}},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateSingleShot(t *testing.T) {
	var captured models.GeminiRequest
	server := geminiServer(t, "Recursion is a function calling itself.", &captured)
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-2.5-flash")
	reply, err := client.Generate(context.Background(),
		[]ChatMessage{{Role: "user", Content: "What is recursion?"}},
		"Chapter 3: recursion basics")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if reply != "Recursion is a function calling itself." {
		t.Errorf("unexpected reply %q", reply)
	}

	// A single-entry history folds the system prompt and the question into
	// one prompt, with no generation config.
	if len(captured.Contents) != 1 {
		t.Fatalf("expected 1 content entry, got %d", len(captured.Contents))
	}
	text := captured.Contents[0].Parts[0].Text
	if !strings.Contains(text, "Chapter 3: recursion basics") {
		t.Errorf("context missing from prompt: %q", text)
	}
	if !strings.HasSuffix(text, "\n\nWhat is recursion?") {
		t.Errorf("user message not appended to prompt: %q", text)
	}
	if captured.GenerationConfig != nil {
		t.Error("single-shot request must not carry a generation config")
	}
}

func TestGenerateMultiTurn(t *testing.T) {
	var captured models.GeminiRequest
	server := geminiServer(t, "Sure, here is an example.", &captured)
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-2.5-flash")
	_, err := client.Generate(context.Background(), []ChatMessage{
		{Role: "user", Content: "What is recursion?"},
		{Role: "assistant", Content: "A function calling itself."},
		{Role: "user", Content: "Show me an example"},
	}, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(captured.Contents) != 3 {
		t.Fatalf("expected 3 content entries, got %d", len(captured.Contents))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, content := range captured.Contents {
		if content.Role != wantRoles[i] {
			t.Errorf("content %d role = %q, want %q", i, content.Role, wantRoles[i])
		}
	}
	if captured.GenerationConfig == nil {
		t.Fatal("multi-turn request must carry a generation config")
	}
	if captured.GenerationConfig.MaxOutputTokens != multiTurnMaxOutputTokens {
		t.Errorf("maxOutputTokens = %d", captured.GenerationConfig.MaxOutputTokens)
	}
	if captured.GenerationConfig.Temperature != multiTurnTemperature {
		t.Errorf("temperature = %v", captured.GenerationConfig.Temperature)
	}
}

func TestGenerateDropsSystemEntries(t *testing.T) {
	var captured models.GeminiRequest
	server := geminiServer(t, "ok", &captured)
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-2.5-flash")
	_, err := client.Generate(context.Background(), []ChatMessage{
		{Role: "system", Content: "ignored"},
		{Role: "user", Content: "hello"},
	}, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	// With the system entry dropped a single user turn remains, so the
	// request takes the single-shot shape.
	if len(captured.Contents) != 1 {
		t.Errorf("expected 1 content entry, got %d", len(captured.Contents))
	}
}

func TestGenerateEmptyConversation(t *testing.T) {
	client := NewGeminiClient("http://unused", "test-key", "gemini-2.5-flash")
	_, err := client.Generate(context.Background(), nil, "")
	if err == nil {
		t.Fatal("expected an error for an empty conversation")
	}
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(models.GeminiResponse{
			Error: &models.GeminiAPIError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"},
		})
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-2.5-flash")
	_, err := client.Generate(context.Background(),
		[]ChatMessage{{Role: "user", Content: "hello"}}, "")
	if err == nil {
		t.Fatal("expected an error from the API error body")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("error does not surface the API message: %v", err)
	}
}

func TestGenerateEmptyCandidatesFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.GeminiResponse{})
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-2.5-flash")
	reply, err := client.Generate(context.Background(),
		[]ChatMessage{{Role: "user", Content: "hello"}}, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if reply != fallbackReply {
		t.Errorf("expected fallback reply, got %q", reply)
	}
}
