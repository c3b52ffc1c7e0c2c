package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bhanu100141/StudyBuddy/internal/models"
)

const (
	fallbackReply = "Sorry, I could not generate a response."

	multiTurnMaxOutputTokens = 1000
	multiTurnTemperature     = 0.7
)

// ChatMessage is one turn of conversation history passed to the generator.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator produces an assistant reply from a conversation history and an
// optional grounding context assembled from uploaded materials.
type Generator interface {
	Generate(ctx context.Context, messages []ChatMessage, contextText string) (string, error)
}

// GeminiClient calls the Gemini generateContent endpoint.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a client for the given API key and model.
// baseURL is overridable so tests can point at a local server.
func NewGeminiClient(baseURL, apiKey, model string) *GeminiClient {
	return &GeminiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate implements Generator.
//
// The Gemini API distinguishes a first message from an ongoing conversation:
// with a single-entry history the system prompt and user message are combined
// into one prompt, while longer histories are sent as chat history with only
// the latest user entry as the new input. Any system-role entries in the
// incoming history are dropped first.
func (g *GeminiClient) Generate(ctx context.Context, messages []ChatMessage, contextText string) (string, error) {
	systemPrompt := "You are a helpful study buddy assistant. Help students with their questions and provide clear explanations."
	if contextText != "" {
		systemPrompt = "You are a helpful study buddy assistant. Use the following context from uploaded materials to answer questions:\n\n" + contextText
	}

	conversation := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == "system" {
			continue
		}
		conversation = append(conversation, msg)
	}
	if len(conversation) == 0 {
		return "", fmt.Errorf("failed to generate response: empty conversation")
	}

	var req models.GeminiRequest
	if len(conversation) == 1 {
		// First message - include system prompt in a single-shot prompt
		req.Contents = []models.GeminiContent{{
			Role:  "user",
			Parts: []models.GeminiPart{{Text: systemPrompt + "\n\n" + conversation[0].Content}},
		}}
	} else {
		// Multi-turn conversation - pass prior turns as history and send
		// only the latest user entry as the new input
		for _, msg := range conversation {
			role := "user"
			if msg.Role == "assistant" {
				role = "model"
			}
			req.Contents = append(req.Contents, models.GeminiContent{
				Role:  role,
				Parts: []models.GeminiPart{{Text: msg.Content}},
			})
		}
		req.GenerationConfig = &models.GeminiGenerationConfig{
			MaxOutputTokens: multiTurnMaxOutputTokens,
			Temperature:     multiTurnTemperature,
		}
	}

	resp, err := g.call(ctx, &req)
	if err != nil {
		return "", err
	}

	text := candidateText(resp)
	if text == "" {
		return fallbackReply, nil
	}
	return text, nil
}

func (g *GeminiClient) call(ctx context.Context, req *models.GeminiRequest) (*models.GeminiResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	var resp models.GeminiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("failed to generate response: %s", resp.Error.Message)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to generate response: unexpected status %s", httpResp.Status)
	}
	return &resp, nil
}

func candidateText(resp *models.GeminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
