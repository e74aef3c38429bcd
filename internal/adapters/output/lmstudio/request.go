package lmstudio

import (
	"strings"

	"talk-lmstudio/internal/domain"

	"github.com/goccy/go-json"
)

// API request/response structures for LM Studio's OpenAI-compatible API

// chatMessageAPI represents a message in the API request
type chatMessageAPI struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionAPIRequest represents the request body for chat completions.
// Seed is omitted when unset and Stop when empty.
type chatCompletionAPIRequest struct {
	Model       string           `json:"model"`
	Stream      bool             `json:"stream"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	TopP        float64          `json:"top_p"`
	TopK        int              `json:"top_k"`
	MinP        float64          `json:"min_p"`
	Seed        *int             `json:"seed,omitempty"`
	Stop        []string         `json:"stop,omitempty"`
	Messages    []chatMessageAPI `json:"messages"`
}

// chatCompletionsURL strips one trailing slash from the base URL and appends the endpoint path
func chatCompletionsURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/chat/completions"
}

// modelsURL returns the model listing endpoint for the base URL
func modelsURL(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/") + "/models"
}

// newChatRequest maps the prompt and sampling parameters onto the wire request
func newChatRequest(model, prompt string, params domain.GenerateParams) chatCompletionAPIRequest {
	req := chatCompletionAPIRequest{
		Model:       model,
		Stream:      params.Stream,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		TopK:        params.TopK,
		MinP:        params.MinP,
		Messages:    make([]chatMessageAPI, 0, 2),
	}
	if params.HasSeed() {
		seed := params.Seed
		req.Seed = &seed
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	if params.SystemPrompt != "" {
		req.Messages = append(req.Messages, chatMessageAPI{Role: "system", Content: params.SystemPrompt})
	}
	req.Messages = append(req.Messages, chatMessageAPI{Role: "user", Content: prompt})
	return req
}

// buildChatRequest returns the JSON body for a chat completion request
func buildChatRequest(model, prompt string, params domain.GenerateParams) ([]byte, error) {
	return json.Marshal(newChatRequest(model, prompt, params))
}
