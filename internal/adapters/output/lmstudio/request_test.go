package lmstudio

import (
	"encoding/json"
	"testing"

	"talk-lmstudio/internal/domain"
)

func TestChatCompletionsURL(t *testing.T) {
	tests := map[string]string{
		"http://localhost:1234/v1":   "http://localhost:1234/v1/chat/completions",
		"http://localhost:1234/v1/":  "http://localhost:1234/v1/chat/completions",
		"http://localhost:1234/v1//": "http://localhost:1234/v1//chat/completions",
	}
	for base, expected := range tests {
		if got := chatCompletionsURL(base); got != expected {
			t.Errorf("chatCompletionsURL(%q) = %q, expected %q", base, got, expected)
		}
	}

	if got := modelsURL("http://localhost:1234/v1/"); got != "http://localhost:1234/v1/models" {
		t.Errorf("expected models URL http://localhost:1234/v1/models, got %q", got)
	}
}

func TestBuildChatRequestDefaults(t *testing.T) {
	body, err := buildChatRequest("m", "hello", domain.DefaultGenerateParams())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("request body is not valid JSON: %v", err)
	}

	expected := map[string]any{
		"model":       "m",
		"stream":      true,
		"max_tokens":  float64(256),
		"temperature": 0.7,
		"top_p":       0.95,
		"top_k":       float64(40),
		"min_p":       0.05,
	}
	for key, value := range expected {
		if decoded[key] != value {
			t.Errorf("expected %s=%v, got %v", key, value, decoded[key])
		}
	}
	for _, key := range []string{"seed", "stop"} {
		if _, ok := decoded[key]; ok {
			t.Errorf("expected %s to be omitted", key)
		}
	}

	messages, ok := decoded["messages"].([]any)
	if !ok || len(messages) != 1 {
		t.Fatalf("expected a single user message, got %v", decoded["messages"])
	}
	msg := messages[0].(map[string]any)
	if msg["role"] != "user" || msg["content"] != "hello" {
		t.Errorf("unexpected user message: %v", msg)
	}
}

func TestNewChatRequestSeedZeroIsSent(t *testing.T) {
	params := domain.DefaultGenerateParams()
	params.Seed = 0

	req := newChatRequest("m", "hi", params)
	if req.Seed == nil || *req.Seed != 0 {
		t.Errorf("expected seed 0 to be sent, got %v", req.Seed)
	}
}

func TestNewChatRequestSystemPromptFirst(t *testing.T) {
	params := domain.DefaultGenerateParams()
	params.SystemPrompt = "You are terse."

	req := newChatRequest("m", "hi", params)
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != "You are terse." {
		t.Errorf("expected system message first, got %+v", req.Messages[0])
	}
	if req.Messages[1].Role != "user" || req.Messages[1].Content != "hi" {
		t.Errorf("expected user message second, got %+v", req.Messages[1])
	}
}
