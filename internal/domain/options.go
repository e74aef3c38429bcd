package domain

import "time"

// Default backend connection settings for a local LM Studio server
const (
	DefaultLMStudioURL    = "http://localhost:1234/v1"
	DefaultLMStudioAPIKey = "lm-studio"
	DefaultTimeout        = 60 * time.Second
)

// BackendOptions is the static configuration of an LLM backend, set once at construction.
type BackendOptions struct {
	URL     string        `validate:"required,url"`
	APIKey  string        `validate:"omitempty"`
	ModelID string        `validate:"omitempty"`
	Timeout time.Duration `validate:"gt=0"`
	// Stream is the preferred delivery mode. Generate follows GenerateParams.Stream;
	// this value only seeds the defaults handed to callers.
	Stream bool
}

// DefaultBackendOptions returns options pointing at a local LM Studio server.
// ModelID is left empty and must be set before generating.
func DefaultBackendOptions() BackendOptions {
	return BackendOptions{
		URL:     DefaultLMStudioURL,
		APIKey:  DefaultLMStudioAPIKey,
		Timeout: DefaultTimeout,
		Stream:  true,
	}
}
