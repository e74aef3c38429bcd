package input

import (
	"context"

	"talk-lmstudio/internal/domain"
)

// GenerationService interface - Input port (use case)
// Defines what callers can do with the configured text generation backend
type GenerationService interface {
	// Generate delivers tokens to onToken and returns the failure, if any.
	Generate(ctx context.Context, prompt string, params domain.GenerateParams, onToken domain.TokenFunc) error

	// Stream delivers the same tokens on a channel, which is closed when the
	// generation ends. The last value is normally the final token, carrying the
	// failure in Err. When ctx is cancelled and the buffer is full, remaining
	// tokens, the final one included, are dropped and the channel just closes.
	Stream(ctx context.Context, prompt string, params domain.GenerateParams) <-chan domain.Token

	// Complete returns the concatenated text of a successful generation.
	Complete(ctx context.Context, prompt string, params domain.GenerateParams) (string, error)

	// ListModels returns the models advertised by the backend.
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
