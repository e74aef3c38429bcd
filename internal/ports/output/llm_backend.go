package output

import (
	"context"

	"talk-lmstudio/internal/domain"
)

// LLMBackend interface - Output port
// Defines what the application needs from a text generation provider.
// Implementations are configured once at construction; each Generate call is independent.
type LLMBackend interface {
	// Name returns the provider identifier (e.g. "lmstudio").
	Name() string

	// Init prepares the backend for use. It validates the static options
	// and sets up the transport.
	Init() error

	// Shutdown releases transport resources. The backend may be re-initialized afterwards.
	Shutdown()

	// Generate runs one generation for prompt and delivers its output through onToken,
	// on the calling goroutine and in arrival order. Exactly one final token is
	// delivered on every path, including failures. A failure is also reported as a
	// text token before the final one, and returned as a non-nil error.
	Generate(ctx context.Context, prompt string, params domain.GenerateParams, onToken domain.TokenFunc) error

	// ListModels queries the server for the models it can serve.
	ListModels(ctx context.Context) ([]domain.ModelInfo, error)

	// Ping reports whether the server is reachable, without retrying.
	Ping(ctx context.Context) error
}
