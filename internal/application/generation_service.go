package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"talk-lmstudio/internal/domain"
	"talk-lmstudio/internal/ports/input"
	"talk-lmstudio/internal/ports/output"
	"talk-lmstudio/pkg/metrics"
	"talk-lmstudio/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure GenerationService implements the input port
var _ input.GenerationService = (*GenerationService)(nil)

// streamingChannelBufferSize is the buffer of channels returned by Stream
const streamingChannelBufferSize = 100

// GenerationService struct - Application service implementing text generation use cases
type GenerationService struct {
	backend   output.LLMBackend
	validator validator.Validator
}

// NewGenerationService func - Creates new generation service on top of a backend
func NewGenerationService(backend output.LLMBackend) *GenerationService {
	return &GenerationService{
		backend:   backend,
		validator: validator.New(),
	}
}

// Generate func - Use case: run one generation and deliver tokens to onToken.
// Invalid params are reported like any other failure: an error token, the final token, and an error.
func (s *GenerationService) Generate(ctx context.Context, prompt string, params domain.GenerateParams, onToken domain.TokenFunc) error {
	backendName := s.backend.Name()
	mode := metrics.Mode(params.Stream)
	log := logrus.WithFields(logrus.Fields{
		"request_id": uuid.New().String(),
		"backend":    backendName,
		"mode":       mode,
	})

	if err := s.validator.ValidateStruct(params); err != nil {
		msg := strings.Join(validator.Messages(err), "; ")
		log.Warnf("Rejected generation with invalid params: %s", msg)
		onToken(domain.TextToken("[generate] invalid params: " + msg))
		onToken(domain.FinalToken())
		metrics.GenerationsTotal.WithLabelValues(backendName, mode, metrics.StatusError).Inc()
		return fmt.Errorf("%w: %s", domain.ErrInvalidParams, msg)
	}

	log.Infof("Generation started: prompt_len=%d, max_tokens=%d", len(prompt), params.MaxTokens)

	metrics.ActiveGenerations.Inc()
	defer metrics.ActiveGenerations.Dec()

	start := time.Now()
	var firstToken time.Duration
	tokens := 0

	err := s.backend.Generate(ctx, prompt, params, func(token domain.Token) {
		if !token.IsFinal && token.Text != "" {
			if tokens == 0 {
				firstToken = time.Since(start)
			}
			tokens++
		}
		onToken(token)
	})

	elapsed := time.Since(start)
	metrics.GenerationsTotal.WithLabelValues(backendName, mode, metrics.Status(err)).Inc()
	metrics.GenerationDuration.WithLabelValues(backendName, mode).Observe(elapsed.Seconds())

	if err != nil {
		log.Errorf("Generation failed after %v: %v", elapsed, err)
		return err
	}

	metrics.TokensTotal.WithLabelValues(backendName).Add(float64(tokens))
	if tokens > 0 {
		metrics.TimeToFirstToken.WithLabelValues(backendName).Observe(firstToken.Seconds())
	}
	log.Infof("Generation finished: tokens=%d, elapsed=%v, first_token=%v", tokens, elapsed, firstToken)
	return nil
}

// Stream func - Use case: run one generation in the background and deliver tokens on a channel.
// The channel yields one final token, carrying the failure in Err, and is then closed.
// Cancelling ctx stops delivery; the final token is then sent only when the buffer has room.
func (s *GenerationService) Stream(ctx context.Context, prompt string, params domain.GenerateParams) <-chan domain.Token {
	tokenChan := make(chan domain.Token, streamingChannelBufferSize)

	go func() {
		defer close(tokenChan)

		final := domain.FinalToken()
		err := s.Generate(ctx, prompt, params, func(token domain.Token) {
			if token.IsFinal {
				final = token
				return
			}
			select {
			case tokenChan <- token:
			case <-ctx.Done():
			}
		})
		final.Err = err

		select {
		case tokenChan <- final:
		case <-ctx.Done():
			select {
			case tokenChan <- final:
			default:
				logrus.Debug("Dropped final token of cancelled stream")
			}
		}
	}()

	return tokenChan
}

// Complete func - Use case: run one generation and return its whole text
func (s *GenerationService) Complete(ctx context.Context, prompt string, params domain.GenerateParams) (string, error) {
	var sb strings.Builder

	err := s.Generate(ctx, prompt, params, func(token domain.Token) {
		if !token.IsFinal {
			sb.WriteString(token.Text)
		}
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ListModels func - Use case: list the models served by the backend
func (s *GenerationService) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	models, err := s.backend.ListModels(ctx)
	if err != nil {
		logrus.Errorf("Failed to list models from %s: %v", s.backend.Name(), err)
		return nil, err
	}
	return models, nil
}

// Ping func - Use case: check that the backend answers, without retries
func (s *GenerationService) Ping(ctx context.Context) error {
	if err := s.backend.Ping(ctx); err != nil {
		logrus.Warnf("%s is not reachable: %v", s.backend.Name(), err)
		return err
	}
	return nil
}
