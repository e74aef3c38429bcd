package lmstudio

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"talk-lmstudio/internal/domain"

	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
)

// Retry configuration for model listing. Generation is never retried.
const (
	maxRetryAttempts  = 4
	initialDelay      = 500 * time.Millisecond
	maxDelay          = 5 * time.Second
	backoffMultiplier = 2
)

// modelsResponse represents the response from the /models endpoint
type modelsResponse struct {
	Object string `json:"object"`
	Data   []struct {
		ID      string `json:"id"`
		Object  string `json:"object"`
		OwnedBy string `json:"owned_by"`
	} `json:"data"`
}

// ListModels queries the /models endpoint to retrieve available models from LM Studio
func (b *LMStudioBackend) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	return b.listModels(ctx, maxRetryAttempts)
}

// Ping checks that LM Studio answers the /models endpoint, with a single attempt
func (b *LMStudioBackend) Ping(ctx context.Context) error {
	_, err := b.listModels(ctx, 1)
	return err
}

func (b *LMStudioBackend) listModels(ctx context.Context, attempts int) ([]domain.ModelInfo, error) {
	client, err := b.client()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRequestInit, err)
	}

	url := modelsURL(b.opts.URL)
	resp, err := retryWithBackoff(ctx, attempts, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+b.opts.APIKey)
		return client.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	defer resp.Body.Close()

	var modelsResp modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse models response: %v", domain.ErrResponseParse, err)
	}

	models := make([]domain.ModelInfo, len(modelsResp.Data))
	for i, m := range modelsResp.Data {
		models[i] = domain.ModelInfo{
			ID:      m.ID,
			Object:  m.Object,
			OwnedBy: m.OwnedBy,
		}
	}

	logrus.Infof("Listed %d models from LM Studio", len(models))

	return models, nil
}

// retryWithBackoff executes an operation up to attempts times with exponential backoff.
// 4xx responses fail immediately; 5xx responses and transient network errors are retried.
func retryWithBackoff(ctx context.Context, attempts int, operation func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := operation()

		if err != nil {
			if !isTransientError(err, 0) {
				return nil, classifyTransportError(err)
			}
			lastErr = err
			logrus.Warnf("LM Studio request attempt %d/%d failed with error: %v, retrying in %v", attempt, attempts, err, delay)
		} else {
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			message := extractErrorMessage(resp.Body)
			resp.Body.Close()
			if !isTransientError(nil, resp.StatusCode) {
				return nil, statusError(resp.StatusCode, message)
			}
			lastErr = fmt.Errorf("server error: status %d - %s", resp.StatusCode, message)
			logrus.Warnf("LM Studio request attempt %d/%d failed with status %d, retrying in %v", attempt, attempts, resp.StatusCode, delay)
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}

			delay = delay * backoffMultiplier
			if delay > maxDelay {
				delay = maxDelay
			}
		}
	}

	return nil, fmt.Errorf("%w: %v after %d attempts", domain.ErrLMStudioUnavailable, lastErr, attempts)
}
