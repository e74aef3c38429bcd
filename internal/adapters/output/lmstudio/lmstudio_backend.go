package lmstudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"talk-lmstudio/configs"
	"talk-lmstudio/internal/domain"
	"talk-lmstudio/internal/ports/output"
	"talk-lmstudio/pkg/validator"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure LMStudioBackend implements LLMBackend interface
var _ output.LLMBackend = (*LMStudioBackend)(nil)

// BackendName identifies this provider in logs and metrics
const BackendName = "lmstudio"

// Streaming configuration constants
const (
	streamReadBufferSize = 4096
)

// LMStudioBackend struct - Output adapter for LM Studio's OpenAI-compatible API
type LMStudioBackend struct {
	opts      domain.BackendOptions
	endpoint  string
	validator validator.Validator

	mu         sync.Mutex
	httpClient *http.Client
}

// OptionsFromConfig func - Maps the lmstudio config section onto backend options,
// falling back to the stock defaults for unset values
func OptionsFromConfig(config configs.LMStudio) domain.BackendOptions {
	opts := domain.DefaultBackendOptions()
	if config.BaseURL != "" {
		opts.URL = config.BaseURL
	}
	if config.APIKey != "" {
		opts.APIKey = config.APIKey
	}
	if config.TimeoutMs > 0 {
		opts.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	}
	opts.ModelID = config.Model
	opts.Stream = config.Stream
	return opts
}

// NewLMStudioBackend func - Creates new LM Studio backend. Call Init before use;
// Generate initializes lazily when it was not called.
func NewLMStudioBackend(opts domain.BackendOptions) *LMStudioBackend {
	return &LMStudioBackend{
		opts:      opts,
		endpoint:  chatCompletionsURL(opts.URL),
		validator: validator.New(),
	}
}

// Name returns the provider identifier
func (b *LMStudioBackend) Name() string {
	return BackendName
}

// Options returns the static configuration of the backend
func (b *LMStudioBackend) Options() domain.BackendOptions {
	return b.opts
}

// Init validates the options and builds the HTTP client
func (b *LMStudioBackend) Init() error {
	_, err := b.client()
	return err
}

// Shutdown closes idle connections and drops the HTTP client
func (b *LMStudioBackend) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.httpClient == nil {
		return
	}
	b.httpClient.CloseIdleConnections()
	b.httpClient = nil
	logrus.Infof("LM Studio backend shut down")
}

func (b *LMStudioBackend) client() (*http.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.httpClient != nil {
		return b.httpClient, nil
	}
	if err := b.validator.ValidateStruct(b.opts); err != nil {
		return nil, fmt.Errorf("invalid LM Studio options: %w", err)
	}

	b.httpClient = &http.Client{
		Timeout: b.opts.Timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	logrus.Infof("LM Studio backend initialized with endpoint: %s, model: %s, timeout: %v",
		b.endpoint, b.opts.ModelID, b.opts.Timeout)

	return b.httpClient, nil
}

// Generate sends one chat completion request and forwards the reply to onToken,
// either as a single block or as streamed fragments depending on params.Stream.
// No retries are attempted.
func (b *LMStudioBackend) Generate(ctx context.Context, prompt string, params domain.GenerateParams, onToken domain.TokenFunc) error {
	if b.opts.ModelID == "" {
		return fail(onToken, "[LMStudio] model_id not set", domain.ErrModelNotSet)
	}

	client, err := b.client()
	if err != nil {
		return fail(onToken, "[LMStudio] "+err.Error(), fmt.Errorf("%w: %v", domain.ErrRequestInit, err))
	}

	body, err := buildChatRequest(b.opts.ModelID, prompt, params)
	if err != nil {
		return fail(onToken, "[LMStudio] "+err.Error(), fmt.Errorf("%w: %v", domain.ErrRequestInit, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return fail(onToken, "[LMStudio] "+err.Error(), fmt.Errorf("%w: %v", domain.ErrRequestInit, err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.opts.APIKey)
	if params.Stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := client.Do(req)
	if err != nil {
		logrus.Errorf("LM Studio request failed: %v", err)
		return fail(onToken, httpErrorText(0, err.Error()), classifyTransportError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := extractErrorMessage(resp.Body)
		logrus.Errorf("LM Studio returned status %d: %s", resp.StatusCode, message)
		return fail(onToken, httpErrorText(resp.StatusCode, statusReason(resp.StatusCode, message)), statusError(resp.StatusCode, message))
	}

	if params.Stream {
		return readStream(resp.Body, onToken)
	}
	return readCompletion(resp.Body, onToken)
}

// readStream feeds the response body to the SSE decoder in whatever chunks the
// transport delivers, until [DONE] or end of body.
func readStream(body io.Reader, onToken domain.TokenFunc) error {
	dec := newSSEDecoder(onToken)
	buf := make([]byte, streamReadBufferSize)

	for !dec.Done() {
		n, err := body.Read(buf)
		if n > 0 {
			dec.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if dec.Done() {
				break
			}
			logrus.Errorf("Error reading streaming response: %v", err)
			onToken(domain.TextToken(httpErrorText(http.StatusOK, err.Error())))
			dec.Close()
			return classifyTransportError(err)
		}
	}

	dec.Close()
	return nil
}

// readCompletion reads a whole non-streaming response and emits its text as one token
func readCompletion(body io.Reader, onToken domain.TokenFunc) error {
	data, err := io.ReadAll(body)
	if err != nil {
		logrus.Errorf("Error reading completion response: %v", err)
		return fail(onToken, httpErrorText(http.StatusOK, err.Error()), classifyTransportError(err))
	}

	text, err := extractCompletionText(data)
	if err != nil {
		logrus.Warnf("Failed to parse completion response: %v", err)
		return fail(onToken, "[LMStudio parse error]", fmt.Errorf("%w: %v", domain.ErrResponseParse, err))
	}

	if text != "" {
		onToken(domain.TextToken(text))
	}
	onToken(domain.FinalToken())
	return nil
}

// fail reports err through the token stream, terminates it, and returns err
func fail(onToken domain.TokenFunc, text string, err error) error {
	onToken(domain.TextToken(text))
	onToken(domain.FinalToken())
	return err
}

func httpErrorText(code int, reason string) string {
	return fmt.Sprintf("[LMStudio HTTP %d] %s", code, reason)
}

func statusReason(code int, message string) string {
	reason := http.StatusText(code)
	if reason == "" {
		reason = "unexpected status"
	}
	if message != "" {
		return reason + ": " + message
	}
	return reason
}

func statusError(code int, message string) error {
	if code >= 400 && code < 500 {
		return fmt.Errorf("%w: status %d - %s", domain.ErrInvalidRequest, code, message)
	}
	if code >= 500 {
		return fmt.Errorf("%w: status %d - %s", domain.ErrLMStudioUnavailable, code, message)
	}
	return fmt.Errorf("%w: status %d - %s", domain.ErrUnexpectedStatus, code, message)
}

// classifyTransportError maps a transport error onto the domain error kinds
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrLMStudioTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrLMStudioTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrLMStudioUnavailable, err)
}

// isTransientError determines if an error or status code is transient and should be retried
func isTransientError(err error, statusCode int) bool {
	if statusCode >= 500 && statusCode < 600 {
		return true
	}
	if statusCode >= 400 && statusCode < 500 {
		return false
	}
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errMsg := strings.ToLower(err.Error())
	for _, pattern := range []string{"connection refused", "connection reset", "no such host", "network is unreachable", "i/o timeout", "eof"} {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
