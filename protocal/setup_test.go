package protocal

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"talk-lmstudio/configs"
	"talk-lmstudio/internal/domain"

	"github.com/sirupsen/logrus"
)

// stubGenerationService implements input.GenerationService for route tests
type stubGenerationService struct{}

func (stubGenerationService) Generate(ctx context.Context, prompt string, params domain.GenerateParams, onToken domain.TokenFunc) error {
	onToken(domain.FinalToken())
	return nil
}

func (stubGenerationService) Stream(ctx context.Context, prompt string, params domain.GenerateParams) <-chan domain.Token {
	ch := make(chan domain.Token, 1)
	ch <- domain.FinalToken()
	close(ch)
	return ch
}

func (stubGenerationService) Complete(ctx context.Context, prompt string, params domain.GenerateParams) (string, error) {
	return "ok", nil
}

func (stubGenerationService) ListModels(ctx context.Context) ([]domain.ModelInfo, error) {
	return []domain.ModelInfo{{ID: "test-model"}}, nil
}

func (stubGenerationService) Ping(ctx context.Context) error {
	return nil
}

func testConfig() *configs.Config {
	return &configs.Config{
		App:      configs.App{Port: "9089", LogLevel: "info", LogFormat: "text"},
		LMStudio: configs.LMStudio{BaseURL: "http://localhost:1234/v1", Model: "test-model", TimeoutMs: 1000, Stream: false},
		Generate: configs.Generate{MaxTokens: 64, Temperature: 0.1, TopK: 20, TopP: 0.9, MinP: 0.01, Seed: 42, Stop: []string{"END"}},
		Metrics:  configs.Metrics{Enabled: true, Path: "/metrics"},
	}
}

func TestGenerateDefaults(t *testing.T) {
	params := GenerateDefaults(testConfig())

	if params.MaxTokens != 64 || params.Temperature != 0.1 || params.TopK != 20 {
		t.Errorf("unexpected sampling defaults: %+v", params)
	}
	if params.TopP != 0.9 || params.MinP != 0.01 || params.Seed != 42 {
		t.Errorf("unexpected sampling defaults: %+v", params)
	}
	if len(params.Stop) != 1 || params.Stop[0] != "END" {
		t.Errorf("expected stop sequences from config, got %v", params.Stop)
	}
	if params.Stream {
		t.Error("expected stream flag to follow lmstudio.stream")
	}

	conf := testConfig()
	conf.LMStudio.Stream = true
	if !GenerateDefaults(conf).Stream {
		t.Error("expected streaming when lmstudio.stream is set")
	}
}

func TestConfigureLogging(t *testing.T) {
	defer logrus.SetLevel(logrus.InfoLevel)
	defer logrus.SetFormatter(&logrus.TextFormatter{})

	ConfigureLogging(configs.App{LogLevel: "warn", LogFormat: "json"})
	if logrus.GetLevel() != logrus.WarnLevel {
		t.Errorf("expected warn level, got %v", logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", logrus.StandardLogger().Formatter)
	}

	ConfigureLogging(configs.App{LogLevel: "nonsense", Debug: true})
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level in debug mode, got %v", logrus.GetLevel())
	}

	ConfigureLogging(configs.App{LogLevel: "nonsense"})
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected fallback to info level, got %v", logrus.GetLevel())
	}
}

func TestNewAppRoutes(t *testing.T) {
	app := NewApp(testConfig(), stubGenerationService{})

	tests := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{method: "GET", path: "/health", code: 200},
		{method: "GET", path: "/v1/models", code: 200},
		{method: "POST", path: "/v1/generate", body: `{"prompt":"hi"}`, code: 200},
		{method: "GET", path: "/metrics", code: 200},
		{method: "GET", path: "/v1/unknown", code: 404},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("%s %s: request failed: %v", tt.method, tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.code {
			t.Errorf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.code, resp.StatusCode)
		}
		if tt.code == 200 && resp.Header.Get("X-Request-Id") == "" {
			t.Errorf("%s %s: expected X-Request-Id header", tt.method, tt.path)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := NewApp(testConfig(), stubGenerationService{})

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "talk_lmstudio_generations_active") {
		t.Error("expected generation metrics to be exported")
	}

	conf := testConfig()
	conf.Metrics.Enabled = false
	resp, err = NewApp(conf, stubGenerationService{}).Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("expected 404 with metrics disabled, got %d", resp.StatusCode)
	}
}
