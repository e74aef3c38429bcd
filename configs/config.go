package configs

import (
	"errors"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App      `mapstructure:"app"`
	LMStudio `mapstructure:"lmstudio"`
	Generate `mapstructure:"generate"`
	Metrics  `mapstructure:"metrics"`
}

// App struct
type App struct {
	Debug     bool   `mapstructure:"debug"`
	Env       string `mapstructure:"env"`
	Port      string `mapstructure:"port"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// LMStudio struct - connection settings for the OpenAI-compatible server
type LMStudio struct {
	BaseURL   string `mapstructure:"base_url"`
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
	Stream    bool   `mapstructure:"stream"`
}

// Generate struct - default sampling parameters
type Generate struct {
	MaxTokens    int      `mapstructure:"max_tokens"`
	Temperature  float64  `mapstructure:"temperature"`
	TopK         int      `mapstructure:"top_k"`
	TopP         float64  `mapstructure:"top_p"`
	MinP         float64  `mapstructure:"min_p"`
	Seed         int      `mapstructure:"seed"`
	SystemPrompt string   `mapstructure:"system_prompt"`
	Stop         []string `mapstructure:"stop"`
}

// Metrics struct
type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

var config Config

// InitViper func
func InitViper(path, env string) {
	cfg, err := Load(path, env)
	if err != nil {
		panic(err)
	}
	config = *cfg
}

// GetViper func
func GetViper() *Config {
	return &config
}

// Load reads config.yaml from path, applies environment overrides
// (LMSTUDIO_MODEL overrides lmstudio.model and so on) and watches the file for changes.
// A missing config file is not an error; defaults apply.
func Load(path, env string) (*Config, error) {
	v := viper.New()
	setDefaults(v, env)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			logrus.Infof("Config file has changed: %s", e.Name)
		})
	case errors.As(err, &notFound):
		logrus.Debugf("No config file found in %s, using defaults", path)
	default:
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.env", env)
	v.SetDefault("app.port", "9089")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")

	v.SetDefault("lmstudio.base_url", "http://localhost:1234/v1")
	v.SetDefault("lmstudio.api_key", "lm-studio")
	v.SetDefault("lmstudio.model", "")
	v.SetDefault("lmstudio.timeout_ms", 60000)
	v.SetDefault("lmstudio.stream", true)

	v.SetDefault("generate.max_tokens", 256)
	v.SetDefault("generate.temperature", 0.7)
	v.SetDefault("generate.top_k", 40)
	v.SetDefault("generate.top_p", 0.95)
	v.SetDefault("generate.min_p", 0.05)
	v.SetDefault("generate.seed", -1)
	v.SetDefault("generate.system_prompt", "")
	v.SetDefault("generate.stop", []string{})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}
