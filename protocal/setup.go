package protocal

import (
	"os"
	"strings"

	"talk-lmstudio/configs"
	"talk-lmstudio/internal/adapters/output/lmstudio"
	"talk-lmstudio/internal/domain"

	"github.com/sirupsen/logrus"
)

// ConfigureLogging applies the level and formatter of the app config section
// to the package-level logrus logger. Debug mode forces the debug level.
func ConfigureLogging(app configs.App) {
	logrus.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(app.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", app.LogLevel)
		level = logrus.InfoLevel
	}
	if app.Debug {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)

	switch strings.ToLower(app.LogFormat) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// GenerateDefaults returns the sampling parameters used when a caller sets none.
// The stream flag follows the stream preference of the backend options.
func GenerateDefaults(conf *configs.Config) domain.GenerateParams {
	return domain.GenerateParams{
		MaxTokens:    conf.Generate.MaxTokens,
		Temperature:  conf.Generate.Temperature,
		TopK:         conf.Generate.TopK,
		TopP:         conf.Generate.TopP,
		MinP:         conf.Generate.MinP,
		Seed:         conf.Generate.Seed,
		SystemPrompt: conf.Generate.SystemPrompt,
		Stop:         conf.Generate.Stop,
		Stream:       lmstudio.OptionsFromConfig(conf.LMStudio).Stream,
	}
}
