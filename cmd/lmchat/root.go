package main

import (
	"fmt"

	"talk-lmstudio/configs"
	"talk-lmstudio/internal/adapters/output/lmstudio"
	"talk-lmstudio/internal/application"
	"talk-lmstudio/protocal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cliApp holds the persistent flags and the config they resolve to
type cliApp struct {
	configDir string
	env       string
	url       string
	model     string
	verbose   bool

	conf *configs.Config
}

func newRootCmd() *cobra.Command {
	a := &cliApp{}

	rootCmd := &cobra.Command{
		Use:   "lmchat",
		Short: "Talk to a local LM Studio server",
		Long: `lmchat sends prompts to an OpenAI-compatible LM Studio server and prints
the reply as it streams in. Settings come from config.yaml in the --config
directory, LMSTUDIO_* environment variables, and flags, in increasing priority.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return a.load() },
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configDir, "config", "./configs", "directory containing config.yaml")
	flags.StringVar(&a.env, "env", "", "the environment to use")
	flags.StringVar(&a.url, "url", "", "LM Studio base URL (overrides lmstudio.base_url)")
	flags.StringVarP(&a.model, "model", "m", "", "model id (overrides lmstudio.model)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log at the configured level instead of warnings only")

	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newChatCmd(a))
	rootCmd.AddCommand(newModelsCmd(a))
	rootCmd.AddCommand(newServeCmd(a))

	return rootCmd
}

func (a *cliApp) load() error {
	conf, err := configs.Load(a.configDir, a.env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.url != "" {
		conf.LMStudio.BaseURL = a.url
	}
	if a.model != "" {
		conf.LMStudio.Model = a.model
	}

	protocal.ConfigureLogging(conf.App)
	if !a.verbose && logrus.GetLevel() > logrus.WarnLevel {
		logrus.SetLevel(logrus.WarnLevel)
	}

	a.conf = conf
	return nil
}

// newService builds the generation service; the returned func shuts the backend down
func (a *cliApp) newService() (*application.GenerationService, func(), error) {
	backend := lmstudio.NewLMStudioBackend(lmstudio.OptionsFromConfig(a.conf.LMStudio))
	if err := backend.Init(); err != nil {
		return nil, nil, err
	}
	return application.NewGenerationService(backend), backend.Shutdown, nil
}
