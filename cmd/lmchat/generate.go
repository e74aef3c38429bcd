package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"talk-lmstudio/internal/domain"
	"talk-lmstudio/internal/ports/input"
	"talk-lmstudio/protocal"

	"github.com/spf13/cobra"
)

// samplingFlags are the per-call overrides of the generate config section
type samplingFlags struct {
	maxTokens   int
	temperature float64
	topK        int
	topP        float64
	minP        float64
	seed        int
	system      string
	stop        []string
	noStream    bool
}

func (f *samplingFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&f.maxTokens, "max-tokens", "n", domain.DefaultMaxTokens, "maximum number of tokens to generate")
	flags.Float64VarP(&f.temperature, "temperature", "t", domain.DefaultTemperature, "sampling temperature")
	flags.IntVar(&f.topK, "top-k", domain.DefaultTopK, "top-k sampling")
	flags.Float64Var(&f.topP, "top-p", domain.DefaultTopP, "nucleus sampling probability")
	flags.Float64Var(&f.minP, "min-p", domain.DefaultMinP, "minimum token probability")
	flags.IntVar(&f.seed, "seed", domain.DefaultSeed, "sampling seed, negative for none")
	flags.StringVarP(&f.system, "system", "s", "", "system prompt")
	flags.StringSliceVar(&f.stop, "stop", nil, "stop sequence, repeatable")
	flags.BoolVar(&f.noStream, "no-stream", false, "wait for the whole reply instead of streaming")
}

// params overlays the flags the user set onto the configured defaults
func (f *samplingFlags) params(cmd *cobra.Command, defaults domain.GenerateParams) domain.GenerateParams {
	params := defaults
	flags := cmd.Flags()
	if flags.Changed("max-tokens") {
		params.MaxTokens = f.maxTokens
	}
	if flags.Changed("temperature") {
		params.Temperature = f.temperature
	}
	if flags.Changed("top-k") {
		params.TopK = f.topK
	}
	if flags.Changed("top-p") {
		params.TopP = f.topP
	}
	if flags.Changed("min-p") {
		params.MinP = f.minP
	}
	if flags.Changed("seed") {
		params.Seed = f.seed
	}
	if flags.Changed("system") {
		params.SystemPrompt = f.system
	}
	if flags.Changed("stop") {
		params.Stop = f.stop
	}
	if f.noStream {
		params.Stream = false
	}
	return params
}

func newGenerateCmd(a *cliApp) *cobra.Command {
	f := &samplingFlags{}

	cmd := &cobra.Command{
		Use:     "generate <prompt>",
		Aliases: []string{"gen"},
		Short:   "Generate a reply to one prompt",
		Long: `Send a single prompt and print the reply. Tokens are printed as they
arrive unless --no-stream is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, shutdown, err := a.newService()
			if err != nil {
				return err
			}
			defer shutdown()

			params := f.params(cmd, protocal.GenerateDefaults(a.conf))
			return printGeneration(cmd.Context(), cmd.OutOrStdout(), srv, strings.Join(args, " "), params)
		},
	}
	f.register(cmd)
	return cmd
}

// printGeneration writes tokens to w as they arrive and ends the reply with a newline
func printGeneration(ctx context.Context, w io.Writer, srv input.GenerationService, prompt string, params domain.GenerateParams) error {
	return srv.Generate(ctx, prompt, params, func(token domain.Token) {
		if token.IsFinal {
			fmt.Fprintln(w)
			return
		}
		fmt.Fprint(w, token.Text)
	})
}
