package main

import (
	"bufio"
	"fmt"
	"strings"

	"talk-lmstudio/protocal"

	"github.com/spf13/cobra"
)

const replPrompt = ">>> "

func newChatCmd(a *cliApp) *cobra.Command {
	f := &samplingFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive prompt loop",
		Long: `Read prompts from stdin and print each reply. Every prompt is sent on its
own; the server sees no earlier turns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, shutdown, err := a.newService()
			if err != nil {
				return err
			}
			defer shutdown()

			params := f.params(cmd, protocal.GenerateDefaults(a.conf))
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			fmt.Fprint(out, replPrompt)

			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					fmt.Fprint(out, replPrompt)
					continue
				}

				command, rest, _ := strings.Cut(line, " ")
				switch strings.ToLower(command) {
				case "/exit", "/quit", "/bye":
					fmt.Fprintln(out, "Goodbye.")
					return nil
				case "/system":
					params.SystemPrompt = strings.TrimSpace(rest)
					if params.SystemPrompt == "" {
						fmt.Fprintln(errOut, "System prompt cleared.")
					} else {
						fmt.Fprintln(errOut, "System prompt set.")
					}
					fmt.Fprint(out, replPrompt)
					continue
				case "/help":
					fmt.Fprintln(out, "Commands:")
					fmt.Fprintln(out, "  /exit, /quit, /bye  - Exit the REPL")
					fmt.Fprintln(out, "  /system [text]      - Set or clear the system prompt")
					fmt.Fprintln(out, "  /help               - Show this help")
					fmt.Fprintln(out, "  <text>              - Generate a response")
					fmt.Fprint(out, replPrompt)
					continue
				}

				if err := printGeneration(cmd.Context(), out, srv, line, params); err != nil {
					fmt.Fprintf(errOut, "Generation error: %v\n", err)
				}
				fmt.Fprint(out, replPrompt)
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
