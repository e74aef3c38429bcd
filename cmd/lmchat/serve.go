package main

import (
	"talk-lmstudio/protocal"

	"github.com/spf13/cobra"
)

func newServeCmd(a *cliApp) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long:  "Serve /v1/generate, /v1/models, /health, /metrics and /swagger on top of the configured LM Studio server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port != "" {
				a.conf.App.Port = port
			}
			return protocal.Serve(a.conf)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides app.port)")
	return cmd
}
