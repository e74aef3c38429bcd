package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(a *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:     "models",
		Aliases: []string{"ls"},
		Short:   "List models served by LM Studio",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, shutdown, err := a.newService()
			if err != nil {
				return err
			}
			defer shutdown()

			models, err := srv.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("list models: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(models) == 0 {
				fmt.Fprintln(out, "No models loaded. Load one in LM Studio first.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tOBJECT\tOWNED BY")
			for _, m := range models {
				owner := m.OwnedBy
				if owner == "" {
					owner = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Object, owner)
			}
			return w.Flush()
		},
	}
}
