package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available algorithms and their modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, meta := range a.engine.Algorithms() {
				fmt.Fprintf(out, "%s\t%s\n", meta.ID, meta.Name)
				for _, m := range meta.Modes {
					fmt.Fprintf(out, "  --mode %s\t%s\n", m.ID, m.Name)
				}
			}
			return nil
		},
	}
}
