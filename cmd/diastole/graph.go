package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/diastole/internal/presentation/graph"
)

func newGraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <algorithm>",
		Short: "Export the algorithm as a Mermaid flowchart",
		Long:  `Outputs a Mermaid diagram (graph TD) of every node and edge of the algorithm.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.engine.Algorithm(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(alg, nil))
			return nil
		},
	}
}
