package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/diastole/internal/validator"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [algorithm...]",
		Short: "Check the algorithm graphs for consistency",
		Long:  `Crawls every algorithm from its entry points and reports dead links, dead ends and unreachable nodes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := args
			if len(ids) == 0 {
				for _, meta := range a.engine.Algorithms() {
					ids = append(ids, meta.ID)
				}
			}

			out := cmd.OutOrStdout()
			var errs []error
			for _, id := range ids {
				alg, err := a.engine.Algorithm(id)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				report := validator.ValidateAlgorithm(alg)
				for _, n := range report.Unreachable {
					fmt.Fprintf(out, "%s: warning: unreachable node '%s'\n", id, n)
				}
				if err := report.Err(); err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(out, "%s: %d nodes reachable, graph is valid\n", id, len(report.Reachable))
			}
			if err := errors.Join(errs...); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}
			return nil
		},
	}
}
