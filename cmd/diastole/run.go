package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/pkg/runner"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		mode    string
		answers string
		save    string
		resume  string
	)

	cmd := &cobra.Command{
		Use:   "run [algorithm]",
		Short: "Run an assessment interactively",
		Long: `Asks the questions of an algorithm one at a time until a result is reached.
With --answers the session runs headless, consuming the comma separated values in order.
--save writes the session snapshot after every step; --resume continues a saved snapshot.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess := a.engine.NewSession()

			switch {
			case resume != "":
				blob, err := os.ReadFile(resume)
				if err != nil {
					return fmt.Errorf("failed to read session: %w", err)
				}
				if err := sess.Deserialize(blob); err != nil {
					return fmt.Errorf("failed to resume %s: %w", resume, err)
				}
			case len(args) == 1:
				if err := sess.StartAlgorithm(ctx, args[0], mode); err != nil {
					return err
				}
			default:
				return errors.New("an algorithm id or --resume is required")
			}

			r := runner.NewRunner()
			r.Output = cmd.OutOrStdout()
			r.Logger = a.logger
			if answers != "" {
				r.Headless = true
				r.Input = strings.NewReader(strings.Join(splitAnswers(answers), "\n") + "\n")
			} else {
				r.Input = cmd.InOrStdin()
			}
			if save != "" {
				r.OnStep = func(s *diastole.Session) error { return saveSession(save, s) }
				if err := saveSession(save, sess); err != nil {
					return err
				}
			}

			err := r.Run(ctx, sess)
			switch {
			case err == nil, errors.Is(err, runner.ErrQuit):
				return nil
			case errors.Is(err, io.EOF) && save != "":
				fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", save)
				return nil
			case errors.Is(err, io.EOF):
				return errors.New("input ended before a result was reached")
			default:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Algorithm mode (see 'diastole list')")
	cmd.Flags().StringVarP(&answers, "answers", "a", "", "Comma separated answers to submit in order (headless)")
	cmd.Flags().StringVar(&save, "save", "", "Write the session snapshot to this file after every step")
	cmd.Flags().StringVar(&resume, "resume", "", "Resume the session snapshot stored in this file")
	return cmd
}

func splitAnswers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func saveSession(path string, sess *diastole.Session) error {
	blob, err := sess.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
