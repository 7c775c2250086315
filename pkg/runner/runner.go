package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/diastole"
	"github.com/aretw0/diastole/pkg/domain"
)

// Commands understood at any question prompt.
const (
	CmdBack    = "back"
	CmdRestart = "restart"
	CmdQuit    = "quit"
)

// ErrQuit is returned by Run when the user leaves before reaching a result.
var ErrQuit = errors.New("session abandoned")

// Runner drives a session as a plain-text questionnaire.
type Runner struct {
	Input  io.Reader
	Output io.Writer

	// Headless suppresses the banner and prompts, for scripted answers.
	Headless bool

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// OnStep runs after every state change, e.g. to save the session.
	OnStep func(*diastole.Session) error
}

// NewRunner creates a new Runner with default Stdin/Stdout.
func NewRunner() *Runner {
	return &Runner{
		Input:  os.Stdin,
		Output: os.Stdout,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// Run loops until the session reaches a result, the user quits or the input
// ends. A session that was never started is an error.
func (r *Runner) Run(ctx context.Context, sess *diastole.Session) error {
	if sess.Status() == domain.PhaseUninitialized {
		return domain.ErrNoActiveAlgorithm
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	in := bufio.NewScanner(r.Input)

	if !r.Headless {
		fmt.Fprintf(r.Output, "--- Diastole %s ---\n", diastole.Version)
		fmt.Fprintf(r.Output, "Type an option number or value, %q, %q or %q.\n\n", CmdBack, CmdRestart, CmdQuit)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sess.Status() == domain.PhaseAtEvaluator {
			// Left there by a single-entry step back; re-run it.
			if err := sess.SubmitAnswer(ctx, ""); err != nil {
				return err
			}
		}
		view, err := sess.CurrentNode()
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		if view.Type == domain.NodeTypeResult {
			r.printResult(sess, view)
			return nil
		}
		r.printQuestion(view)

		if !in.Scan() {
			if err := in.Err(); err != nil {
				return err
			}
			logger.Debug("input closed before a result", "node", view.ID)
			return io.EOF
		}
		line, err := SanitizeInput(in.Text())
		if err != nil {
			fmt.Fprintf(r.Output, "! %v\n", err)
			continue
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case CmdQuit, "q":
			return ErrQuit
		case CmdBack, "b":
			if err := sess.GoBack(ctx); err != nil {
				if errors.Is(err, domain.ErrHistoryEmpty) {
					fmt.Fprintln(r.Output, "! already at the first question")
					continue
				}
				return err
			}
		case CmdRestart:
			if err := sess.Restart(ctx); err != nil {
				return err
			}
		default:
			value := resolveChoice(view, line)
			if err := sess.SubmitAnswer(ctx, value); err != nil {
				if errors.Is(err, domain.ErrInvalidAnswer) {
					fmt.Fprintf(r.Output, "! %q is not one of the options\n", line)
					continue
				}
				return err
			}
			logger.Debug("answered", "node", view.ID, "value", value)
		}

		if r.OnStep != nil {
			if err := r.OnStep(sess); err != nil {
				return err
			}
		}
	}
}

// resolveChoice maps a 1-based option number to its value. Anything else is
// passed through as the raw value.
func resolveChoice(view *domain.NodeView, line string) string {
	for _, o := range view.Options {
		if o.Value == line {
			return line
		}
	}
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(view.Options) {
		return view.Options[n-1].Value
	}
	return line
}

func (r *Runner) printQuestion(view *domain.NodeView) {
	fmt.Fprintf(r.Output, "%s\n", view.Question)
	for i, o := range view.Options {
		fmt.Fprintf(r.Output, "  %d) %s [%s]\n", i+1, o.Text, o.Value)
	}
	if !r.Headless {
		fmt.Fprint(r.Output, "> ")
	}
}

func (r *Runner) printResult(sess *diastole.Session, view *domain.NodeView) {
	fmt.Fprintln(r.Output)
	if view.Result == nil {
		fmt.Fprintf(r.Output, "Result: %s\n", view.ResultKey)
		return
	}
	fmt.Fprintf(r.Output, "Result: %s\n", view.Result.Message)
	if view.Result.Description != "" {
		fmt.Fprintf(r.Output, "  %s\n", view.Result.Description)
	}
	if cite, ok := sess.Citation(); ok && !r.Headless {
		fmt.Fprintf(r.Output, "\nSource: %s %s\n  %s\n", cite.Authors, cite.Journal, cite.URL)
	}
}
