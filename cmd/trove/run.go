package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/x/term"
	"github.com/mark3labs/trove/internal/fill"
	"github.com/mark3labs/trove/internal/logger"
	"github.com/mark3labs/trove/internal/runner"
	"github.com/mark3labs/trove/internal/state"
	"github.com/mark3labs/trove/internal/trove"
	"github.com/mark3labs/trove/internal/tui"
	"github.com/spf13/cobra"
)

var runFlags struct {
	namespace string
	query     string
	copy      bool
	exec      bool
	plain     bool
}

var runCmd = &cobra.Command{
	Use:   "run [NAME]",
	Short: "Pick a command, fill its parameters and print, copy or execute it",
	Long: `Pick a command, fill its parameters one at a time and print the result.

Without NAME a picker lists the stored commands, most recently used first.
With --copy the resolved command goes to the clipboard, with --exec it runs
in an embedded shell. Esc, ctrl+c, ctrl+d or ctrl+g cancel without output.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runFlags.copy && runFlags.exec {
			return errors.New("--copy and --exec are mutually exclusive")
		}

		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		st := e.loadState()
		plain := runFlags.plain || !term.IsTerminal(os.Stdin.Fd())

		var picked *trove.Command
		var resolved string
		switch {
		case len(args) == 1:
			picked, err = e.store.Get(ctx, e.namespace(runFlags.namespace), args[0])
			if err != nil {
				return err
			}
			if plain {
				resolved, err = fill.Run(ctx, picked.Command, e.cfg.Tokens(), fill.NewLineAsker(cmd.InOrStdin(), cmd.ErrOrStderr()))
			} else {
				picked, resolved, err = runTUI(e, tui.Options{Command: picked})
			}
		case plain:
			return errors.New("NAME is required without a terminal")
		default:
			var cmds []*trove.Command
			cmds, err = e.store.List(ctx, trove.ListParams{Namespace: runFlags.namespace})
			if err != nil {
				return err
			}
			picked, resolved, err = runTUI(e, tui.Options{
				Commands: cmds,
				Rank:     st.Rank(),
				Query:    runFlags.query,
			})
		}
		if err != nil {
			return quietCancel(err)
		}

		st.Record(state.HistoryEntry{
			Namespace: picked.Namespace,
			Name:      picked.Name,
			Resolved:  resolved,
		})
		e.saveState(st)

		return deliver(ctx, cmd, e, resolved)
	},
}

func runTUI(e *env, opts tui.Options) (*trove.Command, string, error) {
	opts.Tokens = e.cfg.Tokens()
	opts.Theme = tui.ThemeFromConfig(e.cfg)
	res, err := tui.Run(opts)
	if err != nil {
		return nil, "", err
	}
	return res.Command, res.Resolved, nil
}

// deliver prints, copies or executes the resolved command.
func deliver(ctx context.Context, cmd *cobra.Command, e *env, resolved string) error {
	warnSyntax(cmd, resolved)

	switch {
	case runFlags.copy:
		if err := clipboard.WriteAll(resolved); err != nil {
			return fmt.Errorf("copying to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
		return nil

	case runFlags.exec:
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("Executing: %s", resolved)
		status, err := runner.Execute(ctx, resolved, runner.Options{
			Stdin:   cmd.InOrStdin(),
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
			Timeout: e.cfg.Timeout(),
		})
		if err != nil {
			return err
		}
		if status != 0 {
			e.Close()
			_ = logger.Close()
			os.Exit(status)
		}
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), resolved)
	return nil
}

var fillFlags struct {
	namespace string
	values    []string
}

var fillCmd = &cobra.Command{
	Use:   "fill NAME",
	Short: "Resolve a command without interaction",
	Long: `Resolve a command without interaction. Give one --value per parameter,
in order; too few or too many values is an error.`,
	Example: `  trove fill commit --value "fix typo"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.store.Get(ctx, e.namespace(fillFlags.namespace), args[0])
		if err != nil {
			return err
		}
		resolved, err := fill.Resolve(c.Command, e.cfg.Tokens(), fillFlags.values)
		if err != nil {
			return fmt.Errorf("filling %s: %w", c.Key(), err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), resolved)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFlags.namespace, "namespace", "n", "", "Namespace of NAME, or the picker filter")
	runCmd.Flags().StringVarP(&runFlags.query, "query", "q", "", "Initial picker filter")
	runCmd.Flags().BoolVarP(&runFlags.copy, "copy", "c", false, "Copy the resolved command to the clipboard")
	runCmd.Flags().BoolVarP(&runFlags.exec, "exec", "x", false, "Execute the resolved command")
	runCmd.Flags().BoolVar(&runFlags.plain, "plain", false, "Read parameters line by line instead of the terminal UI")

	fillCmd.Flags().StringVarP(&fillFlags.namespace, "namespace", "n", "", "Namespace (default: default_namespace)")
	fillCmd.Flags().StringArrayVar(&fillFlags.values, "value", nil, "Parameter value (repeatable, in order)")
}
