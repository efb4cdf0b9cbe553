package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/aymanbagabas/go-udiff"
	"github.com/charmbracelet/x/editor"
	"github.com/mark3labs/trove/internal/runner"
	"github.com/mark3labs/trove/internal/template"
	"github.com/mark3labs/trove/internal/trove"
	"github.com/mark3labs/trove/internal/tui"
	"github.com/spf13/cobra"
)

var newFlags struct {
	namespace   string
	description string
	tags        []string
	literal     bool
}

var newCmd = &cobra.Command{
	Use:   "new NAME COMMAND",
	Short: "Store a new command template",
	Example: `  trove new commit 'git commit -m "#message!"' -t git
  trove new hash 'echo #not-a-parameter' --literal`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		text := args[1]
		if newFlags.literal {
			text = template.Escape(text, e.cfg.Tokens())
		}

		c, err := e.store.Add(cmd.Context(), trove.AddParams{
			Name:        args[0],
			Namespace:   e.namespace(newFlags.namespace),
			Command:     text,
			Description: newFlags.description,
			Tags:        newFlags.tags,
		})
		if err != nil {
			return err
		}

		warnSyntax(cmd, template.Cleanup(c.Command, e.cfg.Tokens()))
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%d parameters)\n", c.Key(), template.Count(c.Command, e.cfg.ParameterToken))
		return nil
	},
}

var listFlags struct {
	namespace  string
	tag        string
	query      string
	json       bool
	namespaces bool
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List stored commands",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		if listFlags.namespaces {
			names, err := e.store.Namespaces(cmd.Context())
			if err != nil {
				return err
			}
			for _, ns := range names {
				fmt.Fprintln(cmd.OutOrStdout(), ns)
			}
			return nil
		}

		cmds, err := e.store.List(cmd.Context(), trove.ListParams{
			Namespace: listFlags.namespace,
			Tag:       listFlags.tag,
			Query:     listFlags.query,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if listFlags.json {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if cmds == nil {
				cmds = []*trove.Command{}
			}
			return enc.Encode(cmds)
		}

		if len(cmds) == 0 {
			fmt.Fprintln(out, "No commands found.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "COMMAND\tPARAMS\tTEMPLATE")
		for _, c := range cmds {
			fmt.Fprintf(w, "%s\t%d\t%s\n", c.Key(), template.Count(c.Command, e.cfg.ParameterToken), c.Command)
		}
		return w.Flush()
	},
}

var showFlags struct {
	namespace string
}

var showCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show a stored command with its description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		c, err := e.store.Get(cmd.Context(), e.namespace(showFlags.namespace), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n  %s\n\n", c.Key(), runner.Highlight(c.Command))
		if template.IsParameterized(c.Command, e.cfg.ParameterToken) {
			fmt.Fprintf(out, "Parameters: %d\n", template.Count(c.Command, e.cfg.ParameterToken))
		} else {
			fmt.Fprintln(out, "Parameters: none")
		}
		if progs, err := runner.Programs(template.Cleanup(c.Command, e.cfg.Tokens())); err == nil && len(progs) > 0 {
			fmt.Fprintf(out, "Programs:   %s\n", strings.Join(progs, ", "))
		}
		if len(c.Tags) > 0 {
			fmt.Fprintf(out, "Tags:       %s\n", strings.Join(c.Tags, ", "))
		}
		fmt.Fprintf(out, "Updated:    %s\n", c.UpdatedAt.Local().Format("2006-01-02 15:04"))
		if c.Description != "" {
			fmt.Fprintln(out)
			fmt.Fprintln(out, tui.RenderMarkdown(c.Description, 80))
		}
		return nil
	},
}

var removeFlags struct {
	namespace string
}

var removeCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a stored command",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ns := e.namespace(removeFlags.namespace)
		if err := e.store.Remove(cmd.Context(), ns, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s/%s\n", trove.NormalizeNamespace(ns), trove.NormalizeName(args[0]))
		return nil
	},
}

var editFlags struct {
	namespace   string
	description string
	tags        []string
}

var editCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Edit a stored command in $EDITOR, or change its description and tags",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		ns := e.namespace(editFlags.namespace)
		c, err := e.store.Get(ctx, ns, args[0])
		if err != nil {
			return err
		}

		var params trove.EditParams
		flags := cmd.Flags()
		if flags.Changed("description") {
			params.Description = &editFlags.description
		}
		if flags.Changed("tag") {
			params.Tags = &editFlags.tags
		}

		if params.Description == nil && params.Tags == nil {
			edited, err := editInEditor(c.Command)
			if err != nil {
				return err
			}
			if edited == c.Command {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
				return nil
			}
			params.Command = &edited
		}

		updated, err := e.store.Edit(ctx, ns, args[0], params)
		if err != nil {
			return err
		}

		if params.Command != nil {
			diff := udiff.Unified("before", "after", c.Command+"\n", updated.Command+"\n")
			fmt.Fprint(cmd.OutOrStdout(), diff)
			warnSyntax(cmd, template.Cleanup(updated.Command, e.cfg.Tokens()))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", updated.Key())
		return nil
	},
}

// editInEditor opens text in $EDITOR and returns the edited text without
// its trailing newline.
func editInEditor(text string) (string, error) {
	tmp, err := os.CreateTemp("", "trove_command_*.sh")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(text + "\n"); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	_ = tmp.Close()

	c, err := editor.Command("trove", tmp.Name())
	if err != nil {
		return "", fmt.Errorf("starting editor: %w", err)
	}
	c.Stdin, c.Stdout, c.Stderr = os.Stdin, os.Stdout, os.Stderr
	if err := c.Run(); err != nil {
		return "", fmt.Errorf("running editor: %w", err)
	}

	data, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("reading edited command: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// warnSyntax prints a warning when the text does not parse as Bash. The
// command is kept either way.
func warnSyntax(cmd *cobra.Command, text string) {
	if err := runner.Check(text); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
	}
}

func init() {
	newCmd.Flags().StringVarP(&newFlags.namespace, "namespace", "n", "", "Namespace (default: default_namespace)")
	newCmd.Flags().StringVarP(&newFlags.description, "description", "d", "", "Markdown description")
	newCmd.Flags().StringSliceVarP(&newFlags.tags, "tag", "t", nil, "Tag (repeatable)")
	newCmd.Flags().BoolVar(&newFlags.literal, "literal", false, "Escape parameter tokens so the command has no parameters")

	listCmd.Flags().StringVarP(&listFlags.namespace, "namespace", "n", "", "Only this namespace")
	listCmd.Flags().StringVarP(&listFlags.tag, "tag", "t", "", "Only commands with this tag")
	listCmd.Flags().StringVarP(&listFlags.query, "query", "q", "", "Case-insensitive search text")
	listCmd.Flags().BoolVar(&listFlags.json, "json", false, "Print JSON")
	listCmd.Flags().BoolVar(&listFlags.namespaces, "namespaces", false, "Print only the namespaces in use")

	showCmd.Flags().StringVarP(&showFlags.namespace, "namespace", "n", "", "Namespace (default: default_namespace)")
	removeCmd.Flags().StringVarP(&removeFlags.namespace, "namespace", "n", "", "Namespace (default: default_namespace)")

	editCmd.Flags().StringVarP(&editFlags.namespace, "namespace", "n", "", "Namespace (default: default_namespace)")
	editCmd.Flags().StringVarP(&editFlags.description, "description", "d", "", "New description")
	editCmd.Flags().StringSliceVarP(&editFlags.tags, "tag", "t", nil, "Replace tags (repeatable)")
}
