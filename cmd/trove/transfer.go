package main

import (
	"fmt"

	"github.com/mark3labs/trove/internal/trove"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportFlags struct {
	namespace string
	output    string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export commands as a YAML trove file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := e.store.Export(ctx, exportFlags.namespace)
		if err != nil {
			return err
		}

		if exportFlags.output == "" || exportFlags.output == "-" {
			data, err := yaml.Marshal(t)
			if err != nil {
				return fmt.Errorf("marshaling trove: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		if err := trove.WriteFile(fs, exportFlags.output, t); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d commands to %s\n", len(t.Commands), exportFlags.output)
		return nil
	},
}

var importFlags struct {
	overwrite bool
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import commands from a YAML trove file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		t, err := trove.ReadFile(fs, args[0])
		if err != nil {
			return err
		}
		res, err := e.store.Import(ctx, t, importFlags.overwrite)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, updated %d, skipped %d\n", res.Added, res.Updated, res.Skipped)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.namespace, "namespace", "n", "", "Only this namespace")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "Output file (default: stdout)")

	importCmd.Flags().BoolVar(&importFlags.overwrite, "overwrite", false, "Replace commands that already exist")
}
