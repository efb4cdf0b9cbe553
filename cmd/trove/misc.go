package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mark3labs/trove/internal/config"
	"github.com/mark3labs/trove/internal/mcpserver"
	"github.com/spf13/cobra"
)

var historyFlags struct {
	limit int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently resolved commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		entries := (&env{cfg: cfg}).loadState().Recent(historyFlags.limit)
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history yet.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, h := range entries {
			fmt.Fprintf(w, "%s\t%s/%s\t%s\n", h.At.Local().Format("2006-01-02 15:04"), h.Namespace, h.Name, h.Resolved)
		}
		return w.Flush()
	},
}

var configFlags struct {
	writeGlobal  bool
	writeProject bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Print the effective configuration as YAML.

Values come from defaults, the global file ($XDG_CONFIG_HOME/trove/trove.yml),
a trove.yml in the current directory, TROVE_* environment variables and
flags, later sources winning. --write-global and --write-project save the
effective configuration to those files.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		switch {
		case configFlags.writeGlobal && configFlags.writeProject:
			return errors.New("--write-global and --write-project are mutually exclusive")
		case configFlags.writeGlobal:
			if err := config.WriteGlobal(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", config.GlobalPath())
			return nil
		case configFlags.writeProject:
			if err := config.WriteProject(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", config.ProjectPath())
			return nil
		}

		if !config.Exists() {
			fmt.Fprintln(cmd.ErrOrStderr(), "# no config file found, showing defaults")
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var mcpFlags struct {
	port int
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the stored commands to MCP clients over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		srv := mcpserver.New(e.store, e.cfg.Tokens(), e.cfg.DefaultNamespace)
		if _, err := srv.Start(ctx, mcpFlags.port); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())

		<-ctx.Done()
		return srv.Stop()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "l", 20, "Number of entries (0 for all)")

	configCmd.Flags().BoolVar(&configFlags.writeGlobal, "write-global", false, "Write the effective config to the global file")
	configCmd.Flags().BoolVar(&configFlags.writeProject, "write-project", false, "Write the effective config to ./trove.yml")

	mcpCmd.Flags().IntVarP(&mcpFlags.port, "port", "p", 0, "Port to listen on (0 picks a free port)")
}
