package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/mark3labs/trove/internal/config"
	"github.com/mark3labs/trove/internal/fill"
	"github.com/mark3labs/trove/internal/logger"
	"github.com/mark3labs/trove/internal/nats"
	"github.com/mark3labs/trove/internal/state"
	"github.com/mark3labs/trove/internal/trove"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version set via ldflags during build
var version = "dev"

// fs is the file system used for trove files and UI state.
var fs = afero.NewOsFs()

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootFlags struct {
	dataDir     string
	token       string
	endingToken string
}

var rootCmd = &cobra.Command{
	Use:   "trove",
	Short: "Store command templates and fill their parameters interactively",
	Long: lipgloss.NewStyle().Foreground(lipgloss.Color("#f2e5bc")).Bold(true).Render("trove") + `

trove keeps command-line templates with parameter holes such as
"git commit -m #message!" and fills the holes one at a time in a small
terminal UI. The resolved command is printed, copied or executed.

Parameters start with the parameter token (default "#") and run up to the
ending token (default "!"). A backslash escapes either token.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "Data directory (default: $XDG_DATA_HOME/trove)")
	pf.StringVar(&rootFlags.token, "token", "", "Parameter token (default: #)")
	pf.StringVar(&rootFlags.endingToken, "ending-token", "", "Parameter ending token (default: !)")

	rootCmd.AddCommand(newCmd, listCmd, showCmd, removeCmd, editCmd)
	rootCmd.AddCommand(runCmd, fillCmd)
	rootCmd.AddCommand(exportCmd, importCmd)
	rootCmd.AddCommand(historyCmd, configCmd, mcpCmd)
}

// loadConfig loads the config with the persistent flags on top and applies
// the logging settings.
func loadConfig() (*config.Config, error) {
	v := viper.New()
	pf := rootCmd.PersistentFlags()
	for key, flag := range map[string]string{
		"data_dir":               "data-dir",
		"parameter_token":        "token",
		"parameter_ending_token": "ending-token",
	} {
		if err := v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("binding --%s: %w", flag, err)
		}
	}

	cfg, err := config.LoadWith(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	return cfg, nil
}

// env is what most commands need: config, an open store and UI state.
type env struct {
	cfg   *config.Config
	conn  *nats.Conn
	store *trove.Store
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	conn, err := nats.Open(ctx, filepath.Join(cfg.DataDir, "nats"))
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	return &env{
		cfg:   cfg,
		conn:  conn,
		store: trove.NewStore(conn.JetStream, conn.Stream),
	}, nil
}

func (e *env) Close() {
	if err := e.conn.Close(); err != nil {
		logger.Warn("Closing store: %v", err)
	}
}

func (e *env) namespace(flag string) string {
	if flag != "" {
		return flag
	}
	return e.cfg.DefaultNamespace
}

func (e *env) loadState() *state.UIState {
	return state.Load(fs, e.cfg.DataDir)
}

func (e *env) saveState(st *state.UIState) {
	if err := state.Save(fs, e.cfg.DataDir, st); err != nil {
		logger.Warn("Saving UI state: %v", err)
	}
}

// quietCancel turns a cancelled fill into a clean exit.
func quietCancel(err error) error {
	if errors.Is(err, fill.ErrCancelled) {
		return nil
	}
	return err
}
