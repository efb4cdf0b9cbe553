// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/trove/internal/template"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration values for trove.
type Config struct {
	ParameterToken       string `mapstructure:"parameter_token" yaml:"parameter_token"`
	ParameterEndingToken string `mapstructure:"parameter_ending_token" yaml:"parameter_ending_token"`
	QueryPrefix          string `mapstructure:"query_prefix" yaml:"query_prefix"`
	PrimaryColor         string `mapstructure:"primary_color" yaml:"primary_color"`
	CommandColor         string `mapstructure:"command_color" yaml:"command_color"`
	DataDir              string `mapstructure:"data_dir" yaml:"data_dir"`
	DefaultNamespace     string `mapstructure:"default_namespace" yaml:"default_namespace"`
	LogLevel             string `mapstructure:"log_level" yaml:"log_level"`
	LogFile              string `mapstructure:"log_file" yaml:"log_file"`
	ExecTimeout          int    `mapstructure:"exec_timeout" yaml:"exec_timeout"`
}

// keys lists every config key; each is bound to TROVE_<KEY>.
var keys = []string{
	"parameter_token",
	"parameter_ending_token",
	"query_prefix",
	"primary_color",
	"command_color",
	"data_dir",
	"default_namespace",
	"log_level",
	"log_file",
	"exec_timeout",
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		ParameterToken:       "#",
		ParameterEndingToken: "!",
		QueryPrefix:          "  >",
		PrimaryColor:         "#f2e5bc",
		CommandColor:         "#00ffff",
		DataDir:              DefaultDataDir(),
		DefaultNamespace:     "default",
		LogLevel:             "info",
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load() (*Config, error) {
	return load(viper.New())
}

// LoadWith is like Load but starts from v, which may carry bound CLI flags.
func LoadWith(v *viper.Viper) (*Config, error) {
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigType("yaml")
	v.SetConfigName("trove")

	d := Defaults()
	v.SetDefault("parameter_token", d.ParameterToken)
	v.SetDefault("parameter_ending_token", d.ParameterEndingToken)
	v.SetDefault("query_prefix", d.QueryPrefix)
	v.SetDefault("primary_color", d.PrimaryColor)
	v.SetDefault("command_color", d.CommandColor)
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("default_namespace", d.DefaultNamespace)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", "")
	v.SetDefault("exec_timeout", 0)

	v.SetEnvPrefix("TROVE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, key := range keys {
		if err := v.BindEnv(key, "TROVE_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	// Global config first, project config merged on top.
	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Tokens returns the parameter token pair.
func (c *Config) Tokens() template.Tokens {
	return template.Tokens{Start: c.ParameterToken, End: c.ParameterEndingToken}
}

// Timeout returns ExecTimeout as a duration; zero means no limit.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.ExecTimeout) * time.Second
}

// Validate checks that the config can be used.
func (c *Config) Validate() error {
	if err := c.Tokens().Validate(); err != nil {
		return fmt.Errorf("parameter_token: %w", err)
	}
	if c.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if c.ExecTimeout < 0 {
		return fmt.Errorf("exec_timeout must not be negative, got %d", c.ExecTimeout)
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/trove/trove.yml or $XDG_CONFIG_HOME/trove/trove.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "trove", "trove.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "trove", "trove.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "trove.yml"
}

// DefaultDataDir returns $XDG_DATA_HOME/trove or ~/.local/share/trove.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "trove")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "trove")
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
