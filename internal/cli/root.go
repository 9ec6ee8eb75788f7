// Package cli implements the clipcleaner command line
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
	"github.com/raaihank/clipboard-cleaner/internal/clipboard"
	"github.com/raaihank/clipboard-cleaner/internal/config"
	"github.com/raaihank/clipboard-cleaner/internal/logger"
)

var (
	version = "dev"

	cfgFile  string
	logLevel string
)

// openClipboard returns the clipboard used by clean and wipe. Tests swap
// it for a memory clipboard
var openClipboard = func() (clipboard.Clipboard, error) {
	sys, err := clipboard.NewSystem()
	if err != nil {
		return nil, err
	}
	return sys, nil
}

var rootCmd = &cobra.Command{
	Use:   "clipcleaner",
	Short: "Clean invisible and unwanted characters from clipboard text",
	Long: `clipcleaner runs clipboard text through configurable profiles of
character transformations: removing control and zero-width characters,
revealing them as codepoints, or escaping them as entities.

Profiles are read from clipboard-cleaner.{yaml,json,toml} in the usual
configuration directories, or from the built-in defaults.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version reported by the version command and the server
func SetVersion(v string) {
	version = v
}

// app bundles what most commands need
type app struct {
	loader  *config.Loader
	cfg     *config.Config
	log     *logger.Logger
	cleaner *cleaner.Cleaner
}

func setup(cmd *cobra.Command) (*app, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	log, err := newLogger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	c, err := cleaner.New(cfg.Document, log)
	if err != nil {
		return nil, err
	}

	return &app{loader: loader, cfg: cfg, log: log, cleaner: c}, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) (*logger.Logger, error) {
	lc := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	}
	if cfg.Logging.File.Enabled {
		lc.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(lc)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}
