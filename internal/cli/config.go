package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raaihank/clipboard-cleaner/internal/cleaner"
	"github.com/raaihank/clipboard-cleaner/internal/config"
)

var exportFormat string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the filters and profiles in YAML, JSON or TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		out, err := cfg.Document.Encode(exportFormat)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration, including filter references",
	Long: `Compiles every profile strictly: unknown filter references, malformed
ranges and unknown template tags are reported as errors, as are default or
GUI replacement profiles that do not exist.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, source, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cleaner.Validate(cfg.Document); err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d profiles, %d filters, configuration is valid\n",
			source, len(cfg.Profiles), len(cfg.Filters))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the configuration file in use and the search paths",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, source, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "in use: %s\n", source)
		fmt.Fprintln(out, "search paths:")
		for _, dir := range config.SearchPaths() {
			fmt.Fprintf(out, "  %s\n", dir)
		}
		return nil
	},
}

func init() {
	configExportCmd.Flags().StringVar(&exportFormat, "format", config.FormatYAML, "output format: yaml, json or toml")

	configCmd.AddCommand(configExportCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads the configuration and names where it came from
func loadConfig() (*config.Config, string, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	source := loader.UsedFile()
	if source == "" {
		source = "built-in default"
	}
	return cfg, source, nil
}
