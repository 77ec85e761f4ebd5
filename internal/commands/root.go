package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kestrel"
	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/logger"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
)

// RootCmd creates and returns the root command for the Kestrel CLI
func RootCmd() *cobra.Command {
	var (
		verbose    bool
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "kestrel",
		Short: "Find AI provider calls that bypass Revenium usage tracking",
		Long: `Kestrel scans Python, JavaScript and TypeScript sources for AI provider
SDK usage that is not wrapped by Revenium middleware.

It can:
• Report untracked provider calls and hardcoded API keys
• Insert the matching middleware import for you
• Estimate monthly spend per integration point

Settings are read from kestrel.yml and KESTREL_* environment variables.`,
		Version:       kestrel.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output.SetWriter(cmd.OutOrStdout())
			output.SetVerbose(verbose)

			settings, err := loadSettings(configPath)
			if err != nil {
				return err
			}
			level := logger.ParseLevel(settings.LogLevel())
			if verbose {
				level = logger.LevelDebug
			}
			logger.SetDefault(logger.NewLogger(level, cmd.ErrOrStderr()))
			logger.Debug("Loaded settings", logger.F("path", settings.Path()))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Settings file (default ./kestrel.yml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Kestrel v%s\n", kestrel.Version)
		},
	})

	return cmd
}

// settingsFor loads the settings selected by the root --config flag
func settingsFor(cmd *cobra.Command) (*config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	return loadSettings(path)
}

func loadSettings(path string) (*config.Settings, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(dir, path)
}
