package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonhull/firebird-suite/kestrel/pkg/config"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
)

// ConfigCmd creates the config command
func ConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change kestrel.yml settings",
		Long: `Read and change settings. Values are written to kestrel.yml (or the
file given with --config).

Examples:
  kestrel config get                        # Every setting
  kestrel config get detection.filter
  kestrel config set detection.filter security
  kestrel config toggle providers.openai`,
	}

	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigToggleCommand())

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print one setting or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				val, ok := settings.Get(args[0])
				if !ok {
					return fmt.Errorf("unknown setting %q", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), val)
				return nil
			}

			rows := make([][]string, 0)
			for _, key := range settings.SortedKeys() {
				val, _ := settings.Get(key)
				rows = append(rows, []string{key, fmt.Sprint(val)})
			}
			output.Table([]string{"KEY", "VALUE"}, rows)
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			if err := settings.Set(args[0], args[1]); err != nil {
				return err
			}
			return saveSetting(settings, args[0])
		},
	}
}

func newConfigToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <key>",
		Short: "Flip an on/off setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := settingsFor(cmd)
			if err != nil {
				return err
			}
			if _, err := settings.Toggle(args[0]); err != nil {
				return err
			}
			return saveSetting(settings, args[0])
		},
	}
}

func saveSetting(settings *config.Settings, key string) error {
	if err := settings.Save(); err != nil {
		return err
	}
	val, _ := settings.Get(key)
	output.Success(fmt.Sprintf("%s = %v", key, val))
	if config.AffectsMatching(key) {
		output.Verbose("Running watchers will rescan open files")
	}
	return nil
}
