package main

import (
	"context"
	"os"

	"github.com/simonhull/firebird-suite/kestrel/internal/commands"
	"github.com/simonhull/firebird-suite/kestrel/pkg/output"
)

func main() {
	rootCmd := commands.RootCmd()

	rootCmd.AddCommand(commands.ScanCmd())
	rootCmd.AddCommand(commands.FixCmd())
	rootCmd.AddCommand(commands.ReportCmd())
	rootCmd.AddCommand(commands.WatchCmd())
	rootCmd.AddCommand(commands.PatternsCmd())
	rootCmd.AddCommand(commands.ProvidersCmd())
	rootCmd.AddCommand(commands.CostCmd())
	rootCmd.AddCommand(commands.ConfigCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		output.Error(err.Error())
		os.Exit(1)
	}
}
