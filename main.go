package main

import (
	"fmt"
	"os"

	"battle/config"
	"battle/logging"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "battle",
		Short: "Team battle simulation on a 2D grid",
		Long: `battle places agents of several teams on a grid and lets them wander.

Agents that meet an enemy fight; the stronger side removes the other and
grows stronger. A run ends when a single team is left or the tick limit is
reached. Runs can be stored in SQLite and replayed tick by tick.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (console, json)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newExperimentCmd(),
		newReplayCmd(),
	)
	return rootCmd
}

// loadConfig reads the --config file, applies the logging flags and installs
// the global logger.
func loadConfig(cmd *cobra.Command) (config.File, error) {
	path, _ := cmd.Flags().GetString("config")
	f, err := config.Load(path)
	if err != nil {
		return f, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		f.Log.Level = level
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		f.Log.Format = format
	}
	logging.Setup(f.Log.Level, f.Log.Format, cmd.ErrOrStderr())
	return f, nil
}
