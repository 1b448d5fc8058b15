package main

import (
	"fmt"
	"os"
	"os/signal"

	"battle/experiments"

	"github.com/spf13/cobra"
)

func newExperimentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Play many seeded games per trial and record the results",
		Long: `Play the configured number of games for every trial of the config file.

Game i of a trial uses the trial's seed plus i. Per-game and per-tick
records are written as CSV under <out>/<name>/<timestamp>.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				f.Experiment.Name, _ = flags.GetString("name")
			}
			if flags.Changed("games") {
				f.Experiment.Games, _ = flags.GetInt("games")
			}
			if flags.Changed("goroutines") {
				f.Experiment.Goroutines, _ = flags.GetInt("goroutines")
			}
			if flags.Changed("out") {
				f.Experiment.OutDir, _ = flags.GetString("out")
			}
			if err := f.Validate(); err != nil {
				return err
			}

			trials, err := f.Trials()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			report, err := experiments.Run(ctx, experiments.Experiment{
				Name:       f.Experiment.Name,
				Games:      f.Experiment.Games,
				Goroutines: f.Experiment.Goroutines,
				Trials:     trials,
			}, f.Experiment.OutDir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range report.Summaries {
				fmt.Fprintf(out, "%s: %d games, %.1f ticks on average, %d unresolved\n",
					s.Trial, s.Games, s.MeanTicks, s.Unresolved)
				for _, team := range s.Ranking() {
					fmt.Fprintf(out, "  %s: %d wins\n", team, s.Wins[team])
				}
			}
			if report.Dir != "" {
				fmt.Fprintf(out, "Results written to %s\n", report.Dir)
			}
			return nil
		},
	}

	cmd.Flags().String("name", "", "Experiment name (default from config)")
	cmd.Flags().Int("games", 0, "Games per trial (default from config)")
	cmd.Flags().Int("goroutines", 0, "Games played in parallel (default from config)")
	cmd.Flags().String("out", "", "Results directory, empty to skip writing (default from config)")
	return cmd
}
