package main

import (
	"fmt"

	"battle/engine"
	"battle/timeline"

	"github.com/spf13/cobra"
)

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Show a stored run at any tick",
		Long: `Show a run saved with "battle run --db" at a given tick.

Without --run the newest run is used, without --tick the last recorded tick.
With --continue the shown tick becomes the start of a fresh simulation played
for the given number of ticks. It reuses the stored agents and config but
draws from a new generator seeded with the run's seed (or --seed), so it is
not the stored run's own future. Elimination ticks are counted from the
start of the stored run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}

			flags := cmd.Flags()
			db, _ := flags.GetString("db")
			store, err := timeline.Open(db)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			runs, err := store.Runs(ctx)
			if err != nil {
				return err
			}
			if list, _ := flags.GetBool("list"); list {
				for _, id := range runs {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			runID, _ := flags.GetString("run")
			if runID == "" {
				if len(runs) == 0 {
					return fmt.Errorf("%w: %s holds no runs", timeline.ErrRunNotFound, db)
				}
				runID = runs[0]
			}
			run, err := store.Load(ctx, runID)
			if err != nil {
				return err
			}

			frame, ok := run.Timeline.Last()
			if flags.Changed("tick") {
				tick, _ := flags.GetInt("tick")
				if frame, err = run.Timeline.At(tick); err != nil {
					return err
				}
			} else if !ok {
				return fmt.Errorf("%w: run %s is empty", timeline.ErrTickNotRecorded, runID)
			}

			last, _ := run.Timeline.Last()
			fmt.Fprintf(out, "Run %s, tick %d of %d:\n", runID, frame.Tick, last.Tick)
			if err := render(out, run.Config.Width, run.Config.Height, frame.Agents); err != nil {
				return err
			}

			ticks, _ := flags.GetInt("continue")
			if ticks <= 0 {
				return nil
			}
			cfg := run.Config
			if flags.Changed("seed") {
				cfg.Seed, _ = flags.GetUint64("seed")
			}
			tl := timeline.New()
			e, err := engine.NewFromAgents(cfg, frame.GameAgents(cfg.MoveDistance), engine.WithObserver(tl))
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "\nContinuing from tick %d for up to %d ticks:\n", frame.Tick, ticks)
			res := e.Run(ticks)
			printResult(out, res, e.Teams(), tl, frame.Tick)
			final, _ := tl.Last()
			return render(out, cfg.Width, cfg.Height, final.Agents)
		},
	}

	cmd.Flags().String("db", "battle.db", "SQLite file holding stored runs")
	cmd.Flags().String("run", "", "Run id (default newest)")
	cmd.Flags().Int("tick", 0, "Tick to show (default last)")
	cmd.Flags().Bool("list", false, "List stored run ids")
	cmd.Flags().Int("continue", 0, "Simulate this many more ticks from the shown tick")
	cmd.Flags().Uint64("seed", 0, "Seed for --continue (default the run's seed)")
	return cmd
}
