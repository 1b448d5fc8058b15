package main

import (
	"fmt"
	"io"

	"battle/config"
	"battle/engine"
	"battle/game"
	"battle/timeline"
	"battle/utils"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single simulation",
		Long: `Run a single simulation until one team is left or the tick limit is hit.

Flags override the values of the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyRunFlags(cmd, &f); err != nil {
				return err
			}

			tl := timeline.New()
			e, err := engine.New(f.Simulation, engine.WithObserver(tl), engine.WithMetrics())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			width, height := e.Size()
			fmt.Fprintf(out, "Simulation %s started with %d agents from %d teams on a %dx%d grid.\n",
				e.RunID(), len(e.Snapshot()), e.LiveTeamCount(), width, height)

			res := e.Run(f.MaxTicks)
			printResult(out, res, e.Teams(), tl, 0)

			if show, _ := cmd.Flags().GetBool("show"); show {
				last, _ := tl.Last()
				fmt.Fprintf(out, "\nTick %d:\n", last.Tick)
				if err := render(out, width, height, last.Agents); err != nil {
					return err
				}
			}

			if db, _ := cmd.Flags().GetString("db"); db != "" {
				store, err := timeline.Open(db)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Save(cmd.Context(), e.RunID(), e.Config(), tl); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved %d ticks of run %s to %s\n", tl.Len(), e.RunID(), db)
			}
			return nil
		},
	}

	addSimulationFlags(cmd)
	cmd.Flags().Int("max-ticks", 0, "Tick limit (default from config)")
	cmd.Flags().Bool("show", false, "Print the final grid")
	cmd.Flags().String("db", "", "SQLite file to store the timeline in")
	return cmd
}

func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("agents", 0, "Number of agents")
	cmd.Flags().Int("width", 0, "Grid width")
	cmd.Flags().Int("height", 0, "Grid height")
	cmd.Flags().Bool("wrap", true, "Wrap the grid edges into a torus")
	cmd.Flags().StringSlice("teams", nil, "Team labels, e.g. Red,Blue")
	cmd.Flags().IntSlice("strength", nil, "Strength range as min,max")
	cmd.Flags().IntSlice("health", nil, "Health range as min,max")
	cmd.Flags().Int("move-distance", 0, "Move distance per tick")
	cmd.Flags().Uint64("seed", 0, "Random seed")
}

// applyRunFlags copies every flag the user set onto f and validates the result.
func applyRunFlags(cmd *cobra.Command, f *config.File) error {
	flags := cmd.Flags()
	sim := &f.Simulation

	for name, dst := range map[string]*int{
		"agents":        &sim.Agents,
		"width":         &sim.Width,
		"height":        &sim.Height,
		"move-distance": &sim.MoveDistance,
	} {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	if flags.Changed("wrap") {
		sim.Wrap, _ = flags.GetBool("wrap")
	}
	if flags.Changed("seed") {
		sim.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("teams") {
		labels, _ := flags.GetStringSlice("teams")
		sim.Teams = make([]game.Team, 0, len(labels))
		for _, label := range labels {
			sim.Teams = append(sim.Teams, game.Team(label))
		}
	}
	for name, dst := range map[string]*game.Range{
		"strength": &sim.Strength,
		"health":   &sim.Health,
	} {
		if !flags.Changed(name) {
			continue
		}
		bounds, _ := flags.GetIntSlice(name)
		if len(bounds) != 2 {
			return fmt.Errorf("--%s takes min,max, got %v", name, bounds)
		}
		*dst = game.Range{Min: bounds[0], Max: bounds[1]}
	}
	if flags.Lookup("max-ticks") != nil && flags.Changed("max-ticks") {
		f.MaxTicks, _ = flags.GetInt("max-ticks")
	}
	return f.Validate()
}

// printResult reports how a run ended. Elimination ticks are shifted by start,
// the tick the run was resumed from.
func printResult(out io.Writer, res engine.Result, teams map[game.Team]int, tl *timeline.Timeline, start int) {
	switch {
	case res.GameOver && res.Winner != "":
		fmt.Fprintf(out, "Game over after %d ticks! Winner: %s\n", res.Ticks, res.Winner)
	case res.GameOver:
		fmt.Fprintf(out, "Game over after %d ticks! No agents left.\n", res.Ticks)
	default:
		fmt.Fprintf(out, "Stopped after %d ticks with %d teams alive.\n", res.Ticks, len(teams))
	}

	for _, team := range utils.SortedKeys(teams) {
		fmt.Fprintf(out, "  %s: %d agents\n", team, teams[team])
	}
	if tl == nil {
		return
	}
	for _, el := range tl.Eliminations() {
		fmt.Fprintf(out, "  %s eliminated at tick %d\n", el.Team, start+el.Tick)
	}
}
