package experiments

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"battle/config"
	"battle/engine"
	"battle/experiments/metrics"
	"battle/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// Experiment plays Games seeded games for every trial. Game i of a trial is
// seeded with the trial's seed plus i, so reruns reproduce every game.
type Experiment struct {
	Name       string
	Games      int // Per trial
	Goroutines int
	Trials     []config.Trial
}

// Summary aggregates the games of one trial.
type Summary struct {
	Trial      string
	Games      int
	Wins       map[game.Team]int
	Unresolved int // Games that hit the tick limit with several teams alive
	MeanTicks  float64
}

type Report struct {
	Dir       string // Empty if nothing was written
	Games     []metrics.GameRecord
	Ticks     []metrics.TickRecord
	Summaries []Summary
}

type task struct {
	id    int // GameRecord.ID, 1-based
	trial int // Index into Experiment.Trials
	game  int // Index within the trial
}

type result struct {
	record metrics.GameRecord
	ticks  []metrics.TickMetric
	err    error
}

// Run plays every game on a pool of goroutines and, if outDir is not empty,
// writes trial_configs.csv, game_records.csv and tick_records.csv under
// outDir/<name>/<timestamp>.
func Run(ctx context.Context, exp Experiment, outDir string) (Report, error) {
	if exp.Games < 1 || exp.Goroutines < 1 || len(exp.Trials) == 0 {
		return Report{}, fmt.Errorf("experiment %q needs games, goroutines and trials", exp.Name)
	}

	total := exp.Games * len(exp.Trials)
	tasks := make(chan task, total)
	for ti := range exp.Trials {
		for gi := 0; gi < exp.Games; gi++ {
			tasks <- task{id: ti*exp.Games + gi + 1, trial: ti, game: gi}
		}
	}
	close(tasks)

	log.Info().Msgf("starting %s experiment with %d trials of %d games on %d goroutines...",
		exp.Name, len(exp.Trials), exp.Games, exp.Goroutines)

	results := make([]result, total)
	var wg sync.WaitGroup
	for i := 0; i < exp.Goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for t := range tasks {
				if err := ctx.Err(); err != nil {
					results[t.id-1] = result{err: err}
					continue
				}
				results[t.id-1] = runGame(t, exp.Trials[t.trial])
			}
		}()
	}
	wg.Wait()

	report := Report{}
	for _, r := range results {
		if r.err != nil {
			return Report{}, r.err
		}
		report.Games = append(report.Games, r.record)
		for _, tm := range r.ticks {
			report.Ticks = append(report.Ticks, metrics.TickRecord{Game: r.record.ID, TickMetric: tm})
		}
	}
	report.Summaries = Summarize(exp.Trials, report.Games)
	log.Info().Msgf("completed %s experiment", exp.Name)

	if outDir == "" {
		return report, nil
	}
	dir, err := write(outDir, exp, report)
	if err != nil {
		return Report{}, err
	}
	report.Dir = dir
	return report, nil
}

// runGame executes a single game of a trial and returns its records
func runGame(t task, trial config.Trial) result {
	cfg := trial.Config
	cfg.Seed += uint64(t.game)

	e, err := engine.New(cfg,
		engine.WithMetrics(),
		engine.WithLogger(log.With().Int("game", t.id).Str("trial", trial.Name).Logger()),
	)
	if err != nil {
		return result{err: fmt.Errorf("game %d of trial %s: %w", t.game+1, trial.Name, err)}
	}

	res := e.Run(trial.MaxTicks)
	return result{
		record: metrics.GameRecord{ID: t.id, Trial: t.trial + 1, GameMetric: res.Game},
		ticks:  res.Ticked,
	}
}

// Summarize counts wins per team and the mean game length of every trial.
func Summarize(trials []config.Trial, games []metrics.GameRecord) []Summary {
	out := make([]Summary, len(trials))
	for i, trial := range trials {
		out[i] = Summary{Trial: trial.Name, Wins: map[game.Team]int{}}
	}

	ticks := make([]int, len(trials))
	for _, g := range games {
		i := g.Trial - 1
		if i < 0 || i >= len(out) {
			continue
		}
		out[i].Games++
		ticks[i] += g.Ticks
		if g.Winner == "" {
			out[i].Unresolved++
		} else {
			out[i].Wins[game.Team(g.Winner)]++
		}
	}
	for i := range out {
		if out[i].Games > 0 {
			out[i].MeanTicks = float64(ticks[i]) / float64(out[i].Games)
		}
	}
	return out
}

// Ranking returns the teams of s ordered by wins, most first, ties by name.
func (s Summary) Ranking() []game.Team {
	teams := make([]game.Team, 0, len(s.Wins))
	for team := range s.Wins {
		teams = append(teams, team)
	}
	slices.SortFunc(teams, func(a, b game.Team) int {
		if s.Wins[a] != s.Wins[b] {
			return s.Wins[b] - s.Wins[a]
		}
		return strings.Compare(string(a), string(b))
	})
	return teams
}

func write(outDir string, exp Experiment, report Report) (string, error) {
	writer, err := metrics.NewWriter(outDir, exp.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	configs := make([]metrics.TrialConfig, 0, len(exp.Trials))
	for i, t := range exp.Trials {
		teams := make([]string, 0, len(t.Teams))
		for _, team := range t.Teams {
			teams = append(teams, string(team))
		}
		configs = append(configs, metrics.TrialConfig{
			ID:           i + 1,
			Name:         t.Name,
			Agents:       t.Agents,
			Width:        t.Width,
			Height:       t.Height,
			Wrap:         t.Wrap,
			Teams:        teams,
			Strength:     [2]int{t.Strength.Min, t.Strength.Max},
			Health:       [2]int{t.Health.Min, t.Health.Max},
			MoveDistance: t.MoveDistance,
			MaxTicks:     t.MaxTicks,
		})
	}

	if err := writer.WriteTrialConfigs(configs); err != nil {
		return "", fmt.Errorf("failed to store trial configs: %w", err)
	}
	log.Info().Msg("stored trial configs")

	if err := writer.WriteGameRecords(report.Games); err != nil {
		return "", fmt.Errorf("failed to write game records: %w", err)
	}
	log.Info().Msg("stored game records")

	if err := writer.WriteTickRecords(report.Ticks); err != nil {
		return "", fmt.Errorf("failed to write tick records: %w", err)
	}
	log.Info().Msg("stored tick records")

	return writer.Dir(), nil
}
