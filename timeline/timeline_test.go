package timeline

import (
	"context"
	"path/filepath"
	"testing"

	"battle/engine"
	"battle/game"
	"battle/grid"

	"github.com/stretchr/testify/require"
)

func runGame(t *testing.T, seed uint64, ticks int) (*Timeline, *engine.Engine) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Width, cfg.Height = 6, 6
	cfg.Teams = []game.Team{"Red", "Blue", "Green"}
	cfg.Strength = game.Range{Min: 6, Max: 10}
	cfg.Health = game.Range{Min: 1, Max: 5}
	cfg.Seed = seed

	tl := New()
	e, err := engine.New(cfg, engine.WithObserver(tl))
	require.NoError(t, err)
	e.Run(ticks)
	return tl, e
}

func TestTimelineObserve(t *testing.T) {
	t.Run("records the initial state and every tick", func(t *testing.T) {
		tl, e := runGame(t, 5, 30)

		require.Equal(t, e.Tick()+1, tl.Len())
		last, ok := tl.Last()
		require.True(t, ok)
		require.Equal(t, e.Tick(), last.Tick)
		require.Equal(t, e.Snapshot(), last.Agents)
	})

	t.Run("rejects ticks out of order", func(t *testing.T) {
		tl := New()
		tl.Observe(0, nil)
		tl.Observe(1, nil)

		require.Panics(t, func() { tl.Observe(1, nil) })
	})
}

func TestTimelineAt(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Seed = 9
	tl := New()
	e, err := engine.New(cfg, engine.WithObserver(tl))
	require.NoError(t, err)

	want := map[int][]engine.AgentState{0: e.Snapshot()}
	for i := 1; i <= 10; i++ {
		e.Step()
		want[i] = e.Snapshot()
	}

	for tick, agents := range want {
		f, err := tl.At(tick)
		require.NoError(t, err)
		require.Equal(t, tick, f.Tick)
		require.Equal(t, agents, f.Agents, "tick %d should be reconstructed exactly", tick)
	}

	_, err = tl.At(11)
	require.ErrorIs(t, err, ErrTickNotRecorded)
	_, err = tl.At(-1)
	require.ErrorIs(t, err, ErrTickNotRecorded)
}

func TestTimelineEliminations(t *testing.T) {
	tl := New()
	tl.Observe(0, []engine.AgentState{{ID: 0, Team: "Red"}, {ID: 1, Team: "Blue"}, {ID: 2, Team: "Green"}})
	tl.Observe(1, []engine.AgentState{{ID: 0, Team: "Red"}, {ID: 1, Team: "Blue"}, {ID: 2, Team: "Green"}})
	tl.Observe(2, []engine.AgentState{{ID: 0, Team: "Red"}})

	require.Equal(t, []Elimination{{Team: "Blue", Tick: 2}, {Team: "Green", Tick: 2}}, tl.Eliminations())
	require.Empty(t, New().Eliminations())
}

func TestFrameGameAgents(t *testing.T) {
	f := Frame{Tick: 4, Agents: []engine.AgentState{
		{ID: 3, Pos: grid.Coord{X: 1, Y: 2}, Team: "Red", Strength: 7, Health: 9},
	}}

	got := f.GameAgents(2)

	require.Equal(t, []game.Agent{{ID: 3, Team: "Red", Strength: 7, Health: 9, MoveDistance: 2, Pos: grid.Coord{X: 1, Y: 2}}}, got)
	require.Equal(t, map[game.Team]int{"Red": 1}, f.Teams())
}

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trips a run", func(t *testing.T) {
		store, err := Open(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		defer store.Close()

		tl, e := runGame(t, 21, 40)
		require.NoError(t, store.Save(ctx, e.RunID(), e.Config(), tl))

		run, err := store.Load(ctx, e.RunID())
		require.NoError(t, err)
		require.Equal(t, e.Config(), run.Config)
		require.Equal(t, tl.Frames(), run.Timeline.Frames())
		require.False(t, run.CreatedAt.IsZero())

		ids, err := store.Runs(ctx)
		require.NoError(t, err)
		require.Equal(t, []string{e.RunID()}, ids)
	})

	t.Run("saving again replaces the run", func(t *testing.T) {
		store, err := Open(":memory:")
		require.NoError(t, err)
		defer store.Close()

		first, e := runGame(t, 1, 3)
		require.NoError(t, store.Save(ctx, "run", e.Config(), first))
		second, _ := runGame(t, 2, 1)
		require.NoError(t, store.Save(ctx, "run", e.Config(), second))

		run, err := store.Load(ctx, "run")
		require.NoError(t, err)
		require.Equal(t, second.Len(), run.Timeline.Len())
	})

	t.Run("unknown run", func(t *testing.T) {
		store, err := Open(":memory:")
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Load(ctx, "missing")
		require.ErrorIs(t, err, ErrRunNotFound)
	})
}
