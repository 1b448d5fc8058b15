package engine

import (
	"fmt"
	"time"

	"battle/experiments/metrics"
	"battle/game"
	"battle/grid"
	"battle/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(e *Engine)

func WithRules(rules game.Rules) Option {
	return func(e *Engine) {
		if rules != nil {
			e.rules = rules
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = logger
	}
}

func WithMetrics() Option {
	return func(e *Engine) {
		e.metrics = metrics.NewCollector()
	}
}

func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// Engine owns the live agents and the grid of one simulation run. All
// movement and combat goes through Step; agents are activated one at a time
// in ascending id order and each sees the effects of those before it.
//
// An Engine must not be used from more than one goroutine at a time.
type Engine struct {
	cfg      Config
	grid     *grid.Grid
	agents   map[int]*game.Agent
	teams    map[game.Team]int // Live agents per team; eliminated teams are absent
	rules    game.Rules
	rng      *rand.Rand
	tick     int
	removed  int
	last     metrics.TickMetric
	runID    string
	metrics  metrics.Collector
	observer Observer
	log      zerolog.Logger
}

// New validates cfg and creates cfg.Agents agents with random team, stats
// and starting cell, drawn in that order from a generator seeded with cfg.Seed.
func New(cfg Config, options ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := newEngine(cfg, options)
	if err != nil {
		return nil, err
	}

	for id := 0; id < cfg.Agents; id++ {
		a := &game.Agent{
			ID:           id,
			Team:         cfg.Teams[e.rng.Intn(len(cfg.Teams))],
			Strength:     draw(e.rng, cfg.Strength),
			Health:       draw(e.rng, cfg.Health),
			MoveDistance: cfg.MoveDistance,
			Pos:          grid.Coord{X: e.rng.Intn(cfg.Width), Y: e.rng.Intn(cfg.Height)},
		}
		if err := e.add(a); err != nil {
			return nil, err
		}
	}

	e.start()
	return e, nil
}

// NewFromAgents creates an engine holding exactly the given agents, e.g. a
// hand-built scenario or a frame loaded from a stored timeline. cfg.Agents is
// ignored. Agents without a move distance use cfg.MoveDistance.
func NewFromAgents(cfg Config, agents []game.Agent, options ...Option) (*Engine, error) {
	cfg.Agents = len(agents)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e, err := newEngine(cfg, options)
	if err != nil {
		return nil, err
	}

	for i := range agents {
		a := agents[i]
		if _, ok := e.agents[a.ID]; ok {
			return nil, fmt.Errorf("%w: duplicate agent id %d", ErrInvalidConfiguration, a.ID)
		}
		if !cfg.hasTeam(a.Team) {
			return nil, fmt.Errorf("%w: agent %d has unknown team %q", ErrInvalidConfiguration, a.ID, a.Team)
		}
		if a.MoveDistance == 0 {
			a.MoveDistance = cfg.MoveDistance
		}
		if a.MoveDistance < 1 {
			return nil, fmt.Errorf("%w: agent %d has move distance %d", ErrInvalidConfiguration, a.ID, a.MoveDistance)
		}
		if err := e.add(&a); err != nil {
			return nil, err
		}
	}

	e.start()
	return e, nil
}

func newEngine(cfg Config, options []Option) (*Engine, error) {
	g, err := grid.New(cfg.Width, cfg.Height, cfg.Topology())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	e := &Engine{ // Default values
		cfg:     cfg,
		grid:    g,
		agents:  make(map[int]*game.Agent, cfg.Agents),
		teams:   make(map[game.Team]int, len(cfg.Teams)),
		rules:   game.NewStandardRules(),
		rng:     utils.NewRand(cfg.Seed),
		runID:   uuid.NewString(),
		metrics: metrics.NewDummyCollector(),
		log:     log.Logger,
	}
	for _, option := range options {
		option(e)
	}
	e.log = e.log.With().Str("run", e.runID).Logger()
	return e, nil
}

func (e *Engine) add(a *game.Agent) error {
	pos, err := e.grid.Normalize(a.Pos)
	if err != nil {
		return fmt.Errorf("placing agent %d: %w", a.ID, err)
	}
	a.Pos = pos
	if err := e.grid.Place(a.ID, a.Pos); err != nil {
		return fmt.Errorf("placing agent %d: %w", a.ID, err)
	}
	e.agents[a.ID] = a
	e.teams[a.Team]++
	return nil
}

func (e *Engine) start() {
	e.last = metrics.TickMetric{Live: len(e.agents), Teams: len(e.teams)}
	e.log.Debug().Msgf("created %d agents in %d teams on a %dx%d %s grid",
		len(e.agents), len(e.teams), e.cfg.Width, e.cfg.Height, e.grid.Topology())
	e.notify()
}

// Step advances the world by one tick. It panics if an internal invariant is
// broken, which indicates a bug rather than a runtime condition.
func (e *Engine) Step() {
	for _, id := range utils.SortedKeys(e.agents) {
		a, ok := e.agents[id]
		if !ok { // Lost a battle earlier in this tick
			continue
		}
		e.activate(a)
	}
	e.tick++
	e.last = e.metrics.CompleteTick(e.tick, len(e.agents), len(e.teams))
	e.notify()
}

func (e *Engine) activate(a *game.Agent) {
	candidates := e.grid.Neighborhood(a.Pos, a.MoveDistance)
	if len(candidates) == 0 {
		e.metrics.AddStall()
		return
	}

	to := candidates[e.rng.Intn(len(candidates))]
	if err := e.grid.Move(a.ID, a.Pos, to); err != nil {
		panic(fmt.Sprintf("moving agent %d from %v to %v: %v", a.ID, a.Pos, to, err))
	}
	a.Pos = to
	e.metrics.AddMove()

	e.fight(a)
}

// fight resolves mover's battles against enemies in its cell, lowest id first,
// until the mover dies or every enemy has been faced.
func (e *Engine) fight(mover *game.Agent) {
	for _, id := range e.grid.Occupants(mover.Pos) {
		occupant, ok := e.agents[id]
		if !ok || id == mover.ID || occupant.Team == mover.Team {
			continue
		}
		e.metrics.AddBattle()

		switch e.rules.Battle(mover, occupant) {
		case game.MoverWins:
			if e.remove(occupant.ID) {
				e.rules.Reward(mover)
			}
		case game.OccupantWins:
			if e.remove(mover.ID) {
				e.rules.Reward(occupant)
			}
			return
		}
	}
}

// remove deletes an agent from the live set and the grid. It is a no-op for
// ids that are already gone.
func (e *Engine) remove(id int) bool {
	a, ok := e.agents[id]
	if !ok {
		return false
	}
	delete(e.agents, id)
	if !e.grid.Remove(id, a.Pos) {
		panic(fmt.Sprintf("agent %d missing from grid cell %v", id, a.Pos))
	}
	e.removed++
	e.metrics.AddRemoval()

	e.teams[a.Team]--
	if e.teams[a.Team] == 0 {
		delete(e.teams, a.Team)
		e.log.Debug().Msgf("team %s eliminated during tick %d", a.Team, e.tick+1)
	}
	return true
}

func (e *Engine) notify() {
	if e.observer != nil {
		e.observer.Observe(e.tick, e.Snapshot())
	}
}

// Run steps until at most one team is left or the tick counter reaches
// maxTicks (MaxTicks if maxTicks <= 0).
func (e *Engine) Run(maxTicks int) Result {
	if maxTicks <= 0 {
		maxTicks = MaxTicks
	}

	startTime := time.Now()
	e.log.Info().Msgf("starting with %d agents in %d teams", len(e.agents), len(e.teams))

	var ticked []metrics.TickMetric
	for e.LiveTeamCount() > 1 && e.tick < maxTicks {
		e.Step()
		ticked = append(ticked, e.last)
	}

	res := Result{
		GameOver:  e.LiveTeamCount() <= 1,
		Ticks:     e.tick,
		Survivors: len(e.agents),
		Ticked:    ticked,
	}
	if winner, err := e.WinningTeam(); err == nil {
		res.Winner = winner
	}

	endTime := time.Now()
	res.Game = metrics.GameMetric{
		RunID:     e.runID,
		Seed:      e.cfg.Seed,
		Winner:    string(res.Winner),
		Survivors: res.Survivors,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  endTime.Sub(startTime),
		Ticks:     e.tick,
		Removals:  e.removed,
	}

	if res.GameOver {
		e.log.Info().Msgf("game over after %d ticks, winner: %s", e.tick, res.Winner)
	} else {
		e.log.Info().Msgf("stopped after %d ticks with %d teams left", e.tick, e.LiveTeamCount())
	}
	return res
}

// LiveTeamCount returns the number of teams with at least one live agent.
func (e *Engine) LiveTeamCount() int {
	return len(e.teams)
}

// WinningTeam returns the only surviving team, or ErrNoUniqueWinner.
func (e *Engine) WinningTeam() (game.Team, error) {
	if len(e.teams) != 1 {
		return "", fmt.Errorf("%w: %d teams alive", ErrNoUniqueWinner, len(e.teams))
	}
	for team := range e.teams {
		return team, nil
	}
	panic("unreachable")
}

// Snapshot returns every live agent in ascending id order.
func (e *Engine) Snapshot() []AgentState {
	ids := utils.SortedKeys(e.agents)
	out := make([]AgentState, 0, len(ids))
	for _, id := range ids {
		a := e.agents[id]
		out = append(out, AgentState{
			ID:       a.ID,
			Pos:      a.Pos,
			Team:     a.Team,
			Strength: a.Strength,
			Health:   a.Health,
		})
	}
	return out
}

// Teams returns the number of live agents per surviving team.
func (e *Engine) Teams() map[game.Team]int {
	out := make(map[game.Team]int, len(e.teams))
	for team, n := range e.teams {
		out[team] = n
	}
	return out
}

// Agent returns a copy of a live agent.
func (e *Engine) Agent(id int) (game.Agent, bool) {
	a, ok := e.agents[id]
	if !ok {
		return game.Agent{}, false
	}
	return *a.Copy(), true
}

// Occupants returns the ids of live agents at c.
func (e *Engine) Occupants(c grid.Coord) []int {
	return e.grid.Occupants(c)
}

func (e *Engine) Tick() int {
	return e.tick
}

func (e *Engine) RunID() string {
	return e.runID
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Size returns the grid dimensions.
func (e *Engine) Size() (width, height int) {
	return e.grid.Width(), e.grid.Height()
}

// Removed returns how many agents have lost a battle so far.
func (e *Engine) Removed() int {
	return e.removed
}

// LastTick returns the metrics of the latest completed tick. Counters are
// only filled in when the engine was created WithMetrics.
func (e *Engine) LastTick() metrics.TickMetric {
	return e.last
}

func draw(rng *rand.Rand, r game.Range) int {
	return r.Min + rng.Intn(r.Max-r.Min+1)
}
