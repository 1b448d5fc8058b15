package engine

import (
	"errors"

	"battle/experiments/metrics"
	"battle/game"
	"battle/grid"
)

// MaxTicks bounds Run when the caller does not give a limit.
const MaxTicks = 10000

var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrNoUniqueWinner       = errors.New("no unique winner")
)

// AgentState is the read-only view of a live agent handed to hosts.
type AgentState struct {
	ID       int        `json:"id"`
	Pos      grid.Coord `json:"pos"`
	Team     game.Team  `json:"team"`
	Strength int        `json:"strength"`
	Health   int        `json:"health"`
}

// Observer receives the snapshot of the initial state (tick 0) and of every
// completed tick. The slice belongs to the observer.
type Observer interface {
	Observe(tick int, agents []AgentState)
}

type Result struct {
	Winner    game.Team // "" unless exactly one team survived
	GameOver  bool      // At most one team is left
	Ticks     int
	Survivors int
	Game      metrics.GameMetric
	Ticked    []metrics.TickMetric
}
