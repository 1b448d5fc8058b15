package game

import "battle/grid"

// Agent is a combatant. Agents hold no references to each other or to the
// grid; the engine owns them and mediates every mutation.
type Agent struct {
	ID           int
	Team         Team
	Strength     int // Grows by one per battle won
	Health       int // Static defense threshold
	MoveDistance int
	Pos          grid.Coord
}

func (a *Agent) Copy() *Agent {
	c := *a
	return &c
}
