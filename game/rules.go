package game

// Rules decides battles between a moving agent and an occupant of the cell it
// moved into, and how the winner is rewarded.
type Rules interface {
	Battle(mover, occupant *Agent) Outcome
	Reward(winner *Agent)
}
