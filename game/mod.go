package game

import "fmt"

// Team labels a faction. A team is alive while at least one of its agents is.
type Team string

// Range is an inclusive integer interval used for random stat draws.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

func (r Range) Empty() bool {
	return r.Min > r.Max
}

func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}

type Outcome int

const (
	Standoff     Outcome = iota // Neither side beats the other's health
	MoverWins                   // The occupant is removed
	OccupantWins                // The mover is removed
)

func (o Outcome) String() string {
	switch o {
	case Standoff:
		return "standoff"
	case MoverWins:
		return "mover_wins"
	case OccupantWins:
		return "occupant_wins"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}
