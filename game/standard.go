package game

// StandardRules compares each side's strength against the other's health.
// The mover strikes first; health is never reduced.
type StandardRules struct {
	StrengthGain int
}

func NewStandardRules() *StandardRules {
	return &StandardRules{
		StrengthGain: 1,
	}
}

func (sr *StandardRules) Battle(mover, occupant *Agent) Outcome {
	if mover.Strength > occupant.Health {
		return MoverWins
	}
	if occupant.Strength > mover.Health {
		return OccupantWins
	}
	return Standoff
}

func (sr *StandardRules) Reward(winner *Agent) {
	winner.Strength += sr.StrengthGain
}
