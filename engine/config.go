package engine

import (
	"fmt"
	"math"

	"battle/game"
	"battle/grid"
	"battle/utils"
)

// Config holds the construction parameters of a simulation run.
type Config struct {
	Agents       int         `yaml:"agents"`
	Width        int         `yaml:"width"`
	Height       int         `yaml:"height"`
	Wrap         bool        `yaml:"wrap"`
	Teams        []game.Team `yaml:"teams"`
	Strength     game.Range  `yaml:"strength"`
	Health       game.Range  `yaml:"health"`
	MoveDistance int         `yaml:"move_distance"`
	Seed         uint64      `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Agents:       20,
		Width:        10,
		Height:       10,
		Wrap:         true,
		Teams:        []game.Team{"Red", "Blue"},
		Strength:     game.Range{Min: 1, Max: 10},
		Health:       game.Range{Min: 5, Max: 20},
		MoveDistance: 1,
	}
}

// Validate reports the first problem found, wrapped in ErrInvalidConfiguration.
func (c Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
	}

	if c.Agents < 0 {
		return invalid("negative agent count %d", c.Agents)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return invalid("grid must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	if len(c.Teams) == 0 {
		return invalid("team roster is empty")
	}
	seen := make(map[game.Team]bool, len(c.Teams))
	for _, team := range c.Teams {
		if team == "" {
			return invalid("empty team label")
		}
		if seen[team] {
			return invalid("duplicate team %q", team)
		}
		seen[team] = true
	}
	if c.Strength.Empty() {
		return invalid("empty strength range %v", c.Strength)
	}
	if !drawable(c.Strength) {
		return invalid("strength range %v is too wide to draw from", c.Strength)
	}
	if c.Health.Empty() {
		return invalid("empty health range %v", c.Health)
	}
	if !drawable(c.Health) {
		return invalid("health range %v is too wide to draw from", c.Health)
	}
	if c.MoveDistance < 1 {
		return invalid("move distance must be at least 1, got %d", c.MoveDistance)
	}
	return nil
}

func (c Config) Topology() grid.Topology {
	if c.Wrap {
		return grid.Toroidal
	}
	return grid.Clamped
}

// drawable reports whether r holds at most math.MaxInt values, the most draw
// can pick from. r must not be empty.
func drawable(r game.Range) bool {
	span := r.Max - r.Min
	return span >= 0 && span < math.MaxInt
}

func (c Config) hasTeam(team game.Team) bool {
	return utils.FindIndex(c.Teams, team) >= 0
}
