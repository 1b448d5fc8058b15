// Package timeline keeps the per-tick history of a run so that any past tick
// can be reconstructed, either in memory or from a SQLite file.
package timeline

import (
	"errors"
	"fmt"

	"battle/engine"
	"battle/game"

	"golang.org/x/exp/slices"
)

var (
	ErrTickNotRecorded = errors.New("tick not recorded")
	ErrRunNotFound     = errors.New("run not found")
)

// Frame is the state of every live agent at the end of a tick.
type Frame struct {
	Tick   int                 `json:"tick"`
	Agents []engine.AgentState `json:"agents"`
}

// Teams returns the number of live agents per team in the frame.
func (f Frame) Teams() map[game.Team]int {
	out := map[game.Team]int{}
	for _, a := range f.Agents {
		out[a.Team]++
	}
	return out
}

// GameAgents converts the frame back into agents, e.g. to seed a new engine.
func (f Frame) GameAgents(moveDistance int) []game.Agent {
	out := make([]game.Agent, 0, len(f.Agents))
	for _, a := range f.Agents {
		out = append(out, game.Agent{
			ID:           a.ID,
			Team:         a.Team,
			Strength:     a.Strength,
			Health:       a.Health,
			MoveDistance: moveDistance,
			Pos:          a.Pos,
		})
	}
	return out
}

type Elimination struct {
	Team game.Team
	Tick int // First tick at which the team had no live agent
}

// Timeline records frames in tick order. It implements engine.Observer.
type Timeline struct {
	frames []Frame
}

var _ engine.Observer = (*Timeline)(nil)

func New() *Timeline {
	return &Timeline{}
}

// Observe appends a frame. Ticks must be strictly increasing.
func (t *Timeline) Observe(tick int, agents []engine.AgentState) {
	if last, ok := t.Last(); ok && tick <= last.Tick {
		panic(fmt.Sprintf("tick %d recorded after tick %d", tick, last.Tick))
	}
	t.frames = append(t.frames, Frame{Tick: tick, Agents: agents})
}

// At returns the frame recorded for tick.
func (t *Timeline) At(tick int) (Frame, error) {
	i, found := slices.BinarySearchFunc(t.frames, tick, func(f Frame, tick int) int {
		return f.Tick - tick
	})
	if !found {
		return Frame{}, fmt.Errorf("%w: %d", ErrTickNotRecorded, tick)
	}
	return t.frames[i], nil
}

func (t *Timeline) Last() (Frame, bool) {
	if len(t.frames) == 0 {
		return Frame{}, false
	}
	return t.frames[len(t.frames)-1], true
}

func (t *Timeline) Len() int {
	return len(t.frames)
}

func (t *Timeline) Frames() []Frame {
	return t.frames
}

// Eliminations lists the teams that vanished during the recorded ticks, in
// the order they were eliminated.
func (t *Timeline) Eliminations() []Elimination {
	var out []Elimination
	if len(t.frames) == 0 {
		return out
	}
	alive := t.frames[0].Teams()
	for _, f := range t.frames[1:] {
		now := f.Teams()
		var gone []game.Team
		for team := range alive {
			if now[team] == 0 {
				gone = append(gone, team)
			}
		}
		slices.Sort(gone)
		for _, team := range gone {
			out = append(out, Elimination{Team: team, Tick: f.Tick})
		}
		alive = now
	}
	return out
}
