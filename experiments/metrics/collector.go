package metrics

import (
	"sync/atomic"
	"time"
)

type TickMetric struct {
	Tick     int
	Moves    int // Agents that changed cell
	Stalls   int // Agents with no move candidates
	Battles  int // Encounters with an enemy, including standoffs
	Removals int
	Live     int // Live agents after the tick
	Teams    int // Live teams after the tick
}

type GameMetric struct {
	RunID     string
	Seed      uint64
	Winner    string // "" if no single team survived
	Survivors int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Ticks     int
	Removals  int
}

// Collector counts events inside a tick. The engine calls CompleteTick once
// per tick, which returns the tick's totals and resets the counters.
type Collector interface {
	AddMove()
	AddStall()
	AddBattle()
	AddRemoval()
	CompleteTick(tick, live, teams int) TickMetric
}

type collector struct {
	moves    atomic.Int32
	stalls   atomic.Int32
	battles  atomic.Int32
	removals atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) AddMove() {
	m.moves.Add(1)
}

func (m *collector) AddStall() {
	m.stalls.Add(1)
}

func (m *collector) AddBattle() {
	m.battles.Add(1)
}

func (m *collector) AddRemoval() {
	m.removals.Add(1)
}

func (m *collector) CompleteTick(tick, live, teams int) TickMetric {
	return TickMetric{
		Tick:     tick,
		Moves:    int(m.moves.Swap(0)),
		Stalls:   int(m.stalls.Swap(0)),
		Battles:  int(m.battles.Swap(0)),
		Removals: int(m.removals.Swap(0)),
		Live:     live,
		Teams:    teams,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) AddMove()    {}
func (m *dummyCollector) AddStall()   {}
func (m *dummyCollector) AddBattle()  {}
func (m *dummyCollector) AddRemoval() {}

// CompleteTick keeps the population figures, which cost nothing to report.
func (m *dummyCollector) CompleteTick(tick, live, teams int) TickMetric {
	return TickMetric{Tick: tick, Live: live, Teams: teams}
}
