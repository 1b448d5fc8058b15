// Package config loads the YAML file that drives the command line tools.
//
// Every section is optional; missing keys keep the values from Default.
// Experiment trials are partial simulation configs layered over the
// top-level simulation section:
//
//	simulation:
//	  agents: 40
//	  teams: [Red, Blue]
//	experiment:
//	  games: 50
//	  trials:
//	    - name: crowded
//	      width: 5
//	      height: 5
//	    - name: clamped
//	      wrap: false
package config

import (
	"errors"
	"fmt"
	"os"

	"battle/engine"
	"battle/meta"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type File struct {
	Simulation engine.Config `yaml:"simulation"`
	MaxTicks   int           `yaml:"max_ticks"`
	Log        Log           `yaml:"log"`
	Experiment Experiment    `yaml:"experiment"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

type Experiment struct {
	Name       string      `yaml:"name"`
	Games      int         `yaml:"games"` // Per trial
	Goroutines int         `yaml:"goroutines"`
	OutDir     string      `yaml:"out_dir"`
	Trials     []yaml.Node `yaml:"trials"`
}

// Trial is one fully resolved experiment setup.
type Trial struct {
	Name     string `yaml:"name"`
	MaxTicks int    `yaml:"max_ticks"`

	engine.Config `yaml:",inline"`
}

func Default() File {
	return File{
		Simulation: engine.DefaultConfig(),
		MaxTicks:   meta.MAX_TICKS,
		Log:        Log{Level: "info", Format: "console"},
		Experiment: Experiment{
			Name:       "battle",
			Games:      meta.GAMES,
			Goroutines: meta.GO_ROUTINES,
			OutDir:     meta.RESULTS_DIR,
		},
	}
}

// Load reads path over Default. An empty path returns Default unchanged.
func Load(path string) (File, error) {
	f := Default()
	if path == "" {
		return f, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return f, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func (f File) Validate() error {
	if err := f.Simulation.Validate(); err != nil {
		return fmt.Errorf("simulation: %w", err)
	}
	if f.MaxTicks < 0 {
		return fmt.Errorf("%w: negative max_ticks %d", ErrInvalidConfig, f.MaxTicks)
	}
	if f.Experiment.Games < 1 {
		return fmt.Errorf("%w: experiment needs at least one game, got %d", ErrInvalidConfig, f.Experiment.Games)
	}
	if f.Experiment.Goroutines < 1 {
		return fmt.Errorf("%w: experiment needs at least one goroutine, got %d", ErrInvalidConfig, f.Experiment.Goroutines)
	}
	return nil
}

// Trials resolves the experiment trials. Each one starts from the simulation
// section and the top-level max_ticks; without any trials the simulation
// section itself is the only trial.
func (f File) Trials() ([]Trial, error) {
	base := Trial{Name: "default", MaxTicks: f.MaxTicks, Config: f.Simulation}
	if len(f.Experiment.Trials) == 0 {
		return []Trial{base}, nil
	}

	out := make([]Trial, 0, len(f.Experiment.Trials))
	for i := range f.Experiment.Trials {
		t := base
		t.Name = fmt.Sprintf("trial-%d", i+1)
		if err := f.Experiment.Trials[i].Decode(&t); err != nil {
			return nil, fmt.Errorf("failed to decode trial %d: %w", i+1, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("trial %s: %w", t.Name, err)
		}
		if t.MaxTicks < 0 {
			return nil, fmt.Errorf("%w: trial %s has negative max_ticks %d", ErrInvalidConfig, t.Name, t.MaxTicks)
		}
		out = append(out, t)
	}
	return out, nil
}
