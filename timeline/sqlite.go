package timeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"battle/engine"
	"battle/game"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	config     TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS ticks (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	tick   INTEGER NOT NULL,
	PRIMARY KEY (run_id, tick)
);
CREATE TABLE IF NOT EXISTS agents (
	run_id   TEXT NOT NULL,
	tick     INTEGER NOT NULL,
	agent_id INTEGER NOT NULL,
	x        INTEGER NOT NULL,
	y        INTEGER NOT NULL,
	team     TEXT NOT NULL,
	strength INTEGER NOT NULL,
	health   INTEGER NOT NULL,
	PRIMARY KEY (run_id, tick, agent_id),
	FOREIGN KEY (run_id, tick) REFERENCES ticks(run_id, tick) ON DELETE CASCADE
);
`

// Run is a stored timeline together with the configuration that produced it.
type Run struct {
	ID        string
	Config    engine.Config
	CreatedAt time.Time
	Timeline  *Timeline
}

// Store persists timelines in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // One connection keeps ":memory:" databases shared

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes every frame of tl under runID, replacing any run with that id.
func (s *Store) Save(ctx context.Context, runID string, cfg engine.Config, tl *Timeline) error {
	cfgYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"agents", "ticks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE run_id = ?`, runID); err != nil {
			return fmt.Errorf("failed to replace run %s: %w", runID, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID); err != nil {
		return fmt.Errorf("failed to replace run %s: %w", runID, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (id, config, created_at) VALUES (?, ?, ?)`,
		runID, string(cfgYAML), time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", runID, err)
	}

	tickStmt, err := tx.PrepareContext(ctx, `INSERT INTO ticks (run_id, tick) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tick insert: %w", err)
	}
	defer tickStmt.Close()
	agentStmt, err := tx.PrepareContext(ctx, `INSERT INTO agents (run_id, tick, agent_id, x, y, team, strength, health) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare agent insert: %w", err)
	}
	defer agentStmt.Close()

	for _, f := range tl.Frames() {
		if _, err := tickStmt.ExecContext(ctx, runID, f.Tick); err != nil {
			return fmt.Errorf("failed to insert tick %d: %w", f.Tick, err)
		}
		for _, a := range f.Agents {
			if _, err := agentStmt.ExecContext(ctx, runID, f.Tick, a.ID, a.Pos.X, a.Pos.Y, string(a.Team), a.Strength, a.Health); err != nil {
				return fmt.Errorf("failed to insert agent %d at tick %d: %w", a.ID, f.Tick, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", runID, err)
	}
	return nil
}

// Load reads a run back. Frames come out in tick order with agents by id.
func (s *Store) Load(ctx context.Context, runID string) (*Run, error) {
	var cfgYAML, created string
	err := s.db.QueryRowContext(ctx, `SELECT config, created_at FROM runs WHERE id = ?`, runID).Scan(&cfgYAML, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
	}

	run := &Run{ID: runID, Timeline: New()}
	if err := yaml.Unmarshal([]byte(cfgYAML), &run.Config); err != nil {
		return nil, fmt.Errorf("failed to decode config of run %s: %w", runID, err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)

	ticks, err := s.ticks(ctx, runID)
	if err != nil {
		return nil, err
	}
	agents, err := s.agents(ctx, runID)
	if err != nil {
		return nil, err
	}
	for _, tick := range ticks {
		frame := agents[tick]
		if frame == nil {
			frame = []engine.AgentState{}
		}
		run.Timeline.Observe(tick, frame)
	}
	return run, nil
}

func (s *Store) ticks(ctx context.Context, runID string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick FROM ticks WHERE run_id = ? ORDER BY tick`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var tick int
		if err := rows.Scan(&tick); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		out = append(out, tick)
	}
	return out, rows.Err()
}

func (s *Store) agents(ctx context.Context, runID string) (map[int][]engine.AgentState, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tick, agent_id, x, y, team, strength, health FROM agents WHERE run_id = ? ORDER BY tick, agent_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer rows.Close()

	out := map[int][]engine.AgentState{}
	for rows.Next() {
		var tick int
		var a engine.AgentState
		var team string
		if err := rows.Scan(&tick, &a.ID, &a.Pos.X, &a.Pos.Y, &team, &a.Strength, &a.Health); err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		a.Team = game.Team(team)
		out[tick] = append(out[tick], a)
	}
	return out, rows.Err()
}

// Runs lists stored run ids, newest first.
func (s *Store) Runs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
