package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// TrialConfig describes one simulation setup of an experiment.
type TrialConfig struct {
	ID           int
	Name         string
	Agents       int
	Width        int
	Height       int
	Wrap         bool
	Teams        []string
	Strength     [2]int
	Health       [2]int
	MoveDistance int
	MaxTicks     int
}

type GameRecord struct {
	ID    int
	Trial int // TrialConfig.ID
	GameMetric
}

type TickRecord struct {
	Game int // GameRecord.ID
	TickMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates <root>/<name>/<timestamp> to hold the experiment's CSV files.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteTrialConfigs(configs []TrialConfig) error {
	header := []string{"id", "name", "agents", "width", "height", "wrap", "teams", "strength_min", "strength_max", "health_min", "health_max", "move_distance", "max_ticks"}
	rows := make([][]string, 0, len(configs))
	for _, config := range configs {
		rows = append(rows, []string{
			strconv.Itoa(config.ID),
			config.Name,
			strconv.Itoa(config.Agents),
			strconv.Itoa(config.Width),
			strconv.Itoa(config.Height),
			strconv.FormatBool(config.Wrap),
			strings.Join(config.Teams, "|"),
			strconv.Itoa(config.Strength[0]),
			strconv.Itoa(config.Strength[1]),
			strconv.Itoa(config.Health[0]),
			strconv.Itoa(config.Health[1]),
			strconv.Itoa(config.MoveDistance),
			strconv.Itoa(config.MaxTicks),
		})
	}
	return w.write("trial_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "trial", "run_id", "seed", "winner", "survivors", "ticks", "removals", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Trial),
			record.RunID,
			strconv.FormatUint(record.Seed, 10),
			record.Winner,
			strconv.Itoa(record.Survivors),
			strconv.Itoa(record.Ticks),
			strconv.Itoa(record.Removals),
			record.StartTime.Format(time.RFC3339Nano),
			record.EndTime.Format(time.RFC3339Nano),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteTickRecords(records []TickRecord) error {
	header := []string{"game", "tick", "moves", "stalls", "battles", "removals", "live", "teams"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Tick),
			strconv.Itoa(record.Moves),
			strconv.Itoa(record.Stalls),
			strconv.Itoa(record.Battles),
			strconv.Itoa(record.Removals),
			strconv.Itoa(record.Live),
			strconv.Itoa(record.Teams),
		})
	}
	return w.write("tick_records.csv", header, rows)
}

func (w *Writer) write(file string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, file)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", file, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", file, err)
	}
	return nil
}
