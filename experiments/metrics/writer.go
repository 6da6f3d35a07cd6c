package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// IterationRecord is one row per training iteration.
type IterationRecord struct {
	Iteration     int
	Positions     int
	TrainDuration time.Duration
	ArenaReward   float64 // Candidate's average reward
	ArenaGames    int
	Accepted      bool
	SchedulerMetric
}

// BatchingRecord is one row per scheduler run of a batching experiment.
type BatchingRecord struct {
	Run       int
	Positions int
	SchedulerMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by the current timestamp.
func NewWriter(root string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, timestamp)
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

// WriteSetup stores the run configuration as setup.yaml.
func (w *Writer) WriteSetup(setup any) error {
	out, err := yaml.Marshal(setup)
	if err != nil {
		return fmt.Errorf("failed to marshal setup: %w", err)
	}
	err = os.WriteFile(filepath.Join(w.baseDir, "setup.yaml"), out, 0644)
	if err != nil {
		return fmt.Errorf("failed to write setup file: %w", err)
	}
	return nil
}

func (w *Writer) WriteIterationRecords(records []IterationRecord) error {
	header := []string{"iteration", "positions", "train_duration", "arena_reward", "arena_games", "accepted",
		"workers", "rounds", "requests", "max_batch", "mean_batch", "duration"}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, append([]string{
			strconv.Itoa(record.Iteration),
			strconv.Itoa(record.Positions),
			record.TrainDuration.String(),
			strconv.FormatFloat(record.ArenaReward, 'f', 4, 64),
			strconv.Itoa(record.ArenaGames),
			strconv.FormatBool(record.Accepted),
		}, schedulerColumns(record.SchedulerMetric)...))
	}

	return w.writeCSV("iteration_records.csv", header, rows)
}

func (w *Writer) WriteBatchingRecords(records []BatchingRecord) error {
	header := []string{"run", "positions", "workers", "rounds", "requests", "max_batch", "mean_batch", "duration"}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, append([]string{
			strconv.Itoa(record.Run),
			strconv.Itoa(record.Positions),
		}, schedulerColumns(record.SchedulerMetric)...))
	}

	return w.writeCSV("batching_records.csv", header, rows)
}

func schedulerColumns(m SchedulerMetric) []string {
	return []string{
		strconv.Itoa(m.Workers),
		strconv.Itoa(m.Rounds),
		strconv.Itoa(m.Requests),
		strconv.Itoa(m.MaxBatch),
		strconv.FormatFloat(m.MeanBatch(), 'f', 2, 64),
		m.Duration.String(),
	}
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	// Write header
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}

	// Write each row
	for _, row := range rows {
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
