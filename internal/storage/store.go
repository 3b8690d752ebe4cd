package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/robonav/internal/dynamo"
	"github.com/san-kum/robonav/internal/sim"
)

var ErrRunNotFound = errors.New("robonav: run not found")

var posesHeader = []string{"tick", "x", "y", "heading", "v", "w"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

// RunInfo describes how a recorded run was configured.
type RunInfo struct {
	Robot      string        `json:"robot"`
	Integrator string        `json:"integrator"`
	Duration   float64       `json:"duration"`
	InitPose   dynamo.Pose   `json:"init_pose"`
	Target     dynamo.Target `json:"target"`
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	Info        RunInfo            `json:"info"`
	Ticks       int                `json:"ticks"`
	Arrived     bool               `json:"arrived"`
	ArrivalTick int                `json:"arrival_tick"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewRunID(robot string, at time.Time) string {
	return fmt.Sprintf("%s_%d_%s", robot, at.Unix(), uuid.NewString()[:8])
}

// Save writes metadata.json and poses.csv under a fresh run directory and
// returns the run ID.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID := NewRunID(info.Robot, now)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   now,
		Info:        info,
		Ticks:       result.Ticks,
		Arrived:     result.Arrived,
		ArrivalTick: result.ArrivalTick,
		Metrics:     result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writePoses(filepath.Join(runDir, "poses.csv"), result); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writePoses writes one row per pose. The v and w columns hold the command
// that produced the pose, so tick 0 carries zeros.
func writePoses(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(posesHeader); err != nil {
		return err
	}

	for i, p := range result.Poses {
		var cmd dynamo.Command
		if i > 0 && i-1 < len(result.Commands) {
			cmd = result.Commands[i-1]
		}
		row := []string{
			strconv.Itoa(i),
			formatFloat(p.X),
			formatFloat(p.Y),
			formatFloat(p.Heading),
			formatFloat(cmd.Velocity),
			formatFloat(cmd.AngularVelocity),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadPoses reads poses.csv back. The returned commands hold one entry per
// pose after the first, matching sim.Result.
func (s *Store) LoadPoses(runID string) ([]dynamo.Pose, []dynamo.Command, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "poses.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(posesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return []dynamo.Pose{}, []dynamo.Command{}, nil
	}

	poses := make([]dynamo.Pose, 0, len(records)-1)
	cmds := make([]dynamo.Command, 0, len(records)-2)

	for i, record := range records[1:] {
		vals := make([]float64, len(record)-1)
		for j := 1; j < len(record); j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s row %d: %w", runID, i+1, err)
			}
			vals[j-1] = v
		}
		poses = append(poses, dynamo.Pose{X: vals[0], Y: vals[1], Heading: vals[2]})
		if i > 0 {
			cmds = append(cmds, dynamo.Command{Velocity: vals[3], AngularVelocity: vals[4]})
		}
	}

	return poses, cmds, nil
}
