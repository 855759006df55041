package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"myrmex/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig captures the full parameterization of one run, written
// alongside its artifacts so any run can be reproduced from disk.
type RunConfig struct {
	RunID            string                   `json:"run_id"`
	Agents           int                      `json:"agents"`
	AerialFraction   float64                  `json:"aerial_fraction"`
	Ticks            int                      `json:"ticks"`
	TickSeconds      float64                  `json:"tick_seconds"`
	Seed             int64                    `json:"seed"`
	Workers          int                      `json:"workers"`
	NeighborRadiusKm float64                  `json:"neighbor_radius_km"`
	MinSeparationKm  float64                  `json:"min_separation_km"`
	Objectives       []model.MissionObjective `json:"objectives,omitempty"`
}

// RunArtifacts is everything a finished run writes to its directory.
type RunArtifacts struct {
	Config            RunConfig               `json:"config"`
	Telemetry         []model.TickTelemetry   `json:"telemetry"`
	ConsensusTimeline []model.ConsensusEvent  `json:"consensus_timeline"`
	FinalAllocation   []model.AllocationEntry `json:"final_allocation"`
	RewardSummaries   []model.RewardSummary   `json:"reward_summaries"`
	FinalCoordination model.CoordinationState `json:"final_coordination"`
	FinalConsensus    string                  `json:"final_consensus"`
}

type RunIndexEntry struct {
	RunID          string  `json:"run_id"`
	Agents         int     `json:"agents"`
	Ticks          int     `json:"ticks"`
	Seed           int64   `json:"seed"`
	Workers        int     `json:"workers"`
	FinalConsensus string  `json:"final_consensus"`
	FinalCohesion  float64 `json:"final_cohesion"`
	CreatedAtUTC   string  `json:"created_at_utc"`
}

func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "telemetry.json"), artifacts.Telemetry); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "consensus_timeline.json"), artifacts.ConsensusTimeline); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "final_allocation.json"), artifacts.FinalAllocation); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "reward_summaries.json"), artifacts.RewardSummaries); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "summary.json"), map[string]any{
		"final_coordination": artifacts.FinalCoordination,
		"final_consensus":    artifacts.FinalConsensus,
	}); err != nil {
		return "", err
	}
	if err := WriteTelemetrySeries(runDir, artifacts.Telemetry); err != nil {
		return "", err
	}

	return runDir, nil
}

func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

func ExportRunArtifacts(baseDir, runID, outDir string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	src := filepath.Join(baseDir, runID)
	if _, err := os.Stat(src); err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, runID)
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return "", err
	}

	files := []string{
		"config.json",
		"telemetry.json",
		"consensus_timeline.json",
		"final_allocation.json",
		"reward_summaries.json",
		"summary.json",
	}
	for _, file := range files {
		if err := copyFile(filepath.Join(src, file), filepath.Join(dst, file)); err != nil {
			return "", err
		}
	}
	seriesPath := filepath.Join(src, "telemetry_series.csv")
	if _, err := os.Stat(seriesPath); err == nil {
		if err := copyFile(seriesPath, filepath.Join(dst, "telemetry_series.csv")); err != nil {
			return "", err
		}
	} else if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	return dst, nil
}

func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

func WriteRunConfig(baseDir, runID string, cfg RunConfig) error {
	if strings.TrimSpace(runID) == "" {
		return fmt.Errorf("run id is required")
	}
	if strings.TrimSpace(cfg.RunID) == "" {
		cfg.RunID = strings.TrimSpace(runID)
	}
	if cfg.RunID != strings.TrimSpace(runID) {
		return fmt.Errorf("run config run id mismatch: got=%s want=%s", cfg.RunID, strings.TrimSpace(runID))
	}
	runDir := filepath.Join(baseDir, runID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return err
	}
	return writeJSON(filepath.Join(runDir, "config.json"), cfg)
}

// WriteTelemetrySeries flattens the per-tick records into a CSV for
// spreadsheet and plotting tools.
func WriteTelemetrySeries(runDir string, telemetry []model.TickTelemetry) error {
	path := filepath.Join(runDir, "telemetry_series.csv")
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"tick", "cohesion", "avg_arousal", "spike_total", "allocated", "consensus"}); err != nil {
		return err
	}
	for _, t := range telemetry {
		if err := writer.Write([]string{
			strconv.Itoa(t.Tick),
			strconv.FormatFloat(t.Coordination.GroupCohesion, 'f', -1, 64),
			strconv.FormatFloat(t.Coordination.AverageArousal, 'f', -1, 64),
			strconv.Itoa(t.SpikeTotal),
			strconv.Itoa(t.Allocated),
			t.Consensus,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadTelemetrySeries returns the cohesion column of the CSV series.
func ReadTelemetrySeries(baseDir, runID string) ([]float64, bool, error) {
	path := filepath.Join(baseDir, runID, "telemetry_series.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []float64{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("telemetry series header must have at least 2 columns")
	}

	series := make([]float64, 0, 128)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("telemetry series row must have at least 2 columns")
		}
		value, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		series = append(series, value)
	}
	return series, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
