package stats

import (
	"encoding/json"
	"os"
)

// RunInfo describes the simulated network.
type RunInfo struct {
	Seed     uint64  `json:"seed"`
	Size     int     `json:"size"`
	Links    int     `json:"links"`
	Thalamic float64 `json:"thalamic"`
	Source   string  `json:"source,omitempty"`
}

type TypeSummary struct {
	Type    string  `json:"type"`
	Neurons int     `json:"neurons"`
	Spikes  int     `json:"spikes"`
	Rate    float64 `json:"rate"`
}

// RunSummary is written as <output>_summary.json after a run.
type RunSummary struct {
	RunInfo
	Steps          int           `json:"steps"`
	MeanInDegree   float64       `json:"mean_in_degree"`
	TotalSpikes    int           `json:"total_spikes"`
	MeanRate       float64       `json:"mean_rate"`
	StepSpikesMean float64       `json:"step_spikes_mean"`
	StepSpikesStd  float64       `json:"step_spikes_std"`
	SilentNeurons  int           `json:"silent_neurons"`
	Types          []TypeSummary `json:"types"`
}

func WriteSummary(path string, summary RunSummary) error {
	return writeJSON(path, summary)
}

// ReadSummary returns false without error when path does not exist.
func ReadSummary(path string) (RunSummary, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunSummary{}, false, nil
		}
		return RunSummary{}, false, err
	}

	var summary RunSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return RunSummary{}, false, err
	}
	return summary, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
