// Package config loads run settings for izhinet from YAML files and the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"izhinet/internal/logging"
)

const (
	DefaultSize       = 100
	DefaultTime       = 10
	DefaultDegree     = 4
	DefaultStrength   = 0.25
	DefaultThalamic   = 5
	DefaultInhibitory = 0.2
)

// Settings holds every parameter of one simulation run.
type Settings struct {
	// Size is the number of neurons. Ignored when ConfigFile is set.
	Size int `json:"size" yaml:"size"`

	// Time is the number of simulated steps.
	Time int `json:"time" yaml:"time"`

	// Degree is the mean number of incoming links per neuron.
	Degree float64 `json:"degree" yaml:"degree"`

	// Inhibitory is the fraction of FS neurons in a default network.
	// Values outside (0, 1] fall back to DefaultInhibitory.
	Inhibitory float64 `json:"inhibitory" yaml:"inhibitory"`

	// Strength is the mean link magnitude.
	Strength float64 `json:"strength" yaml:"strength"`

	// Thalamic is the standard deviation of the thalamic noise.
	Thalamic float64 `json:"thalamic" yaml:"thalamic"`

	// Types lists type proportions, e.g. "IB:0.2,CH:0.15".
	Types string `json:"types" yaml:"types"`

	// Output is the raster file name; the trajectory, parameter and
	// summary dumps are written next to it. Empty means stdout.
	Output string `json:"output" yaml:"output"`

	// ConfigFile is a network configuration file.
	ConfigFile string `json:"config_file" yaml:"config_file"`

	// Seed seeds the random source; 0 draws one from system entropy.
	Seed uint64 `json:"seed" yaml:"seed"`

	Logging LoggingConfig `json:"logging" yaml:"logging"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

type LoggingConfig struct {
	// Level is one of trace, debug, info (default), warn, error.
	Level string `json:"level" yaml:"level"`
}

type MetricsConfig struct {
	// Addr, when set, serves /metrics on that address during the run.
	Addr string `json:"addr" yaml:"addr"`
}

// Default returns the settings of a run with no flags.
func Default() *Settings {
	return &Settings{
		Size:       DefaultSize,
		Time:       DefaultTime,
		Degree:     DefaultDegree,
		Inhibitory: DefaultInhibitory,
		Strength:   DefaultStrength,
		Thalamic:   DefaultThalamic,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromFile reads YAML settings from path on top of Default.
func LoadFromFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	settings := Default()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	return settings, nil
}

// InhibitoryFraction returns Inhibitory, or DefaultInhibitory when it is
// outside (0, 1].
func (s *Settings) InhibitoryFraction() float64 {
	if s.Inhibitory <= 0 || s.Inhibitory > 1 {
		return DefaultInhibitory
	}
	return s.Inhibitory
}

// Validate checks that the settings describe a runnable simulation.
func (s *Settings) Validate() error {
	if s.ConfigFile == "" && s.Size < 1 {
		return fmt.Errorf("size must be at least 1, got %d", s.Size)
	}
	if s.Time < 0 {
		return fmt.Errorf("time must be non-negative, got %d", s.Time)
	}
	if s.Degree < 0 {
		return fmt.Errorf("degree must be non-negative, got %g", s.Degree)
	}
	if s.Strength < 0 {
		return fmt.Errorf("strength must be non-negative, got %g", s.Strength)
	}
	if s.Thalamic < 0 {
		return fmt.Errorf("thalamic must be non-negative, got %g", s.Thalamic)
	}
	if !logging.ValidLevel(s.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error)", s.Logging.Level)
	}
	return nil
}

// ApplyEnv applies IZHINET_* environment overrides. Unparsable numeric
// values are ignored.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv("IZHINET_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			s.Seed = seed
		}
	}
	if v := os.Getenv("IZHINET_LOG_LEVEL"); v != "" {
		s.Logging.Level = v
	}
	if v := os.Getenv("IZHINET_METRICS_ADDR"); v != "" {
		s.Metrics.Addr = v
	}
	if v := os.Getenv("IZHINET_OUTPUT"); v != "" {
		s.Output = v
	}
}
