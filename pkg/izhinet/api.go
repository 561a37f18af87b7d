// Package izhinet runs Izhikevich spiking network simulations.
package izhinet

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"izhinet/internal/config"
	"izhinet/internal/logging"
	"izhinet/internal/metrics"
	"izhinet/internal/nn"
	"izhinet/internal/simulation"
)

const metricsShutdownTimeout = 5 * time.Second

type Options struct {
	// Logger receives operational records. Nil discards them.
	Logger *slog.Logger
	// Stdout receives the raster when a request has no Output.
	Stdout io.Writer
}

type Client struct {
	logger *slog.Logger
	stdout io.Writer
}

type RunRequest struct {
	Size        int
	Time        int
	Degree      float64
	Inhibitory  float64
	Strength    float64
	Thalamic    float64
	Types       string
	Output      string
	ConfigFile  string
	Seed        uint64
	MetricsAddr string
}

type TypeSummary struct {
	Type    string
	Neurons int
	Spikes  int
	Rate    float64
}

type RunSummary struct {
	Seed        uint64
	Size        int
	Steps       int
	Links       int
	TotalSpikes int
	MeanRate    float64
	Types       []TypeSummary
	OutputFiles []string
}

// TypeInfo is one entry of the neuron type catalog.
type TypeInfo struct {
	Name       string
	A, B, C, D float64
	Inhibitory bool
}

func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	return &Client{logger: logger, stdout: stdout}
}

// DefaultRunRequest returns the request of a run with no flags.
func DefaultRunRequest() RunRequest {
	d := config.Default()
	return RunRequest{
		Size:       d.Size,
		Time:       d.Time,
		Degree:     d.Degree,
		Inhibitory: d.Inhibitory,
		Strength:   d.Strength,
		Thalamic:   d.Thalamic,
	}
}

// Run builds the requested network and simulates it. Errors carry the
// simulation error classes; see ExitCode.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Size <= 0 && req.ConfigFile == "" {
		req.Size = config.DefaultSize
	}
	settings := config.Settings{
		Size:       req.Size,
		Time:       req.Time,
		Degree:     req.Degree,
		Inhibitory: req.Inhibitory,
		Strength:   req.Strength,
		Thalamic:   req.Thalamic,
		Types:      req.Types,
		Output:     req.Output,
		ConfigFile: req.ConfigFile,
		Seed:       req.Seed,
		Metrics:    config.MetricsConfig{Addr: req.MetricsAddr},
	}

	recorder := metrics.NewRecorder()
	sim, err := simulation.New(settings,
		simulation.WithLogger(c.logger),
		simulation.WithRecorder(recorder),
		simulation.WithStdout(c.stdout),
	)
	if err != nil {
		return RunSummary{}, err
	}

	if req.MetricsAddr != "" {
		srv, err := metrics.Serve(req.MetricsAddr, recorder, c.logger)
		if err != nil {
			return RunSummary{}, err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
			defer cancel()
			if err := srv.Close(shutdownCtx); err != nil {
				c.logger.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	result, err := sim.Run(ctx)
	if err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		Seed:        result.Seed,
		Size:        result.Size,
		Steps:       result.Steps,
		Links:       result.Links,
		TotalSpikes: result.TotalSpikes,
		MeanRate:    result.MeanRate,
	}
	for _, ts := range result.Types {
		summary.Types = append(summary.Types, TypeSummary{
			Type:    ts.Type,
			Neurons: ts.Neurons,
			Spikes:  ts.Spikes,
			Rate:    ts.Rate,
		})
	}
	if req.Output != "" {
		summary.OutputFiles = []string{
			req.Output,
			req.Output + simulation.TrajectorySuffix,
			req.Output + simulation.ParamsSuffix,
			req.Output + simulation.SummarySuffix,
		}
	}
	return summary, nil
}

// NeuronTypes lists the catalog in catalog order.
func NeuronTypes() []TypeInfo {
	names := nn.TypeNames()
	out := make([]TypeInfo, 0, len(names))
	for _, name := range names {
		p := nn.TypeDefault(name)
		out = append(out, TypeInfo{Name: name, A: p.A, B: p.B, C: p.C, D: p.D, Inhibitory: p.Inhibitory})
	}
	return out
}

// ExitCode maps a Run error to the process exit status.
func ExitCode(err error) int {
	return simulation.ExitCode(err)
}
