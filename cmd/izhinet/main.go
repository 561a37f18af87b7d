package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"izhinet/internal/config"
	"izhinet/internal/logging"
	"izhinet/internal/simulation"
	"izhinet/pkg/izhinet"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signalContext(context.Background())
	defer stop()

	if err := execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(simulation.ExitCode(err))
	}
}

// signalContext is cancelled on the first interrupt or termination signal.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	notifySignals(ch)
	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// execute runs the command line in args. Errors raised before a command
// starts (unknown flags, bad values, stray arguments) are argument errors.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	started := false
	root := newRootCmd(stdout, stderr, &started)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil && !started && simulation.ExitCode(err) == 1 {
		return fmt.Errorf("%w: %v", simulation.ErrArguments, err)
	}
	return err
}

func newRootCmd(stdout, stderr io.Writer, started *bool) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "izhinet",
		Short: "Izhikevich spiking neuron network simulator",
		Long: `izhinet simulates a network of Izhikevich point neurons driven by
thalamic noise.

A typical run

  izhinet -T IB:0.2,CH:0.15 -N 800 -d 100 -o test1000 -t 1000

builds 800 neurons (20% IB, 15% CH, the rest RS) with on average 100
incoming links each, simulates 1000 steps and writes the raster to
test1000, one trajectory per type to test1000_traj, every neuron's
parameters to test1000_pars and run statistics to test1000_summary.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, level, err := requestFromFlags(cmd)
			if err != nil {
				return err
			}
			*started = true
			client := izhinet.New(izhinet.Options{
				Logger: logging.NewLogger(level, stderr),
				Stdout: stdout,
			})
			_, err = client.Run(cmd.Context(), req)
			return err
		},
	}

	flags := rootCmd.Flags()
	flags.IntP("number", "N", config.DefaultSize, "number of neurons")
	flags.IntP("time", "t", config.DefaultTime, "number of simulated steps")
	flags.Float64P("degree", "d", config.DefaultDegree, "mean number of incoming links per neuron")
	flags.Float64P("inhibitory", "i", config.DefaultInhibitory, "proportion of inhibitory FS neurons, in [0, 1]")
	flags.StringP("neurontypes", "T", "", "neuron type proportions, e.g. IB:0.2,CH:0.15")
	flags.StringP("output", "o", "", "raster output file; stdout when empty")
	flags.Float64P("strength", "s", config.DefaultStrength, "mean link strength")
	flags.Float64P("thalamic", "n", config.DefaultThalamic, "standard deviation of thalamic noise")
	flags.StringP("config", "c", "", "network configuration file")
	flags.Uint64("seed", 0, "random seed; 0 draws one from system entropy")
	flags.String("settings", "", "YAML settings file")
	flags.String("log-level", "", "log level: trace, debug, info, warn, error")
	flags.String("metrics-addr", "", "serve prometheus metrics on this address while running")

	rootCmd.AddCommand(
		newTypesCmd(started),
		newVersionCmd(started),
	)
	return rootCmd
}

// requestFromFlags layers defaults, the settings file, IZHINET_*
// environment variables and explicitly set flags, in that order.
func requestFromFlags(cmd *cobra.Command) (izhinet.RunRequest, string, error) {
	flags := cmd.Flags()
	settings := config.Default()
	if path, _ := flags.GetString("settings"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return izhinet.RunRequest{}, "", fmt.Errorf("%w: %v", simulation.ErrArguments, err)
		}
		settings = loaded
	}
	settings.ApplyEnv()

	if flags.Changed("number") {
		settings.Size, _ = flags.GetInt("number")
	}
	if flags.Changed("time") {
		settings.Time, _ = flags.GetInt("time")
	}
	if flags.Changed("degree") {
		settings.Degree, _ = flags.GetFloat64("degree")
	}
	if flags.Changed("inhibitory") {
		inhib, _ := flags.GetFloat64("inhibitory")
		if inhib < 0 || inhib > 1 {
			return izhinet.RunRequest{}, "", fmt.Errorf("%w: inhibitory proportion %g outside [0, 1]", simulation.ErrArguments, inhib)
		}
		settings.Inhibitory = inhib
	}
	if flags.Changed("neurontypes") {
		settings.Types, _ = flags.GetString("neurontypes")
	}
	if flags.Changed("output") {
		settings.Output, _ = flags.GetString("output")
	}
	if flags.Changed("strength") {
		settings.Strength, _ = flags.GetFloat64("strength")
	}
	if flags.Changed("thalamic") {
		settings.Thalamic, _ = flags.GetFloat64("thalamic")
	}
	if flags.Changed("config") {
		settings.ConfigFile, _ = flags.GetString("config")
	}
	if flags.Changed("seed") {
		settings.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("log-level") {
		settings.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("metrics-addr") {
		settings.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}

	if err := settings.Validate(); err != nil {
		return izhinet.RunRequest{}, "", fmt.Errorf("%w: %v", simulation.ErrArguments, err)
	}
	return izhinet.RunRequest{
		Size:        settings.Size,
		Time:        settings.Time,
		Degree:      settings.Degree,
		Inhibitory:  settings.Inhibitory,
		Strength:    settings.Strength,
		Thalamic:    settings.Thalamic,
		Types:       settings.Types,
		Output:      settings.Output,
		ConfigFile:  settings.ConfigFile,
		Seed:        settings.Seed,
		MetricsAddr: settings.Metrics.Addr,
	}, settings.Logging.Level, nil
}
