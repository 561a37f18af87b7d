package simulation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"izhinet/internal/logging"
	"izhinet/internal/stats"
)

// Output file suffixes appended to the raster name.
const (
	TrajectorySuffix = "_traj"
	ParamsSuffix     = "_pars"
	SummarySuffix    = "_summary.json"
)

type outputs struct {
	raster *bufio.Writer
	traj   *bufio.Writer
	pars   *bufio.Writer
	files  []*os.File
}

func (o *outputs) create(path string) (*bufio.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutput, err)
	}
	o.files = append(o.files, f)
	return bufio.NewWriter(f), nil
}

func (o *outputs) flush() error {
	for _, w := range []*bufio.Writer{o.raster, o.traj, o.pars} {
		if w == nil {
			continue
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("%w: %v", ErrOutput, err)
		}
	}
	return nil
}

func (o *outputs) close() error {
	var first error
	for _, f := range o.files {
		if err := f.Close(); err != nil && first == nil {
			first = fmt.Errorf("%w: %v", ErrOutput, err)
		}
	}
	o.files = nil
	return first
}

func (s *Simulation) openOutputs() (*outputs, error) {
	out := &outputs{}
	if s.settings.Output == "" {
		out.raster = bufio.NewWriter(s.stdout)
		return out, nil
	}
	var err error
	if out.raster, err = out.create(s.settings.Output); err != nil {
		return nil, err
	}
	if out.traj, err = out.create(s.settings.Output + TrajectorySuffix); err != nil {
		out.close()
		return nil, err
	}
	if out.pars, err = out.create(s.settings.Output + ParamsSuffix); err != nil {
		out.close()
		return nil, err
	}
	return out, nil
}

// Run simulates settings.Time steps. Every step draws a normal(0,
// thalamic) input per neuron, updates the network and writes one raster
// row and, with an output name, one trajectory line. The returned summary
// is also written to <output>_summary.json.
func (s *Simulation) Run(ctx context.Context) (stats.RunSummary, error) {
	out, err := s.openOutputs()
	if err != nil {
		return stats.RunSummary{}, err
	}
	defer out.close()

	reps := s.representatives()
	if out.pars != nil {
		if err := s.net.PrintParams(out.pars); err != nil {
			return stats.RunSummary{}, fmt.Errorf("%w: %v", ErrOutput, err)
		}
	}
	if out.traj != nil {
		if err := s.net.PrintHead(out.traj, reps); err != nil {
			return stats.RunSummary{}, fmt.Errorf("%w: %v", ErrOutput, err)
		}
	}

	size := s.net.Size()
	typeNames := make([]string, size)
	for i := range typeNames {
		n := s.net.Neuron(i)
		typeNames[i] = n.TypeName()
	}
	collector := stats.NewCollector(typeNames)
	thalamic := make([]float64, size)
	row := newRasterRow(size)

	started := time.Now()
	for t := 1; t <= s.settings.Time; t++ {
		if err := ctx.Err(); err != nil {
			return stats.RunSummary{}, fmt.Errorf("interrupted at step %d: %w", t, err)
		}
		s.src.NormalFill(thalamic, 0, s.settings.Thalamic)

		stepStart := time.Now()
		fired := s.net.Step(thalamic)
		s.recorder.ObserveStep(time.Since(stepStart))

		if err := row.write(out.raster, fired); err != nil {
			return stats.RunSummary{}, fmt.Errorf("%w: %v", ErrOutput, err)
		}
		if out.traj != nil {
			if err := s.net.PrintTraj(out.traj, t, reps); err != nil {
				return stats.RunSummary{}, fmt.Errorf("%w: %v", ErrOutput, err)
			}
		}

		perType := collector.Observe(fired)
		for id, name := range collector.TypeNames() {
			s.recorder.AddSpikes(name, perType[id])
		}
		s.logger.Log(ctx, logging.LevelTrace, "step", "t", t, "fired", len(fired))
	}

	if err := out.flush(); err != nil {
		return stats.RunSummary{}, err
	}
	if err := out.close(); err != nil {
		return stats.RunSummary{}, err
	}

	summary := collector.Summary(stats.RunInfo{
		Seed:     s.seed,
		Size:     size,
		Links:    s.net.LinkCount(),
		Thalamic: s.settings.Thalamic,
		Source:   s.settings.ConfigFile,
	})
	if s.settings.Output != "" {
		if err := stats.WriteSummary(s.settings.Output+SummarySuffix, summary); err != nil {
			return stats.RunSummary{}, fmt.Errorf("%w: %v", ErrOutput, err)
		}
	}
	s.logger.Info("run complete",
		"steps", summary.Steps,
		"spikes", summary.TotalSpikes,
		"mean_rate", summary.MeanRate,
		"elapsed", time.Since(started).Round(time.Millisecond),
	)
	return summary, nil
}

// rasterRow renders "0 1 0 ...\n" for one step without reallocating.
type rasterRow struct {
	buf []byte
}

func newRasterRow(size int) *rasterRow {
	buf := make([]byte, 0, 2*size)
	for i := 0; i < size; i++ {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, '0')
	}
	return &rasterRow{buf: append(buf, '\n')}
}

func (r *rasterRow) write(w io.Writer, fired []int) error {
	for _, i := range fired {
		r.buf[2*i] = '1'
	}
	_, err := w.Write(r.buf)
	for _, i := range fired {
		r.buf[2*i] = '0'
	}
	return err
}
