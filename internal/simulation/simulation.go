// Package simulation builds a network from run settings or a configuration
// file and drives it through the time loop, writing the raster,
// trajectory, parameter and summary dumps.
package simulation

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"izhinet/internal/config"
	"izhinet/internal/logging"
	"izhinet/internal/metrics"
	"izhinet/internal/model"
	"izhinet/internal/netfile"
	"izhinet/internal/nn"
	"izhinet/internal/random"
)

type Option func(*Simulation)

// WithSource replaces the seeded generator built from the settings.
func WithSource(src random.Source) Option {
	return func(s *Simulation) { s.src = src }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulation) { s.logger = logger }
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Simulation) { s.recorder = r }
}

// WithStdout sets where the raster goes when no output name is set.
func WithStdout(w io.Writer) Option {
	return func(s *Simulation) { s.stdout = w }
}

// Simulation owns one network and the settings it runs with.
type Simulation struct {
	settings config.Settings
	net      *nn.Network
	src      random.Source
	seed     uint64
	logger   *slog.Logger
	recorder *metrics.Recorder
	stdout   io.Writer

	size   int
	inhib  float64
	blocks []model.TypeCount
	links  int
}

// New validates settings and builds the network, either from
// settings.ConfigFile or as a random network of settings.Size neurons.
func New(settings config.Settings, opts ...Option) (*Simulation, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArguments, err)
	}
	s := &Simulation{
		settings: settings,
		inhib:    settings.InhibitoryFraction(),
		stdout:   os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.src == nil {
		gen := random.New(settings.Seed)
		s.src = gen
		s.seed = gen.Seed()
	} else {
		s.seed = settings.Seed
	}
	s.net = nn.NewNetwork(s.src)

	if settings.ConfigFile == "" {
		s.size = settings.Size
		s.net.Resize(s.size, s.inhib)
		if err := s.ParseTypes(settings.Types); err != nil {
			return nil, err
		}
	} else if err := s.LoadConfiguration(settings.ConfigFile); err != nil {
		return nil, err
	}

	s.recorder.SetNetwork(s.net.Size(), s.net.LinkCount())
	s.logger.Info("network built",
		"size", s.net.Size(),
		"links", s.links,
		"blocks", formatBlocks(s.blocks),
		"seed", s.seed,
	)
	return s, nil
}

// ParseTypes assigns type blocks from a "TYPE:proportion,..." list and
// connects the network at random.
//
// An empty list keeps the default split and gives round(inhibitory·size)
// FS neurons followed by RS. Otherwise each listed type gets
// round(proportion·size) neurons, proportions capped at 1, and the blocks
// are laid out by type name with the RS remainder last. A repeated type
// keeps its last count. Items with a non-positive proportion, RS items and
// unknown types are skipped. Parsing stops once the network is full.
func (s *Simulation) ParseTypes(types string) error {
	var blocks []model.TypeCount
	if types == "" {
		blocks = append(blocks, model.TypeCount{Type: nn.TypeFS.Name(), Count: roundCount(s.inhib, s.size)})
	} else {
		counts := map[string]int{}
		total := 0
		for _, item := range strings.Split(stripSpace(types), ",") {
			if total >= s.size {
				break
			}
			if item == "" {
				continue
			}
			label, raw, ok := strings.Cut(item, ":")
			if !ok {
				return fmt.Errorf("%w: neuron type %q needs TYPE:proportion", ErrArguments, item)
			}
			prop, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fmt.Errorf("%w: neuron type %s proportion %q", ErrArguments, label, raw)
			}
			prop = math.Min(prop, 1)
			if prop <= 0 || label == nn.TypeRS.Name() {
				continue
			}
			if !nn.TypeExists(label) {
				s.logger.Warn("skipping unknown neuron type", "type", label)
				continue
			}
			total -= counts[label]
			count := roundCount(prop, s.size)
			if total+count > s.size {
				count = s.size - total
			}
			counts[label] = count
			total += count
		}
		for _, label := range slices.Sorted(maps.Keys(counts)) {
			blocks = append(blocks, model.TypeCount{Type: label, Count: counts[label]})
		}
	}
	if rest := s.size - model.TotalCount(blocks); rest > 0 {
		blocks = append(blocks, model.TypeCount{Type: nn.TypeRS.Name(), Count: rest})
	}

	if err := s.net.SetDefaultParams(blocks, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrArguments, err)
	}
	s.blocks = blocks
	s.links = s.net.RandomConnect(s.settings.Degree, s.settings.Strength)
	return nil
}

// SizeType returns the number of neurons of type name.
func (s *Simulation) SizeType(name string) int {
	n := 0
	for _, block := range s.blocks {
		if block.Type == name {
			n += block.Count
		}
	}
	return n
}

// LoadConfiguration builds the network described by the file at path.
// Neurons take positions in file order. A link "from,to:w" feeds neuron
// from with the output of neuron to; the first entry for a pair is kept.
// Without link lines the network is connected at random.
func (s *Simulation) LoadConfiguration(path string) error {
	desc, err := netfile.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	if len(desc.Neurons) == 0 {
		return fmt.Errorf("%w: %s describes no neurons", ErrConfigFile, path)
	}

	s.size = len(desc.Neurons)
	positions := make(map[int]int, s.size)
	types := make([]string, s.size)
	params := make([]nn.Params, s.size)
	potentials := make([]float64, s.size)
	var blocks []model.TypeCount
	for pos, spec := range desc.Neurons {
		if prev, ok := positions[spec.Index]; ok {
			s.logger.Warn("duplicate neuron index", "index", spec.Index, "previous", prev, "position", pos)
		}
		positions[spec.Index] = pos

		name := nn.LookupType(spec.Type).Name()
		if spec.Type != name {
			s.logger.Warn("unknown neuron type, using RS", "index", spec.Index, "type", spec.Type)
		}
		types[pos] = name
		params[pos] = neuronParams(spec)
		potentials[pos] = nn.RestPotential
		if spec.Potential != nil {
			potentials[pos] = *spec.Potential
		}
		if last := len(blocks) - 1; last >= 0 && blocks[last].Type == name {
			blocks[last].Count++
		} else {
			blocks = append(blocks, model.TypeCount{Type: name, Count: 1})
		}
	}

	s.net.Resize(s.size, s.inhib)
	if err := s.net.SetTypesParams(types, params, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	if err := s.net.SetValues(potentials, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	s.blocks = blocks

	if len(desc.Links) == 0 {
		s.links = s.net.RandomConnect(s.settings.Degree, s.settings.Strength)
		return nil
	}
	seen := make(map[[2]int]bool, len(desc.Links))
	for _, link := range desc.Links {
		pair := [2]int{link.From, link.To}
		if seen[pair] {
			s.logger.Warn("skipping repeated link", "from", link.From, "to", link.To)
			continue
		}
		seen[pair] = true
		receiver, okFrom := positions[link.From]
		sender, okTo := positions[link.To]
		if !okFrom || !okTo {
			s.logger.Warn("skipping link to unknown neuron", "from", link.From, "to", link.To)
			continue
		}
		if !s.net.AddLink(receiver, sender, link.Weight) {
			s.logger.Warn("skipping invalid link", "from", link.From, "to", link.To)
		}
	}
	s.links = s.net.LinkCount()
	return nil
}

func (s *Simulation) Network() *nn.Network {
	return s.net
}

// Blocks returns the type blocks in network order.
func (s *Simulation) Blocks() []model.TypeCount {
	return s.blocks
}

// Seed is the seed of the random source, after entropy replacement.
func (s *Simulation) Seed() uint64 {
	return s.seed
}

// LinksCreated is the number of links made while building the network.
func (s *Simulation) LinksCreated() int {
	return s.links
}

// representatives picks the first neuron of each distinct type.
func (s *Simulation) representatives() []nn.Representative {
	var reps []nn.Representative
	seen := map[string]bool{}
	for _, rep := range nn.Representatives(s.blocks) {
		if seen[rep.Type] {
			continue
		}
		seen[rep.Type] = true
		reps = append(reps, rep)
	}
	return reps
}

func neuronParams(spec model.NeuronSpec) nn.Params {
	p := nn.TypeDefault(spec.Type)
	if spec.A != nil {
		p.A = *spec.A
	}
	if spec.B != nil {
		p.B = *spec.B
	}
	if spec.C != nil {
		p.C = *spec.C
	}
	if spec.D != nil {
		p.D = *spec.D
	}
	if spec.Inhibitory != nil {
		p.Inhibitory = *spec.Inhibitory
	}
	return p
}

func roundCount(fraction float64, size int) int {
	return int(math.Round(fraction * float64(size)))
}

func formatBlocks(blocks []model.TypeCount) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		parts = append(parts, block.Type+":"+strconv.Itoa(block.Count))
	}
	return strings.Join(parts, ",")
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
