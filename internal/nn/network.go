package nn

import (
	"fmt"
	"math"

	"izhinet/internal/model"
	"izhinet/internal/random"
)

// Network is an ordered collection of neurons, identified by index, and
// the directed links between them. It is not safe for concurrent use.
type Network struct {
	neurons []Neuron
	links   links
	rng     random.Source

	// scratch reused by Step.
	firing []bool
}

func NewNetwork(rng random.Source) *Network {
	return &Network{
		links: newLinks(),
		rng:   rng,
	}
}

func (net *Network) Size() int {
	return len(net.neurons)
}

// Resize grows or shrinks the network to n neurons. Of the neurons added,
// the first round(inhibitoryFraction·added) are FS and the rest RS, each
// with uniform heterogeneity noise. Shrinking drops trailing neurons and
// every link that touches them.
func (net *Network) Resize(n int, inhibitoryFraction float64) {
	if n < 0 {
		n = 0
	}
	old := len(net.neurons)
	if n <= old {
		net.neurons = net.neurons[:n]
		net.links.resize(n)
		return
	}

	inhibitoryFraction = math.Min(math.Max(inhibitoryFraction, 0), 1)
	added := n - old
	inhibitory := int(math.Round(inhibitoryFraction * float64(added)))
	for i := 0; i < added; i++ {
		neuron := Neuron{potential: RestPotential}
		typeName := TypeRS.Name()
		if i < inhibitory {
			typeName = TypeFS.Name()
		}
		neuron.SetDefaultParams(typeName, net.rng.UniformDouble(0, 1))
		net.neurons = append(net.neurons, neuron)
	}
	net.links.resize(n)
}

// SetDefaultParams assigns consecutive neurons from start to the blocks in
// order, each with uniform heterogeneity noise. Neurons past the last
// block keep their parameters.
func (net *Network) SetDefaultParams(blocks []model.TypeCount, start int) error {
	total := model.TotalCount(blocks)
	if start < 0 || start+total > net.Size() {
		return fmt.Errorf("type blocks cover %d neurons from index %d, network has %d", total, start, net.Size())
	}
	idx := start
	for _, block := range blocks {
		for i := 0; i < block.Count; i++ {
			net.neurons[idx].SetDefaultParams(block.Type, net.rng.UniformDouble(0, 1))
			idx++
		}
	}
	return nil
}

// SetTypesParams sets type and explicit parameters of consecutive neurons
// from start. No heterogeneity noise is applied.
func (net *Network) SetTypesParams(types []string, params []Params, start int) error {
	if len(types) != len(params) {
		return fmt.Errorf("got %d type names for %d parameter sets", len(types), len(params))
	}
	if start < 0 || start+len(types) > net.Size() {
		return fmt.Errorf("%d neurons from index %d exceed network size %d", len(types), start, net.Size())
	}
	for i := range types {
		n := &net.neurons[start+i]
		n.SetType(types[i])
		n.SetParams(params[i], 0)
	}
	return nil
}

// SetValues sets the membrane potential of consecutive neurons from start.
func (net *Network) SetValues(potentials []float64, start int) error {
	if start < 0 || start+len(potentials) > net.Size() {
		return fmt.Errorf("%d potentials from index %d exceed network size %d", len(potentials), start, net.Size())
	}
	for i, v := range potentials {
		net.neurons[start+i].SetPotential(v)
	}
	return nil
}

// RandomConnect draws, for every receiver, a Poisson(meanDegree) number of
// attempts. Each attempt picks a sender uniformly over the network and a
// strength uniformly in [0, 2·meanStrength]. Self-links and pairs already
// linked are not added, so realised degrees fall short of the draw. It
// returns the number of links created.
func (net *Network) RandomConnect(meanDegree, meanStrength float64) int {
	size := net.Size()
	created := 0
	for receiver := 0; receiver < size; receiver++ {
		attempts := net.rng.Poisson(meanDegree)
		for k := 0; k < attempts; k++ {
			sender := net.rng.IntN(size)
			strength := net.rng.UniformDouble(0, 2*meanStrength)
			if net.AddLinkIfAbsent(receiver, sender, strength) {
				created++
			}
		}
	}
	return created
}

// Step advances the whole network by one time unit and returns the
// indices, ascending, of the neurons that were firing when it started.
//
// The firing set is fixed from the potentials left by the previous step
// before any neuron is touched. Each neuron then receives its thalamic
// value (scaled by InhibitoryThalamicGain for inhibitory neurons) plus the
// weights of its incoming links from firing senders. Firing neurons are
// reset; all others are advanced with that input.
func (net *Network) Step(thalamic []float64) []int {
	size := net.Size()
	if cap(net.firing) < size {
		net.firing = make([]bool, size)
	}
	firing := net.firing[:size]

	var fired []int
	for i := range net.neurons {
		firing[i] = net.neurons[i].IsFiring()
		if firing[i] {
			fired = append(fired, i)
		}
	}

	for i := range net.neurons {
		n := &net.neurons[i]
		input := 0.0
		if i < len(thalamic) {
			input = thalamic[i]
		}
		if n.IsInhibitory() {
			input *= InhibitoryThalamicGain
		}
		for _, nb := range net.links.incoming[i] {
			if firing[nb.Sender] {
				input += nb.Weight
			}
		}
		n.SetInput(input)
	}

	for i := range net.neurons {
		if firing[i] {
			net.neurons[i].Reset()
		} else {
			net.neurons[i].Advance()
		}
	}
	return fired
}

// Neuron returns a copy of the neuron at index i.
func (net *Network) Neuron(i int) Neuron {
	return net.neurons[i]
}

func (net *Network) Potentials() []float64 {
	out := make([]float64, len(net.neurons))
	for i := range net.neurons {
		out[i] = net.neurons[i].Potential()
	}
	return out
}

func (net *Network) Recoveries() []float64 {
	out := make([]float64, len(net.neurons))
	for i := range net.neurons {
		out[i] = net.neurons[i].Recovery()
	}
	return out
}

func (net *Network) Inputs() []float64 {
	out := make([]float64, len(net.neurons))
	for i := range net.neurons {
		out[i] = net.neurons[i].Input()
	}
	return out
}
