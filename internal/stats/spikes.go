package stats

import (
	"gonum.org/v1/gonum/stat"
)

// Collector accumulates spike counts over a run.
type Collector struct {
	neuronType []int
	typeNames  []string
	typeSizes  []int

	steps      int
	perNeuron  []int
	perType    []int
	stepCounts []float64
	scratch    []int
}

// NewCollector tracks a network whose neuron i has type typeNames[i].
// Types are reported in order of first appearance.
func NewCollector(typeNames []string) *Collector {
	c := &Collector{
		neuronType: make([]int, len(typeNames)),
		perNeuron:  make([]int, len(typeNames)),
	}
	index := map[string]int{}
	for i, name := range typeNames {
		id, ok := index[name]
		if !ok {
			id = len(c.typeNames)
			index[name] = id
			c.typeNames = append(c.typeNames, name)
			c.typeSizes = append(c.typeSizes, 0)
		}
		c.neuronType[i] = id
		c.typeSizes[id]++
	}
	c.perType = make([]int, len(c.typeNames))
	c.scratch = make([]int, len(c.typeNames))
	return c
}

// TypeNames lists the tracked types, aligned with the slice Observe returns.
func (c *Collector) TypeNames() []string {
	return c.typeNames
}

// Observe records one step's firing set and returns that step's spike
// count per type. The returned slice is reused by the next call.
func (c *Collector) Observe(fired []int) []int {
	clear(c.scratch)
	for _, i := range fired {
		if i < 0 || i >= len(c.perNeuron) {
			continue
		}
		c.perNeuron[i]++
		c.scratch[c.neuronType[i]]++
	}
	for id, n := range c.scratch {
		c.perType[id] += n
	}
	c.steps++
	c.stepCounts = append(c.stepCounts, float64(len(fired)))
	return c.scratch
}

func (c *Collector) Steps() int {
	return c.steps
}

func (c *Collector) TotalSpikes() int {
	total := 0
	for _, n := range c.perType {
		total += n
	}
	return total
}

// NeuronSpikes returns a copy of the spike count of every neuron.
func (c *Collector) NeuronSpikes() []int {
	out := make([]int, len(c.perNeuron))
	copy(out, c.perNeuron)
	return out
}

// Summary fills the spike fields of a RunSummary.
func (c *Collector) Summary(info RunInfo) RunSummary {
	summary := RunSummary{
		RunInfo:     info,
		Steps:       c.steps,
		TotalSpikes: c.TotalSpikes(),
	}
	if info.Size > 0 {
		summary.MeanInDegree = float64(info.Links) / float64(info.Size)
	}
	summary.MeanRate = rate(summary.TotalSpikes, len(c.perNeuron), c.steps)
	if len(c.stepCounts) > 0 {
		summary.StepSpikesMean, summary.StepSpikesStd = stat.MeanStdDev(c.stepCounts, nil)
		if len(c.stepCounts) == 1 {
			summary.StepSpikesStd = 0
		}
	}
	for _, n := range c.perNeuron {
		if n == 0 {
			summary.SilentNeurons++
		}
	}
	summary.Types = make([]TypeSummary, len(c.typeNames))
	for id, name := range c.typeNames {
		summary.Types[id] = TypeSummary{
			Type:    name,
			Neurons: c.typeSizes[id],
			Spikes:  c.perType[id],
			Rate:    rate(c.perType[id], c.typeSizes[id], c.steps),
		}
	}
	return summary
}

// rate is spikes per neuron per step.
func rate(spikes, neurons, steps int) float64 {
	if neurons == 0 || steps == 0 {
		return 0
	}
	return float64(spikes) / float64(neurons) / float64(steps)
}
