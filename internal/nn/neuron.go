package nn

import (
	"math"
	"strconv"
	"strings"
)

// Neuron is one Izhikevich point neuron: membrane potential, recovery
// variable and the input current applied at its last update.
type Neuron struct {
	typ    TypeID
	params Params

	potential float64
	recovery  float64
	input     float64
}

// NewNeuron returns a default RS neuron at rest.
func NewNeuron() Neuron {
	n := Neuron{potential: RestPotential}
	n.SetDefaultParams(TypeRS.Name(), 0)
	return n
}

// SetDefaultParams loads the catalog tuple of typeName (RS when unknown)
// and applies heterogeneity noise r.
func (n *Neuron) SetDefaultParams(typeName string, r float64) {
	n.SetType(typeName)
	n.SetParams(n.typ.Params(), r)
}

// SetParams replaces the parameters with p perturbed by heterogeneity r.
// Inhibitory neurons vary a and b linearly in r; excitatory neurons vary
// c and d in r². The recovery variable is reinitialised to b·v.
func (n *Neuron) SetParams(p Params, r float64) {
	n.params = p
	if math.Abs(r) > 1e-8 {
		if p.Inhibitory {
			n.params.A *= 1 - heterogeneityA*r
			n.params.B *= 1 + heterogeneityB*r
		} else {
			r2 := r * r
			n.params.C *= 1 - heterogeneityC*r2
			n.params.D *= 1 - heterogeneityD*r2
		}
	}
	n.recovery = n.params.B * n.potential
}

func (n *Neuron) SetType(typeName string) {
	n.typ = LookupType(typeName)
}

func (n Neuron) Type() TypeID {
	return n.typ
}

func (n Neuron) TypeName() string {
	return n.typ.Name()
}

func (n Neuron) IsType(typeName string) bool {
	return n.typ.Name() == typeName
}

func (n Neuron) IsInhibitory() bool {
	return n.params.Inhibitory
}

func (n *Neuron) SetInhibitory() {
	n.params.Inhibitory = true
}

func (n Neuron) Params() Params {
	return n.params
}

// IsFiring reports whether the potential exceeds FiringThreshold.
func (n Neuron) IsFiring() bool {
	return n.potential > FiringThreshold
}

// Reset is applied instead of Advance to a neuron that fired.
func (n *Neuron) Reset() {
	n.potential = n.params.C
	n.recovery += n.params.D
}

// Advance integrates one time unit: two half-steps of the potential
// equation, then one recovery update.
func (n *Neuron) Advance() {
	n.potential += 0.5 * (0.04*n.potential*n.potential + 5*n.potential + 140 - n.recovery + n.input)
	n.potential += 0.5 * (0.04*n.potential*n.potential + 5*n.potential + 140 - n.recovery + n.input)
	n.recovery += n.params.A * (n.params.B*n.potential - n.recovery)
}

func (n Neuron) Potential() float64 {
	return n.potential
}

func (n *Neuron) SetPotential(v float64) {
	n.potential = v
}

func (n Neuron) Recovery() float64 {
	return n.recovery
}

func (n Neuron) Input() float64 {
	return n.input
}

func (n *Neuron) SetInput(i float64) {
	n.input = i
}

// FormattedParams renders "type a b c d inhib" tab-delimited, inhib as 0/1.
func (n Neuron) FormattedParams() string {
	inhib := "0"
	if n.params.Inhibitory {
		inhib = "1"
	}
	return strings.Join([]string{
		n.typ.Name(),
		formatValue(n.params.A),
		formatValue(n.params.B),
		formatValue(n.params.C),
		formatValue(n.params.D),
		inhib,
	}, "\t")
}

// FormattedValues renders "v u input" tab-delimited.
func (n Neuron) FormattedValues() string {
	return formatValue(n.potential) + "\t" + formatValue(n.recovery) + "\t" + formatValue(n.input)
}

// formatValue uses six significant digits with trailing zeros dropped.
func formatValue(x float64) string {
	return strconv.FormatFloat(x, 'g', 6, 64)
}
