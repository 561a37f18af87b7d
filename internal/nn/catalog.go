package nn

// Params are the four Izhikevich shape parameters and the inhibitory flag.
type Params struct {
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	C          float64 `json:"c"`
	D          float64 `json:"d"`
	Inhibitory bool    `json:"inhibitory"`
}

// TypeID indexes the process-wide neuron type catalog.
type TypeID uint8

const (
	TypeRS TypeID = iota
	TypeIB
	TypeCH
	TypeFS
	TypeLTS
	TypeTC
	TypeRZ
	numTypes
)

const (
	FiringThreshold = 30.0
	RestPotential   = -65.0

	// InhibitoryThalamicGain scales thalamic input onto inhibitory neurons.
	InhibitoryThalamicGain = 0.4

	heterogeneityA = 0.8
	heterogeneityB = 0.25
	heterogeneityC = 0.2307692
	heterogeneityD = 0.75
)

type typeDefinition struct {
	name   string
	params Params
}

var catalog = [numTypes]typeDefinition{
	TypeRS:  {name: "RS", params: Params{A: .02, B: .2, C: -65, D: 8}},
	TypeIB:  {name: "IB", params: Params{A: .02, B: .2, C: -55, D: 4}},
	TypeCH:  {name: "CH", params: Params{A: .02, B: .2, C: -50, D: 2}},
	TypeFS:  {name: "FS", params: Params{A: .1, B: .2, C: -65, D: 2, Inhibitory: true}},
	TypeLTS: {name: "LTS", params: Params{A: .02, B: .25, C: -65, D: 2, Inhibitory: true}},
	TypeTC:  {name: "TC", params: Params{A: .02, B: .25, C: -65, D: .05}},
	TypeRZ:  {name: "RZ", params: Params{A: .1, B: .26, C: -65, D: 2}},
}

// Name returns the short catalog name, "RS" for out-of-range ids.
func (id TypeID) Name() string {
	if id >= numTypes {
		return catalog[TypeRS].name
	}
	return catalog[id].name
}

// Params returns the catalog default tuple for id.
func (id TypeID) Params() Params {
	if id >= numTypes {
		return catalog[TypeRS].params
	}
	return catalog[id].params
}

func (id TypeID) String() string {
	return id.Name()
}

// LookupType resolves a catalog name. Unknown names resolve to RS.
func LookupType(name string) TypeID {
	if id, ok := findType(name); ok {
		return id
	}
	return TypeRS
}

func TypeExists(name string) bool {
	_, ok := findType(name)
	return ok
}

// TypeDefault returns the catalog tuple for name, or the RS tuple.
func TypeDefault(name string) Params {
	return LookupType(name).Params()
}

// TypeNames lists the catalog names in catalog order.
func TypeNames() []string {
	names := make([]string, 0, len(catalog))
	for _, def := range catalog {
		names = append(names, def.name)
	}
	return names
}

func findType(name string) (TypeID, bool) {
	for id, def := range catalog {
		if def.name == name {
			return TypeID(id), true
		}
	}
	return TypeRS, false
}
