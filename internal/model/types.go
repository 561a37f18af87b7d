package model

// TypeCount is one block of consecutive neurons sharing a type.
type TypeCount struct {
	Type  string `json:"type" yaml:"type"`
	Count int    `json:"count" yaml:"count"`
}

// NetworkDescription is a network read from a configuration file.
type NetworkDescription struct {
	Neurons []NeuronSpec `json:"neurons"`
	Links   []LinkSpec   `json:"links"`
}

// NeuronSpec is one neuron line. Nil fields keep the catalog default of Type.
type NeuronSpec struct {
	Index      int      `json:"index"`
	Type       string   `json:"type"`
	A          *float64 `json:"a,omitempty"`
	B          *float64 `json:"b,omitempty"`
	C          *float64 `json:"c,omitempty"`
	D          *float64 `json:"d,omitempty"`
	Inhibitory *bool    `json:"inhibitory,omitempty"`
	Potential  *float64 `json:"potential,omitempty"`
}

// LinkSpec feeds the neuron with file index From (receiver) from the
// neuron with file index To (sender).
type LinkSpec struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
}

// TotalCount sums the counts of blocks.
func TotalCount(blocks []TypeCount) int {
	total := 0
	for _, block := range blocks {
		total += block.Count
	}
	return total
}
