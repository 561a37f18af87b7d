package nn

import (
	"slices"
	"sort"
)

// LinkKey identifies a directed link by receiving and sending neuron index.
type LinkKey struct {
	Receiver int
	Sender   int
}

// Link is a directed weighted edge, as reported by Network.Links.
type Link struct {
	Receiver int     `json:"receiver"`
	Sender   int     `json:"sender"`
	Weight   float64 `json:"weight"`
}

// Neighbor is an incoming edge seen from its receiver.
type Neighbor struct {
	Sender int     `json:"sender"`
	Weight float64 `json:"weight"`
}

// links keeps the pair map authoritative and a per-receiver sender list,
// sorted by sender, for the update loop.
type links struct {
	weights  map[LinkKey]float64
	incoming [][]Neighbor
}

func newLinks() links {
	return links{weights: make(map[LinkKey]float64)}
}

func (l *links) resize(n int) {
	if n >= len(l.incoming) {
		for len(l.incoming) < n {
			l.incoming = append(l.incoming, nil)
		}
		return
	}

	l.incoming = l.incoming[:n]
	for key := range l.weights {
		if key.Receiver >= n || key.Sender >= n {
			delete(l.weights, key)
		}
	}
	for receiver, in := range l.incoming {
		l.incoming[receiver] = slices.DeleteFunc(in, func(nb Neighbor) bool {
			return nb.Sender >= n
		})
	}
}

func (l *links) has(receiver, sender int) bool {
	_, ok := l.weights[LinkKey{Receiver: receiver, Sender: sender}]
	return ok
}

func (l *links) set(receiver, sender int, weight float64) {
	key := LinkKey{Receiver: receiver, Sender: sender}
	in := l.incoming[receiver]
	pos := sort.Search(len(in), func(i int) bool { return in[i].Sender >= sender })
	if _, exists := l.weights[key]; exists && pos < len(in) && in[pos].Sender == sender {
		in[pos].Weight = weight
	} else {
		l.incoming[receiver] = slices.Insert(in, pos, Neighbor{Sender: sender, Weight: weight})
	}
	l.weights[key] = weight
}

func (l *links) count() int {
	return len(l.weights)
}

// AddLink inserts or overwrites the link from sender to receiver. It
// returns false, leaving the graph unchanged, for self-links and indices
// outside the network. Inhibitory senders store -2×magnitude.
func (net *Network) AddLink(receiver, sender int, magnitude float64) bool {
	if !net.validPair(receiver, sender) {
		return false
	}
	net.links.set(receiver, sender, net.linkWeight(sender, magnitude))
	return true
}

// AddLinkIfAbsent is AddLink that also refuses an already linked pair.
func (net *Network) AddLinkIfAbsent(receiver, sender int, magnitude float64) bool {
	if !net.validPair(receiver, sender) || net.links.has(receiver, sender) {
		return false
	}
	net.links.set(receiver, sender, net.linkWeight(sender, magnitude))
	return true
}

// Degree returns the number of incoming links of receiver and the sum of
// their weights.
func (net *Network) Degree(receiver int) (int, float64) {
	if receiver < 0 || receiver >= net.Size() {
		return 0, 0
	}
	in := net.links.incoming[receiver]
	total := 0.0
	for _, nb := range in {
		total += nb.Weight
	}
	return len(in), total
}

// Neighbors lists the incoming links of receiver ordered by sender index.
func (net *Network) Neighbors(receiver int) []Neighbor {
	if receiver < 0 || receiver >= net.Size() {
		return nil
	}
	return slices.Clone(net.links.incoming[receiver])
}

// Weight returns the weight of the link from sender to receiver.
func (net *Network) Weight(receiver, sender int) (float64, bool) {
	w, ok := net.links.weights[LinkKey{Receiver: receiver, Sender: sender}]
	return w, ok
}

func (net *Network) LinkCount() int {
	return net.links.count()
}

// Links lists every link ordered by receiver, then sender.
func (net *Network) Links() []Link {
	out := make([]Link, 0, net.links.count())
	for receiver, in := range net.links.incoming {
		for _, nb := range in {
			out = append(out, Link{Receiver: receiver, Sender: nb.Sender, Weight: nb.Weight})
		}
	}
	return out
}

func (net *Network) validPair(receiver, sender int) bool {
	size := net.Size()
	if receiver == sender {
		return false
	}
	return receiver >= 0 && receiver < size && sender >= 0 && sender < size
}

func (net *Network) linkWeight(sender int, magnitude float64) float64 {
	if net.neurons[sender].IsInhibitory() {
		return -2 * magnitude
	}
	return magnitude
}
