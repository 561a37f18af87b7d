package nn

import (
	"math"
	"slices"
	"testing"

	"izhinet/internal/model"
	"izhinet/internal/random"
)

const testSeed = 101301091

func newTestNetwork(t *testing.T, size int, inhibitory float64) *Network {
	t.Helper()
	net := NewNetwork(random.New(testSeed))
	net.Resize(size, inhibitory)
	if net.Size() != size {
		t.Fatalf("unexpected size: got=%d want=%d", net.Size(), size)
	}
	return net
}

// exactNetwork builds neurons with catalog parameters and no noise.
func exactNetwork(t *testing.T, types ...string) *Network {
	t.Helper()
	net := newTestNetwork(t, len(types), 0)
	params := make([]Params, len(types))
	for i, name := range types {
		params[i] = TypeDefault(name)
	}
	if err := net.SetTypesParams(types, params, 0); err != nil {
		t.Fatalf("set types params: %v", err)
	}
	return net
}

func TestResizeInitialRecoveries(t *testing.T) {
	const size = 1000
	net := newTestNetwork(t, size, 0.2)

	for i := 0; i < size; i++ {
		n := net.Neuron(i)
		wantInhib := i < 200
		if n.IsInhibitory() != wantInhib {
			t.Fatalf("neuron %d: inhibitory=%t want=%t", i, n.IsInhibitory(), wantInhib)
		}
		if wantInhib && !n.IsType("FS") || !wantInhib && !n.IsType("RS") {
			t.Fatalf("neuron %d: unexpected type %s", i, n.TypeName())
		}
	}

	mean := 0.0
	for _, u := range net.Recoveries() {
		mean += u / size
	}
	// excitatory b is unperturbed; FS b grows by 0.25·r with E[r] = 0.5.
	want := 0.2 * RestPotential * (1 + 0.1*heterogeneityB)
	if math.Abs(mean-want) > 0.1 {
		t.Fatalf("unexpected mean recovery: got=%f want=%f", mean, want)
	}
}

func TestResizeShrinkDropsLinks(t *testing.T) {
	net := exactNetwork(t, "RS", "RS", "RS", "RS")
	for _, pair := range [][2]int{{0, 1}, {1, 3}, {3, 0}, {2, 1}} {
		if !net.AddLink(pair[0], pair[1], 1) {
			t.Fatalf("add link %v failed", pair)
		}
	}

	net.Resize(3, 0.2)
	if net.Size() != 3 {
		t.Fatalf("unexpected size after shrink: %d", net.Size())
	}
	if got := net.LinkCount(); got != 2 {
		t.Fatalf("expected 2 surviving links, got %d: %+v", got, net.Links())
	}
	if n, _ := net.Degree(1); n != 0 {
		t.Fatalf("expected no incoming links on 1, got %d", n)
	}

	net.Resize(5, 0)
	if net.Size() != 5 || net.LinkCount() != 2 {
		t.Fatalf("unexpected state after regrow: size=%d links=%d", net.Size(), net.LinkCount())
	}
	if n, _ := net.Degree(3); n != 0 {
		t.Fatalf("expected regrown neuron without links, got %d", n)
	}
}

func TestAddLinkRejectsInvalidPairs(t *testing.T) {
	net := newTestNetwork(t, 10, 0.2)
	for i := 0; i < net.Size(); i++ {
		if net.AddLink(i, i, 10) {
			t.Fatalf("self link %d accepted", i)
		}
	}
	if net.AddLink(0, 11, .5) || net.AddLink(0, 10, .5) || net.AddLink(-1, 2, .5) || net.AddLink(3, -2, .5) {
		t.Fatal("out of range link accepted")
	}
	if net.LinkCount() != 0 {
		t.Fatalf("expected no links, got %d", net.LinkCount())
	}
}

func TestAddLinkOverwritesAndIfAbsentRefuses(t *testing.T) {
	net := exactNetwork(t, "RS", "RS")
	if !net.AddLink(0, 1, 1) || !net.AddLink(0, 1, 3) {
		t.Fatal("expected both inserts to succeed")
	}
	if w, ok := net.Weight(0, 1); !ok || w != 3 {
		t.Fatalf("expected overwritten weight 3, got %f ok=%t", w, ok)
	}
	if net.AddLinkIfAbsent(0, 1, 5) {
		t.Fatal("expected duplicate pair to be refused")
	}
	if !net.AddLinkIfAbsent(1, 0, 5) {
		t.Fatal("expected reverse pair to be accepted")
	}
	if net.LinkCount() != 2 {
		t.Fatalf("unexpected link count: %d", net.LinkCount())
	}
}

func TestDegreeWithInhibitorySenders(t *testing.T) {
	net := newTestNetwork(t, 1000, 0.2)

	excit := -1
	for i := 0; i < net.Size(); i++ {
		if n := net.Neuron(i); !n.IsInhibitory() {
			excit = i
			break
		}
	}
	if excit < 0 {
		t.Fatal("no excitatory neuron")
	}

	const strength = 6.
	remaining := 3
	for i := 0; i < net.Size() && remaining > 0; i++ {
		if n := net.Neuron(i); n.IsInhibitory() && net.AddLink(excit, i, strength) {
			remaining--
		}
	}
	count, weight := net.Degree(excit)
	if count != 3 || weight != -2*strength*3 {
		t.Fatalf("unexpected degree: got=(%d,%f) want=(3,%f)", count, weight, -2*strength*3)
	}

	excitSender := excit + 1
	if !net.AddLink(excit, excitSender, 2.5) {
		t.Fatal("expected excitatory link")
	}
	count, weight = net.Degree(excit)
	if count != 4 || weight != -36+2.5 {
		t.Fatalf("unexpected degree after excitatory link: (%d,%f)", count, weight)
	}

	neighbors := net.Neighbors(excit)
	if len(neighbors) != 4 {
		t.Fatalf("unexpected neighbors: %+v", neighbors)
	}
	if !slices.IsSortedFunc(neighbors, func(a, b Neighbor) int { return a.Sender - b.Sender }) {
		t.Fatalf("expected neighbors ordered by sender: %+v", neighbors)
	}
}

func TestRandomConnect(t *testing.T) {
	net := newTestNetwork(t, 200, 0.2)
	created := net.RandomConnect(10, 0.25)
	if created != net.LinkCount() {
		t.Fatalf("created=%d but graph holds %d", created, net.LinkCount())
	}

	mean := float64(created) / float64(net.Size())
	if mean < 8 || mean > 10.5 {
		t.Fatalf("unexpected realised mean degree: %f", mean)
	}
	for _, link := range net.Links() {
		if link.Receiver == link.Sender {
			t.Fatalf("self link %+v", link)
		}
		sender := net.Neuron(link.Sender)
		if sender.IsInhibitory() {
			if link.Weight > 0 || link.Weight < -1 {
				t.Fatalf("inhibitory weight out of range: %+v", link)
			}
		} else if link.Weight < 0 || link.Weight > 0.5 {
			t.Fatalf("excitatory weight out of range: %+v", link)
		}
	}
}

func TestRandomConnectZeroDegree(t *testing.T) {
	net := newTestNetwork(t, 20, 0.2)
	if created := net.RandomConnect(0, 0.25); created != 0 {
		t.Fatalf("expected no links, got %d", created)
	}
}

func TestSetDefaultParamsBlocks(t *testing.T) {
	net := newTestNetwork(t, 10, 0)
	blocks := []model.TypeCount{{Type: "IB", Count: 3}, {Type: "CH", Count: 2}, {Type: "XX", Count: 1}}
	if err := net.SetDefaultParams(blocks, 2); err != nil {
		t.Fatalf("set default params: %v", err)
	}

	want := []string{"RS", "RS", "IB", "IB", "IB", "CH", "CH", "RS", "RS", "RS"}
	for i, name := range want {
		if n := net.Neuron(i); !n.IsType(name) {
			t.Fatalf("neuron %d: got %s want %s", i, n.TypeName(), name)
		}
	}

	if err := net.SetDefaultParams([]model.TypeCount{{Type: "FS", Count: 4}}, 8); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestSetTypesParamsAndValues(t *testing.T) {
	net := newTestNetwork(t, 4, 0)
	custom := Params{A: .03, B: .25, C: -60, D: 5, Inhibitory: true}
	if err := net.SetTypesParams([]string{"LTS", "zz"}, []Params{TypeLTS.Params(), custom}, 1); err != nil {
		t.Fatalf("set types params: %v", err)
	}
	if n := net.Neuron(1); !n.IsType("LTS") || n.Params() != TypeLTS.Params() {
		t.Fatalf("unexpected neuron 1: %s %+v", n.TypeName(), n.Params())
	}
	if n := net.Neuron(2); !n.IsType("RS") || n.Params() != custom {
		t.Fatalf("unexpected neuron 2: %s %+v", n.TypeName(), n.Params())
	}
	if err := net.SetTypesParams([]string{"RS"}, nil, 0); err == nil {
		t.Fatal("expected length mismatch error")
	}

	if err := net.SetValues([]float64{-70, -50}, 2); err != nil {
		t.Fatalf("set values: %v", err)
	}
	if got := net.Potentials(); got[2] != -70 || got[3] != -50 || got[0] != RestPotential {
		t.Fatalf("unexpected potentials: %v", got)
	}
	if err := net.SetValues([]float64{1, 2, 3}, 2); err == nil {
		t.Fatal("expected overflow error")
	}
}

func TestStepSameStepCoupling(t *testing.T) {
	net := exactNetwork(t, "RS", "RS", "FS")
	net.AddLink(1, 0, 5)
	net.AddLink(0, 2, 3)
	net.AddLink(2, 1, 7)
	if err := net.SetValues([]float64{35}, 0); err != nil {
		t.Fatalf("set values: %v", err)
	}

	fired := net.Step([]float64{0, 0, 0})
	if !slices.Equal(fired, []int{0}) {
		t.Fatalf("unexpected firing set: %v", fired)
	}
	if got := net.Neuron(1).Input(); got != 5 {
		t.Fatalf("expected same-step synaptic input 5, got %f", got)
	}
	if got := net.Neuron(2).Input(); got != 0 {
		t.Fatalf("expected no input from silent sender, got %f", got)
	}
	n0 := net.Neuron(0)
	if n0.Potential() != -65 || n0.Recovery() != 0.2*RestPotential+8 {
		t.Fatalf("expected reset neuron 0, got v=%f u=%f", n0.Potential(), n0.Recovery())
	}
}

func TestStepInhibitoryCouplingAndGain(t *testing.T) {
	net := exactNetwork(t, "FS", "FS", "FS", "RS")
	for i := 0; i < 3; i++ {
		if !net.AddLink(3, i, 6) {
			t.Fatalf("add link from %d failed", i)
		}
	}
	if count, weight := net.Degree(3); count != 3 || weight != -36 {
		t.Fatalf("unexpected degree: (%d,%f)", count, weight)
	}

	thalamic := []float64{25, 25, 25, 10}
	fires := make([]int, 4)
	for step := 1; step <= 10; step++ {
		fired := net.Step(thalamic)
		if step == 5 {
			if !slices.Equal(fired, []int{0, 1, 2, 3}) {
				t.Fatalf("expected all neurons firing at step 5, got %v", fired)
			}
			if got := net.Neuron(3).Input(); math.Abs(got-(-26)) > 1e-9 {
				t.Fatalf("expected inhibited input -26, got %f", got)
			}
		}
		for i := range fires {
			if n := net.Neuron(i); n.IsFiring() {
				fires[i]++
			}
		}
	}
	for i, count := range fires {
		if count != 1 {
			t.Fatalf("neuron %d fired %d times, want 1", i, count)
		}
	}
	if got := net.Neuron(3).Input(); got != 10 {
		t.Fatalf("expected excitatory input to equal noise, got %f", got)
	}
	if got := net.Neuron(0).Input(); math.Abs(got-InhibitoryThalamicGain*25) > 1e-12 {
		t.Fatalf("expected scaled inhibitory input, got %f", got)
	}
}

func TestStepDeterministic(t *testing.T) {
	build := func() *Network {
		net := NewNetwork(random.New(7))
		net.Resize(300, 0.2)
		net.RandomConnect(20, 0.5)
		return net
	}
	a, b := build(), build()

	noise := random.New(99)
	thalamic := make([]float64, a.Size())
	for step := 0; step < 50; step++ {
		noise.NormalFill(thalamic, 0, 5)
		fa := a.Step(thalamic)
		fb := b.Step(thalamic)
		if !slices.Equal(fa, fb) {
			t.Fatalf("step %d: firing sets differ", step)
		}
	}
	if !slices.Equal(a.Potentials(), b.Potentials()) || !slices.Equal(a.Recoveries(), b.Recoveries()) {
		t.Fatal("expected identical state")
	}
}

func TestStepShortThalamicVector(t *testing.T) {
	net := exactNetwork(t, "RS", "RS")
	net.Step([]float64{10})
	if got := net.Neuron(1).Input(); got != 0 {
		t.Fatalf("expected zero input past end of thalamic vector, got %f", got)
	}
	if got := net.Neuron(0).Input(); got != 10 {
		t.Fatalf("expected thalamic input 10, got %f", got)
	}
}
