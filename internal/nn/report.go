package nn

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"izhinet/internal/model"
)

// Representative is the first neuron of a population block.
type Representative struct {
	Type  string
	Index int
}

// Representatives returns the first index of every non-empty block, with
// blocks laid out consecutively from index 0.
func Representatives(blocks []model.TypeCount) []Representative {
	reps := make([]Representative, 0, len(blocks))
	idx := 0
	for _, block := range blocks {
		if block.Count > 0 {
			reps = append(reps, Representative{Type: block.Type, Index: idx})
		}
		idx += block.Count
	}
	return reps
}

// PrintParams writes one FormattedParams line per neuron.
func (net *Network) PrintParams(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := range net.neurons {
		if _, err := bw.WriteString(net.neurons[i].FormattedParams()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// PrintHead writes the trajectory header: "t" then v, u and I columns for
// every representative.
func (net *Network) PrintHead(w io.Writer, reps []Representative) error {
	line := "t"
	for _, rep := range reps {
		line += fmt.Sprintf("\t%[1]s.v\t%[1]s.u\t%[1]s.I", rep.Type)
	}
	_, err := io.WriteString(w, line+"\n")
	return err
}

// PrintTraj writes one trajectory line: time then the FormattedValues of
// each representative.
func (net *Network) PrintTraj(w io.Writer, time int, reps []Representative) error {
	line := strconv.Itoa(time)
	for _, rep := range reps {
		if rep.Index < 0 || rep.Index >= len(net.neurons) {
			return fmt.Errorf("representative %s index %d out of range", rep.Type, rep.Index)
		}
		line += "\t" + net.neurons[rep.Index].FormattedValues()
	}
	_, err := io.WriteString(w, line+"\n")
	return err
}
