// Package netfile reads network configuration files.
//
// Each line is either a neuron line
//
//	index; TYPE; key=value; ...
//
// with keys a, b, c, d, inhib and v matched on their first letter, or a
// link line
//
//	link; from,to:weight; ...
//
// where neuron from receives the output of neuron to.
// Whitespace is ignored anywhere in a line and lines starting with '#'
// are comments.
package netfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"izhinet/internal/model"
)

var ErrSyntax = errors.New("configuration syntax error")

// ReadFile parses the configuration file at path.
func ReadFile(path string) (model.NetworkDescription, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.NetworkDescription{}, err
	}
	defer f.Close()

	desc, err := Parse(f)
	if err != nil {
		return model.NetworkDescription{}, fmt.Errorf("%s: %w", path, err)
	}
	return desc, nil
}

// Parse reads a configuration from r. Neurons and links are returned in
// file order.
func Parse(r io.Reader) (model.NetworkDescription, error) {
	var desc model.NetworkDescription
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		items := strings.Split(line, ";")
		if isLinkKey(items[0]) {
			links, err := parseLinks(items[1:])
			if err != nil {
				return model.NetworkDescription{}, fmt.Errorf("line %d: %w", lineNo, err)
			}
			desc.Links = append(desc.Links, links...)
			continue
		}
		neuron, err := parseNeuron(items)
		if err != nil {
			return model.NetworkDescription{}, fmt.Errorf("line %d: %w", lineNo, err)
		}
		desc.Neurons = append(desc.Neurons, neuron)
	}
	if err := scanner.Err(); err != nil {
		return model.NetworkDescription{}, err
	}
	return desc, nil
}

func isLinkKey(item string) bool {
	return len(item) >= 4 && strings.EqualFold(item[:4], "link")
}

func parseLinks(items []string) ([]model.LinkSpec, error) {
	links := make([]model.LinkSpec, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		pair, weight, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%w: link %q has no weight", ErrSyntax, item)
		}
		from, to, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("%w: link %q needs from,to", ErrSyntax, item)
		}
		var (
			spec model.LinkSpec
			err  error
		)
		if spec.From, err = strconv.Atoi(from); err != nil {
			return nil, fmt.Errorf("%w: link receiver %q", ErrSyntax, from)
		}
		if spec.To, err = strconv.Atoi(to); err != nil {
			return nil, fmt.Errorf("%w: link sender %q", ErrSyntax, to)
		}
		if spec.Weight, err = strconv.ParseFloat(weight, 64); err != nil {
			return nil, fmt.Errorf("%w: link weight %q", ErrSyntax, weight)
		}
		links = append(links, spec)
	}
	return links, nil
}

func parseNeuron(items []string) (model.NeuronSpec, error) {
	var spec model.NeuronSpec
	index, err := strconv.Atoi(items[0])
	if err != nil {
		return spec, fmt.Errorf("%w: neuron index %q", ErrSyntax, items[0])
	}
	spec.Index = index
	if len(items) > 1 {
		spec.Type = items[1]
	}
	if len(items) <= 2 {
		return spec, nil
	}

	for _, item := range items[2:] {
		if item == "" {
			continue
		}
		key, raw, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return spec, fmt.Errorf("%w: neuron field %q is not key=value", ErrSyntax, item)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return spec, fmt.Errorf("%w: neuron field %s value %q", ErrSyntax, key, raw)
		}
		switch unicode.ToLower(rune(key[0])) {
		case 'a':
			spec.A = &value
		case 'b':
			spec.B = &value
		case 'c':
			spec.C = &value
		case 'd':
			spec.D = &value
		case 'i':
			inhib := value > 0
			spec.Inhibitory = &inhib
		case 'v':
			spec.Potential = &value
		}
	}
	return spec, nil
}

func stripSpace(line string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)
}
