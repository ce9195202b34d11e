// Package network builds the renderable node/edge structure from the
// tract coordinate table and group-level metric summaries.
//
// Every tract contributes two nodes (its start and end anchors) and a
// single undirected edge between them carrying the tract's metric as
// weight. Endpoints of different tracts are never connected. Difference
// mode uses the B − A convention: a negative weight means the metric is
// lower in group B than in group A. Single-group mode is difference mode
// against an implicit zero baseline, so the weight formula lives in one
// place.
package network

import (
	"fmt"

	"neuroconnect/internal/models"
	"neuroconnect/pkg/extractor"
	"neuroconnect/pkg/metrics"
)

// EndpointKind distinguishes the two anchors of a tract.
type EndpointKind string

const (
	EndpointStart EndpointKind = "start"
	EndpointEnd   EndpointKind = "end"
)

// Mode selects how edge weights are derived.
type Mode string

const (
	// ModeGroup weights edges with a single group's mean metric.
	ModeGroup Mode = "group"
	// ModeDiff weights edges with mean_B - mean_A.
	ModeDiff Mode = "diff"
)

// DiffType selects how a group difference is expressed.
type DiffType string

const (
	// DiffRaw is the plain mean_B - mean_A difference.
	DiffRaw DiffType = "raw"
	// DiffPercent normalizes the raw difference by the comparison
	// group's mean: (mean_B - mean_A) / mean_B * 100.
	DiffPercent DiffType = "percent"
)

// ParseDiffType validates a difference type. The empty string means raw.
func ParseDiffType(s string) (DiffType, error) {
	switch DiffType(s) {
	case "", DiffRaw:
		return DiffRaw, nil
	case DiffPercent:
		return DiffPercent, nil
	default:
		return "", fmt.Errorf("unknown difference type %q (raw, percent)", s)
	}
}

// Node is one tract endpoint.
type Node struct {
	Tract string       `json:"tract"`
	Kind  EndpointKind `json:"kind"`
	Pos   models.Vec3  `json:"pos"`
}

// Edge is an undirected weighted connection between two nodes, stored
// with A < B. Self-loops are impossible by construction.
type Edge struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Weight float64 `json:"weight"`
}

// Network is the render-ready structure. It is rebuilt per request and
// never persisted or mutated after construction.
type Network struct {
	Mode  Mode   `json:"mode"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Weight returns the symmetric edge weight between node indices i and j,
// or false if the pair is not adjacent.
func (n *Network) Weight(i, j int) (float64, bool) {
	if i == j {
		return 0, false
	}
	if i > j {
		i, j = j, i
	}
	for _, e := range n.Edges {
		if e.A == i && e.B == j {
			return e.Weight, true
		}
	}
	return 0, false
}

// Weights returns all edge weights, in table order.
func (n *Network) Weights() []float64 {
	out := make([]float64, len(n.Edges))
	for i, e := range n.Edges {
		out[i] = e.Weight
	}
	return out
}

// BuildGroup builds the single-group network: edge weight is the group's
// mean metric for the tract. Tracts whose mean is missing are omitted.
func BuildGroup(table *extractor.Table, p *metrics.Prepared, group string) *Network {
	n := build(table, func(tract string) (float64, bool) {
		s, ok := p.Summary(tract, group)
		if !ok || s.Missing() {
			return 0, false
		}
		return diffWeight(0, s.Mean), true
	})
	n.Mode = ModeGroup
	return n
}

// BuildDiff builds the difference network between two groups: edge weight
// is mean_B - mean_A (negative = lower in B), optionally normalized by
// mean_B as a percentage. Tracts missing a mean in either group are
// omitted, as are tracts whose percent denominator is zero.
func BuildDiff(table *extractor.Table, p *metrics.Prepared, groupA, groupB string, dt DiffType) *Network {
	n := build(table, func(tract string) (float64, bool) {
		a, okA := p.Summary(tract, groupA)
		b, okB := p.Summary(tract, groupB)
		if !okA || !okB || a.Missing() || b.Missing() {
			return 0, false
		}
		w := diffWeight(a.Mean, b.Mean)
		if dt == DiffPercent {
			if b.Mean == 0 {
				return 0, false
			}
			w = w / b.Mean * 100
		}
		return w, true
	})
	n.Mode = ModeDiff
	return n
}

// diffWeight is the single place the B - A sign convention is defined.
// Single-group mode passes a zero baseline.
func diffWeight(a, b float64) float64 {
	return b - a
}

// build walks the coordinate table in order, adding two nodes and one
// edge per tract for which the weight function produces a value.
func build(table *extractor.Table, weight func(tract string) (float64, bool)) *Network {
	n := &Network{}
	for _, rec := range table.Records {
		w, ok := weight(rec.Label)
		if !ok {
			continue
		}
		a := len(n.Nodes)
		n.Nodes = append(n.Nodes,
			Node{Tract: rec.Label, Kind: EndpointStart, Pos: rec.Start},
			Node{Tract: rec.Label, Kind: EndpointEnd, Pos: rec.End},
		)
		n.Edges = append(n.Edges, Edge{A: a, B: a + 1, Weight: w})
	}
	return n
}
