// Package dataset handles custom node clouds: the built-in demo
// generator, normalization and validation of uploaded CSVs, and the
// proximity edge builders used when a cloud has no anatomical topology.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"neuroconnect/internal/models"
)

// Brain-sized ellipsoid radii in millimetres, used by the demo generator.
const (
	RadiusX = 90.0
	RadiusY = 120.0
	RadiusZ = 80.0
)

// Point is one node of a custom cloud. Value is optional; HasValue
// distinguishes "no value" from a literal zero.
type Point struct {
	ID       string      `json:"id"`
	Group    string      `json:"group"`
	Value    float64     `json:"value"`
	HasValue bool        `json:"has_value"`
	Pos      models.Vec3 `json:"pos"`
}

// Cloud is a parsed or generated set of points.
type Cloud struct {
	Points []Point
}

// Values returns the values of all points that carry one.
func (c *Cloud) Values() []float64 {
	var out []float64
	for _, p := range c.Points {
		if p.HasValue {
			out = append(out, p.Value)
		}
	}
	return out
}

// ValidationError reports required columns absent from an uploaded CSV.
// All missing columns are collected into a single error.
type ValidationError struct {
	MissingColumns []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.MissingColumns, ", "))
}

// ParseCSV normalizes and validates an uploaded dataset. Column matching
// is case- and whitespace-insensitive; x, y and z are required, id, group
// and value are optional. Rows with unparseable coordinates are dropped.
func ParseCSV(r io.Reader) (*Cloud, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, req := range []string{"x", "y", "z"} {
		if _, ok := cols[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{MissingColumns: missing}
	}

	idIdx, hasID := cols["id"]
	groupIdx, hasGroup := cols["group"]
	valueIdx, hasValue := cols["value"]

	cloud := &Cloud{}
	rowNum := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row: %w", err)
		}

		x, errX := strconv.ParseFloat(strings.TrimSpace(row[cols["x"]]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(row[cols["y"]]), 64)
		z, errZ := strconv.ParseFloat(strings.TrimSpace(row[cols["z"]]), 64)
		if errX != nil || errY != nil || errZ != nil {
			continue
		}

		p := Point{Group: "1", Pos: models.Vec3{X: x, Y: y, Z: z}}
		if hasID {
			p.ID = strings.TrimSpace(row[idIdx])
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("node_%d", rowNum)
		}
		if hasGroup {
			if g := strings.TrimSpace(row[groupIdx]); g != "" {
				p.Group = g
			}
		}
		if hasValue {
			if v, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64); err == nil {
				p.Value = v
				p.HasValue = true
			}
		}
		cloud.Points = append(cloud.Points, p)
		rowNum++
	}
	return cloud, nil
}

// GenerateDemo samples n points uniformly inside a brain-sized ellipsoid
// with synthetic groups and values. The same seed always produces the
// same cloud.
func GenerateDemo(n int, seed int64) *Cloud {
	rng := rand.New(rand.NewSource(seed))
	rx, ry, rz := RadiusX*0.9, RadiusY*0.9, RadiusZ*0.9

	cloud := &Cloud{Points: make([]Point, 0, n)}
	for len(cloud.Points) < n {
		x := (rng.Float64()*2 - 1) * rx
		y := (rng.Float64()*2 - 1) * ry
		z := (rng.Float64()*2 - 1) * rz
		if (x*x)/(rx*rx)+(y*y)/(ry*ry)+(z*z)/(rz*rz) > 1 {
			continue
		}
		i := len(cloud.Points)
		cloud.Points = append(cloud.Points, Point{
			ID:       fmt.Sprintf("Node_%03d", i),
			Group:    strconv.Itoa(rng.Intn(4) + 1),
			Value:    rng.Float64(),
			HasValue: true,
			Pos:      models.Vec3{X: x, Y: y, Z: z},
		})
	}
	return cloud
}

// KNNEdges connects each point to its k nearest neighbours, deduplicating
// unordered pairs and stopping at maxEdges.
func KNNEdges(c *Cloud, k, maxEdges int) [][2]int {
	n := len(c.Points)
	if n < 2 || k < 1 {
		return nil
	}

	seen := make(map[[2]int]bool)
	var edges [][2]int
	dists := make([]struct {
		j int
		d float64
	}, 0, n)

	for i := 0; i < n; i++ {
		dists = dists[:0]
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			dists = append(dists, struct {
				j int
				d float64
			}{j, sqDist(c.Points[i].Pos, c.Points[j].Pos)})
		}
		sort.Slice(dists, func(a, b int) bool {
			if dists[a].d != dists[b].d {
				return dists[a].d < dists[b].d
			}
			return dists[a].j < dists[b].j
		})

		limit := k
		if limit > len(dists) {
			limit = len(dists)
		}
		for _, cand := range dists[:limit] {
			pair := orderedPair(i, cand.j)
			if seen[pair] {
				continue
			}
			seen[pair] = true
			edges = append(edges, pair)
			if len(edges) >= maxEdges {
				return edges
			}
		}
	}
	return edges
}

// DistanceEdges connects every pair of points closer than maxDist,
// stopping at maxEdges.
func DistanceEdges(c *Cloud, maxDist float64, maxEdges int) [][2]int {
	var edges [][2]int
	limit := maxDist * maxDist
	for i := 0; i < len(c.Points); i++ {
		for j := i + 1; j < len(c.Points); j++ {
			if sqDist(c.Points[i].Pos, c.Points[j].Pos) <= limit {
				edges = append(edges, [2]int{i, j})
				if len(edges) >= maxEdges {
					return edges
				}
			}
		}
	}
	return edges
}

func sqDist(a, b models.Vec3) float64 {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return dx*dx + dy*dy + dz*dz
}

func orderedPair(i, j int) [2]int {
	if i < j {
		return [2]int{i, j}
	}
	return [2]int{j, i}
}
