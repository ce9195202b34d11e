package dataset

import (
	"errors"
	"strings"
	"testing"

	"neuroconnect/internal/models"
)

func TestParseCSVMissingColumns(t *testing.T) {
	t.Run("missing z", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("id,x,y\nn1,1,2\n"))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(verr.MissingColumns) != 1 || verr.MissingColumns[0] != "z" {
			t.Errorf("missing = %v, want [z]", verr.MissingColumns)
		}
		if !strings.Contains(verr.Error(), "z") {
			t.Errorf("error %q does not name the column", verr.Error())
		}
	})

	t.Run("all missing collected into one error", func(t *testing.T) {
		_, err := ParseCSV(strings.NewReader("id,value\nn1,0.5\n"))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if len(verr.MissingColumns) != 3 {
			t.Errorf("missing = %v, want [x y z]", verr.MissingColumns)
		}
	})
}

func TestParseCSVNormalization(t *testing.T) {
	// Headers match case- and whitespace-insensitively.
	in := " X , Y ,Z,ID,Group,VALUE\n1,2,3,a,g1,0.5\n4,5,6,,,\n"
	cloud, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(cloud.Points) != 2 {
		t.Fatalf("got %d points, want 2", len(cloud.Points))
	}

	p := cloud.Points[0]
	if p.ID != "a" || p.Group != "g1" || !p.HasValue || p.Value != 0.5 {
		t.Errorf("point 0 = %+v", p)
	}
	if p.Pos != (models.Vec3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("point 0 pos = %+v", p.Pos)
	}

	// Empty optional cells fall back to defaults; no value means no value.
	q := cloud.Points[1]
	if q.ID != "node_1" || q.Group != "1" || q.HasValue {
		t.Errorf("point 1 defaults = %+v", q)
	}
}

func TestParseCSVDropsBadRows(t *testing.T) {
	in := "x,y,z\n1,2,3\nfoo,2,3\n4,5,6\n"
	cloud, err := ParseCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(cloud.Points) != 2 {
		t.Errorf("got %d points, want 2 (bad row dropped)", len(cloud.Points))
	}
}

func TestGenerateDemo(t *testing.T) {
	cloud := GenerateDemo(120, 2025)
	if len(cloud.Points) != 120 {
		t.Fatalf("got %d points, want 120", len(cloud.Points))
	}

	rx, ry, rz := RadiusX*0.9, RadiusY*0.9, RadiusZ*0.9
	for i, p := range cloud.Points {
		d := (p.Pos.X*p.Pos.X)/(rx*rx) + (p.Pos.Y*p.Pos.Y)/(ry*ry) + (p.Pos.Z*p.Pos.Z)/(rz*rz)
		if d > 1 {
			t.Errorf("point %d outside ellipsoid: %+v", i, p.Pos)
		}
		if !p.HasValue || p.Value < 0 || p.Value >= 1 {
			t.Errorf("point %d value = %v (has %v)", i, p.Value, p.HasValue)
		}
		if p.Group < "1" || p.Group > "4" {
			t.Errorf("point %d group = %q", i, p.Group)
		}
	}
	if cloud.Points[0].ID != "Node_000" {
		t.Errorf("first id = %q, want Node_000", cloud.Points[0].ID)
	}

	t.Run("same seed reproduces the cloud", func(t *testing.T) {
		again := GenerateDemo(120, 2025)
		for i := range cloud.Points {
			if cloud.Points[i] != again.Points[i] {
				t.Fatalf("point %d differs across runs", i)
			}
		}
	})

	t.Run("different seed differs", func(t *testing.T) {
		other := GenerateDemo(120, 1)
		same := true
		for i := range cloud.Points {
			if cloud.Points[i].Pos != other.Points[i].Pos {
				same = false
				break
			}
		}
		if same {
			t.Error("seeds 2025 and 1 produced identical clouds")
		}
	})
}

// lineCloud places n points on the x axis at unit spacing.
func lineCloud(n int) *Cloud {
	c := &Cloud{}
	for i := 0; i < n; i++ {
		c.Points = append(c.Points, Point{ID: "p", Pos: models.Vec3{X: float64(i)}})
	}
	return c
}

func TestKNNEdges(t *testing.T) {
	c := lineCloud(4)
	edges := KNNEdges(c, 1, 100)
	// Each point's single nearest neighbour, with equal distances broken
	// by index and unordered pairs deduplicated.
	seen := make(map[[2]int]bool)
	for _, e := range edges {
		if e[0] >= e[1] {
			t.Errorf("edge %v not ordered", e)
		}
		if seen[e] {
			t.Errorf("duplicate edge %v", e)
		}
		seen[e] = true
	}
	if !seen[[2]int{0, 1}] || !seen[[2]int{2, 3}] {
		t.Errorf("edges = %v, expected end pairs 0-1 and 2-3", edges)
	}

	t.Run("cap respected", func(t *testing.T) {
		capped := KNNEdges(lineCloud(20), 3, 5)
		if len(capped) != 5 {
			t.Errorf("got %d edges, want cap of 5", len(capped))
		}
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		if e := KNNEdges(lineCloud(1), 3, 10); e != nil {
			t.Errorf("single point produced edges %v", e)
		}
		if e := KNNEdges(lineCloud(5), 0, 10); e != nil {
			t.Errorf("k=0 produced edges %v", e)
		}
	})
}

func TestDistanceEdges(t *testing.T) {
	c := lineCloud(4)
	edges := DistanceEdges(c, 1.5, 100)
	// Unit spacing: only adjacent pairs are within 1.5.
	want := [][2]int{{0, 1}, {1, 2}, {2, 3}}
	if len(edges) != len(want) {
		t.Fatalf("edges = %v, want %v", edges, want)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, edges[i], want[i])
		}
	}

	t.Run("cap respected", func(t *testing.T) {
		capped := DistanceEdges(c, 10, 2)
		if len(capped) != 2 {
			t.Errorf("got %d edges, want cap of 2", len(capped))
		}
	})
}
