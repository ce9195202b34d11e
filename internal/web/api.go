package web

import (
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"neuroconnect/internal/models"
	"neuroconnect/pkg/metrics"
	"neuroconnect/pkg/network"
	"neuroconnect/pkg/visualization"
)

// summaryJSON is the wire form of a group summary. Missing means are
// null, never 0.
type summaryJSON struct {
	Tract string   `json:"tract"`
	Group string   `json:"group"`
	Mean  *float64 `json:"mean"`
	N     int      `json:"n"`
}

func toSummaryJSON(s models.GroupSummary) summaryJSON {
	out := summaryJSON{Tract: s.Tract, Group: s.Group, N: s.N}
	if !s.Missing() {
		mean := s.Mean
		out.Mean = &mean
	}
	return out
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding JSON response: %v", err)
	}
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prep, err := s.prepare()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="group_summary.csv"`)
		if err := metrics.WriteSummaryCSV(w, prep, s.cfg.Study.Metric); err != nil {
			log.Printf("writing summary CSV: %v", err)
		}
		return
	}

	out := struct {
		Metric        string        `json:"metric"`
		Groups        []string      `json:"groups"`
		Unmatched     int           `json:"unmatched"`
		ExcludedGroup int           `json:"excluded_group"`
		Summaries     []summaryJSON `json:"summaries"`
	}{
		Metric:        s.cfg.Study.Metric,
		Groups:        prep.Groups,
		Unmatched:     prep.Unmatched,
		ExcludedGroup: prep.ExcludedGroup,
	}
	for _, sum := range prep.Summaries {
		out.Summaries = append(out.Summaries, toSummaryJSON(sum))
	}
	s.writeJSON(w, out)
}

func (s *Server) handleAPINetwork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	prep, err := s.prepare()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var net *network.Network
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", string(network.ModeGroup):
		group := r.URL.Query().Get("group")
		if group == "" && len(s.cfg.Study.Groups) > 0 {
			group = s.cfg.Study.Groups[0]
		}
		if !s.validGroup(group) {
			http.Error(w, fmt.Sprintf("unknown group %q", group), http.StatusBadRequest)
			return
		}
		net = network.BuildGroup(s.table, prep, group)
	case string(network.ModeDiff):
		baseline, comparison, err := s.groupPair()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		dt, err := network.ParseDiffType(r.URL.Query().Get("type"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		net = network.BuildDiff(s.table, prep, baseline, comparison, dt)
	default:
		http.Error(w, fmt.Sprintf("unknown mode %q (group, diff)", mode), http.StatusBadRequest)
		return
	}

	s.writeJSON(w, net)
}

// compareRow is one row of the comparison table: per-tract means of both
// groups, their difference, and the tract's endpoint coordinates.
type compareRow struct {
	Tract    string      `json:"tract"`
	MeanA    *float64    `json:"mean_a"`
	NA       int         `json:"n_a"`
	MeanB    *float64    `json:"mean_b"`
	NB       int         `json:"n_b"`
	Diff     *float64    `json:"diff"` // mean_b - mean_a
	Start    models.Vec3 `json:"start"`
	End      models.Vec3 `json:"end"`
	Centroid models.Vec3 `json:"centroid"`
}

func (s *Server) handleAPICompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	baseline, comparison, err := s.groupPair()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	prep, err := s.prepare()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var rows []compareRow
	for _, rec := range s.table.Records {
		row := compareRow{Tract: rec.Label, Start: rec.Start, End: rec.End, Centroid: rec.Centroid}
		a, okA := prep.Summary(rec.Label, baseline)
		b, okB := prep.Summary(rec.Label, comparison)
		if okA {
			row.NA = a.N
			if !a.Missing() {
				mean := a.Mean
				row.MeanA = &mean
			}
		}
		if okB {
			row.NB = b.N
			if !b.Missing() {
				mean := b.Mean
				row.MeanB = &mean
			}
		}
		if row.MeanA != nil && row.MeanB != nil {
			diff := *row.MeanB - *row.MeanA
			if !math.IsNaN(diff) {
				row.Diff = &diff
			}
		}
		rows = append(rows, row)
	}

	s.writeJSON(w, struct {
		GroupA string       `json:"group_a"`
		GroupB string       `json:"group_b"`
		Rows   []compareRow `json:"rows"`
	}{baseline, comparison, rows})
}

func (s *Server) handleAPIDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	infos, err := s.db.ListDatasets()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, infos)
}

func (s *Server) handleAtlasSlice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.atlas == nil {
		http.Error(w, "no atlas volume loaded", http.StatusNotFound)
		return
	}

	axis := r.URL.Query().Get("axis")
	if axis == "" {
		axis = "z"
	}
	// The default position is the midpoint of the requested axis.
	var pos int
	switch strings.ToLower(axis) {
	case "x":
		pos = s.atlas.Nx / 2
	case "y":
		pos = s.atlas.Ny / 2
	default:
		pos = s.atlas.Nz / 2
	}
	if v := r.URL.Query().Get("pos"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid position %q", v), http.StatusBadRequest)
			return
		}
		pos = n
	}

	viewer := visualization.NewSliceViewer(s.atlas)
	img, err := viewer.ExtractSlice(axis, pos)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("encoding slice image: %v", err)
	}
}
