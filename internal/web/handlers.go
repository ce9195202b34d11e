package web

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"

	"neuroconnect/pkg/dataset"
	"neuroconnect/pkg/metrics"
	"neuroconnect/pkg/network"
	"neuroconnect/pkg/scale"
	"neuroconnect/pkg/visualization"
)

const homeHTML = `<!DOCTYPE html>
<html>
<head><title>NeuroConnect</title></head>
<body>
<h1>NeuroConnect</h1>
<p>Tract coordinate table: %d tracts loaded.</p>
<ul>
  <li><a href="/view/group?group=%s">Single group view</a></li>
  <li><a href="/view/compare">Side-by-side comparison</a></li>
  <li><a href="/view/diff">Group differences</a></li>
  <li><a href="/view/custom?dataset=demo">Demo point cloud</a></li>
  <li><a href="/api/summary">Group summary (JSON)</a> | <a href="/api/summary?format=csv">CSV export</a></li>
  <li><a href="/api/compare">Comparison table (JSON)</a></li>
</ul>
<h2>Upload a custom dataset</h2>
<p>CSV with required columns x, y, z and optional id, group, value.</p>
<form action="/upload" method="post" enctype="multipart/form-data">
  <input type="file" name="dataset" accept=".csv">
  <input type="submit" value="Upload">
</form>
</body>
</html>`

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	defaultGroup := ""
	if len(s.cfg.Study.Groups) > 0 {
		defaultGroup = s.cfg.Study.Groups[0]
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, homeHTML, len(s.table.Records), url.QueryEscape(defaultGroup))
}

func (s *Server) handleViewGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	group := r.URL.Query().Get("group")
	if group == "" && len(s.cfg.Study.Groups) > 0 {
		group = s.cfg.Study.Groups[0]
	}
	if !s.validGroup(group) {
		http.Error(w, fmt.Sprintf("unknown group %q (configured: %s)",
			group, strings.Join(s.cfg.Study.Groups, ", ")), http.StatusBadRequest)
		return
	}

	prep, err := s.prepare()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	fig := s.groupFigure(prep, group)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fig.Render(w); err != nil {
		log.Printf("rendering group figure: %v", err)
	}
}

func (s *Server) handleViewCompare(w http.ResponseWriter, r *http.Request) {
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

	left := s.groupFigure(prep, baseline)
	right := s.groupFigure(prep, comparison)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := visualization.RenderSideBySide(w, left, right); err != nil {
		log.Printf("rendering comparison page: %v", err)
	}
}

func (s *Server) handleViewDiff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
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

	prep, err := s.prepare()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	net := network.BuildDiff(s.table, prep, baseline, comparison, dt)

	// The difference color range is symmetric about zero so that "no
	// difference" always lands on the midpoint color. visual.diffRange is
	// in raw metric units, so it only applies to raw differences.
	var sc scale.Linear
	if dt == network.DiffRaw && s.cfg.Visual.DiffRange > 0 {
		sc = scale.Fixed(-s.cfg.Visual.DiffRange, s.cfg.Visual.DiffRange, 0, 1)
	} else {
		sc = scale.SymmetricAboutZero(net.Weights(), 0, 1)
	}

	subtitle := fmt.Sprintf("%s: mean(%s) - mean(%s); negative = lower in %s",
		s.cfg.Study.Metric, comparison, baseline, comparison)
	if dt == network.DiffPercent {
		subtitle = fmt.Sprintf("%s: (mean(%s) - mean(%s)) / mean(%s) x 100; negative = lower in %s",
			s.cfg.Study.Metric, comparison, baseline, comparison, comparison)
	}

	fig := visualization.NetworkFigure(net, sc, s.figureOptions(visualization.FigureOptions{
		Title:    "Group differences",
		Subtitle: subtitle,
		Colors:   s.cfg.Visual.DivergingColors,
	}))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fig.Render(w); err != nil {
		log.Printf("rendering difference figure: %v", err)
	}
}

func (s *Server) handleViewCustom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	id := q.Get("dataset")

	var cloud *dataset.Cloud
	name := "demo"
	switch id {
	case "", "demo":
		cloud = dataset.GenerateDemo(s.cfg.Demo.Nodes, s.cfg.Demo.Seed)
	default:
		var err error
		cloud, name, err = s.db.LoadDataset(id)
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, fmt.Sprintf("unknown dataset %q", id), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	edges, err := cloudEdges(cloud, q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sc := scale.FromObserved(cloud.Values(), 0, 1)
	fig := visualization.CloudFigure(cloud, edges, sc, s.figureOptions(visualization.FigureOptions{
		Title:    "Custom dataset",
		Subtitle: fmt.Sprintf("%s (%d points)", name, len(cloud.Points)),
		Colors:   s.cfg.Visual.SequentialColors,
	}))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fig.Render(w); err != nil {
		log.Printf("rendering custom figure: %v", err)
	}
}

// cloudEdges builds proximity edges from the edges/k/maxdist/max query
// parameters. Mode "off" (or absent) yields no edges.
func cloudEdges(cloud *dataset.Cloud, q url.Values) ([][2]int, error) {
	maxEdges := 5000
	if v := q.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid max edge cap %q", v)
		}
		maxEdges = n
	}

	switch mode := q.Get("edges"); mode {
	case "", "off":
		return nil, nil
	case "knn":
		k := 4
		if v := q.Get("k"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("invalid k %q", v)
			}
			k = n
		}
		return dataset.KNNEdges(cloud, k, maxEdges), nil
	case "distance":
		maxDist := 25.0
		if v := q.Get("maxdist"); v != "" {
			d, err := strconv.ParseFloat(v, 64)
			if err != nil || d <= 0 {
				return nil, fmt.Errorf("invalid maxdist %q", v)
			}
			maxDist = d
		}
		return dataset.DistanceEdges(cloud, maxDist, maxEdges), nil
	default:
		return nil, fmt.Errorf("unknown edges mode %q (off, knn, distance)", mode)
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	file, header, err := r.FormFile("dataset")
	if err != nil {
		http.Error(w, "missing uploaded file field \"dataset\"", http.StatusBadRequest)
		return
	}
	defer file.Close()

	cloud, err := dataset.ParseCSV(file)
	var verr *dataset.ValidationError
	if errors.As(err, &verr) {
		// Validation failure: the render is never invoked.
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.db.SaveDataset(header.Filename, cloud)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	log.Printf("stored dataset %s (%s, %d points)", id, header.Filename, len(cloud.Points))
	http.Redirect(w, r, "/view/custom?dataset="+url.QueryEscape(id), http.StatusSeeOther)
}

// groupFigure builds the single-group figure for one diagnosis group.
func (s *Server) groupFigure(prep *metrics.Prepared, group string) *charts.Scatter3D {
	net := network.BuildGroup(s.table, prep, group)
	sc := scale.FromObserved(net.Weights(), 0, 1)
	return visualization.NetworkFigure(net, sc, s.figureOptions(visualization.FigureOptions{
		Title:    group,
		Subtitle: fmt.Sprintf("mean %s per tract", s.cfg.Study.Metric),
		Colors:   s.cfg.Visual.SequentialColors,
	}))
}

// figureOptions applies the configured node size bounds to figure options.
func (s *Server) figureOptions(opt visualization.FigureOptions) visualization.FigureOptions {
	opt.NodeSizeMin = s.cfg.Visual.NodeSizeMin
	opt.NodeSizeMax = s.cfg.Visual.NodeSizeMax
	return opt
}
