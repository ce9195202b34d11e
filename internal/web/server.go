// Package web exposes the visualization pipeline over HTTP. Each render
// request runs the pipeline synchronously: load metrics, build the
// network, scale, and write the figure. The tract coordinate table is
// loaded once at startup and shared read-only across requests; group
// summaries and networks are rebuilt per request.
package web

import (
	"fmt"
	"net/http"

	"neuroconnect/internal/models"
	"neuroconnect/internal/store"
	"neuroconnect/pkg/config"
	"neuroconnect/pkg/extractor"
	"neuroconnect/pkg/metrics"
)

type Server struct {
	cfg   *config.Config
	table *extractor.Table
	db    *store.Store

	// atlas is optional; when nil the slice preview endpoints report
	// that no atlas is loaded instead of failing at startup.
	atlas *models.LabeledVolume
}

// NewServer creates a server over an immutable coordinate table. atlas
// may be nil.
func NewServer(cfg *config.Config, table *extractor.Table, db *store.Store, atlas *models.LabeledVolume) *Server {
	return &Server{cfg: cfg, table: table, db: db, atlas: atlas}
}

// Table returns the read-only tract coordinate table.
func (s *Server) Table() *extractor.Table {
	return s.table
}

// ServeMux wires up all routes.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/view/group", s.handleViewGroup)
	mux.HandleFunc("/view/compare", s.handleViewCompare)
	mux.HandleFunc("/view/diff", s.handleViewDiff)
	mux.HandleFunc("/view/custom", s.handleViewCustom)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/api/summary", s.handleAPISummary)
	mux.HandleFunc("/api/network", s.handleAPINetwork)
	mux.HandleFunc("/api/compare", s.handleAPICompare)
	mux.HandleFunc("/api/datasets", s.handleAPIDatasets)
	mux.HandleFunc("/atlas/slice", s.handleAtlasSlice)
	mux.HandleFunc("/", s.handleHome)
	return mux
}

// prepare runs metric preparation against the current data directory.
// It is called per render so edits to the input files take effect on the
// next request.
func (s *Server) prepare() (*metrics.Prepared, error) {
	return metrics.LoadDataDir(
		s.cfg.Data.Dir,
		s.cfg.Data.IDColumn,
		s.cfg.Data.GroupColumn,
		s.cfg.Study.Metric,
		s.cfg.Study.Groups,
	)
}

// validGroup reports whether the group is one of the configured groups.
func (s *Server) validGroup(group string) bool {
	for _, g := range s.cfg.Study.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// groupPair returns the baseline and comparison groups for difference
// mode: weight = mean(comparison) - mean(baseline).
func (s *Server) groupPair() (baseline, comparison string, err error) {
	if len(s.cfg.Study.Groups) < 2 {
		return "", "", fmt.Errorf("difference mode needs two configured groups, have %d", len(s.cfg.Study.Groups))
	}
	return s.cfg.Study.Groups[0], s.cfg.Study.Groups[1], nil
}
