// Package metrics merges per-subject diagnosis labels with per-subject
// tract metrics and aggregates them to group-level means. Tracts with no
// valid subjects in a group keep a missing mean (NaN, count 0); downstream
// consumers must never read a missing mean as zero.
package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"neuroconnect/internal/models"
)

// Default file and column names, matching the study export format.
const (
	DiagnosisFile = "diagnosis.csv"
	MetricsFile   = "DTI.csv"

	DefaultIDColumn    = "LONIUID"
	DefaultGroupColumn = "Group"
)

// SubjectRow holds one subject's tract metric values after loading.
// Tracts with missing or unparseable values are absent from Values.
type SubjectRow struct {
	ParticipantID string
	Group         string
	Values        map[string]float64
}

// MetricTable is the parsed per-subject metrics file.
type MetricTable struct {
	Tracts []string // tract labels in file column order
	Rows   []SubjectRow
}

// Prepared is the result of joining, filtering and aggregating.
type Prepared struct {
	Groups    []string
	Tracts    []string
	Summaries []models.GroupSummary

	// Unmatched counts subjects dropped by the inner join (present in
	// only one of the two input files); ExcludedGroup counts subjects
	// whose diagnosis is outside the configured group set.
	Unmatched     int
	ExcludedGroup int
}

// Summary returns the aggregate for a (tract, group) pair.
func (p *Prepared) Summary(tract, group string) (models.GroupSummary, bool) {
	for _, s := range p.Summaries {
		if s.Tract == tract && s.Group == group {
			return s, true
		}
	}
	return models.GroupSummary{}, false
}

// LoadDiagnosis parses the diagnosis CSV into a participant → group map.
// Rows with an empty group label are dropped.
func LoadDiagnosis(r io.Reader, idCol, groupCol string) (map[string]string, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading diagnosis header: %w", err)
	}

	idIdx, groupIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case idCol:
			idIdx = i
		case groupCol:
			groupIdx = i
		}
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("diagnosis file is missing the %q column", idCol)
	}
	if groupIdx < 0 {
		return nil, fmt.Errorf("diagnosis file is missing the %q column", groupCol)
	}

	groups := make(map[string]string)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading diagnosis row: %w", err)
		}
		id := strings.TrimSpace(row[idIdx])
		group := strings.TrimSpace(row[groupIdx])
		if id == "" || group == "" {
			continue
		}
		groups[id] = group
	}
	return groups, nil
}

// LoadMetrics parses the per-subject metrics CSV. When metricPrefix is
// non-empty (e.g. "FA"), only columns named metricPrefix_<tract> are used
// and the prefix is stripped from the tract label; otherwise every column
// except the id column is treated as a tract.
func LoadMetrics(r io.Reader, idCol, metricPrefix string) (*MetricTable, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading metrics header: %w", err)
	}

	idIdx := -1
	type tractCol struct {
		idx   int
		label string
	}
	var cols []tractCol
	prefix := ""
	if metricPrefix != "" {
		prefix = metricPrefix + "_"
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == idCol {
			idIdx = i
			continue
		}
		if prefix != "" {
			if strings.HasPrefix(name, prefix) {
				cols = append(cols, tractCol{i, strings.TrimPrefix(name, prefix)})
			}
			continue
		}
		cols = append(cols, tractCol{i, name})
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("metrics file is missing the %q column", idCol)
	}
	if len(cols) == 0 {
		if prefix != "" {
			return nil, fmt.Errorf("metrics file has no %s* columns", prefix)
		}
		return nil, fmt.Errorf("metrics file has no tract columns")
	}

	table := &MetricTable{}
	for _, c := range cols {
		table.Tracts = append(table.Tracts, c.label)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading metrics row: %w", err)
		}
		id := strings.TrimSpace(row[idIdx])
		if id == "" {
			continue
		}
		sr := SubjectRow{ParticipantID: id, Values: make(map[string]float64, len(cols))}
		for _, c := range cols {
			if v, ok := parseMetric(row[c.idx]); ok {
				sr.Values[c.label] = v
			}
		}
		table.Rows = append(table.Rows, sr)
	}
	return table, nil
}

// parseMetric interprets empty cells and NA/NaN markers as missing.
func parseMetric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch strings.ToUpper(s) {
	case "NA", "NAN", "N/A":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Prepare joins metrics to diagnosis labels (inner join on participant
// id), keeps only the configured groups, and computes per (tract, group)
// means with subject counts.
func Prepare(diagnosis map[string]string, table *MetricTable, groups []string) *Prepared {
	wanted := make(map[string]bool, len(groups))
	for _, g := range groups {
		wanted[g] = true
	}

	p := &Prepared{Groups: groups, Tracts: table.Tracts}

	matched := make(map[string]int) // participants in both inputs
	var joined []SubjectRow
	for _, row := range table.Rows {
		group, ok := diagnosis[row.ParticipantID]
		if !ok {
			p.Unmatched++
			continue
		}
		matched[row.ParticipantID]++
		if !wanted[group] {
			p.ExcludedGroup++
			continue
		}
		row.Group = group
		joined = append(joined, row)
	}
	// Diagnosis rows never joined to a metrics row also count as dropped.
	for id := range diagnosis {
		if matched[id] == 0 {
			p.Unmatched++
		}
	}

	for _, tract := range table.Tracts {
		for _, group := range groups {
			sum, n := 0.0, 0
			for _, row := range joined {
				if row.Group != group {
					continue
				}
				if v, ok := row.Values[tract]; ok {
					sum += v
					n++
				}
			}
			s := models.GroupSummary{Tract: tract, Group: group, N: n, Mean: math.NaN()}
			if n > 0 {
				s.Mean = sum / float64(n)
			}
			p.Summaries = append(p.Summaries, s)
		}
	}
	return p
}

// LoadDataDir loads diagnosis.csv and DTI.csv from dir and prepares the
// group summaries. A missing file is a terminal error naming the file.
func LoadDataDir(dir, idCol, groupCol, metricPrefix string, groups []string) (*Prepared, error) {
	diagPath := filepath.Join(dir, DiagnosisFile)
	metricsPath := filepath.Join(dir, MetricsFile)

	df, err := os.Open(diagPath)
	if err != nil {
		return nil, fmt.Errorf("required input %s: %w", DiagnosisFile, err)
	}
	defer df.Close()
	diagnosis, err := LoadDiagnosis(df, idCol, groupCol)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", DiagnosisFile, err)
	}

	mf, err := os.Open(metricsPath)
	if err != nil {
		return nil, fmt.Errorf("required input %s: %w", MetricsFile, err)
	}
	defer mf.Close()
	table, err := LoadMetrics(mf, idCol, metricPrefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MetricsFile, err)
	}

	return Prepare(diagnosis, table, groups), nil
}
