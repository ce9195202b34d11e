package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteSummaryCSV writes the group summary in the export format:
// tract_label, one <metric>_mean_<group> column per group, then one
// n_<group> count column per group. Missing means are written as empty
// cells, never as zero.
func WriteSummaryCSV(w io.Writer, p *Prepared, metric string) error {
	cw := csv.NewWriter(w)

	header := []string{"tract_label"}
	for _, g := range p.Groups {
		header = append(header, fmt.Sprintf("%s_mean_%s", metric, g))
	}
	for _, g := range p.Groups {
		header = append(header, "n_"+g)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}

	for _, tract := range p.Tracts {
		row := []string{tract}
		for _, g := range p.Groups {
			s, ok := p.Summary(tract, g)
			if !ok || s.Missing() {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(s.Mean, 'g', -1, 64))
		}
		for _, g := range p.Groups {
			s, _ := p.Summary(tract, g)
			row = append(row, strconv.Itoa(s.N))
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing summary row for %s: %w", tract, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
