package extractor

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"neuroconnect/internal/models"
)

// tableHeader is the authoritative column order of the coordinate CSV.
var tableHeader = []string{
	"roi",
	"start_x", "start_y", "start_z",
	"end_x", "end_y", "end_z",
	"centroid_x", "centroid_y", "centroid_z",
}

// WriteCSV writes the coordinate table in the jhu_coordinates.csv format.
// Floats use the shortest round-trippable representation, so identical
// tables serialize to identical bytes.
func WriteCSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableHeader); err != nil {
		return fmt.Errorf("writing coordinate header: %w", err)
	}
	for _, rec := range table.Records {
		row := []string{
			rec.Label,
			fmtCoord(rec.Start.X), fmtCoord(rec.Start.Y), fmtCoord(rec.Start.Z),
			fmtCoord(rec.End.X), fmtCoord(rec.End.Y), fmtCoord(rec.End.Z),
			fmtCoord(rec.Centroid.X), fmtCoord(rec.Centroid.Y), fmtCoord(rec.Centroid.Z),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing coordinate row for %s: %w", rec.Label, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadCSV parses a coordinate table previously written by WriteCSV.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading coordinate header: %w", err)
	}
	if len(header) != len(tableHeader) {
		return nil, fmt.Errorf("coordinate CSV has %d columns, expected %d", len(header), len(tableHeader))
	}
	for i, name := range tableHeader {
		if header[i] != name {
			return nil, fmt.Errorf("coordinate CSV column %d is %q, expected %q", i, header[i], name)
		}
	}

	table := &Table{}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading coordinate row: %w", err)
		}

		vals := make([]float64, 9)
		for i := 0; i < 9; i++ {
			v, err := strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("tract %s: bad %s value %q: %w", row[0], tableHeader[i+1], row[i+1], err)
			}
			vals[i] = v
		}
		table.Records = append(table.Records, models.TractRecord{
			Label:    row[0],
			Start:    models.Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
			End:      models.Vec3{X: vals[3], Y: vals[4], Z: vals[5]},
			Centroid: models.Vec3{X: vals[6], Y: vals[7], Z: vals[8]},
		})
	}
	return table, nil
}

// SaveTableFile writes the table to path.
func SaveTableFile(path string, table *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating coordinate file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, table)
}

// LoadTableFile reads a coordinate table from path.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening coordinate file: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}
