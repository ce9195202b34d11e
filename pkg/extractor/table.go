package extractor

import (
	"fmt"
	"log"
	"strings"

	"neuroconnect/internal/models"
)

// ConfigurationError reports a composite tract whose required base tracts
// were skipped during extraction. Composites never fall back to NaN
// coordinates; a missing dependency aborts the build.
type ConfigurationError struct {
	Composite string
	Missing   []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("composite tract %s: missing base tract(s) %s",
		e.Composite, strings.Join(e.Missing, ", "))
}

// Table is the assembled tract coordinate table: all non-empty base
// tracts followed by the composite tracts, plus the labels of any base
// regions that had no voxels in the atlas.
type Table struct {
	Records []models.TractRecord
	Skipped []string
}

// Lookup returns the record with the given label, or false.
func (t *Table) Lookup(label string) (models.TractRecord, bool) {
	for _, rec := range t.Records {
		if rec.Label == label {
			return rec, true
		}
	}
	return models.TractRecord{}, false
}

// BuildTable extracts every base tract from the volume and derives the
// composite tracts. Empty base regions are logged and skipped; a composite
// whose dependencies are missing aborts with a ConfigurationError.
func BuildTable(vol *models.LabeledVolume) (*Table, error) {
	table := &Table{}

	for _, bt := range BaseTracts {
		res, err := Extract(vol, bt.RegionID)
		if err == ErrEmptyRegion {
			log.Printf("tract %s (region %d): no voxels, skipping", bt.Label, bt.RegionID)
			table.Skipped = append(table.Skipped, bt.Label)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("extracting tract %s: %w", bt.Label, err)
		}
		table.Records = append(table.Records, models.TractRecord{
			Label:    bt.Label,
			Start:    res.Start,
			End:      res.End,
			Centroid: res.Centroid,
		})
	}

	if err := appendComposites(table); err != nil {
		return nil, err
	}
	return table, nil
}

// appendComposites derives BCC, CC, IC and CR from the base records,
// in that order (CC depends on BCC).
func appendComposites(table *Table) error {
	gcc, haveGCC := table.Lookup("GCC")
	scc, haveSCC := table.Lookup("SCC")

	var missingCC []string
	if !haveGCC {
		missingCC = append(missingCC, "GCC")
	}
	if !haveSCC {
		missingCC = append(missingCC, "SCC")
	}
	if len(missingCC) > 0 {
		return &ConfigurationError{Composite: "BCC", Missing: missingCC}
	}

	// Body of the corpus callosum: midpoint of genu and splenium, pinned
	// to the midline (x = 0).
	bcc := models.TractRecord{
		Label:    "BCC",
		Start:    midlineMidpoint(gcc.Start, scc.Start),
		End:      midlineMidpoint(gcc.End, scc.End),
		Centroid: midlineMidpoint(gcc.Centroid, scc.Centroid),
	}
	table.Records = append(table.Records, bcc)

	// Full corpus callosum: average of genu, body and splenium.
	cc := models.TractRecord{
		Label:    "CC",
		Start:    midlineMean(gcc.Start, bcc.Start, scc.Start),
		End:      midlineMean(gcc.End, bcc.End, scc.End),
		Centroid: midlineMean(gcc.Centroid, bcc.Centroid, scc.Centroid),
	}
	table.Records = append(table.Records, cc)

	ic, err := bilateralAverage(table, "IC", internalCapsuleTracts)
	if err != nil {
		return err
	}
	table.Records = append(table.Records, ic)

	cr, err := bilateralAverage(table, "CR", coronaRadiataTracts)
	if err != nil {
		return err
	}
	table.Records = append(table.Records, cr)

	return nil
}

func midlineMidpoint(a, b models.Vec3) models.Vec3 {
	return models.Vec3{X: 0, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}

func midlineMean(a, b, c models.Vec3) models.Vec3 {
	return models.Vec3{X: 0, Y: (a.Y + b.Y + c.Y) / 3, Z: (a.Z + b.Z + c.Z) / 3}
}

// bilateralAverage averages the coordinates of the named sub-tracts. It
// tolerates skipped sub-tracts down to minBilateral present; below that
// the composite is considered misconfigured.
func bilateralAverage(table *Table, composite string, labels []string) (models.TractRecord, error) {
	var present []models.TractRecord
	var missing []string
	for _, label := range labels {
		if rec, ok := table.Lookup(label); ok {
			present = append(present, rec)
		} else {
			missing = append(missing, label)
		}
	}
	if len(present) < minBilateral {
		return models.TractRecord{}, &ConfigurationError{Composite: composite, Missing: missing}
	}

	var start, end, centroid models.Vec3
	for _, rec := range present {
		start = start.Add(rec.Start)
		end = end.Add(rec.End)
		centroid = centroid.Add(rec.Centroid)
	}
	inv := 1 / float64(len(present))
	return models.TractRecord{
		Label:    composite,
		Start:    start.Scale(inv),
		End:      end.Scale(inv),
		Centroid: centroid.Scale(inv),
	}, nil
}
