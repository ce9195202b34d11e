// Package extractor computes representative start/end/centroid coordinates
// for labeled regions of an atlas volume and assembles them into the tract
// coordinate table used by the visualization pipeline.
//
// For each region the voxel cloud is reduced to its principal axis via
// eigen-decomposition of the centered covariance; the extrema of the voxel
// projections onto that axis become the start and end anchors. Because
// eigenvectors are sign-ambiguous, the anchors are canonicalized so the end
// point has the larger value along the dominant physical axis, making
// repeated extractions byte-identical.
package extractor

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"neuroconnect/internal/models"
)

// ErrEmptyRegion is returned when a region id has no voxels in the atlas.
var ErrEmptyRegion = errors.New("region has no voxels")

// degenerateEps bounds eigenvalue comparisons: below it the covariance is
// treated as having no usable principal axis.
const degenerateEps = 1e-9

// Extract computes the start, end and centroid coordinates for one region
// of the volume. It is a pure function of its inputs.
func Extract(vol *models.LabeledVolume, regionID int) (*models.RegionExtract, error) {
	voxels := collectVoxels(vol, int32(regionID))
	if len(voxels) == 0 {
		return nil, ErrEmptyRegion
	}

	centroid := meanPoint(voxels)
	res := &models.RegionExtract{
		RegionID: regionID,
		Centroid: vol.Affine.Apply(centroid),
	}

	axis, ok := principalAxis(voxels, centroid)
	if !ok {
		// Single voxel or isotropic cluster: no direction to speak of.
		res.Start = res.Centroid
		res.End = res.Centroid
		return res, nil
	}

	startVox, endVox := projectionExtrema(voxels, centroid, axis)
	res.Start = vol.Affine.Apply(startVox)
	res.End = vol.Affine.Apply(endVox)
	canonicalize(res)
	return res, nil
}

// collectVoxels gathers the index triples labelled with the region id.
// The scan order (x fastest, then y, then z) is fixed so that projection
// tie-breaks are deterministic.
func collectVoxels(vol *models.LabeledVolume, label int32) []models.Vec3 {
	var voxels []models.Vec3
	for z := 0; z < vol.Nz; z++ {
		for y := 0; y < vol.Ny; y++ {
			for x := 0; x < vol.Nx; x++ {
				if vol.At(x, y, z) == label {
					voxels = append(voxels, models.Vec3{X: float64(x), Y: float64(y), Z: float64(z)})
				}
			}
		}
	}
	return voxels
}

func meanPoint(pts []models.Vec3) models.Vec3 {
	var sum models.Vec3
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(pts)))
}

// principalAxis returns the unit eigenvector of the largest eigenvalue of
// the centered covariance. ok is false when the cloud has no dominant
// direction (single voxel, identical points, or an isotropic cluster
// whose two largest eigenvalues coincide).
func principalAxis(pts []models.Vec3, centroid models.Vec3) (models.Vec3, bool) {
	if len(pts) < 2 {
		return models.Vec3{}, false
	}

	var cov [3][3]float64
	for _, p := range pts {
		d := [3]float64{p.X - centroid.X, p.Y - centroid.Y, p.Z - centroid.Z}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				cov[i][j] += d[i] * d[j]
			}
		}
	}
	n := float64(len(pts))
	sym := mat.NewSymDense(3, []float64{
		cov[0][0] / n, cov[0][1] / n, cov[0][2] / n,
		cov[1][0] / n, cov[1][1] / n, cov[1][2] / n,
		cov[2][0] / n, cov[2][1] / n, cov[2][2] / n,
	})

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return models.Vec3{}, false
	}

	// gonum orders eigenvalues ascending; the principal axis is the last.
	vals := eig.Values(nil)
	if vals[2] < degenerateEps || vals[2]-vals[1] < degenerateEps {
		return models.Vec3{}, false
	}

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	return models.Vec3{X: vecs.At(0, 2), Y: vecs.At(1, 2), Z: vecs.At(2, 2)}, true
}

// projectionExtrema returns the actual voxels with the minimum and maximum
// projection onto the axis. Strict comparisons keep the first occurrence,
// which together with the fixed scan order makes ties deterministic.
func projectionExtrema(pts []models.Vec3, centroid, axis models.Vec3) (lo, hi models.Vec3) {
	minProj, maxProj := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		proj := (p.X-centroid.X)*axis.X + (p.Y-centroid.Y)*axis.Y + (p.Z-centroid.Z)*axis.Z
		if proj < minProj {
			minProj = proj
			lo = p
		}
		if proj > maxProj {
			maxProj = proj
			hi = p
		}
	}
	return lo, hi
}

// canonicalize fixes the arbitrary eigenvector sign: the end anchor must
// have the larger coordinate along the dominant axis of the start-to-end
// displacement in millimetre space.
func canonicalize(res *models.RegionExtract) {
	dx := res.End.X - res.Start.X
	dy := res.End.Y - res.Start.Y
	dz := res.End.Z - res.Start.Z

	dominant := dx
	if math.Abs(dy) > math.Abs(dominant) {
		dominant = dy
	}
	if math.Abs(dz) > math.Abs(dominant) {
		dominant = dz
	}
	if dominant < 0 {
		res.Start, res.End = res.End, res.Start
	}
}
