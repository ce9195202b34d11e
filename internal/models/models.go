package models

// Vec3 is a point or displacement in 3D space.
// Coordinates are in millimetres (MNI space) unless stated otherwise.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum of v and w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Affine is a 4x4 homogeneous transform mapping voxel indices to
// physical millimetre coordinates.
type Affine [4][4]float64

// Identity returns the identity affine.
func Identity() Affine {
	var a Affine
	for i := 0; i < 4; i++ {
		a[i][i] = 1
	}
	return a
}

// Apply transforms a voxel-space point to millimetre space.
func (a Affine) Apply(v Vec3) Vec3 {
	return Vec3{
		X: a[0][0]*v.X + a[0][1]*v.Y + a[0][2]*v.Z + a[0][3],
		Y: a[1][0]*v.X + a[1][1]*v.Y + a[1][2]*v.Z + a[1][3],
		Z: a[2][0]*v.X + a[2][1]*v.Y + a[2][2]*v.Z + a[2][3],
	}
}

// LabeledVolume is a dense 3D grid of integer region labels with an
// attached voxel-to-millimetre affine. It is loaded once from an atlas
// file and never mutated afterwards.
type LabeledVolume struct {
	// Data holds the labels as a 1D array with x varying fastest,
	// then y, then z (NIfTI storage order).
	Data []int32

	// Nx, Ny, Nz are the grid dimensions in voxels.
	Nx, Ny, Nz int

	// Affine maps voxel indices to millimetre coordinates.
	Affine Affine
}

// At returns the label at voxel (x, y, z). Indices must be in range.
func (v *LabeledVolume) At(x, y, z int) int32 {
	return v.Data[x+v.Nx*(y+v.Ny*z)]
}

// MaxLabel returns the largest label value present in the volume.
func (v *LabeledVolume) MaxLabel() int32 {
	var max int32
	for _, l := range v.Data {
		if l > max {
			max = l
		}
	}
	return max
}

// RegionExtract holds the representative coordinates computed for one
// labeled region, all in millimetre space.
type RegionExtract struct {
	RegionID int
	Start    Vec3
	End      Vec3
	Centroid Vec3
}

// TractRecord is one row of the tract coordinate table: a named tract
// with its start, end and centroid coordinates. Composite tracts derived
// from base tracts use the same representation.
type TractRecord struct {
	Label    string
	Start    Vec3
	End      Vec3
	Centroid Vec3
}

// GroupSummary is the aggregated metric for one (tract, group) pair.
// A summary with N == 0 carries no mean; consumers must treat it as
// missing rather than zero.
type GroupSummary struct {
	Tract string
	Group string
	Mean  float64
	N     int
}

// Missing reports whether the summary has no valid subjects and therefore
// no usable mean.
func (s GroupSummary) Missing() bool {
	return s.N == 0
}
