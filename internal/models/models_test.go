package models

import (
	"math"
	"testing"
)

func TestVec3(t *testing.T) {
	v := Vec3{1, 2, 3}
	if got := v.Add(Vec3{10, 20, 30}); got != (Vec3{11, 22, 33}) {
		t.Errorf("Add = %+v", got)
	}
	if got := v.Scale(0.5); got != (Vec3{0.5, 1, 1.5}) {
		t.Errorf("Scale = %+v", got)
	}
}

func TestAffineApply(t *testing.T) {
	if got := Identity().Apply(Vec3{4, 5, 6}); got != (Vec3{4, 5, 6}) {
		t.Errorf("identity moved the point: %+v", got)
	}

	// 2mm MNI grid.
	a := Affine{
		{2, 0, 0, -90},
		{0, 2, 0, -126},
		{0, 0, 2, -72},
		{0, 0, 0, 1},
	}
	if got := a.Apply(Vec3{50, 60, 40}); got != (Vec3{10, -6, 8}) {
		t.Errorf("Apply = %+v, want (10, -6, 8)", got)
	}
}

func TestLabeledVolumeIndexing(t *testing.T) {
	vol := &LabeledVolume{Data: make([]int32, 2*3*4), Nx: 2, Ny: 3, Nz: 4}
	// x varies fastest, then y, then z.
	vol.Data[1+2*(2+3*3)] = 9
	if got := vol.At(1, 2, 3); got != 9 {
		t.Errorf("At(1,2,3) = %d, want 9", got)
	}
	if got := vol.At(0, 0, 0); got != 0 {
		t.Errorf("At(0,0,0) = %d, want 0", got)
	}
	if got := vol.MaxLabel(); got != 9 {
		t.Errorf("MaxLabel = %d, want 9", got)
	}
}

func TestGroupSummaryMissing(t *testing.T) {
	missing := GroupSummary{Tract: "GCC", Group: "AD", Mean: math.NaN(), N: 0}
	if !missing.Missing() {
		t.Error("N == 0 summary should be missing")
	}
	present := GroupSummary{Tract: "GCC", Group: "CN", Mean: 0.5, N: 10}
	if present.Missing() {
		t.Error("populated summary reported missing")
	}
}
