package scale

import (
	"math"
	"testing"
)

func TestApplyEndpoints(t *testing.T) {
	s := Fixed(0.2, 0.8, 6, 18)
	if got := s.Apply(0.2); got != 6 {
		t.Errorf("Apply(vmin) = %v, want 6", got)
	}
	if got := s.Apply(0.8); got != 18 {
		t.Errorf("Apply(vmax) = %v, want 18", got)
	}
	if got := s.Apply(0.5); got != 12 {
		t.Errorf("Apply(mid) = %v, want 12", got)
	}
}

func TestApplyClips(t *testing.T) {
	s := Fixed(0, 1, 0, 10)
	if got := s.Apply(-5); got != 0 {
		t.Errorf("below range maps to %v, want 0", got)
	}
	if got := s.Apply(99); got != 10 {
		t.Errorf("above range maps to %v, want 10", got)
	}
}

func TestApplyDegenerate(t *testing.T) {
	// All inputs map to the midpoint of the visual range when the data
	// range collapses.
	s := Fixed(0.5, 0.5, 6, 18)
	for _, v := range []float64{-1, 0.5, 100} {
		if got := s.Apply(v); got != 12 {
			t.Errorf("Apply(%v) = %v, want midpoint 12", v, got)
		}
	}
}

func TestFromObserved(t *testing.T) {
	s := FromObserved([]float64{0.3, math.NaN(), 0.7, 0.5}, 0, 1)
	if s.VMin != 0.3 || s.VMax != 0.7 {
		t.Errorf("observed range = [%v, %v], want [0.3, 0.7]", s.VMin, s.VMax)
	}

	t.Run("empty input is degenerate", func(t *testing.T) {
		s := FromObserved(nil, 0, 10)
		if got := s.Apply(3); got != 5 {
			t.Errorf("Apply = %v, want midpoint 5", got)
		}
	})
}

func TestSymmetricAboutZero(t *testing.T) {
	s := SymmetricAboutZero([]float64{-0.2, 0.05, 0.1}, 0, 1)
	if s.VMin != -0.2 || s.VMax != 0.2 {
		t.Errorf("range = [%v, %v], want [-0.2, 0.2]", s.VMin, s.VMax)
	}
	// Zero difference always lands on the midpoint color.
	if got := s.Apply(0); got != 0.5 {
		t.Errorf("Apply(0) = %v, want 0.5", got)
	}
}

func TestApplyAll(t *testing.T) {
	s := Fixed(0, 2, 0, 1)
	got := s.ApplyAll([]float64{0, 1, 2})
	want := []float64{0, 0.5, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ApplyAll[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
