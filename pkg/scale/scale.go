// Package scale maps raw metric or difference values onto a bounded
// visual range for rendering (node sizes, color intensities).
package scale

import "math"

// Linear is a clipped linear min-max mapping from [VMin, VMax] onto
// [Lo, Hi]. A degenerate data range (VMax == VMin) maps every input to
// the midpoint of the visual range.
type Linear struct {
	Lo, Hi     float64
	VMin, VMax float64
}

// FromObserved builds a scaler over the observed range of values. With no
// values the data range is degenerate and everything maps to the midpoint.
func FromObserved(values []float64, lo, hi float64) Linear {
	vmin, vmax := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		vmin = math.Min(vmin, v)
		vmax = math.Max(vmax, v)
	}
	if vmin > vmax {
		vmin, vmax = 0, 0
	}
	return Linear{Lo: lo, Hi: hi, VMin: vmin, VMax: vmax}
}

// Fixed builds a scaler with an explicitly configured data range, for
// color consistency across renders.
func Fixed(vmin, vmax, lo, hi float64) Linear {
	return Linear{Lo: lo, Hi: hi, VMin: vmin, VMax: vmax}
}

// SymmetricAboutZero builds a scaler whose data range is [-m, m] with
// m = max |v|. Difference mode uses it so that a zero difference always
// maps to the midpoint of the visual range.
func SymmetricAboutZero(values []float64, lo, hi float64) Linear {
	m := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		m = math.Max(m, math.Abs(v))
	}
	return Linear{Lo: lo, Hi: hi, VMin: -m, VMax: m}
}

// Apply maps v onto the visual range, clipping to the data range first.
func (s Linear) Apply(v float64) float64 {
	if s.VMax == s.VMin {
		return (s.Lo + s.Hi) / 2
	}
	if v < s.VMin {
		v = s.VMin
	}
	if v > s.VMax {
		v = s.VMax
	}
	return s.Lo + (v-s.VMin)/(s.VMax-s.VMin)*(s.Hi-s.Lo)
}

// ApplyAll maps a slice of values.
func (s Linear) ApplyAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Apply(v)
	}
	return out
}
