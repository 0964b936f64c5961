// Package waveform turns pixel traces into one-dimensional signals and
// extracts beat-level measurements from them.
//
// A Waveform holds one sample per horizontal pixel column of a lead image.
// Samples are amplitudes in pixels with upward deflections positive, so the
// sample index doubles as the time axis once divided by the sampling rate.
package waveform

import (
	"errors"
	"image"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyTrace is returned when a trace carries no usable points.
var ErrEmptyTrace = errors.New("trace has no points")

// Waveform is an ordered sequence of amplitude samples, one per pixel column.
type Waveform []float64

// Len returns the number of samples.
func (w Waveform) Len() int { return len(w) }

// Range returns max-min of the samples, or 0 for an empty waveform.
func (w Waveform) Range() float64 {
	if len(w) == 0 {
		return 0
	}
	return floats.Max(w) - floats.Min(w)
}

// Times returns the time stamp in seconds of every sample at sampling rate fs.
func (w Waveform) Times(fs float64) []float64 {
	t := make([]float64, len(w))
	if fs <= 0 {
		return t
	}
	for i := range t {
		t[i] = float64(i) / fs
	}
	return t
}

// FromTrace builds a waveform of exactly width samples from ink contour points.
//
// Points are stable-sorted by X and only the first Y seen for each column is
// kept. Columns between known points are linearly interpolated, columns
// outside the known range take the nearest known value. The result is
// negated because image rows grow downward while a heartbeat deflects up.
func FromTrace(points []image.Point, width int) (Waveform, error) {
	if len(points) == 0 || width <= 0 {
		return nil, ErrEmptyTrace
	}

	sorted := make([]image.Point, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	xs := make([]float64, 0, len(sorted))
	ys := make([]float64, 0, len(sorted))
	for i, p := range sorted {
		if i > 0 && p.X == sorted[i-1].X {
			continue
		}
		xs = append(xs, float64(p.X))
		ys = append(ys, float64(p.Y))
	}

	w := make(Waveform, width)
	interpolate(w, xs, ys)
	floats.Scale(-1, w)
	return w, nil
}

// interpolate fills dst[i] with the piecewise linear interpolant of (xs, ys)
// evaluated at i. xs must be strictly increasing and non-empty.
func interpolate(dst []float64, xs, ys []float64) {
	last := len(xs) - 1
	k := 0
	for i := range dst {
		x := float64(i)
		switch {
		case x <= xs[0]:
			dst[i] = ys[0]
		case x >= xs[last]:
			dst[i] = ys[last]
		default:
			for xs[k+1] < x {
				k++
			}
			x0, x1 := xs[k], xs[k+1]
			dst[i] = ys[k] + (ys[k+1]-ys[k])*(x-x0)/(x1-x0)
		}
	}
}
