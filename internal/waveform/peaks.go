package waveform

import (
	"math"
	"sort"
)

// PeakParams constrains which local maxima count as peaks.
type PeakParams struct {
	// Distance is the minimum index gap between two kept peaks. Values
	// below 1 disable the check.
	Distance int
	// Prominence is the minimum topographic prominence of a kept peak.
	Prominence float64
	// Width is the minimum peak width measured at half prominence.
	Width float64
}

// peak carries the per-candidate measurements computed while filtering.
type peak struct {
	index      int
	prominence float64
	leftBase   int
	rightBase  int
}

// FindPeaks returns the strictly increasing indices of the peaks of x that
// satisfy p.
//
// Filters run in this order: local maxima (flat tops report their middle
// sample, edges never qualify), distance (taller peaks win), prominence,
// then width at half prominence.
func FindPeaks(x []float64, p PeakParams) []int {
	candidates := localMaxima(x)
	if len(candidates) == 0 {
		return []int{}
	}

	if p.Distance > 1 {
		candidates = selectByDistance(x, candidates, p.Distance)
	}

	measured := make([]peak, 0, len(candidates))
	for _, idx := range candidates {
		pk := prominence(x, idx)
		if pk.prominence >= p.Prominence {
			measured = append(measured, pk)
		}
	}

	peaks := make([]int, 0, len(measured))
	for _, pk := range measured {
		if halfProminenceWidth(x, pk) >= p.Width {
			peaks = append(peaks, pk.index)
		}
	}
	return peaks
}

// localMaxima finds samples greater than both neighbours. A plateau counts
// once, at its middle sample, when both sides of it are lower.
func localMaxima(x []float64) []int {
	var maxima []int
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			maxima = append(maxima, (i+ahead-1)/2)
			i = ahead
		}
	}
	return maxima
}

// selectByDistance drops peaks closer than distance to a taller kept peak.
// Among equal heights the later peak takes priority.
func selectByDistance(x []float64, peaks []int, distance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return x[peaks[order[a]]] < x[peaks[order[b]]]
	})

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}

	for i := len(order) - 1; i >= 0; i-- {
		j := order[i]
		if !keep[j] {
			continue
		}
		for k := j - 1; k >= 0 && peaks[j]-peaks[k] < distance; k-- {
			keep[k] = false
		}
		for k := j + 1; k < len(peaks) && peaks[k]-peaks[j] < distance; k++ {
			keep[k] = false
		}
	}

	kept := make([]int, 0, len(peaks))
	for i, idx := range peaks {
		if keep[i] {
			kept = append(kept, idx)
		}
	}
	return kept
}

// prominence measures how far idx stands above the higher of the two
// minima found walking outward until a taller sample or the signal edge.
func prominence(x []float64, idx int) peak {
	height := x[idx]

	leftBase, leftMin := idx, height
	for i := idx; i >= 0 && x[i] <= height; i-- {
		if x[i] < leftMin {
			leftMin, leftBase = x[i], i
		}
	}

	rightBase, rightMin := idx, height
	for i := idx; i < len(x) && x[i] <= height; i++ {
		if x[i] < rightMin {
			rightMin, rightBase = x[i], i
		}
	}

	return peak{
		index:      idx,
		prominence: height - math.Max(leftMin, rightMin),
		leftBase:   leftBase,
		rightBase:  rightBase,
	}
}

// halfProminenceWidth returns the width of pk at half its prominence,
// interpolating the crossing points between samples.
func halfProminenceWidth(x []float64, pk peak) float64 {
	height := x[pk.index] - pk.prominence/2

	i := pk.index
	for pk.leftBase < i && height < x[i] {
		i--
	}
	left := float64(i)
	if x[i] < height {
		left += (height - x[i]) / (x[i+1] - x[i])
	}

	i = pk.index
	for i < pk.rightBase && height < x[i] {
		i++
	}
	right := float64(i)
	if x[i] < height {
		right -= (height - x[i]) / (x[i-1] - x[i])
	}

	return right - left
}
