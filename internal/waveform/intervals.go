package waveform

import (
	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultBaseProminence is the prominence floor applied to nearly flat traces.
	DefaultBaseProminence = 10.0

	// adaptiveProminenceRatio scales the waveform range into the adaptive prominence.
	adaptiveProminenceRatio = 0.2
	// minBeatSpacing is the shortest RR interval accepted, in seconds.
	minBeatSpacing = 0.4
	// minPeakWidth is the minimum peak width in samples.
	minPeakWidth = 5.0

	// Interval windows around each detected peak, in seconds. These are
	// offset heuristics, not detected wave boundaries.
	qrsHalfWindow    = 0.05
	qtForwardWindow  = 0.2
	prBackwardWindow = 0.1
)

// EstimateParams configures peak detection and interval estimation.
type EstimateParams struct {
	// SamplingRate is the number of waveform samples per second.
	SamplingRate float64
	// BaseProminence floors the adaptive peak prominence.
	BaseProminence float64
}

// Features are the beat measurements of one waveform. Rate and interval
// fields are nil unless at least two peaks were detected.
type Features struct {
	HeartRate   *float64
	RRInterval  *float64
	QRSDuration *float64
	QTInterval  *float64
	PRInterval  *float64
	PeakCount   int
	Peaks       []int
}

// PeakParamsFor derives the peak constraints for w: a minimum spacing of
// 0.4 s, a prominence of 20% of the waveform range floored at the base
// prominence, and a width of 5 samples.
func PeakParamsFor(w Waveform, p EstimateParams) PeakParams {
	prom := adaptiveProminenceRatio * w.Range()
	if prom < p.BaseProminence {
		prom = p.BaseProminence
	}
	return PeakParams{
		Distance:   int(minBeatSpacing * p.SamplingRate),
		Prominence: prom,
		Width:      minPeakWidth,
	}
}

// Estimate detects beats in w and derives heart rate and interval averages.
//
// QRS, QT and PR are fixed windows around every peak (±0.05 s, +0.2 s and
// −0.1 s) clamped to the waveform and averaged. They approximate the
// intervals for comparison between leads and are not clinical measurements.
func Estimate(w Waveform, p EstimateParams) Features {
	if len(w) == 0 || p.SamplingRate <= 0 {
		return Features{Peaks: []int{}}
	}

	peaks := FindPeaks(w, PeakParamsFor(w, p))
	f := Features{PeakCount: len(peaks), Peaks: peaks}
	if len(peaks) < 2 {
		return f
	}

	fs := p.SamplingRate
	n := len(w)

	rr := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		rr[i-1] = float64(peaks[i]-peaks[i-1]) / fs
	}
	avgRR := stat.Mean(rr, nil)
	if avgRR <= 0 {
		return f
	}
	heartRate := 60 / avgRR

	qrsOffset := int(qrsHalfWindow * fs)
	qtOffset := int(qtForwardWindow * fs)
	prOffset := int(prBackwardWindow * fs)

	qrs := make([]float64, len(peaks))
	qt := make([]float64, len(peaks))
	pr := make([]float64, len(peaks))
	for i, pk := range peaks {
		qrs[i] = float64(min(pk+qrsOffset, n)-max(pk-qrsOffset, 0)) / fs
		qt[i] = float64(min(pk+qtOffset, n)-pk) / fs
		pr[i] = float64(pk-max(pk-prOffset, 0)) / fs
	}

	f.RRInterval = ptr(avgRR)
	f.HeartRate = ptr(heartRate)
	f.QRSDuration = ptr(stat.Mean(qrs, nil))
	f.QTInterval = ptr(stat.Mean(qt, nil))
	f.PRInterval = ptr(stat.Mean(pr, nil))
	return f
}

func ptr(v float64) *float64 { return &v }
