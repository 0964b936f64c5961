package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"go-ecg-digitizer/internal/waveform"
)

// ErrNoTrace is returned when a lead image holds no usable ink contour
var ErrNoTrace = errors.New("no trace found")

const (
	// MinContourPoints is the point count a contour must exceed to be part of the trace
	MinContourPoints = 10
	// DefaultInkThreshold separates ink from paper on the inverted, blurred lead image
	DefaultInkThreshold = 100
)

// TraceReconstructor turns lead images into waveforms
type TraceReconstructor struct {
	MinContourPoints int
	InkThreshold     float32
}

// NewTraceReconstructor creates a reconstructor with default thresholds
func NewTraceReconstructor() *TraceReconstructor {
	return &TraceReconstructor{
		MinContourPoints: MinContourPoints,
		InkThreshold:     DefaultInkThreshold,
	}
}

// Reconstruct extracts the waveform of a color or gray lead image. Dark ink
// on light paper is assumed. The waveform has one sample per image column.
func (r *TraceReconstructor) Reconstruct(lead gocv.Mat, smooth bool) (waveform.Waveform, error) {
	if lead.Empty() {
		return nil, ErrNoTrace
	}

	gray, err := ToGray(lead)
	if err != nil {
		return nil, err
	}
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	if err := gocv.GaussianBlur(gray, &blurred, image.Pt(3, 3), 0, 0, gocv.BorderDefault); err != nil {
		return nil, fmt.Errorf("blur lead: %w", err)
	}

	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(blurred, &inverted)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(inverted, &binary, r.InkThreshold, 255, gocv.ThresholdBinary)

	return r.ReconstructBinary(binary, smooth)
}

// ReconstructBinary extracts the waveform of a binary ink mask (ink 255).
//
// Horizontal gaps of one pixel are closed first. External contours with
// more than MinContourPoints points are pooled and resampled onto the mask
// columns by waveform.FromTrace.
func (r *TraceReconstructor) ReconstructBinary(mask gocv.Mat, smooth bool) (waveform.Waveform, error) {
	if mask.Empty() {
		return nil, ErrNoTrace
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 1))
	defer kernel.Close()

	closed := gocv.NewMat()
	defer closed.Close()
	if err := gocv.MorphologyEx(mask, &closed, gocv.MorphClose, kernel); err != nil {
		return nil, fmt.Errorf("close trace gaps: %w", err)
	}

	contours := gocv.FindContours(closed, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var points []image.Point
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if contour.Size() > r.MinContourPoints {
			points = append(points, contour.ToPoints()...)
		}
	}
	if len(points) == 0 {
		return nil, ErrNoTrace
	}

	w, err := waveform.FromTrace(points, mask.Cols())
	if err != nil {
		return nil, ErrNoTrace
	}
	if smooth {
		if err := w.Smooth(); err != nil {
			return nil, fmt.Errorf("smooth waveform: %w", err)
		}
	}
	return w, nil
}
