package analyzer

import (
	"context"

	"gocv.io/x/gocv"

	"go-ecg-digitizer/internal/waveform"
)

// Digitizer turns an encoded ECG sheet into a feature table
type Digitizer interface {
	Digitize(ctx context.Context, data []byte, opts Options) (*FeatureTable, error)
}

// TraceExtractor reconstructs a lead waveform from a lead image or a binary ink mask
type TraceExtractor interface {
	Reconstruct(lead gocv.Mat, smooth bool) (waveform.Waveform, error)
	ReconstructBinary(mask gocv.Mat, smooth bool) (waveform.Waveform, error)
}
