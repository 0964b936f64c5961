package analyzer

import (
	"fmt"
	"math"

	"go-ecg-digitizer/internal/vision"
	"go-ecg-digitizer/internal/waveform"
)

// DefaultSamplingRate is the assumed number of waveform samples per second
const DefaultSamplingRate = 500.0

// Options configures a single digitization. Values are copied per request,
// so concurrent requests never share settings.
type Options struct {
	// Waveform time base and peak detection
	SamplingRate   float64
	BaseProminence float64
	Smoothing      bool

	// Reconstruct traces from the grid-suppressed ink mask instead of the raw lead image
	TraceFromGridMask bool

	// Return the reconstructed waveforms alongside the records
	IncludeWaveforms bool

	Grid vision.GridParams
}

// DefaultOptions returns default digitization options
func DefaultOptions() Options {
	return Options{
		SamplingRate:   DefaultSamplingRate,
		BaseProminence: waveform.DefaultBaseProminence,
		Smoothing:      true,
		Grid:           vision.DefaultGridParams(),
	}
}

// WithSamplingRate sets the sampling rate in Hz
func (opts Options) WithSamplingRate(fs float64) Options {
	opts.SamplingRate = fs
	return opts
}

// WithBaseProminence sets the prominence floor for peak detection
func (opts Options) WithBaseProminence(p float64) Options {
	opts.BaseProminence = p
	return opts
}

// WithSmoothing toggles Savitzky-Golay smoothing
func (opts Options) WithSmoothing(enabled bool) Options {
	opts.Smoothing = enabled
	return opts
}

// WithGridMask toggles tracing from the grid-suppressed mask
func (opts Options) WithGridMask(enabled bool) Options {
	opts.TraceFromGridMask = enabled
	return opts
}

// WithWaveforms toggles waveform output
func (opts Options) WithWaveforms(enabled bool) Options {
	opts.IncludeWaveforms = enabled
	return opts
}

// Validate checks that the options can produce finite measurements
func (opts Options) Validate() error {
	if math.IsNaN(opts.SamplingRate) || math.IsInf(opts.SamplingRate, 0) || opts.SamplingRate <= 0 {
		return fmt.Errorf("sampling rate must be a positive number, got %g", opts.SamplingRate)
	}
	if math.IsNaN(opts.BaseProminence) || math.IsInf(opts.BaseProminence, 0) || opts.BaseProminence < 0 {
		return fmt.Errorf("base prominence must be a non-negative number, got %g", opts.BaseProminence)
	}
	if opts.Grid.BlockSize < 3 || opts.Grid.BlockSize%2 == 0 {
		return fmt.Errorf("grid block size must be odd and at least 3, got %d", opts.Grid.BlockSize)
	}
	if opts.Grid.LineFraction <= 0 || opts.Grid.LineFraction > 1 {
		return fmt.Errorf("grid line fraction must be in (0, 1], got %g", opts.Grid.LineFraction)
	}
	return nil
}

func (opts Options) estimateParams() waveform.EstimateParams {
	return waveform.EstimateParams{
		SamplingRate:   opts.SamplingRate,
		BaseProminence: opts.BaseProminence,
	}
}
