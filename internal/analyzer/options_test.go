package analyzer

import (
	"math"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.SamplingRate != 500 {
		t.Errorf("Expected SamplingRate to be 500, got %f", opts.SamplingRate)
	}
	if opts.BaseProminence != 10 {
		t.Errorf("Expected BaseProminence to be 10, got %f", opts.BaseProminence)
	}
	if !opts.Smoothing {
		t.Error("Expected Smoothing to be true by default")
	}
	if opts.TraceFromGridMask {
		t.Error("Expected TraceFromGridMask to be false by default")
	}
	if opts.IncludeWaveforms {
		t.Error("Expected IncludeWaveforms to be false by default")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Expected default options to be valid, got %v", err)
	}
}

func TestOptionsBuilders(t *testing.T) {
	base := DefaultOptions()
	opts := base.
		WithSamplingRate(250).
		WithBaseProminence(3).
		WithSmoothing(false).
		WithGridMask(true).
		WithWaveforms(true)

	if opts.SamplingRate != 250 || opts.BaseProminence != 3 {
		t.Errorf("Unexpected numeric options: %+v", opts)
	}
	if opts.Smoothing || !opts.TraceFromGridMask || !opts.IncludeWaveforms {
		t.Errorf("Unexpected toggles: %+v", opts)
	}
	if base.SamplingRate != 500 || !base.Smoothing {
		t.Error("Expected builders not to modify the receiver")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"zero sampling rate", DefaultOptions().WithSamplingRate(0)},
		{"negative sampling rate", DefaultOptions().WithSamplingRate(-100)},
		{"NaN sampling rate", DefaultOptions().WithSamplingRate(math.NaN())},
		{"infinite sampling rate", DefaultOptions().WithSamplingRate(math.Inf(1))},
		{"negative prominence", DefaultOptions().WithBaseProminence(-1)},
		{"even block size", func() Options { o := DefaultOptions(); o.Grid.BlockSize = 20; return o }()},
		{"zero line fraction", func() Options { o := DefaultOptions(); o.Grid.LineFraction = 0; return o }()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
