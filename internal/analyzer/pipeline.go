package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	apperrors "go-ecg-digitizer/internal/errors"
	"go-ecg-digitizer/internal/logger"
	"go-ecg-digitizer/internal/vision"
	"go-ecg-digitizer/internal/waveform"
	"go-ecg-digitizer/pkg/validation"
)

// pipeline implements Digitizer: decode, grid suppression, segmentation,
// then trace reconstruction and interval estimation per lead
type pipeline struct {
	tracer TraceExtractor
	layout *validation.LayoutValidator
}

// NewDigitizer creates a digitizer with the default trace reconstructor
func NewDigitizer() Digitizer {
	return NewDigitizerWithExtractor(vision.NewTraceReconstructor())
}

// NewDigitizerWithExtractor creates a digitizer using a custom trace extractor
func NewDigitizerWithExtractor(tracer TraceExtractor) Digitizer {
	return &pipeline{
		tracer: tracer,
		layout: validation.NewLayoutValidator(),
	}
}

// Digitize runs the full pipeline over encoded image bytes.
//
// The result always holds twelve records in canonical lead order. A lead
// without a usable trace gets a record with no measurements rather than
// failing the request. Only undecodable input, invalid options or an
// expired ctx abort, and then no table is returned.
func (p *pipeline) Digitize(ctx context.Context, data []byte, opts Options) (*FeatureTable, error) {
	start := time.Now()

	if err := opts.Validate(); err != nil {
		return nil, apperrors.NewValidationError("invalid digitization options", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	img, err := vision.Decode(data)
	if err != nil {
		img.Close()
		return nil, apperrors.NewDecodeError("invalid image: could not decode image bytes", err)
	}
	defer img.Close()

	gray, err := vision.ToGray(img)
	if err != nil {
		return nil, apperrors.NewInternalError("grayscale conversion failed", err)
	}
	defer gray.Close()

	grid, err := vision.SuppressGrid(gray, opts.Grid)
	if err != nil {
		return nil, apperrors.NewProcessingError("grid suppression failed", err)
	}
	defer grid.Close()

	leads, err := vision.SegmentLeads(img)
	if err != nil {
		return nil, apperrors.NewProcessingError("lead segmentation failed", err)
	}
	defer vision.CloseLeads(leads)

	var masks []vision.LeadImage
	if opts.TraceFromGridMask {
		masks, err = vision.SegmentLeads(grid.Mask)
		if err != nil {
			return nil, apperrors.NewProcessingError("lead segmentation failed", err)
		}
		defer vision.CloseLeads(masks)
	}

	table := &FeatureTable{
		ID:           uuid.NewString(),
		Timestamp:    start.UTC(),
		Width:        img.Cols(),
		Height:       img.Rows(),
		SamplingRate: opts.SamplingRate,
		GridCoverage: grid.GridFraction,
		Records:      make([]FeatureRecord, 0, len(leads)),
	}

	issues := p.layout.ValidateLayout(validation.SheetMetrics{
		Width:        table.Width,
		Height:       table.Height,
		SamplingRate: opts.SamplingRate,
		GridCoverage: grid.GridFraction,
		InkCoverage:  grid.InkFraction,
	})
	table.Warnings = p.layout.ConvertIssuesToMessages(issues)

	log := logger.WithFields(logrus.Fields{
		"analysis_id":   table.ID,
		"width":         table.Width,
		"height":        table.Height,
		"sampling_rate": opts.SamplingRate,
	})
	if len(table.Warnings) > 0 {
		log.WithField("warnings", table.Warnings).Warn("Sheet does not match the expected lead layout")
	}

	for i, li := range leads {
		if err := ctx.Err(); err != nil {
			log.WithError(err).Warn("Digitization aborted")
			return nil, contextError(err)
		}

		source := li.Mat
		if opts.TraceFromGridMask {
			source = masks[i].Mat
		}

		record, wf := p.measureLead(li.Lead, source, opts, log)
		table.Records = append(table.Records, record)
		if opts.IncludeWaveforms {
			table.Waveforms = append(table.Waveforms, wf)
		}
	}

	table.ProcessingTimeSec = time.Since(start).Seconds()
	log.WithFields(logrus.Fields{
		"grid_coverage":       table.GridCoverage,
		"processing_time_sec": table.ProcessingTimeSec,
	}).Info("ECG sheet digitized")

	return table, nil
}

// measureLead reconstructs and measures one lead. Failures yield an
// unmeasured record.
func (p *pipeline) measureLead(lead vision.Lead, source gocv.Mat, opts Options, log *logrus.Entry) (FeatureRecord, LeadWaveform) {
	record := FeatureRecord{Lead: lead.String()}
	wf := LeadWaveform{
		Lead:         lead.String(),
		SamplingRate: opts.SamplingRate,
		Samples:      []float64{},
		Peaks:        []int{},
	}
	entry := log.WithField("lead", lead.String())

	var (
		w   waveform.Waveform
		err error
	)
	if opts.TraceFromGridMask {
		w, err = p.tracer.ReconstructBinary(source, opts.Smoothing)
	} else {
		w, err = p.tracer.Reconstruct(source, opts.Smoothing)
	}
	if err != nil {
		if errors.Is(err, vision.ErrNoTrace) {
			entry.Debug("No trace found")
		} else {
			entry.WithError(err).Warn("Trace reconstruction failed")
		}
		return record, wf
	}

	f := waveform.Estimate(w, opts.estimateParams())
	record.HeartRate = f.HeartRate
	record.RRInterval = f.RRInterval
	record.QRSDuration = f.QRSDuration
	record.QTInterval = f.QTInterval
	record.PRInterval = f.PRInterval
	record.DetectedPeaks = f.PeakCount

	wf.Samples = w
	wf.Peaks = f.Peaks

	entry.WithField("peaks", f.PeakCount).Debug("Lead measured")
	return record, wf
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("digitization exceeded its time budget", err)
	}
	return apperrors.NewProcessingError("digitization canceled", err)
}
