// Package export writes digitization results as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"go-ecg-digitizer/pkg/models"
)

// FeatureColumns is the header row of a feature table export
var FeatureColumns = []string{
	"Lead",
	"Heart Rate (BPM)",
	"RR Interval (s)",
	"QRS Duration (s)",
	"QT Interval (s)",
	"PR Interval (s)",
	"Detected Peaks",
}

// WriteFeatureCSV writes one row per record. Missing measurements are empty cells.
func WriteFeatureCSV(w io.Writer, records []models.FeatureRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(FeatureColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Lead,
			formatOptional(r.HeartRate),
			formatOptional(r.RRInterval),
			formatOptional(r.QRSDuration),
			formatOptional(r.QTInterval),
			formatOptional(r.PRInterval),
			strconv.Itoa(r.DetectedPeaks),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record %s: %w", r.Lead, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteWaveformCSV writes a lead waveform as time and amplitude columns
func WriteWaveformCSV(w io.Writer, wf models.LeadWaveform) error {
	if wf.SamplingRate <= 0 {
		return fmt.Errorf("waveform %s: sampling rate must be positive", wf.Lead)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"time (s)", "amplitude"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, v := range wf.Samples {
		row := []string{
			formatFloat(float64(i) / wf.SamplingRate),
			formatFloat(v),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write sample %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
