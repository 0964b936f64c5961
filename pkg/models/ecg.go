package models

import "time"

// FeatureRecord holds the measurements of one lead. Measured fields are nil
// when fewer than two peaks were detected and serialize as null.
type FeatureRecord struct {
	Lead          string   `json:"Lead"`
	HeartRate     *float64 `json:"Heart Rate (BPM)"`
	RRInterval    *float64 `json:"RR Interval (s)"`
	QRSDuration   *float64 `json:"QRS Duration (s)"`
	QTInterval    *float64 `json:"QT Interval (s)"`
	PRInterval    *float64 `json:"PR Interval (s)"`
	DetectedPeaks int      `json:"Detected Peaks"`
}

// Measured reports whether rate and interval fields are present
func (r FeatureRecord) Measured() bool {
	return r.DetectedPeaks >= 2 && r.HeartRate != nil
}

// LeadWaveform is the reconstructed signal of one lead
type LeadWaveform struct {
	Lead         string    `json:"lead"`
	SamplingRate float64   `json:"sampling_rate"`
	Samples      []float64 `json:"samples"`
	Peaks        []int     `json:"peaks"`
}

// FeatureTable is the result of digitizing one ECG sheet. Records always
// hold the twelve leads in canonical order.
type FeatureTable struct {
	ID                string          `json:"id"`
	Timestamp         time.Time       `json:"timestamp"`
	ProcessingTimeSec float64         `json:"processing_time_sec"`
	Width             int             `json:"width"`
	Height            int             `json:"height"`
	SamplingRate      float64         `json:"sampling_rate"`
	GridCoverage      float64         `json:"grid_coverage"`
	Records           []FeatureRecord `json:"records"`
	Waveforms         []LeadWaveform  `json:"waveforms,omitempty"`
	Warnings          []string        `json:"warnings,omitempty"`
}

// Record returns the record of the named lead
func (t *FeatureTable) Record(lead string) (FeatureRecord, bool) {
	for _, r := range t.Records {
		if r.Lead == lead {
			return r, true
		}
	}
	return FeatureRecord{}, false
}
