package models

// DigitizeOptionsRequest carries per-request overrides of the digitization
// defaults. Nil fields keep the server defaults.
type DigitizeOptionsRequest struct {
	SamplingRate     *float64 `json:"sampling_rate,omitempty" form:"sampling_rate"`
	BaseProminence   *float64 `json:"base_prominence,omitempty" form:"base_prominence"`
	Smoothing        *bool    `json:"smoothing,omitempty" form:"smoothing"`
	UseGridMask      *bool    `json:"use_grid_mask,omitempty" form:"use_grid_mask"`
	IncludeWaveforms bool     `json:"include_waveforms,omitempty" form:"include_waveforms"`
}

// DigitizeURLRequest asks for the digitization of a remote ECG image
type DigitizeURLRequest struct {
	URL     string                  `json:"url" binding:"required"`
	Options *DigitizeOptionsRequest `json:"options,omitempty"`
}

// DigitizeResponse wraps a feature table with its source
type DigitizeResponse struct {
	Source string `json:"source,omitempty"`
	*FeatureTable
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// StatsResponse reports service counters
type StatsResponse struct {
	Analyses map[string]int64 `json:"analyses"`
	Workers  WorkerStats      `json:"workers"`
}

// WorkerStats is a snapshot of the digitization worker pool
type WorkerStats struct {
	Workers       int   `json:"workers"`
	ActiveWorkers int   `json:"active_workers"`
	TotalJobs     int64 `json:"total_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	RejectedJobs  int64 `json:"rejected_jobs"`
}
