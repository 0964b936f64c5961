package validation

import "fmt"

// LayoutThresholds defines when a sheet is considered a poor fit for the
// fixed two column, six row lead layout
type LayoutThresholds struct {
	// Minimum height of a single lead band in pixels
	MinLeadHeight int

	// A lead must span at least MinBeatsPerLead beats of MinBeatSpacing
	// seconds for rate measurements to be possible
	MinBeatsPerLead float64
	MinBeatSpacing  float64

	// Grid and ink coverage as a share of all pixels
	MaxGridCoverage float64
	MinInkCoverage  float64
}

// DefaultLayoutThresholds returns the default layout thresholds
func DefaultLayoutThresholds() LayoutThresholds {
	return LayoutThresholds{
		MinLeadHeight:   20,
		MinBeatsPerLead: 2,
		MinBeatSpacing:  0.4, // matches the minimum RR interval used for peak detection
		MaxGridCoverage: 0.5,
		MinInkCoverage:  0.0005,
	}
}

// SheetMetrics describes a decoded sheet
type SheetMetrics struct {
	Width        int
	Height       int
	SamplingRate float64
	GridCoverage float64
	InkCoverage  float64
}

// LayoutIssue represents a layout advisory
type LayoutIssue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// LayoutValidator checks sheets against the fixed lead layout. Its findings
// never stop digitization.
type LayoutValidator struct {
	thresholds LayoutThresholds
}

// NewLayoutValidator creates a layout validator with default thresholds
func NewLayoutValidator() *LayoutValidator {
	return &LayoutValidator{
		thresholds: DefaultLayoutThresholds(),
	}
}

// NewLayoutValidatorWithThresholds creates a layout validator with custom thresholds
func NewLayoutValidatorWithThresholds(thresholds LayoutThresholds) *LayoutValidator {
	return &LayoutValidator{
		thresholds: thresholds,
	}
}

// ValidateLayout returns the advisories for a sheet
func (lv *LayoutValidator) ValidateLayout(m SheetMetrics) []LayoutIssue {
	var issues []LayoutIssue

	if m.Width < m.Height {
		issues = append(issues, LayoutIssue{
			Type:     "orientation",
			Message:  fmt.Sprintf("sheet is %dx%d; a landscape 2x6 lead layout is expected", m.Width, m.Height),
			Severity: "info",
		})
	}

	if leadHeight := m.Height / 6; leadHeight < lv.thresholds.MinLeadHeight {
		issues = append(issues, LayoutIssue{
			Type:        "lead_height",
			Message:     fmt.Sprintf("lead bands are %d px tall; traces may be clipped", leadHeight),
			Severity:    "warning",
			ActualValue: float64(leadHeight),
			Threshold:   float64(lv.thresholds.MinLeadHeight),
		})
	}

	if m.SamplingRate > 0 {
		duration := float64(m.Width/2) / m.SamplingRate
		minDuration := lv.thresholds.MinBeatsPerLead * lv.thresholds.MinBeatSpacing
		if duration < minDuration {
			issues = append(issues, LayoutIssue{
				Type:        "lead_duration",
				Message:     fmt.Sprintf("leads span %.2f s at %g Hz; too short to measure intervals", duration, m.SamplingRate),
				Severity:    "warning",
				ActualValue: duration,
				Threshold:   minDuration,
			})
		}
	}

	if m.GridCoverage > lv.thresholds.MaxGridCoverage {
		issues = append(issues, LayoutIssue{
			Type:        "grid_coverage",
			Message:     fmt.Sprintf("grid lines cover %.0f%% of the sheet", m.GridCoverage*100),
			Severity:    "warning",
			ActualValue: m.GridCoverage,
			Threshold:   lv.thresholds.MaxGridCoverage,
		})
	}

	if m.InkCoverage < lv.thresholds.MinInkCoverage {
		issues = append(issues, LayoutIssue{
			Type:        "ink_coverage",
			Message:     "almost no trace ink found after grid removal",
			Severity:    "warning",
			ActualValue: m.InkCoverage,
			Threshold:   lv.thresholds.MinInkCoverage,
		})
	}

	return issues
}

// ConvertIssuesToMessages extracts messages from layout issues
func (lv *LayoutValidator) ConvertIssuesToMessages(issues []LayoutIssue) []string {
	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasWarnings reports whether any issue is a warning
func (lv *LayoutValidator) HasWarnings(issues []LayoutIssue) bool {
	for _, issue := range issues {
		if issue.Severity == "warning" {
			return true
		}
	}
	return false
}
