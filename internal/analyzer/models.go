package analyzer

import (
	"go-ecg-digitizer/pkg/models"
)

// Shared result types, aliased so callers of this package need not import models
type (
	FeatureTable  = models.FeatureTable
	FeatureRecord = models.FeatureRecord
	LeadWaveform  = models.LeadWaveform
	WorkerStats   = models.WorkerStats
)
