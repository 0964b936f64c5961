package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-ecg-digitizer/internal/analyzer"
	"go-ecg-digitizer/internal/config"
	apperrors "go-ecg-digitizer/internal/errors"
	"go-ecg-digitizer/internal/logger"
	"go-ecg-digitizer/internal/observer"
	"go-ecg-digitizer/internal/repository"
	"go-ecg-digitizer/internal/storage"
	"go-ecg-digitizer/pkg/models"
)

// SourceUpload labels sheets received as request bodies
const SourceUpload = "upload"

// ECGService digitizes ECG sheets from uploads and remote URLs
type ECGService interface {
	// DigitizeUpload digitizes encoded image bytes received directly
	DigitizeUpload(ctx context.Context, filename string, data []byte, req *models.DigitizeOptionsRequest) (*models.DigitizeResponse, error)

	// DigitizeURL fetches a remote sheet and digitizes it
	DigitizeURL(ctx context.Context, req models.DigitizeURLRequest) (*models.DigitizeResponse, error)

	// Options merges per-request overrides onto the service defaults
	Options(req *models.DigitizeOptionsRequest) analyzer.Options

	// ValidateImageURL validates a remote sheet URL
	ValidateImageURL(imageURL string) error

	// Stats reports analysis and worker counters
	Stats() models.StatsResponse
}

type ecgService struct {
	imageRepo repository.ImageRepository
	digitizer analyzer.Digitizer
	pool      *analyzer.WorkerPool
	publisher observer.Subject
	metrics   *observer.MetricsObserver
	defaults  analyzer.Options
	timeout   time.Duration
}

// NewECGService creates a new ECG digitization service. pool may be nil,
// in which case digitization runs on the calling goroutine.
func NewECGService(
	imageRepo repository.ImageRepository,
	digitizer analyzer.Digitizer,
	pool *analyzer.WorkerPool,
	publisher observer.Subject,
	metrics *observer.MetricsObserver,
	defaults analyzer.Options,
	timeout time.Duration,
) ECGService {
	if publisher == nil {
		publisher = observer.NewEventPublisher()
	}
	if metrics == nil {
		metrics = observer.NewMetricsObserver()
	}
	return &ecgService{
		imageRepo: imageRepo,
		digitizer: digitizer,
		pool:      pool,
		publisher: publisher,
		metrics:   metrics,
		defaults:  defaults,
		timeout:   timeout,
	}
}

// OptionsFromConfig builds the default digitization options from configuration
func OptionsFromConfig(cfg *config.Config) analyzer.Options {
	return analyzer.DefaultOptions().
		WithSamplingRate(cfg.SamplingRate).
		WithBaseProminence(cfg.BaseProminence).
		WithSmoothing(cfg.Smoothing)
}

func (s *ecgService) Options(req *models.DigitizeOptionsRequest) analyzer.Options {
	opts := s.defaults
	if req == nil {
		return opts
	}
	if req.SamplingRate != nil {
		opts = opts.WithSamplingRate(*req.SamplingRate)
	}
	if req.BaseProminence != nil {
		opts = opts.WithBaseProminence(*req.BaseProminence)
	}
	if req.Smoothing != nil {
		opts = opts.WithSmoothing(*req.Smoothing)
	}
	if req.UseGridMask != nil {
		opts = opts.WithGridMask(*req.UseGridMask)
	}
	return opts.WithWaveforms(req.IncludeWaveforms)
}

func (s *ecgService) ValidateImageURL(imageURL string) error {
	if s.imageRepo == nil {
		return apperrors.NewValidationError("remote images are not supported", repository.ErrSourceUnavailable)
	}
	return s.imageRepo.ValidateImageURL(imageURL)
}

func (s *ecgService) DigitizeUpload(ctx context.Context, filename string, data []byte, req *models.DigitizeOptionsRequest) (*models.DigitizeResponse, error) {
	source := SourceUpload
	if filename != "" {
		source = filename
	}
	return s.digitize(ctx, uuid.NewString(), source, data, s.Options(req))
}

func (s *ecgService) DigitizeURL(ctx context.Context, req models.DigitizeURLRequest) (*models.DigitizeResponse, error) {
	if err := s.ValidateImageURL(req.URL); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.NewValidationError("invalid image URL", err)
	}

	requestID := uuid.NewString()
	started := time.Now()

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	data, err := s.imageRepo.FetchImage(fetchCtx, req.URL)
	cancel()
	if err != nil {
		s.notify(ctx, observer.DigitizationEvent{
			EventType:      observer.ImageFetchFailed,
			RequestID:      requestID,
			Source:         req.URL,
			ProcessingTime: time.Since(started),
			ErrorMessage:   err.Error(),
			Metadata:       logrus.Fields{"backend": s.imageRepo.SourceOf(req.URL)},
		})
		return nil, fetchError(err)
	}

	s.notify(ctx, observer.DigitizationEvent{
		EventType:      observer.ImageFetched,
		RequestID:      requestID,
		Source:         req.URL,
		ProcessingTime: time.Since(started),
		Success:        true,
		Metadata: logrus.Fields{
			"backend": s.imageRepo.SourceOf(req.URL),
			"bytes":   len(data),
		},
	})

	return s.digitize(ctx, requestID, req.URL, data, s.Options(req.Options))
}

func (s *ecgService) Stats() models.StatsResponse {
	stats := models.StatsResponse{Analyses: s.metrics.GetMetrics()}
	if s.pool != nil {
		stats.Workers = s.pool.GetStats()
	}
	return stats
}

type outcome struct {
	table *models.FeatureTable
	err   error
}

// digitize runs the digitizer on the worker pool under the analysis timeout
func (s *ecgService) digitize(ctx context.Context, requestID, source string, data []byte, opts analyzer.Options) (*models.DigitizeResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	s.notify(ctx, observer.DigitizationEvent{
		EventType: observer.AnalysisStarted,
		RequestID: requestID,
		Source:    source,
	})

	table, err := s.run(ctx, data, opts)
	if err != nil {
		s.notify(ctx, observer.DigitizationEvent{
			EventType:      observer.AnalysisFailed,
			RequestID:      requestID,
			Source:         source,
			ProcessingTime: time.Since(started),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	measured := 0
	for _, r := range table.Records {
		if r.Measured() {
			measured++
		}
	}
	s.notify(ctx, observer.DigitizationEvent{
		EventType:      observer.AnalysisCompleted,
		RequestID:      requestID,
		Source:         source,
		ProcessingTime: time.Since(started),
		LeadsMeasured:  measured,
		Success:        true,
		Metadata: logrus.Fields{
			"analysis_id":   table.ID,
			"grid_coverage": table.GridCoverage,
			"warnings":      len(table.Warnings),
		},
	})

	return &models.DigitizeResponse{Source: source, FeatureTable: table}, nil
}

func (s *ecgService) run(ctx context.Context, data []byte, opts analyzer.Options) (*models.FeatureTable, error) {
	if s.pool == nil {
		return wrapDigitizeError(s.digitizer.Digitize(ctx, data, opts))
	}

	done := make(chan outcome, 1)
	err := s.pool.SubmitContext(ctx, func() {
		table, err := s.digitizer.Digitize(ctx, data, opts)
		done <- outcome{table: table, err: err}
	})
	switch {
	case errors.Is(err, analyzer.ErrPoolClosed):
		return nil, apperrors.NewOverloadedError("digitization service is shutting down", err)
	case err != nil:
		return nil, contextError(err)
	}

	select {
	case out := <-done:
		return wrapDigitizeError(out.table, out.err)
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	}
}

func (s *ecgService) notify(ctx context.Context, event observer.DigitizationEvent) {
	s.publisher.NotifyObservers(context.WithoutCancel(ctx), event)
}

func wrapDigitizeError(table *models.FeatureTable, err error) (*models.FeatureTable, error) {
	if err == nil {
		return table, nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return nil, err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil, contextError(err)
	}
	return nil, apperrors.NewProcessingError("digitization failed", err)
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("digitization timed out", err)
	}
	logger.WithError(err).Debug("Digitization abandoned by caller")
	return apperrors.NewProcessingError("digitization canceled", err)
}

func fetchError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewValidationError("image exceeds size limit", err)
	case errors.Is(err, repository.ErrSourceUnavailable):
		return apperrors.NewValidationError("image source unavailable", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}
