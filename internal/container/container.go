package container

import (
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"go-ecg-digitizer/internal/analyzer"
	"go-ecg-digitizer/internal/config"
	"go-ecg-digitizer/internal/logger"
	"go-ecg-digitizer/internal/observer"
	"go-ecg-digitizer/internal/repository"
	"go-ecg-digitizer/internal/service"
	"go-ecg-digitizer/internal/storage"
	"go-ecg-digitizer/internal/transport"
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageRepository repository.ImageRepository
	digitizer       analyzer.Digitizer
	workerPool      *analyzer.WorkerPool
	publisher       *observer.EventPublisher
	ecgService      service.ECGService
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Build dependency graph
	fetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout, cfg.MaxRequestBodySize)

	var blobs storage.BlobStorage
	if cfg.AzureEnabled() {
		b, err := storage.NewAzureStorage(cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.MaxRequestBodySize)
		if err != nil {
			return nil, fmt.Errorf("failed to configure blob storage: %w", err)
		}
		blobs = b
	}
	imageRepository := repository.NewSourceRepository(fetcher, blobs, nil)

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	workerPool := analyzer.NewWorkerPool(cfg.MaxWorkers)
	workerPool.Start()

	digitizer := analyzer.NewDigitizer()
	ecgService := service.NewECGService(
		imageRepository,
		digitizer,
		workerPool,
		publisher,
		metrics,
		service.OptionsFromConfig(cfg),
		cfg.AnalysisTimeout,
	)
	handler := transport.NewHandler(ecgService, cfg)

	logger.WithFields(logrus.Fields{
		"workers":       workerPool.Workers(),
		"azure_enabled": cfg.AzureEnabled(),
		"sampling_rate": cfg.SamplingRate,
	}).Info("Digitization service configured")

	return &Container{
		config:          cfg,
		imageRepository: imageRepository,
		digitizer:       digitizer,
		workerPool:      workerPool,
		publisher:       publisher,
		ecgService:      ecgService,
		handler:         handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the digitization service
func (c *Container) Service() service.ECGService {
	return c.ecgService
}

// Close drains the worker pool and pending observer notifications
func (c *Container) Close() {
	c.workerPool.Close()
	c.workerPool.Wait()
	c.publisher.Flush()
}
