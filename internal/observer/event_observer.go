package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DigitizationEvent describes one step in the life of a digitization request
type DigitizationEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	RequestID      string                 `json:"request_id"`
	Source         string                 `json:"source"`
	ProcessingTime time.Duration          `json:"processing_time"`
	LeadsMeasured  int                    `json:"leads_measured"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of digitization event
type EventType string

const (
	// AnalysisStarted when digitization begins
	AnalysisStarted EventType = "analysis_started"
	// AnalysisCompleted when a feature table was produced
	AnalysisCompleted EventType = "analysis_completed"
	// AnalysisFailed when no feature table could be produced
	AnalysisFailed EventType = "analysis_failed"
	// ImageFetched when a remote sheet was downloaded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when a remote sheet could not be downloaded
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event DigitizationEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event DigitizationEvent)
}

// LoggingObserver logs digitization events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event DigitizationEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"request_id":      event.RequestID,
		"source":          event.Source,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.EventType == AnalysisCompleted {
		fields["leads_measured"] = event.LeadsMeasured
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	entry := o.logger.WithFields(fields)
	switch event.EventType {
	case AnalysisStarted:
		entry.Info("ECG digitization started")
	case AnalysisCompleted:
		entry.Info("ECG digitization completed")
	case AnalysisFailed:
		entry.Error("ECG digitization failed")
	case ImageFetched:
		entry.Debug("ECG image fetched")
	case ImageFetchFailed:
		entry.Error("ECG image fetch failed")
	default:
		entry.Info("Digitization event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from digitization events
type MetricsObserver struct {
	mu                  sync.RWMutex
	totalAnalyses       int64
	successfulAnalyses  int64
	failedAnalyses      int64
	fetchFailures       int64
	leadsMeasured       int64
	totalProcessingTime time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles events by collecting metrics
func (o *MetricsObserver) OnEvent(ctx context.Context, event DigitizationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case AnalysisStarted:
		o.totalAnalyses++
	case AnalysisCompleted:
		o.successfulAnalyses++
		o.leadsMeasured += int64(event.LeadsMeasured)
		o.totalProcessingTime += event.ProcessingTime
	case AnalysisFailed:
		o.failedAnalyses++
	case ImageFetchFailed:
		o.fetchFailures++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters. Durations are in milliseconds.
func (o *MetricsObserver) GetMetrics() map[string]int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgProcessingTime := time.Duration(0)
	if o.successfulAnalyses > 0 {
		avgProcessingTime = o.totalProcessingTime / time.Duration(o.successfulAnalyses)
	}

	return map[string]int64{
		"total_analyses":           o.totalAnalyses,
		"successful_analyses":      o.successfulAnalyses,
		"failed_analyses":          o.failedAnalyses,
		"image_fetch_failures":     o.fetchFailures,
		"leads_measured":           o.leadsMeasured,
		"total_processing_time_ms": o.totalProcessingTime.Milliseconds(),
		"avg_processing_time_ms":   avgProcessingTime.Milliseconds(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	wg        sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event concurrently.
// Observers must not rely on ctx outliving the request.
func (p *EventPublisher) NotifyObservers(ctx context.Context, event DigitizationEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		p.wg.Add(1)
		go func(obs Observer) {
			defer p.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Flush waits until every notification sent so far has been handled
func (p *EventPublisher) Flush() {
	p.wg.Wait()
}
