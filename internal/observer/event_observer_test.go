package observer

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []DigitizationEvent
}

func (o *recordingObserver) OnEvent(ctx context.Context, event DigitizationEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
}

func (o *recordingObserver) GetObserverName() string { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event DigitizationEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string                              { return "panicking" }

func TestEventPublisher_NotifyAndUnsubscribe(t *testing.T) {
	p := NewEventPublisher()
	rec := &recordingObserver{name: "recorder"}
	p.Subscribe(rec)
	p.Subscribe(panickingObserver{})

	p.NotifyObservers(context.Background(), DigitizationEvent{EventType: AnalysisStarted, RequestID: "r1"})
	p.Flush()

	if len(rec.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(rec.events))
	}
	if rec.events[0].Timestamp.IsZero() {
		t.Error("Expected timestamp to be filled in")
	}

	p.Unsubscribe(rec)
	p.NotifyObservers(context.Background(), DigitizationEvent{EventType: AnalysisCompleted})
	p.Flush()

	if len(rec.events) != 1 {
		t.Errorf("Expected no events after unsubscribe, got %d", len(rec.events))
	}
}

func TestMetricsObserver(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, DigitizationEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, DigitizationEvent{EventType: AnalysisCompleted, LeadsMeasured: 10, ProcessingTime: 200 * time.Millisecond})
	m.OnEvent(ctx, DigitizationEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, DigitizationEvent{EventType: AnalysisCompleted, LeadsMeasured: 12, ProcessingTime: 400 * time.Millisecond})
	m.OnEvent(ctx, DigitizationEvent{EventType: AnalysisStarted})
	m.OnEvent(ctx, DigitizationEvent{EventType: AnalysisFailed})
	m.OnEvent(ctx, DigitizationEvent{EventType: ImageFetchFailed})

	metrics := m.GetMetrics()
	expected := map[string]int64{
		"total_analyses":           3,
		"successful_analyses":      2,
		"failed_analyses":          1,
		"image_fetch_failures":     1,
		"leads_measured":           22,
		"total_processing_time_ms": 600,
		"avg_processing_time_ms":   300,
	}
	for k, v := range expected {
		if metrics[k] != v {
			t.Errorf("%s: expected %d, got %d", k, v, metrics[k])
		}
	}
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	o := NewLoggingObserver(l)
	o.OnEvent(context.Background(), DigitizationEvent{
		EventType:     AnalysisCompleted,
		RequestID:     "abc",
		LeadsMeasured: 12,
		Success:       true,
		Metadata:      map[string]interface{}{"grid_coverage": 0.1},
	})

	out := buf.String()
	for _, want := range []string{"ECG digitization completed", `"request_id":"abc"`, `"leads_measured":12`, "grid_coverage"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %s, got %s", want, out)
		}
	}
}
