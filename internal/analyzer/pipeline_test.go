package analyzer

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"gocv.io/x/gocv"

	apperrors "go-ecg-digitizer/internal/errors"
	"go-ecg-digitizer/internal/testutil"
	"go-ecg-digitizer/internal/vision"
	"go-ecg-digitizer/internal/waveform"
)

func sheetBytes(t *testing.T, s testutil.Sheet) []byte {
	t.Helper()
	data, err := s.PNG()
	if err != nil {
		t.Fatalf("Failed to render sheet: %v", err)
	}
	return data
}

func testOptions() Options {
	return DefaultOptions().WithSamplingRate(100)
}

func TestDigitize_SyntheticSheet(t *testing.T) {
	data := sheetBytes(t, testutil.DefaultSheet())

	table, err := NewDigitizer().Digitize(context.Background(), data, testOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(table.Records) != 12 {
		t.Fatalf("Expected 12 records, got %d", len(table.Records))
	}
	if table.Width != 800 || table.Height != 360 {
		t.Errorf("Expected 800x360 sheet, got %dx%d", table.Width, table.Height)
	}
	if table.ID == "" {
		t.Error("Expected an analysis ID")
	}

	for i, r := range table.Records {
		if r.Lead != vision.Leads[i].String() {
			t.Errorf("Record %d: expected lead %s, got %s", i, vision.Leads[i], r.Lead)
		}
		if r.DetectedPeaks < 2 {
			t.Errorf("%s: expected at least 2 peaks, got %d", r.Lead, r.DetectedPeaks)
			continue
		}
		if r.HeartRate == nil || math.Abs(*r.HeartRate-60) > 3 {
			t.Errorf("%s: expected heart rate near 60 BPM, got %v", r.Lead, r.HeartRate)
		}
		if r.RRInterval == nil || math.Abs(*r.RRInterval-1) > 0.05 {
			t.Errorf("%s: expected RR interval near 1 s, got %v", r.Lead, r.RRInterval)
		}
		if r.QRSDuration == nil || r.QTInterval == nil || r.PRInterval == nil {
			t.Errorf("%s: expected all intervals to be measured", r.Lead)
		}
	}

	if table.Waveforms != nil {
		t.Error("Expected no waveforms unless requested")
	}
}

func TestDigitize_GridMaskTracing(t *testing.T) {
	data := sheetBytes(t, testutil.DefaultSheet())

	table, err := NewDigitizer().Digitize(context.Background(), data, testOptions().WithGridMask(true))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	for _, r := range table.Records {
		if r.HeartRate == nil || math.Abs(*r.HeartRate-60) > 3 {
			t.Errorf("%s: expected heart rate near 60 BPM from the grid mask, got %v", r.Lead, r.HeartRate)
		}
	}
}

func TestDigitize_Waveforms(t *testing.T) {
	data := sheetBytes(t, testutil.DefaultSheet())

	table, err := NewDigitizer().Digitize(context.Background(), data, testOptions().WithWaveforms(true))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(table.Waveforms) != 12 {
		t.Fatalf("Expected 12 waveforms, got %d", len(table.Waveforms))
	}
	for _, wf := range table.Waveforms {
		if len(wf.Samples) != 400 {
			t.Errorf("%s: expected 400 samples, got %d", wf.Lead, len(wf.Samples))
		}
		if wf.SamplingRate != 100 {
			t.Errorf("%s: expected sampling rate 100, got %g", wf.Lead, wf.SamplingRate)
		}
	}
}

func TestDigitize_Deterministic(t *testing.T) {
	data := sheetBytes(t, testutil.DefaultSheet())
	d := NewDigitizer()

	first, err := d.Digitize(context.Background(), data, testOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := d.Digitize(context.Background(), data, testOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !reflect.DeepEqual(first.Records, second.Records) {
		t.Error("Expected identical records for identical input")
	}
	if first.ID == second.ID {
		t.Error("Expected distinct analysis IDs")
	}
}

func TestDigitize_BlankSheet(t *testing.T) {
	s := testutil.DefaultSheet()
	s.Blank = true

	table, err := NewDigitizer().Digitize(context.Background(), sheetBytes(t, s), testOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(table.Records) != 12 {
		t.Fatalf("Expected 12 records, got %d", len(table.Records))
	}
	for _, r := range table.Records {
		if r.DetectedPeaks != 0 || r.Measured() {
			t.Errorf("%s: expected an unmeasured record, got %+v", r.Lead, r)
		}
	}
}

func TestDigitize_TinySheet(t *testing.T) {
	s := testutil.DefaultSheet()
	s.Width, s.Height, s.Blank = 10, 5, true

	table, err := NewDigitizer().Digitize(context.Background(), sheetBytes(t, s), testOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(table.Records) != 12 {
		t.Errorf("Expected 12 records for a tiny sheet, got %d", len(table.Records))
	}
	if len(table.Warnings) == 0 {
		t.Error("Expected layout warnings for a tiny sheet")
	}
}

func TestDigitize_UndecodableInput(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("this is not an image"),
	} {
		t.Run(name, func(t *testing.T) {
			table, err := NewDigitizer().Digitize(context.Background(), data, DefaultOptions())
			if table != nil {
				t.Error("Expected no table")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeDecode) {
				t.Errorf("Expected decode error, got %v", err)
			}
		})
	}
}

func TestDigitize_InvalidOptions(t *testing.T) {
	_, err := NewDigitizer().Digitize(context.Background(), []byte("x"), DefaultOptions().WithSamplingRate(0))
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestDigitize_ContextDone(t *testing.T) {
	data := sheetBytes(t, testutil.DefaultSheet())

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	table, err := NewDigitizer().Digitize(ctx, data, testOptions())
	if table != nil {
		t.Error("Expected no partial table")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}

	ctx, cancel = context.WithCancel(context.Background())
	cancel()
	if _, err := NewDigitizer().Digitize(ctx, data, testOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected error wrapping context.Canceled, got %v", err)
	}
}

// stubExtractor returns a fixed waveform and fails on selected calls
type stubExtractor struct {
	w     waveform.Waveform
	fail  map[int]error
	calls int
}

func (s *stubExtractor) next() (waveform.Waveform, error) {
	call := s.calls
	s.calls++
	if err, ok := s.fail[call]; ok {
		return nil, err
	}
	out := make(waveform.Waveform, len(s.w))
	copy(out, s.w)
	return out, nil
}

func (s *stubExtractor) Reconstruct(gocv.Mat, bool) (waveform.Waveform, error) {
	return s.next()
}

func (s *stubExtractor) ReconstructBinary(gocv.Mat, bool) (waveform.Waveform, error) {
	return s.next()
}

func TestDigitize_PerLeadFailuresAreIsolated(t *testing.T) {
	w := make(waveform.Waveform, 400)
	for _, c := range []int{50, 150, 250, 350} {
		for d := -10; d <= 10; d++ {
			w[c+d] = 50 * (1 + math.Cos(math.Pi*float64(d)/10)) / 2
		}
	}
	stub := &stubExtractor{
		w: w,
		fail: map[int]error{
			2:  vision.ErrNoTrace,
			11: errors.New("contour extraction failed"),
		},
	}

	table, err := NewDigitizerWithExtractor(stub).Digitize(context.Background(), sheetBytes(t, testutil.DefaultSheet()), testOptions())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if stub.calls != 12 {
		t.Errorf("Expected 12 extractor calls, got %d", stub.calls)
	}

	for i, r := range table.Records {
		if i == 2 || i == 11 {
			if r.Measured() || r.DetectedPeaks != 0 {
				t.Errorf("%s: expected unmeasured record after failure, got %+v", r.Lead, r)
			}
			continue
		}
		if r.DetectedPeaks != 4 {
			t.Errorf("%s: expected 4 peaks, got %d", r.Lead, r.DetectedPeaks)
		}
		if r.HeartRate == nil || math.Abs(*r.HeartRate-60) > 1e-9 {
			t.Errorf("%s: expected 60 BPM, got %v", r.Lead, r.HeartRate)
		}
	}
}
