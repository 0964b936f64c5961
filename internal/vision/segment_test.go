package vision

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestSegmentLeads(t *testing.T) {
	img := gocv.NewMatWithSize(360, 801, gocv.MatTypeCV8UC3)
	defer img.Close()

	leads, err := SegmentLeads(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer CloseLeads(leads)

	if len(leads) != 12 {
		t.Fatalf("Expected 12 leads, got %d", len(leads))
	}
	for i, li := range leads {
		if li.Lead != Leads[i] {
			t.Errorf("Position %d: expected lead %s, got %s", i, Leads[i], li.Lead)
		}
		if li.Mat.Rows() != 60 {
			t.Errorf("%s: expected 60 rows, got %d", li.Lead, li.Mat.Rows())
		}
		wantCols := 400
		if col, _ := li.Lead.Position(); col == 1 {
			wantCols = 401
		}
		if li.Mat.Cols() != wantCols {
			t.Errorf("%s: expected %d columns, got %d", li.Lead, wantCols, li.Mat.Cols())
		}
	}
}

func TestSegmentLeads_TinySheet(t *testing.T) {
	img := gocv.NewMatWithSize(5, 1, gocv.MatTypeCV8UC3)
	defer img.Close()

	leads, err := SegmentLeads(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer CloseLeads(leads)

	if len(leads) != 12 {
		t.Fatalf("Expected 12 leads, got %d", len(leads))
	}
	for _, li := range leads {
		if !li.Empty() {
			t.Errorf("%s: expected empty region on a 1x5 sheet", li.Lead)
		}
	}
}

func TestSegmentLeads_EmptyImage(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	if _, err := SegmentLeads(img); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}
