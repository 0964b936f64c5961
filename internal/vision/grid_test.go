package vision

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

var (
	paper = gocv.NewScalar(255, 255, 255, 0)
	ink   = color.RGBA{A: 255}
)

// gridSheet draws a 200x200 gray sheet with full-length grid lines every
// 50 pixels and a short diagonal stroke between them.
func gridSheet() gocv.Mat {
	sheet := gocv.NewMatWithSizeFromScalar(paper, 200, 200, gocv.MatTypeCV8U)
	for _, v := range []int{25, 75, 125, 175} {
		gocv.Line(&sheet, image.Pt(0, v), image.Pt(199, v), ink, 1)
		gocv.Line(&sheet, image.Pt(v, 0), image.Pt(v, 199), ink, 1)
	}
	gocv.Line(&sheet, image.Pt(100, 90), image.Pt(115, 105), ink, 1)
	return sheet
}

func TestSuppressGrid(t *testing.T) {
	sheet := gridSheet()
	defer sheet.Close()

	result, err := SuppressGrid(sheet, DefaultGridParams())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer result.Close()

	if result.Mask.Rows() != 200 || result.Mask.Cols() != 200 {
		t.Errorf("Expected 200x200 mask, got %dx%d", result.Mask.Cols(), result.Mask.Rows())
	}

	if v := result.Mask.GetUCharAt(97, 107); v != 255 {
		t.Errorf("Expected trace pixel to survive, got %d", v)
	}
	if v := result.Mask.GetUCharAt(25, 160); v != 0 {
		t.Errorf("Expected horizontal grid pixel to be removed, got %d", v)
	}
	if v := result.Mask.GetUCharAt(160, 75); v != 0 {
		t.Errorf("Expected vertical grid pixel to be removed, got %d", v)
	}

	if result.GridFraction < 0.02 || result.GridFraction > 0.1 {
		t.Errorf("Expected grid fraction around 0.04, got %.4f", result.GridFraction)
	}
	if result.InkFraction <= 0 || result.InkFraction >= result.GridFraction {
		t.Errorf("Expected a small positive ink fraction, got %.4f", result.InkFraction)
	}
}

func TestSuppressGrid_BlankSheet(t *testing.T) {
	sheet := gocv.NewMatWithSizeFromScalar(paper, 120, 160, gocv.MatTypeCV8U)
	defer sheet.Close()

	result, err := SuppressGrid(sheet, DefaultGridParams())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer result.Close()

	if result.GridFraction != 0 || result.InkFraction != 0 {
		t.Errorf("Expected empty masks for blank paper, got grid %.4f ink %.4f", result.GridFraction, result.InkFraction)
	}
}

func TestSuppressGrid_ColorInput(t *testing.T) {
	sheet := gocv.NewMatWithSizeFromScalar(paper, 60, 80, gocv.MatTypeCV8UC3)
	defer sheet.Close()

	result, err := SuppressGrid(sheet, DefaultGridParams())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer result.Close()

	if result.Mask.Channels() != 1 {
		t.Errorf("Expected single channel mask, got %d", result.Mask.Channels())
	}
}

func TestSuppressGrid_InvalidInput(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	if _, err := SuppressGrid(empty, DefaultGridParams()); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}

	sheet := gocv.NewMatWithSizeFromScalar(paper, 10, 10, gocv.MatTypeCV8U)
	defer sheet.Close()
	params := DefaultGridParams()
	params.BlockSize = 20
	if _, err := SuppressGrid(sheet, params); err == nil {
		t.Error("Expected error for even block size")
	}
}
