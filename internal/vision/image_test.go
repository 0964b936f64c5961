package vision

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, imaging.New(40, 30, color.White))

	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer img.Close()

	if img.Cols() != 40 || img.Rows() != 30 {
		t.Errorf("Expected 40x30, got %dx%d", img.Cols(), img.Rows())
	}
	if img.Channels() != 3 {
		t.Errorf("Expected 3 channels, got %d", img.Channels())
	}
}

func TestDecode_Empty(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrEmptyImage) {
		t.Errorf("Expected ErrEmptyImage, got %v", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not an image")); !errors.Is(err, ErrUndecodable) {
		t.Errorf("Expected ErrUndecodable, got %v", err)
	}
}

func TestToGray(t *testing.T) {
	data := encodePNG(t, imaging.New(10, 8, color.NRGBA{R: 200, G: 200, B: 200, A: 255}))
	img, err := Decode(data)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer img.Close()

	gray, err := ToGray(img)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer gray.Close()

	if gray.Channels() != 1 {
		t.Errorf("Expected 1 channel, got %d", gray.Channels())
	}
	if v := gray.GetUCharAt(4, 5); v != 200 {
		t.Errorf("Expected gray value 200, got %d", v)
	}

	again, err := ToGray(gray)
	if err != nil {
		t.Fatalf("Expected no error on gray input, got %v", err)
	}
	defer again.Close()
	if again.Rows() != 8 || again.Cols() != 10 {
		t.Errorf("Expected 10x8 copy, got %dx%d", again.Cols(), again.Rows())
	}
}
