package vision

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"
)

var (
	// ErrEmptyImage is returned for empty input buffers or Mats.
	ErrEmptyImage = errors.New("empty image")
	// ErrUndecodable is returned when the bytes are not a supported raster format.
	ErrUndecodable = errors.New("could not decode image bytes")
)

// Decode decodes encoded image bytes (PNG, JPEG, BMP, TIFF...) into a 3 channel BGR Mat
func Decode(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), ErrEmptyImage
	}

	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), ErrUndecodable
	}
	return img, nil
}

// ToGray returns a single channel copy of img
func ToGray(img gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	if img.Empty() {
		return gray, ErrEmptyImage
	}

	if img.Channels() == 1 {
		img.CopyTo(&gray)
		return gray, nil
	}

	code := gocv.ColorBGRToGray
	if img.Channels() == 4 {
		code = gocv.ColorBGRAToGray
	}
	if err := gocv.CvtColor(img, &gray, code); err != nil {
		gray.Close()
		return gocv.NewMat(), fmt.Errorf("convert to grayscale: %w", err)
	}
	return gray, nil
}
