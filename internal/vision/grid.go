package vision

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// GridParams controls grid suppression
type GridParams struct {
	// BlockSize is the odd neighbourhood size of the adaptive threshold
	BlockSize int
	// C is subtracted from the weighted neighbourhood mean
	C float32
	// LineFraction sets the structuring line length as a fraction of the image width
	LineFraction float64
	// Iterations of each directional opening
	Iterations int
}

// DefaultGridParams returns the parameters tuned for scanned 12-lead sheets
func DefaultGridParams() GridParams {
	return GridParams{
		BlockSize:    21,
		C:            7,
		LineFraction: 0.2,
		Iterations:   2,
	}
}

// GridSuppression is the outcome of SuppressGrid
type GridSuppression struct {
	// Mask is the binary ink mask (ink 255) with grid lines removed, same size as the input
	Mask gocv.Mat
	// GridFraction is the share of pixels classified as grid
	GridFraction float64
	// InkFraction is the share of pixels left in Mask
	InkFraction float64
}

// Close releases the mask
func (g *GridSuppression) Close() error {
	return g.Mask.Close()
}

// SuppressGrid separates the trace from long horizontal and vertical grid
// lines. The image is binarized with an inverted Gaussian adaptive
// threshold, grid lines are recovered by opening with line shaped kernels
// in both directions, and subtracted. A small elliptical closing repairs
// trace gaps left where it crossed the grid.
func SuppressGrid(gray gocv.Mat, p GridParams) (*GridSuppression, error) {
	if gray.Empty() {
		return nil, ErrEmptyImage
	}
	if p.BlockSize < 3 || p.BlockSize%2 == 0 {
		return nil, fmt.Errorf("grid block size must be odd and at least 3, got %d", p.BlockSize)
	}
	if p.Iterations < 1 {
		p.Iterations = 1
	}

	src := gray
	if gray.Channels() != 1 {
		converted, err := ToGray(gray)
		if err != nil {
			return nil, err
		}
		defer converted.Close()
		src = converted
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(src, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinaryInv, p.BlockSize, p.C)

	length := max(1, int(float64(src.Cols())*p.LineFraction))

	horizontalKernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(length, 1))
	defer horizontalKernel.Close()
	verticalKernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(1, length))
	defer verticalKernel.Close()

	horizontal := gocv.NewMat()
	defer horizontal.Close()
	gocv.MorphologyExWithParams(binary, &horizontal, gocv.MorphOpen, horizontalKernel, p.Iterations, gocv.BorderConstant)

	vertical := gocv.NewMat()
	defer vertical.Close()
	gocv.MorphologyExWithParams(binary, &vertical, gocv.MorphOpen, verticalKernel, p.Iterations, gocv.BorderConstant)

	grid := gocv.NewMat()
	defer grid.Close()
	if err := gocv.Add(horizontal, vertical, &grid); err != nil {
		return nil, fmt.Errorf("combine grid masks: %w", err)
	}

	cleaned := gocv.NewMat()
	defer cleaned.Close()
	if err := gocv.Subtract(binary, grid, &cleaned); err != nil {
		return nil, fmt.Errorf("remove grid: %w", err)
	}

	repairKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer repairKernel.Close()

	mask := gocv.NewMat()
	if err := gocv.MorphologyEx(cleaned, &mask, gocv.MorphClose, repairKernel); err != nil {
		mask.Close()
		return nil, fmt.Errorf("repair trace: %w", err)
	}

	area := float64(src.Rows() * src.Cols())
	return &GridSuppression{
		Mask:         mask,
		GridFraction: float64(gocv.CountNonZero(grid)) / area,
		InkFraction:  float64(gocv.CountNonZero(mask)) / area,
	}, nil
}
