package waveform

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

const (
	// MaxSmoothingWindow caps the Savitzky-Golay window length.
	MaxSmoothingWindow = 21
	// SmoothingOrder is the degree of the local polynomial fit.
	SmoothingOrder = 2
)

// SmoothingWindow returns the odd window length used to smooth n samples:
// half the waveform length rounded down to an odd number, capped at
// MaxSmoothingWindow. A result not greater than SmoothingOrder means the
// waveform is too short to smooth.
func SmoothingWindow(n int) int {
	w := n / 2
	if w%2 == 0 {
		w--
	}
	if w > MaxSmoothingWindow {
		w = MaxSmoothingWindow
	}
	return w
}

// Smooth applies the default Savitzky-Golay filter in place. Waveforms too
// short for a window larger than the polynomial order are left untouched.
func (w Waveform) Smooth() error {
	window := SmoothingWindow(len(w))
	if window <= SmoothingOrder {
		return nil
	}
	return SavitzkyGolay(w, window, SmoothingOrder)
}

// SavitzkyGolay smooths w in place with a least-squares polynomial of the
// given order fitted over an odd-length sliding window.
//
// Interior samples take the value of the fit centred on them. The first and
// last window/2 samples are evaluated on the polynomial fitted to the first
// and last full window respectively, so no padding is invented at the edges.
func SavitzkyGolay(w Waveform, window, order int) error {
	n := len(w)
	switch {
	case window%2 == 0 || window < 1:
		return fmt.Errorf("savitzky-golay window must be a positive odd number, got %d", window)
	case order >= window:
		return fmt.Errorf("savitzky-golay order %d must be less than window %d", order, window)
	case window > n:
		return fmt.Errorf("savitzky-golay window %d exceeds %d samples", window, n)
	}

	proj, err := savgolProjection(window, order)
	if err != nil {
		return err
	}

	src := make([]float64, n)
	copy(src, w)
	half := window / 2

	apply := func(row, offset int) float64 {
		var sum float64
		for j := 0; j < window; j++ {
			sum += proj.At(row, j) * src[offset+j]
		}
		return sum
	}

	for i := 0; i < n; i++ {
		switch {
		case i < half:
			w[i] = apply(i, 0)
		case i >= n-half:
			w[i] = apply(i-(n-window), n-window)
		default:
			w[i] = apply(half, i-half)
		}
	}
	return nil
}

// savgolProjection returns the hat matrix A(AᵀA)⁻¹Aᵀ of the Vandermonde
// design matrix A over window positions centred on zero. Row r holds the
// weights that evaluate the fitted polynomial at window position r.
func savgolProjection(window, order int) (*mat.Dense, error) {
	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for j := 0; j < window; j++ {
		t := float64(j - half)
		v := 1.0
		for k := 0; k <= order; k++ {
			a.Set(j, k, v)
			v *= t
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("savitzky-golay normal equations: %w", err)
	}

	var left mat.Dense
	left.Mul(a, &inv)

	var proj mat.Dense
	proj.Mul(&left, a.T())
	return &proj, nil
}
