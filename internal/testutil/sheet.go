// Package testutil draws synthetic ECG sheets for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Sheet describes a synthetic 2x6 ECG sheet. Every lead band carries the
// same trace: a flat baseline with raised-cosine beats at BeatSpacing
// pixel intervals, the first centred BeatSpacing/2 into the lead.
type Sheet struct {
	Width, Height int
	BeatSpacing   int
	Amplitude     float64
	HalfWidth     int
	Thickness     int
	Blank         bool
}

// DefaultSheet is an 800x360 sheet with 400x60 leads and four beats per
// lead, 100 px apart. At 100 Hz that is 60 BPM.
func DefaultSheet() Sheet {
	return Sheet{
		Width:       800,
		Height:      360,
		BeatSpacing: 100,
		Amplitude:   35,
		HalfWidth:   15,
		Thickness:   3,
	}
}

// Image renders the sheet in black ink on white paper
func (s Sheet) Image() *image.NRGBA {
	img := imaging.New(s.Width, s.Height, color.White)
	if s.Blank {
		return img
	}

	leadWidth := s.Width / 2
	bandHeight := s.Height / 6
	for col := 0; col < 2; col++ {
		for row := 0; row < 6; row++ {
			s.drawTrace(img, col*leadWidth, row*bandHeight, leadWidth, bandHeight)
		}
	}
	return img
}

// PNG renders the sheet as PNG bytes
func (s Sheet) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, s.Image(), imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Centers returns the beat centres in lead coordinates for a lead of width w
func (s Sheet) Centers(w int) []int {
	var centers []int
	for c := s.BeatSpacing / 2; c < w; c += s.BeatSpacing {
		centers = append(centers, c)
	}
	return centers
}

func (s Sheet) traceY(x, w, bandHeight int) float64 {
	baseline := float64(bandHeight) * 0.75
	y := baseline
	for _, c := range s.Centers(w) {
		d := x - c
		if d > -s.HalfWidth && d < s.HalfWidth {
			y -= s.Amplitude * (1 + math.Cos(math.Pi*float64(d)/float64(s.HalfWidth))) / 2
		}
	}
	return y
}

func (s Sheet) drawTrace(img *image.NRGBA, x0, y0, w, bandHeight int) {
	half := s.Thickness / 2
	prev := s.traceY(0, w, bandHeight)
	for x := 0; x < w; x++ {
		cur := s.traceY(x, w, bandHeight)
		top := int(math.Round(math.Min(prev, cur))) - half
		bottom := int(math.Round(math.Max(prev, cur))) + half
		for y := max(top, 0); y <= bottom && y < bandHeight; y++ {
			img.Set(x0+x, y0+y, color.Black)
		}
		prev = cur
	}
}
