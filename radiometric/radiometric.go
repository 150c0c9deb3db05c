// Package radiometric maps decoded samples to physical values (rescale) and
// to 8-bit display values (window/level).
package radiometric

import (
	"math"

	"github.com/caio-sobreiro/dicomfile/errors"
	"github.com/caio-sobreiro/dicomfile/interfaces"
	"github.com/caio-sobreiro/dicomfile/pixel"
	"github.com/caio-sobreiro/dicomfile/types"
)

// Image holds rescaled sample values in the layout of the source buffer.
type Image struct {
	Shape  pixel.Shape
	Values []float64
}

// Frame returns the values of frame i.
func (img *Image) Frame(i int) []float64 {
	n := img.Shape.FrameSamples()
	if i < 0 || (i+1)*n > len(img.Values) {
		return nil
	}
	return img.Values[i*n : (i+1)*n]
}

// WindowLevel applies WindowLevel to every value of the image.
func (img *Image) WindowLevel(center, width float64) ([]uint8, error) {
	return WindowLevel(img.Values, center, width)
}

// Rescale applies value*slope + intercept to each sample.
func Rescale(buf *pixel.Buffer, slope, intercept float64) *Image {
	img := &Image{Shape: buf.Shape, Values: make([]float64, len(buf.Samples))}
	for i, s := range buf.Samples {
		img.Values[i] = float64(s)*slope + intercept
	}
	return img
}

// WindowLevel clips each value to [center-width/2, center+width/2] and maps
// that range linearly onto 0..255. Values at or below the lower bound give
// 0, values at or above the upper bound give 255.
func WindowLevel(values []float64, center, width float64) ([]uint8, error) {
	if !(width > 0) {
		return nil, errors.NewWindowError(width)
	}
	lo := center - width/2
	hi := center + width/2

	out := make([]uint8, len(values))
	for i, v := range values {
		switch {
		case v <= lo:
			out[i] = 0
		case v >= hi:
			out[i] = 255
		default:
			out[i] = uint8((v - lo) / (hi - lo) * 255)
		}
	}
	return out, nil
}

// Params are the rescale and default window attributes of a dataset.
type Params struct {
	Slope     float64
	Intercept float64
	// Centers and Widths are the (0028,1050) and (0028,1051) values; the
	// first pair is the default window.
	Centers []float64
	Widths  []float64
}

// HasWindow reports whether a usable default window is declared.
func (p Params) HasWindow() bool {
	return len(p.Centers) > 0 && len(p.Widths) > 0 && p.Widths[0] > 0
}

// Window returns the default window, falling back to AutoWindow(values).
func (p Params) Window(values []float64) (center, width float64) {
	if p.HasWindow() {
		return p.Centers[0], p.Widths[0]
	}
	return AutoWindow(values)
}

// ParamsFromDataset reads the modality LUT and VOI LUT window attributes.
// Slope defaults to 1 and intercept to 0.
func ParamsFromDataset(ds interfaces.DatasetReader) Params {
	p := Params{Slope: 1}
	if v, ok := ds.Float(types.RescaleSlopeTag); ok {
		p.Slope = v
	}
	if v, ok := ds.Float(types.RescaleInterceptTag); ok {
		p.Intercept = v
	}
	p.Centers, _ = ds.Floats(types.WindowCenterTag)
	p.Widths, _ = ds.Floats(types.WindowWidthTag)
	return p
}

// AutoWindow spans the full value range: center is the midpoint and width
// the distance between minimum and maximum. A flat or empty image gets
// width 1.
func AutoWindow(values []float64) (center, width float64) {
	if len(values) == 0 {
		return 0, 1
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	width = hi - lo
	if width <= 0 {
		width = 1
	}
	return (hi + lo) / 2, width
}

// Display decodes the pixel data of ds, rescales it and windows each frame
// with the dataset's default window (or AutoWindow). It returns one 8-bit
// plane per frame.
func Display(ds interfaces.DatasetReader) ([][]uint8, error) {
	buf, err := ds.PixelData()
	if err != nil {
		return nil, err
	}
	p := ParamsFromDataset(ds)
	img := Rescale(buf, p.Slope, p.Intercept)

	frames := make([][]uint8, buf.Shape.Frames)
	for i := range frames {
		values := img.Frame(i)
		center, width := p.Window(values)
		if frames[i], err = WindowLevel(values, center, width); err != nil {
			return nil, err
		}
	}
	return frames, nil
}
