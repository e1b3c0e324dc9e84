// Package jpeg2000 exposes the wavelet stage of a JPEG 2000 tile coder.
//
// A tile component is transformed in place: the forward transform turns
// samples into subband coefficients, the inverse rebuilds the image, either
// at full size or at any lower resolution of the pyramid.
//
// Basic usage with an 8-bit image:
//
//	tc, err := jpeg2000.AnalyzeGray(img, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	half, err := jpeg2000.SynthesizeGray(tc, nil, len(tc.Resolutions)-1)
//
// Lower-level access works on raw buffers and resolution rectangles through
// Encode, DecodeReversible and DecodeIrreversible.
package jpeg2000

import (
	"image"

	"github.com/pkg/errors"

	"github.com/kjansmasl/coolvlviewer-sub035/internal/dwt"
	"github.com/kjansmasl/coolvlviewer-sub035/internal/tcd"
)

// Filter selects the wavelet kernel.
type Filter = dwt.Filter

// Wavelet filters.
const (
	// Reversible53 is the integer 5-3 filter used for lossless coding.
	Reversible53 = dwt.Reversible53
	// Irreversible97 is the 9-7 filter used for lossy coding.
	Irreversible97 = dwt.Irreversible97
)

// Rect is a half-open rectangle in canvas coordinates.
type Rect = dwt.Rect

// Stepsize is a quantisation step in exponent/mantissa form.
type Stepsize = dwt.Stepsize

// Allocator supplies scratch buffers to the transforms.
type Allocator = dwt.Allocator

// TransformOptions configures a single raw-buffer transform.
type TransformOptions = dwt.Options

// TileComponent is one component of a tile with its resolution pyramid.
type TileComponent = tcd.TileComponent

// Errors returned by the transforms. Match with errors.Is.
var (
	ErrInvalidResolutions = dwt.ErrInvalidResolutions
	ErrNumResolutions     = dwt.ErrNumResolutions
	ErrInvalidBuffer      = dwt.ErrInvalidBuffer
	ErrFilter             = dwt.ErrFilter
	ErrScratch            = dwt.ErrScratch
	ErrStepsize           = dwt.ErrStepsize
	ErrSampleRange        = tcd.ErrSampleRange
)

// Options holds the tile coding options.
type Options struct {
	// Lossless specifies whether to use lossless compression.
	// If true, the 5-3 reversible wavelet transform is used.
	// If false, the 9-7 irreversible wavelet transform is used.
	Lossless bool

	// NumResolutions specifies the number of resolution levels.
	// Default is 6 (5 decomposition levels + 1).
	NumResolutions int

	// NoQuantization gives every band a unit step even when lossy.
	NoQuantization bool

	// ScalarInverse forces the lane-at-a-time 9-7 inverse.
	ScalarInverse bool

	// Allocator supplies scratch buffers. Nil uses a pooled allocator.
	Allocator Allocator
}

// DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{
		Lossless:       false,
		NumResolutions: 6,
	}
}

// Filter returns the wavelet filter the options select.
func (o *Options) Filter() Filter {
	if o.Lossless {
		return Reversible53
	}
	return Irreversible97
}

func (o *Options) transform() *TransformOptions {
	return &TransformOptions{
		Allocator: o.Allocator,
		Scalar:    o.ScalarInverse,
	}
}

func optionsOrDefault(o *Options) *Options {
	if o == nil {
		return DefaultOptions()
	}
	if o.NumResolutions == 0 {
		c := *o
		c.NumResolutions = DefaultOptions().NumResolutions
		return &c
	}
	return o
}

// grayPrecision is the sample depth of image.Gray.
const grayPrecision = 8

// AnalyzeGray runs the forward transform over m as a single tile component.
// The image bounds are the component's canvas coordinates, so odd origins
// are transformed with the matching phase. Samples are level shifted to
// signed values first, and each band is given its quantisation step.
func AnalyzeGray(m *image.Gray, o *Options) (*TileComponent, error) {
	o = optionsOrDefault(o)
	b := m.Bounds()
	tc, err := tcd.NewTileComponent(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, o.NumResolutions)
	if err != nil {
		return nil, err
	}
	tc.Options = o.transform()

	const shift = 1 << (grayPrecision - 1)
	w := tc.Width()
	for y := 0; y < tc.Height(); y++ {
		row := m.Pix[y*m.Stride : y*m.Stride+w]
		for x, v := range row {
			tc.Data[y*w+x] = int32(v) - shift
		}
	}

	f := o.Filter()
	if err := tc.ForwardDWT(f); err != nil {
		return nil, errors.Wrapf(err, "%v forward transform", f)
	}
	if err := tc.AssignStepsizes(f, grayPrecision, o.Lossless || o.NoQuantization); err != nil {
		return nil, err
	}
	return tc, nil
}

// SynthesizeGray rebuilds an image from the first numRes resolutions of tc.
// The result covers the rectangle of resolution numRes-1, so numRes equal
// to len(tc.Resolutions) gives the full image. The filter is the one tc was
// analysed with; o selects it only for a component that never went through
// the forward transform. The transform options of o replace those tc
// carries. tc is consumed: its buffers hold the reconstruction afterwards.
func SynthesizeGray(tc *TileComponent, o *Options, numRes int) (*image.Gray, error) {
	o = optionsOrDefault(o)
	tc.Options = o.transform()
	f := o.Filter()
	if tc.Transformed {
		f = tc.Filter
	}
	if err := tc.InverseDWT(f, numRes); err != nil {
		return nil, errors.Wrapf(err, "%v inverse transform", f)
	}

	r := tc.Resolutions[numRes-1]
	m := image.NewGray(image.Rect(r.X0, r.Y0, r.X1, r.Y1))
	const shift = 1 << (grayPrecision - 1)
	stride := tc.Width()
	w, h := tc.ReducedSize(numRes)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := tc.Data[y*stride+x] + shift
			m.Pix[y*m.Stride+x] = uint8(min(max(v, 0), 255))
		}
	}
	return m, nil
}

// Encode runs the forward transform with filter f over a raw tile buffer.
// res lists the resolution rectangles, smallest first.
func Encode(f Filter, data []int32, stride int, res []Rect, o *TransformOptions) error {
	return dwt.Encode(f, data, stride, res, o)
}

// DecodeReversible runs the inverse 5-3 transform up to resolution numRes-1.
func DecodeReversible(data []int32, stride int, res []Rect, numRes int, o *TransformOptions) error {
	return dwt.Decode53(data, stride, res, numRes, o)
}

// DecodeIrreversible runs the inverse 9-7 transform up to resolution
// numRes-1 on float coefficients.
func DecodeIrreversible(data []float32, stride int, res []Rect, numRes int, o *TransformOptions) error {
	return dwt.Decode97(data, stride, res, numRes, o)
}

// NewTileComponent allocates a tile component over bounds with
// numResolutions resolutions.
func NewTileComponent(bounds image.Rectangle, numResolutions int) (*TileComponent, error) {
	return tcd.NewTileComponent(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y, numResolutions)
}

// Norm returns the synthesis norm of a subband for filter f.
func Norm(f Filter, level, orient int) float64 {
	return f.Norm(level, orient)
}

// Gain returns log2 of a subband's dynamic range gain for filter f.
func Gain(f Filter, orient int) int {
	return f.Gain(orient)
}

// EncodeStepsize converts a step scaled by 2^13 into exponent/mantissa
// form for a band of numbps bits.
func EncodeStepsize(stepsize, numbps int) (Stepsize, error) {
	return dwt.EncodeStepsize(stepsize, numbps)
}

// ExplicitStepsizes returns the quantisation step of every band of a
// component, in codestream order.
func ExplicitStepsizes(f Filter, numResolutions, prec int, noQuant bool) ([]Stepsize, error) {
	return dwt.CalcExplicitStepsizes(f, numResolutions, prec, noQuant)
}
