// Package tcd holds the tile-component model the wavelet stage runs on.
//
// A tile is split into components, each with its own sample buffer and
// resolution pyramid:
//   - resolution rectangles, derived from the component bounds by repeated
//     halving with ceiling
//   - subbands per resolution (LL at the lowest, HL, LH and HH above it)
//   - per-band quantisation steps
//
// The transforms themselves live in package dwt.
package tcd

import (
	"math"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/kjansmasl/coolvlviewer-sub035/internal/dwt"
)

const (
	// MaxResolutions is the largest resolution count a codestream can
	// signal (32 decomposition levels).
	MaxResolutions = 33

	// FixedPointBits is the fractional precision of 9-7 coefficients held
	// in Data.
	FixedPointBits = 11

	// MaxSampleBits bounds 9-7 input samples: they must lie in
	// [-2^MaxSampleBits, 2^MaxSampleBits) to survive the fixed-point shift.
	MaxSampleBits = 31 - FixedPointBits
)

// ErrSampleRange reports a 9-7 input sample outside the fixed-point range.
var ErrSampleRange = errors.New("sample exceeds the fixed-point range")

// Band orientations.
const (
	BandLL = 0
	BandHL = 1
	BandLH = 2
	BandHH = 3
)

// Tile represents a single tile in the image.
type Tile struct {
	// Tile index
	Index int

	// Tile bounds in image coordinates
	X0, Y0, X1, Y1 int

	// Components
	Components []*TileComponent
}

// Subsampling is a component's sampling step on the reference grid.
type Subsampling struct {
	Dx, Dy int
}

// NewTile builds a tile whose components all use numResolutions
// resolutions. Component bounds follow the component subsampling.
func NewTile(index int, bounds dwt.Rect, comps []Subsampling, numResolutions int) (*Tile, error) {
	t := &Tile{
		Index:      index,
		X0:         bounds.X0,
		Y0:         bounds.Y0,
		X1:         bounds.X1,
		Y1:         bounds.Y1,
		Components: make([]*TileComponent, len(comps)),
	}
	for c, s := range comps {
		if s.Dx < 1 || s.Dy < 1 {
			return nil, errors.Errorf("component %d: invalid subsampling %dx%d", c, s.Dx, s.Dy)
		}
		tc, err := NewTileComponent(
			ceilDiv(bounds.X0, s.Dx),
			ceilDiv(bounds.Y0, s.Dy),
			ceilDiv(bounds.X1, s.Dx),
			ceilDiv(bounds.Y1, s.Dy),
			numResolutions,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "component %d", c)
		}
		tc.Index = c
		t.Components[c] = tc
	}
	return t, nil
}

// ForwardDWT transforms every component concurrently.
func (t *Tile) ForwardDWT(f dwt.Filter) error {
	var g errgroup.Group
	for _, tc := range t.Components {
		tc := tc
		g.Go(func() error {
			return errors.Wrapf(tc.ForwardDWT(f), "component %d", tc.Index)
		})
	}
	return g.Wait()
}

// InverseDWT reconstructs numRes resolutions of every component
// concurrently.
func (t *Tile) InverseDWT(f dwt.Filter, numRes int) error {
	var g errgroup.Group
	for _, tc := range t.Components {
		tc := tc
		g.Go(func() error {
			return errors.Wrapf(tc.InverseDWT(f, numRes), "component %d", tc.Index)
		})
	}
	return g.Wait()
}

// TileComponent represents a single component within a tile.
type TileComponent struct {
	// Component index
	Index int

	// Component bounds (may differ due to subsampling)
	X0, Y0, X1, Y1 int

	// Resolution levels, smallest first
	Resolutions []*Resolution

	// Samples, then coefficients, row-major with stride X1-X0
	Data []int32

	// 9-7 coefficients during the inverse transform
	DataFloat []float32

	// Transform options; nil uses dwt defaults
	Options *dwt.Options

	// Filter that produced the coefficients in Data, set by ForwardDWT
	Filter      dwt.Filter
	Transformed bool
}

// Resolution represents a resolution level within a tile-component.
type Resolution struct {
	// Resolution index (0 = smallest)
	Level int

	// Bounds at this resolution
	X0, Y0, X1, Y1 int

	// LL alone at index 0, otherwise HL, LH, HH
	Bands []*Band
}

// Band represents a subband within a resolution level.
type Band struct {
	// Orientation (BandLL, BandHL, BandLH, BandHH)
	Orient int

	// Decomposition level the band was produced at
	Level int

	// Band bounds
	X0, Y0, X1, Y1 int

	// Quantisation step and the band's dynamic range in bits
	Stepsize dwt.Stepsize
	Numbps   int
}

// NewTileComponent allocates a component covering [x0, x1) x [y0, y1) and
// derives its resolution and subband geometry.
func NewTileComponent(x0, y0, x1, y1, numResolutions int) (*TileComponent, error) {
	if numResolutions < 1 || numResolutions > MaxResolutions {
		return nil, errors.Wrapf(dwt.ErrNumResolutions, "%d resolutions", numResolutions)
	}
	if x1 < x0 || y1 < y0 {
		return nil, errors.Wrapf(dwt.ErrInvalidResolutions, "component bounds (%d,%d)-(%d,%d)", x0, y0, x1, y1)
	}

	tc := &TileComponent{
		X0:          x0,
		Y0:          y0,
		X1:          x1,
		Y1:          y1,
		Resolutions: make([]*Resolution, numResolutions),
		Data:        make([]int32, (x1-x0)*(y1-y0)),
	}
	for r := range tc.Resolutions {
		tc.initResolution(r)
	}
	return tc, nil
}

// initResolution initializes a resolution level.
func (tc *TileComponent) initResolution(r int) {
	levelno := len(tc.Resolutions) - 1 - r

	res := &Resolution{
		Level: r,
		X0:    ceilDivPow2(tc.X0, levelno),
		Y0:    ceilDivPow2(tc.Y0, levelno),
		X1:    ceilDivPow2(tc.X1, levelno),
		Y1:    ceilDivPow2(tc.Y1, levelno),
	}

	if r == 0 {
		res.Bands = []*Band{{
			Orient: BandLL,
			Level:  levelno,
			X0:     res.X0,
			Y0:     res.Y0,
			X1:     res.X1,
			Y1:     res.Y1,
		}}
	} else {
		res.Bands = []*Band{
			tc.initBand(BandHL, levelno),
			tc.initBand(BandLH, levelno),
			tc.initBand(BandHH, levelno),
		}
	}

	tc.Resolutions[r] = res
}

// initBand places a detail band produced at decomposition level levelno.
// High-pass samples sit at odd positions of the finer grid, so the band is
// the component shifted by half a sample before halving.
func (tc *TileComponent) initBand(orient, levelno int) *Band {
	xb := orient & 1
	yb := orient >> 1
	return &Band{
		Orient: orient,
		Level:  levelno,
		X0:     ceilDivPow2(tc.X0-(1<<levelno)*xb, levelno+1),
		Y0:     ceilDivPow2(tc.Y0-(1<<levelno)*yb, levelno+1),
		X1:     ceilDivPow2(tc.X1-(1<<levelno)*xb, levelno+1),
		Y1:     ceilDivPow2(tc.Y1-(1<<levelno)*yb, levelno+1),
	}
}

// Width returns the component width.
func (tc *TileComponent) Width() int { return tc.X1 - tc.X0 }

// Height returns the component height.
func (tc *TileComponent) Height() int { return tc.Y1 - tc.Y0 }

// Rects returns the resolution rectangles in the form the transforms take.
func (tc *TileComponent) Rects() []dwt.Rect {
	return lo.Map(tc.Resolutions, func(r *Resolution, _ int) dwt.Rect {
		return dwt.Rect{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1}
	})
}

// Bands returns every subband in codestream order.
func (tc *TileComponent) Bands() []*Band {
	return lo.FlatMap(tc.Resolutions, func(r *Resolution, _ int) []*Band {
		return r.Bands
	})
}

// ForwardDWT runs the forward transform over all resolutions. For
// Irreversible97 the samples are first moved to fixed point and the
// coefficients stay there, so samples must fit in MaxSampleBits+1 signed
// bits. On error Data is unchanged.
func (tc *TileComponent) ForwardDWT(f dwt.Filter) error {
	switch f {
	case dwt.Reversible53:
		if err := dwt.Encode(f, tc.Data, tc.Width(), tc.Rects(), tc.Options); err != nil {
			return err
		}
	case dwt.Irreversible97:
		if err := tc.forward97(); err != nil {
			return err
		}
	default:
		return errors.Wrapf(dwt.ErrFilter, "filter %d", int(f))
	}
	tc.Filter = f
	tc.Transformed = true
	return nil
}

func (tc *TileComponent) forward97() error {
	const limit = 1 << MaxSampleBits
	for i, v := range tc.Data {
		if v < -limit || v >= limit {
			return errors.Wrapf(ErrSampleRange, "sample %d is %d", i, v)
		}
	}
	for i := range tc.Data {
		tc.Data[i] <<= FixedPointBits
	}
	if err := dwt.Encode(dwt.Irreversible97, tc.Data, tc.Width(), tc.Rects(), tc.Options); err != nil {
		for i := range tc.Data {
			tc.Data[i] >>= FixedPointBits
		}
		return err
	}
	return nil
}

// InverseDWT reconstructs the first numRes resolutions. The image lands in
// the top-left ReducedSize(numRes) region of Data; samples outside it keep
// their coefficients. After ForwardDWT, f must be the filter it ran with.
func (tc *TileComponent) InverseDWT(f dwt.Filter, numRes int) error {
	if tc.Transformed && f != tc.Filter {
		return errors.Wrapf(dwt.ErrFilter, "%v coefficients, %v inverse", tc.Filter, f)
	}
	switch f {
	case dwt.Reversible53:
		return dwt.Decode53(tc.Data, tc.Width(), tc.Rects(), numRes, tc.Options)
	case dwt.Irreversible97:
		return tc.inverse97(numRes)
	}
	return errors.Wrapf(dwt.ErrFilter, "filter %d", int(f))
}

func (tc *TileComponent) inverse97(numRes int) error {
	if cap(tc.DataFloat) < len(tc.Data) {
		tc.DataFloat = make([]float32, len(tc.Data))
	}
	tc.DataFloat = tc.DataFloat[:len(tc.Data)]

	const scale = 1.0 / (1 << FixedPointBits)
	for i, v := range tc.Data {
		tc.DataFloat[i] = float32(v) * scale
	}
	stride := tc.Width()
	if err := dwt.Decode97(tc.DataFloat, stride, tc.Rects(), numRes, tc.Options); err != nil {
		return err
	}

	w, h := tc.ReducedSize(numRes)
	for y := 0; y < h; y++ {
		row := tc.DataFloat[y*stride : y*stride+w]
		for x, v := range row {
			tc.Data[y*stride+x] = int32(math.RoundToEven(float64(v)))
		}
	}
	return nil
}

// ReducedSize returns the size of the image reconstructed from numRes
// resolutions. numRes is clamped to [1, len(Resolutions)].
func (tc *TileComponent) ReducedSize(numRes int) (w, h int) {
	numRes = min(max(numRes, 1), len(tc.Resolutions))
	r := tc.Resolutions[numRes-1]
	return r.X1 - r.X0, r.Y1 - r.Y0
}

// AssignStepsizes computes explicit quantisation steps for a component of
// prec bits and stores them on the bands.
func (tc *TileComponent) AssignStepsizes(f dwt.Filter, prec int, noQuant bool) error {
	steps, err := dwt.CalcExplicitStepsizes(f, len(tc.Resolutions), prec, noQuant)
	if err != nil {
		return err
	}
	for b, band := range tc.Bands() {
		band.Stepsize = steps[b]
		band.Numbps = prec + f.Gain(band.Orient)
	}
	return nil
}

// Step returns the band's quantisation step as a real number.
func (b *Band) Step() float64 {
	return b.Stepsize.Float(b.Numbps)
}

// Norm returns the synthesis norm of the band for filter f.
func (b *Band) Norm(f dwt.Filter) float64 {
	return f.Norm(b.Level, b.Orient)
}

// Helper functions

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// ceilDivPow2 returns ceil(a / 2^b). It relies on the arithmetic shift, so
// it holds for negative a as well.
func ceilDivPow2(a, b int) int {
	return (a + (1 << b) - 1) >> b
}
