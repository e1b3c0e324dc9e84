// Package dwt implements the Discrete Wavelet Transform stage of a JPEG 2000
// tile coder.
//
// Two filters are supported:
//   - 5-3 reversible: integer lifting, forward and inverse are exact inverses
//   - 9-7 irreversible: 13-bit fixed-point forward, float32 inverse that
//     lifts four rows or four columns at once
//
// A tile is a row-major sample buffer with an explicit stride plus the
// sequence of resolution rectangles produced by the tile-component layer.
// Index 0 is the most decomposed resolution, the last index the full tile.
// The transform runs in place.
package dwt

import "github.com/pkg/errors"

// Filter selects the wavelet kernel.
type Filter int

// Filter values.
const (
	Reversible53   Filter = 0 // 5-3 integer lifting
	Irreversible97 Filter = 1 // 9-7 lifting
)

// String returns the filter's name.
func (f Filter) String() string {
	switch f {
	case Reversible53:
		return "5-3"
	case Irreversible97:
		return "9-7"
	default:
		return "unknown"
	}
}

// forward resolves the 1D forward kernel for f.
func (f Filter) forward() (func(a []int32, dn, sn, cas int), error) {
	switch f {
	case Reversible53:
		return encode53, nil
	case Irreversible97:
		return encode97, nil
	}
	return nil, errors.Wrapf(ErrFilter, "filter %d", int(f))
}

// Rect is a half-open rectangle [X0, X1) x [Y0, Y1) in canvas coordinates.
type Rect struct {
	X0, Y0, X1, Y1 int
}

// Width returns X1 - X0.
func (r Rect) Width() int { return r.X1 - r.X0 }

// Height returns Y1 - Y0.
func (r Rect) Height() int { return r.Y1 - r.Y0 }

func (r Rect) empty() bool { return r.Width() == 0 || r.Height() == 0 }

// Options configures a transform call. A nil *Options uses the defaults.
type Options struct {
	// Allocator supplies scratch buffers. Nil uses PoolAllocator.
	Allocator Allocator

	// Scalar forces the lane-at-a-time 9-7 inverse lifter regardless of
	// the CPU.
	Scalar bool
}

// DefaultOptions returns the default transform options.
func DefaultOptions() *Options {
	return &Options{
		Allocator: PoolAllocator{},
	}
}

func (o *Options) allocator() Allocator {
	if o == nil || o.Allocator == nil {
		return PoolAllocator{}
	}
	return o.Allocator
}

func (o *Options) scalar() bool {
	return o != nil && o.Scalar
}

// Encode runs the forward transform with filter f over every resolution of
// the tile. Levels are processed from the full tile towards res[0]; each
// level transforms columns, then rows, leaving the low band in the top-left
// corner of the level's region.
//
// For Irreversible97, data holds fixed-point samples and the coefficients
// stay fixed point.
func Encode(f Filter, data []int32, stride int, res []Rect, o *Options) error {
	fwd, err := f.forward()
	if err != nil {
		return err
	}
	numRes := len(res)
	if err := checkTile(len(data), stride, res, numRes); err != nil {
		return err
	}
	if numRes <= 1 || res[numRes-1].empty() {
		return nil
	}

	alloc := o.allocator()
	mem, err := alloc.Int32s(maxResolution(res, numRes))
	if err != nil {
		return err
	}
	defer alloc.PutInt32s(mem)

	for i := numRes - 1; i > 0; i-- {
		fine, coarse := res[i], res[i-1]
		rw, rh := fine.Width(), fine.Height()

		sn := coarse.Height()
		dn := rh - sn
		cas := fine.Y0 & 1
		for j := 0; j < rw; j++ {
			col := data[j:]
			for k := 0; k < rh; k++ {
				mem[k] = col[k*stride]
			}
			fwd(mem, dn, sn, cas)
			deinterleaveV(mem, col, dn, sn, stride, cas)
		}

		sn = coarse.Width()
		dn = rw - sn
		cas = fine.X0 & 1
		for j := 0; j < rh; j++ {
			row := data[j*stride:]
			copy(mem, row[:rw])
			fwd(mem, dn, sn, cas)
			deinterleaveH(mem, row, dn, sn, cas)
		}
	}
	return nil
}

// Decode53 runs the inverse 5-3 transform, reconstructing resolutions
// res[1] through res[numRes-1]. With numRes < len(res) the result is the
// reduced-resolution image occupying the top-left region of res[numRes-1].
func Decode53(data []int32, stride int, res []Rect, numRes int, o *Options) error {
	if err := checkTile(len(data), stride, res, numRes); err != nil {
		return err
	}
	if numRes <= 1 || res[numRes-1].empty() {
		return nil
	}

	alloc := o.allocator()
	mem, err := alloc.Int32s(maxResolution(res, numRes))
	if err != nil {
		return err
	}
	defer alloc.PutInt32s(mem)

	h := pass{mem: mem}
	v := pass{mem: mem}
	rw, rh := res[0].Width(), res[0].Height()
	for r := 1; r < numRes; r++ {
		h.sn, v.sn = rw, rh
		rw, rh = res[r].Width(), res[r].Height()

		h.dn = rw - h.sn
		h.cas = res[r].X0 & 1
		for j := 0; j < rh; j++ {
			row := data[j*stride:]
			interleaveH(&h, row)
			decode53(h.mem, h.dn, h.sn, h.cas)
			copy(row[:rw], h.mem[:rw])
		}

		v.dn = rh - v.sn
		v.cas = res[r].Y0 & 1
		for j := 0; j < rw; j++ {
			col := data[j:]
			interleaveV(&v, col, stride)
			decode53(v.mem, v.dn, v.sn, v.cas)
			for k := 0; k < rh; k++ {
				col[k*stride] = v.mem[k]
			}
		}
	}
	return nil
}

// Decode97 runs the inverse 9-7 transform on float coefficients. Rows are
// lifted four at a time, then columns four at a time; the last block of
// each pass may hold fewer.
func Decode97(data []float32, stride int, res []Rect, numRes int, o *Options) error {
	if err := checkTile(len(data), stride, res, numRes); err != nil {
		return err
	}
	if numRes <= 1 || res[numRes-1].empty() {
		return nil
	}

	alloc := o.allocator()
	mem, err := alloc.Float32s(4 * maxResolution(res, numRes))
	if err != nil {
		return err
	}
	defer alloc.PutFloat32s(mem)

	lf := selectLifter(o.scalar())
	h := lanes{w: mem}
	v := lanes{w: mem}
	rw, rh := res[0].Width(), res[0].Height()
	for r := 1; r < numRes; r++ {
		h.sn, v.sn = rw, rh
		rw, rh = res[r].Width(), res[r].Height()

		h.dn = rw - h.sn
		h.cas = res[r].X0 & 1
		for j := 0; j < rh; j += 4 {
			rows := min(4, rh-j)
			a := data[j*stride:]
			interleaveH4(&h, a, stride, rows)
			decode97(&h, lf)
			for k := 0; k < rw; k++ {
				e := h.at(k)
				for lane := 0; lane < rows; lane++ {
					a[k+lane*stride] = e[lane]
				}
			}
		}

		v.dn = rh - v.sn
		v.cas = res[r].Y0 & 1
		for j := 0; j < rw; j += 4 {
			cols := min(4, rw-j)
			a := data[j:]
			interleaveV4(&v, a, stride, cols)
			decode97(&v, lf)
			for k := 0; k < rh; k++ {
				copy(a[k*stride:k*stride+cols], v.at(k)[:cols])
			}
		}
	}
	return nil
}

// maxResolution returns the largest width or height among res[1:numRes],
// at least 1.
func maxResolution(res []Rect, numRes int) int {
	mr := 1
	for r := 1; r < numRes; r++ {
		mr = max(mr, res[r].Width(), res[r].Height())
	}
	return mr
}

// checkTile validates a tile before any sample is touched.
func checkTile(n, stride int, res []Rect, numRes int) error {
	if len(res) == 0 {
		return errors.Wrap(ErrInvalidResolutions, "no resolutions")
	}
	if numRes < 1 || numRes > len(res) {
		return errors.Wrapf(ErrNumResolutions, "%d requested, %d available", numRes, len(res))
	}
	for r := 0; r < numRes; r++ {
		if res[r].Width() < 0 || res[r].Height() < 0 {
			return errors.Wrapf(ErrInvalidResolutions, "resolution %d: negative extent %+v", r, res[r])
		}
	}
	for r := 1; r < numRes; r++ {
		if err := checkSplit(res[r-1].Width(), res[r].Width(), res[r].X0); err != nil {
			return errors.Wrapf(err, "resolution %d horizontal", r)
		}
		if err := checkSplit(res[r-1].Height(), res[r].Height(), res[r].Y0); err != nil {
			return errors.Wrapf(err, "resolution %d vertical", r)
		}
	}

	top := res[numRes-1]
	if top.empty() {
		return nil
	}
	w, h := top.Width(), top.Height()
	if stride < w {
		return errors.Wrapf(ErrInvalidBuffer, "stride %d below width %d", stride, w)
	}
	if need := stride*(h-1) + w; n < need {
		return errors.Wrapf(ErrInvalidBuffer, "%d samples, need %d", n, need)
	}
	return nil
}

// checkSplit verifies that a signal of n samples starting at origin splits
// into sn low-pass samples and n-sn high-pass samples the way a dyadic
// decomposition does.
func checkSplit(sn, n, origin int) error {
	dn := n - sn
	if dn < 0 {
		return errors.Wrapf(ErrInvalidResolutions, "coarse extent %d exceeds %d", sn, n)
	}
	if origin&1 == 0 {
		if sn != dn && sn != dn+1 {
			return errors.Wrapf(ErrInvalidResolutions, "even origin: sn=%d dn=%d", sn, dn)
		}
		return nil
	}
	if dn != sn && dn != sn+1 {
		return errors.Wrapf(ErrInvalidResolutions, "odd origin: sn=%d dn=%d", sn, dn)
	}
	return nil
}
