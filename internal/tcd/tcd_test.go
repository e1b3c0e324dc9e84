package tcd

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/kjansmasl/coolvlviewer-sub035/internal/dwt"
)

// TestCeilDivPow2 tests the ceilDivPow2 helper function.
func TestCeilDivPow2(t *testing.T) {
	tests := []struct {
		a, b     int
		expected int
	}{
		{0, 0, 0},
		{7, 0, 7},
		{7, 1, 4},  // 3.5 rounds up
		{8, 1, 4},  // exact
		{17, 2, 5}, // 4.25 rounds up
		{1, 3, 1},
		{-1, 1, 0},  // -0.5 rounds up to 0
		{-3, 1, -1}, // -1.5 rounds up to -1
	}

	for _, tt := range tests {
		if got := ceilDivPow2(tt.a, tt.b); got != tt.expected {
			t.Errorf("ceilDivPow2(%d, %d) = %d; want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	tests := []struct {
		a, b     int
		expected int
	}{
		{10, 3, 4},
		{9, 3, 3},
		{0, 2, 0},
		{1, 100, 1},
	}

	for _, tt := range tests {
		if got := ceilDiv(tt.a, tt.b); got != tt.expected {
			t.Errorf("ceilDiv(%d, %d) = %d; want %d", tt.a, tt.b, got, tt.expected)
		}
	}
}

func rectOf(r *Resolution) dwt.Rect {
	return dwt.Rect{X0: r.X0, Y0: r.Y0, X1: r.X1, Y1: r.Y1}
}

func bandRect(b *Band) dwt.Rect {
	return dwt.Rect{X0: b.X0, Y0: b.Y0, X1: b.X1, Y1: b.Y1}
}

func mustTileComponent(t testing.TB, x0, y0, x1, y1, numRes int) *TileComponent {
	t.Helper()
	tc, err := NewTileComponent(x0, y0, x1, y1, numRes)
	if err != nil {
		t.Fatalf("NewTileComponent: %v", err)
	}
	return tc
}

func TestNewTileComponentGeometry(t *testing.T) {
	tc := mustTileComponent(t, 0, 0, 17, 9, 3)

	want := []dwt.Rect{
		{X0: 0, Y0: 0, X1: 5, Y1: 3},
		{X0: 0, Y0: 0, X1: 9, Y1: 5},
		{X0: 0, Y0: 0, X1: 17, Y1: 9},
	}
	if diff := cmp.Diff(want, tc.Rects()); diff != "" {
		t.Errorf("resolutions (-want +got):\n%s", diff)
	}
	for r, res := range tc.Resolutions {
		if res.Level != r || rectOf(res) != want[r] {
			t.Errorf("resolution %d: level %d rect %+v", r, res.Level, rectOf(res))
		}
	}

	ll := tc.Resolutions[0].Bands
	if len(ll) != 1 {
		t.Fatalf("lowest resolution has %d bands, want 1", len(ll))
	}
	if ll[0].Orient != BandLL || ll[0].Level != 2 || bandRect(ll[0]) != want[0] {
		t.Errorf("LL band = %+v", *ll[0])
	}

	hl := tc.Resolutions[1].Bands[0]
	if hl.Orient != BandHL || hl.Level != 1 {
		t.Errorf("HL band orient %d level %d", hl.Orient, hl.Level)
	}
	if got, want := bandRect(hl), (dwt.Rect{X0: 0, Y0: 0, X1: 4, Y1: 3}); got != want {
		t.Errorf("HL rect = %+v, want %+v", got, want)
	}

	if len(tc.Data) != 17*9 {
		t.Errorf("len(Data) = %d, want %d", len(tc.Data), 17*9)
	}
	if len(tc.Bands()) != 7 {
		t.Errorf("len(Bands()) = %d, want 7", len(tc.Bands()))
	}
}

// TestBandExtentsMatchSplit checks that every detail band is exactly as wide
// and tall as the low/high split the transform produces at its level.
func TestBandExtentsMatchSplit(t *testing.T) {
	bounds := []dwt.Rect{
		{X0: 0, Y0: 0, X1: 64, Y1: 64},
		{X0: 1, Y0: 3, X1: 10, Y1: 12},
		{X0: 3, Y0: 5, X1: 20, Y1: 14},
		{X0: 7, Y0: 0, X1: 8, Y1: 1},
		{X0: 13, Y0: 29, X1: 131, Y1: 77},
	}

	for _, b := range bounds {
		tc := mustTileComponent(t, b.X0, b.Y0, b.X1, b.Y1, 5)

		for r := 1; r < len(tc.Resolutions); r++ {
			fine, coarse := rectOf(tc.Resolutions[r]), rectOf(tc.Resolutions[r-1])
			lowW, lowH := coarse.Width(), coarse.Height()
			highW, highH := fine.Width()-lowW, fine.Height()-lowH

			want := map[int][2]int{
				BandHL: {highW, lowH},
				BandLH: {lowW, highH},
				BandHH: {highW, highH},
			}
			if n := len(tc.Resolutions[r].Bands); n != 3 {
				t.Fatalf("bounds %+v resolution %d: %d bands", b, r, n)
			}
			for _, band := range tc.Resolutions[r].Bands {
				got := [2]int{band.X1 - band.X0, band.Y1 - band.Y0}
				if got != want[band.Orient] {
					t.Errorf("bounds %+v resolution %d orient %d: size %v, want %v", b, r, band.Orient, got, want[band.Orient])
				}
			}
		}
	}
}

func TestNewTileComponentInvalid(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		numRes         int
		want           error
	}{
		{"zero resolutions", 0, 0, 8, 8, 0, dwt.ErrNumResolutions},
		{"too many resolutions", 0, 0, 8, 8, MaxResolutions + 1, dwt.ErrNumResolutions},
		{"inverted bounds", 5, 0, 4, 8, 2, dwt.ErrInvalidResolutions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTileComponent(tt.x0, tt.y0, tt.x1, tt.y1, tt.numRes)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func fill(tc *TileComponent, seed int64) []int32 {
	rng := rand.New(rand.NewSource(seed))
	for i := range tc.Data {
		tc.Data[i] = rng.Int31n(256)
	}
	return append([]int32(nil), tc.Data...)
}

func TestForwardInverse53(t *testing.T) {
	tc := mustTileComponent(t, 3, 1, 40, 30, 4)
	orig := fill(tc, 1)

	if err := tc.ForwardDWT(dwt.Reversible53); err != nil {
		t.Fatalf("ForwardDWT: %v", err)
	}
	if cmp.Equal(orig, tc.Data) {
		t.Error("forward transform left the samples unchanged")
	}
	if tc.Filter != dwt.Reversible53 || !tc.Transformed {
		t.Errorf("filter = %v transformed = %v after 5-3 forward", tc.Filter, tc.Transformed)
	}
	if err := tc.InverseDWT(dwt.Reversible53, len(tc.Resolutions)); err != nil {
		t.Fatalf("InverseDWT: %v", err)
	}
	if diff := cmp.Diff(orig, tc.Data); diff != "" {
		t.Errorf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestForwardInverse97(t *testing.T) {
	tc := mustTileComponent(t, 3, 1, 40, 30, 4)
	orig := fill(tc, 2)

	if err := tc.ForwardDWT(dwt.Irreversible97); err != nil {
		t.Fatalf("ForwardDWT: %v", err)
	}
	if err := tc.InverseDWT(dwt.Irreversible97, len(tc.Resolutions)); err != nil {
		t.Fatalf("InverseDWT: %v", err)
	}
	if len(tc.DataFloat) != len(tc.Data) {
		t.Fatalf("len(DataFloat) = %d, want %d", len(tc.DataFloat), len(tc.Data))
	}
	for i := range orig {
		if d := orig[i] - tc.Data[i]; d < -1 || d > 1 {
			t.Fatalf("sample %d: got %d, want %d", i, tc.Data[i], orig[i])
		}
	}
}

func TestInverseDWTFilterMismatch(t *testing.T) {
	for _, f := range []dwt.Filter{dwt.Reversible53, dwt.Irreversible97} {
		t.Run(f.String(), func(t *testing.T) {
			tc := mustTileComponent(t, 0, 0, 16, 16, 3)
			fill(tc, 3)
			if err := tc.ForwardDWT(f); err != nil {
				t.Fatalf("ForwardDWT: %v", err)
			}
			coeffs := append([]int32(nil), tc.Data...)

			other := dwt.Filter(1 - int(f))
			if err := tc.InverseDWT(other, 3); !errors.Is(err, dwt.ErrFilter) {
				t.Fatalf("InverseDWT(%v): got %v, want ErrFilter", other, err)
			}
			if diff := cmp.Diff(coeffs, tc.Data); diff != "" {
				t.Errorf("coefficients changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestForwardDWT97SampleRange(t *testing.T) {
	tests := []struct {
		name   string
		sample int32
		ok     bool
	}{
		{"largest", 1<<MaxSampleBits - 1, true},
		{"smallest", -1 << MaxSampleBits, true},
		{"above", 1 << MaxSampleBits, false},
		{"below", -1<<MaxSampleBits - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := mustTileComponent(t, 0, 0, 8, 8, 1)
			orig := fill(tc, 4)
			tc.Data[10] = tt.sample
			orig[10] = tt.sample

			err := tc.ForwardDWT(dwt.Irreversible97)
			if tt.ok {
				if err != nil {
					t.Fatalf("ForwardDWT: %v", err)
				}
				if got := tc.Data[10] >> FixedPointBits; got != tt.sample {
					t.Errorf("fixed-point sample = %d, want %d", got, tt.sample)
				}
				return
			}
			if !errors.Is(err, ErrSampleRange) {
				t.Fatalf("got %v, want ErrSampleRange", err)
			}
			if tc.Transformed {
				t.Error("component marked transformed after failure")
			}
			if diff := cmp.Diff(orig, tc.Data); diff != "" {
				t.Errorf("samples changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReducedResolutionConstant(t *testing.T) {
	for _, f := range []dwt.Filter{dwt.Reversible53, dwt.Irreversible97} {
		t.Run(f.String(), func(t *testing.T) {
			tc := mustTileComponent(t, 3, 1, 40, 30, 4)
			for i := range tc.Data {
				tc.Data[i] = 77
			}

			if err := tc.ForwardDWT(f); err != nil {
				t.Fatalf("ForwardDWT: %v", err)
			}
			if err := tc.InverseDWT(f, 2); err != nil {
				t.Fatalf("InverseDWT: %v", err)
			}

			w, h := tc.ReducedSize(2)
			if w != 9 || h != 7 {
				t.Fatalf("ReducedSize(2) = %dx%d, want 9x7", w, h)
			}
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					if v := tc.Data[y*tc.Width()+x]; v != 77 {
						t.Errorf("(%d,%d) = %d, want 77", x, y, v)
					}
				}
			}
		})
	}
}

func TestReducedSize(t *testing.T) {
	tc := mustTileComponent(t, 0, 0, 17, 9, 3)

	tests := []struct {
		numRes int
		w, h   int
	}{
		{1, 5, 3},
		{2, 9, 5},
		{3, 17, 9},
		{0, 5, 3},  // clamped up
		{9, 17, 9}, // clamped down
	}
	for _, tt := range tests {
		if w, h := tc.ReducedSize(tt.numRes); w != tt.w || h != tt.h {
			t.Errorf("ReducedSize(%d) = %dx%d, want %dx%d", tt.numRes, w, h, tt.w, tt.h)
		}
	}
}

func near(a, b, tol float64) bool {
	d := a - b
	return d >= -tol && d <= tol
}

func TestAssignStepsizes(t *testing.T) {
	tc := mustTileComponent(t, 0, 0, 16, 16, 2)

	if err := tc.AssignStepsizes(dwt.Irreversible97, 8, false); err != nil {
		t.Fatalf("AssignStepsizes: %v", err)
	}
	bands := tc.Bands()
	want := []dwt.Stepsize{{Expn: 9, Mant: 36}, {Expn: 10, Mant: 2003}, {Expn: 10, Mant: 2003}, {Expn: 10, Mant: 1890}}
	got := make([]dwt.Stepsize, len(bands))
	for b, band := range bands {
		got[b] = band.Stepsize
		if band.Numbps != 8 {
			t.Errorf("band %d: Numbps = %d, want 8", b, band.Numbps)
		}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stepsizes (-want +got):\n%s", diff)
	}
	if s := bands[1].Step(); !near(s, 1/2.022, 1e-3) {
		t.Errorf("HL step = %v, want about %v", s, 1/2.022)
	}
	if s := bands[0].Step(); !near(s, 1/1.965, 1e-3) {
		t.Errorf("LL step = %v, want about %v", s, 1/1.965)
	}

	if err := tc.AssignStepsizes(dwt.Reversible53, 8, true); err != nil {
		t.Fatalf("AssignStepsizes: %v", err)
	}
	for b, numbps := range []int{8, 9, 9, 10} {
		if bands[b].Numbps != numbps {
			t.Errorf("band %d: Numbps = %d, want %d", b, bands[b].Numbps, numbps)
		}
		if s := bands[b].Step(); s != 1.0 {
			t.Errorf("band %d: step = %v, want 1", b, s)
		}
	}
}

func TestBandNorm(t *testing.T) {
	tc := mustTileComponent(t, 0, 0, 16, 16, 3)

	hh := tc.Resolutions[2].Bands[2]
	if hh.Orient != BandHH {
		t.Fatalf("orient = %d, want HH", hh.Orient)
	}
	tests := []struct {
		band *Band
		f    dwt.Filter
		want float64
	}{
		{hh, dwt.Irreversible97, 2.080},
		{hh, dwt.Reversible53, .7186},
		{tc.Resolutions[0].Bands[0], dwt.Irreversible97, 4.177},
	}
	for _, tt := range tests {
		if got := tt.band.Norm(tt.f); got != tt.want {
			t.Errorf("orient %d level %d %v: norm %v, want %v", tt.band.Orient, tt.band.Level, tt.f, got, tt.want)
		}
	}
}

func TestUnknownFilter(t *testing.T) {
	tc := mustTileComponent(t, 0, 0, 8, 8, 2)
	orig := fill(tc, 3)

	if err := tc.ForwardDWT(dwt.Filter(5)); !errors.Is(err, dwt.ErrFilter) {
		t.Errorf("ForwardDWT: got %v, want ErrFilter", err)
	}
	if err := tc.InverseDWT(dwt.Filter(5), 2); !errors.Is(err, dwt.ErrFilter) {
		t.Errorf("InverseDWT: got %v, want ErrFilter", err)
	}
	if diff := cmp.Diff(orig, tc.Data); diff != "" {
		t.Errorf("samples changed (-want +got):\n%s", diff)
	}
}

type failingAllocator struct{ dwt.PoolAllocator }

func (failingAllocator) Int32s(int) ([]int32, error) {
	return nil, dwt.ErrScratch
}

func TestForwardDWT97FailureRestoresSamples(t *testing.T) {
	tc := mustTileComponent(t, 0, 0, 8, 8, 3)
	orig := fill(tc, 4)
	tc.Options = &dwt.Options{Allocator: failingAllocator{}}

	if err := tc.ForwardDWT(dwt.Irreversible97); !errors.Is(err, dwt.ErrScratch) {
		t.Fatalf("got %v, want ErrScratch", err)
	}
	if tc.Transformed {
		t.Error("component marked transformed after failure")
	}
	if diff := cmp.Diff(orig, tc.Data); diff != "" {
		t.Errorf("samples changed (-want +got):\n%s", diff)
	}
}

func TestTileSubsampledComponents(t *testing.T) {
	tile, err := NewTile(4, dwt.Rect{X0: 0, Y0: 0, X1: 33, Y1: 24}, []Subsampling{{1, 1}, {2, 2}, {2, 1}}, 3)
	if err != nil {
		t.Fatalf("NewTile: %v", err)
	}
	if len(tile.Components) != 3 || tile.Index != 4 {
		t.Fatalf("tile %d with %d components", tile.Index, len(tile.Components))
	}

	sizes := [][2]int{{33, 24}, {17, 12}, {17, 24}}
	origs := make([][]int32, 3)
	for c, tc := range tile.Components {
		if tc.Index != c {
			t.Errorf("component %d has index %d", c, tc.Index)
		}
		if got := [2]int{tc.Width(), tc.Height()}; got != sizes[c] {
			t.Errorf("component %d: size %v, want %v", c, got, sizes[c])
		}
		origs[c] = fill(tc, int64(10+c))
	}

	if err := tile.ForwardDWT(dwt.Reversible53); err != nil {
		t.Fatalf("ForwardDWT: %v", err)
	}
	if err := tile.InverseDWT(dwt.Reversible53, 3); err != nil {
		t.Fatalf("InverseDWT: %v", err)
	}
	for c, tc := range tile.Components {
		if diff := cmp.Diff(origs[c], tc.Data); diff != "" {
			t.Errorf("component %d (-want +got):\n%s", c, diff)
		}
	}
}

func TestNewTileInvalid(t *testing.T) {
	if _, err := NewTile(0, dwt.Rect{X1: 8, Y1: 8}, []Subsampling{{0, 1}}, 2); err == nil {
		t.Error("zero subsampling accepted")
	}

	_, err := NewTile(0, dwt.Rect{X1: 8, Y1: 8}, []Subsampling{{1, 1}}, 0)
	if !errors.Is(err, dwt.ErrNumResolutions) {
		t.Errorf("got %v, want ErrNumResolutions", err)
	}
}

func TestTileInverseReportsComponent(t *testing.T) {
	tile, err := NewTile(0, dwt.Rect{X1: 8, Y1: 8}, []Subsampling{{1, 1}, {1, 1}}, 2)
	if err != nil {
		t.Fatalf("NewTile: %v", err)
	}

	err = tile.InverseDWT(dwt.Reversible53, 3)
	if !errors.Is(err, dwt.ErrNumResolutions) {
		t.Fatalf("got %v, want ErrNumResolutions", err)
	}
	if !strings.Contains(err.Error(), "component") {
		t.Errorf("error %q does not name the component", err)
	}
}

func BenchmarkTileComponentForward97(b *testing.B) {
	tc := mustTileComponent(b, 0, 0, 256, 256, 6)
	for i := 0; i < b.N; i++ {
		fill(tc, 1)
		if err := tc.ForwardDWT(dwt.Irreversible97); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTileComponentInverse53(b *testing.B) {
	tc := mustTileComponent(b, 0, 0, 256, 256, 6)
	fill(tc, 1)
	if err := tc.ForwardDWT(dwt.Reversible53); err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := tc.InverseDWT(dwt.Reversible53, 6); err != nil {
			b.Fatal(err)
		}
	}
}
