package dwt

// Subband norms of the synthesis basis, indexed [orient][level].
// Orientation 0 is LL, 1 HL, 2 LH, 3 HH.
var norms53 = [4][10]float64{
	{1.000, 1.500, 2.750, 5.375, 10.68, 21.34, 42.67, 85.33, 170.7, 341.3},
	{1.038, 1.592, 2.919, 5.703, 11.33, 22.64, 45.25, 90.48, 180.9},
	{1.038, 1.592, 2.919, 5.703, 11.33, 22.64, 45.25, 90.48, 180.9},
	{.7186, .9218, 1.586, 3.043, 6.019, 12.01, 24.00, 48.00, 96.00},
}

var norms97 = [4][10]float64{
	{1.000, 1.965, 4.177, 8.403, 16.90, 33.84, 67.69, 135.3, 270.6, 540.9},
	{2.022, 3.989, 8.355, 17.04, 34.27, 68.63, 137.3, 274.6, 549.0},
	{2.022, 3.989, 8.355, 17.04, 34.27, 68.63, 137.3, 274.6, 549.0},
	{2.080, 3.865, 8.307, 17.18, 34.71, 69.59, 139.3, 278.6, 557.2},
}

// normIndex clamps level to the populated part of an orientation's row.
// ok is false for an orientation outside 0..3.
func normIndex(level, orient int) (int, bool) {
	if orient < 0 || orient > 3 {
		return 0, false
	}
	top := 8
	if orient == 0 {
		top = 9
	}
	return min(max(level, 0), top), true
}

// Norm53 returns the 5-3 norm of the subband at decomposition level and
// orientation. Levels past the table are clamped; an unknown orientation
// yields 0.
func Norm53(level, orient int) float64 {
	l, ok := normIndex(level, orient)
	if !ok {
		return 0
	}
	return norms53[orient][l]
}

// Norm97 is Norm53 for the 9-7 filter.
func Norm97(level, orient int) float64 {
	l, ok := normIndex(level, orient)
	if !ok {
		return 0
	}
	return norms97[orient][l]
}

// Gain53 returns log2 of the 5-3 dynamic range gain of a subband:
// 0 for LL, 1 for HL and LH, 2 for HH.
func Gain53(orient int) int {
	switch orient {
	case 1, 2:
		return 1
	case 3:
		return 2
	}
	return 0
}

// Gain97 is always 0.
func Gain97(orient int) int {
	return 0
}

// Norm dispatches to Norm53 or Norm97.
func (f Filter) Norm(level, orient int) float64 {
	if f == Irreversible97 {
		return Norm97(level, orient)
	}
	return Norm53(level, orient)
}

// Gain dispatches to Gain53 or Gain97.
func (f Filter) Gain(orient int) int {
	if f == Irreversible97 {
		return Gain97(orient)
	}
	return Gain53(orient)
}
