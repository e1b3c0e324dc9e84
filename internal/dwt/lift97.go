package dwt

// 9-7 lifting constants in 13-bit fixed point, used by the forward path.
const (
	fixAlpha = 12993 // 1.586134
	fixBeta  = 434   // 0.052980
	fixGamma = 7233  // 0.882911
	fixDelta = 3633  // 0.443507
	fixHigh  = 5038  // 1 / 1.625732
	fixLow   = 6659  // 1 / 1.230174
)

// fixMul multiplies a by the 13-bit fixed-point constant b, rounding the
// discarded fraction at bit 12.
func fixMul(a, b int32) int32 {
	t := int64(a) * int64(b)
	t += t & 4096
	return int32(t >> 13)
}

// classify97 picks the 9-7 code path. There is no single-sample rewrite:
// shapes too short for the recurrence are left untouched.
func classify97(dn, sn, cas int) shape {
	if cas == 0 {
		if dn > 0 || sn > 1 {
			return shapeLift
		}
		return shapeSkip
	}
	if sn > 0 || dn > 1 {
		return shapeLift
	}
	return shapeSkip
}

// encode97 performs the forward 9-7 irreversible lifting on the
// natural-order signal a in fixed point. The six passes run strictly in
// order, each reading the previous pass's output. Same split preconditions
// as encode53.
func encode97(a []int32, dn, sn, cas int) {
	if classify97(dn, sn, cas) == shapeSkip {
		return
	}

	if cas == 0 {
		for i := 0; i < dn; i++ {
			a[2*i+1] -= fixMul(evenAt(a, i, sn)+evenAt(a, i+1, sn), fixAlpha)
		}
		for i := 0; i < sn; i++ {
			a[2*i] -= fixMul(oddAt(a, i-1, dn)+oddAt(a, i, dn), fixBeta)
		}
		for i := 0; i < dn; i++ {
			a[2*i+1] += fixMul(evenAt(a, i, sn)+evenAt(a, i+1, sn), fixGamma)
		}
		for i := 0; i < sn; i++ {
			a[2*i] += fixMul(oddAt(a, i-1, dn)+oddAt(a, i, dn), fixDelta)
		}
		for i := 0; i < dn; i++ {
			a[2*i+1] = fixMul(a[2*i+1], fixHigh)
		}
		for i := 0; i < sn; i++ {
			a[2*i] = fixMul(a[2*i], fixLow)
		}
		return
	}

	for i := 0; i < dn; i++ {
		a[2*i] -= fixMul(oddAt(a, i, sn)+oddAt(a, i-1, sn), fixAlpha)
	}
	for i := 0; i < sn; i++ {
		a[2*i+1] -= fixMul(evenAt(a, i, dn)+evenAt(a, i+1, dn), fixBeta)
	}
	for i := 0; i < dn; i++ {
		a[2*i] += fixMul(oddAt(a, i, sn)+oddAt(a, i-1, sn), fixGamma)
	}
	for i := 0; i < sn; i++ {
		a[2*i+1] += fixMul(evenAt(a, i, dn)+evenAt(a, i+1, dn), fixDelta)
	}
	for i := 0; i < dn; i++ {
		a[2*i] = fixMul(a[2*i], fixHigh)
	}
	for i := 0; i < sn; i++ {
		a[2*i+1] = fixMul(a[2*i+1], fixLow)
	}
}
