package dwt

// shape is the code path a 1D lifting call takes for a given split.
type shape int

const (
	// shapeLift runs the general lifting recurrence.
	shapeLift shape = iota
	// shapeSkip leaves the signal untouched.
	shapeSkip
	// shapeSingle is a lone high-pass sample: doubled forward, halved inverse.
	shapeSingle
)

// classify53 picks the 5-3 code path. A single sample on a high-pass
// position (cas == 1, sn == 0, dn == 1) is the only shapeSingle.
func classify53(dn, sn, cas int) shape {
	if cas == 0 {
		if dn > 0 || sn > 1 {
			return shapeLift
		}
		return shapeSkip
	}
	if sn == 0 && dn == 1 {
		return shapeSingle
	}
	return shapeLift
}

// encode53 performs the forward 5-3 reversible lifting on the natural-order
// signal a of length sn+dn. Coefficients stay interleaved; the caller
// deinterleaves.
//
// sn and dn must describe a split reachable from a resolution rectangle:
// sn-dn in {0, 1} when cas == 0, dn-sn in {0, 1} when cas == 1.
func encode53(a []int32, dn, sn, cas int) {
	switch classify53(dn, sn, cas) {
	case shapeSkip:
		return
	case shapeSingle:
		a[0] *= 2
		return
	}

	if cas == 0 {
		// Predict: H[i] -= floor((L[i] + L[i+1]) / 2)
		for i := 0; i < dn; i++ {
			a[2*i+1] -= (evenAt(a, i, sn) + evenAt(a, i+1, sn)) >> 1
		}
		// Update: L[i] += floor((H[i-1] + H[i] + 2) / 4)
		for i := 0; i < sn; i++ {
			a[2*i] += (oddAt(a, i-1, dn) + oddAt(a, i, dn) + 2) >> 2
		}
		return
	}

	for i := 0; i < dn; i++ {
		a[2*i] -= (oddAt(a, i, sn) + oddAt(a, i-1, sn)) >> 1
	}
	for i := 0; i < sn; i++ {
		a[2*i+1] += (evenAt(a, i, dn) + evenAt(a, i+1, dn) + 2) >> 2
	}
}

// decode53 is the exact inverse of encode53 on an interleaved signal.
func decode53(a []int32, dn, sn, cas int) {
	switch classify53(dn, sn, cas) {
	case shapeSkip:
		return
	case shapeSingle:
		a[0] /= 2
		return
	}

	if cas == 0 {
		for i := 0; i < sn; i++ {
			a[2*i] -= (oddAt(a, i-1, dn) + oddAt(a, i, dn) + 2) >> 2
		}
		for i := 0; i < dn; i++ {
			a[2*i+1] += (evenAt(a, i, sn) + evenAt(a, i+1, sn)) >> 1
		}
		return
	}

	for i := 0; i < sn; i++ {
		a[2*i+1] -= (evenAt(a, i, dn) + evenAt(a, i+1, dn) + 2) >> 2
	}
	for i := 0; i < dn; i++ {
		a[2*i] += (oddAt(a, i, sn) + oddAt(a, i-1, sn)) >> 1
	}
}
