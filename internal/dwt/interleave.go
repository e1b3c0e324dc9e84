package dwt

// A lifting pass works on one row or column laid out in natural order:
// even positions a[2i] and odd positions a[2i+1]. With cas == 0 the even
// positions hold the sn low-pass samples and the odd positions the dn
// high-pass samples; with cas == 1 the roles swap.

// evenAt returns a[2i] with i clamped to [0, n-1].
func evenAt(a []int32, i, n int) int32 {
	if i < 0 {
		i = 0
	} else if i >= n {
		i = n - 1
	}
	return a[2*i]
}

// oddAt returns a[2i+1] with i clamped to [0, n-1].
func oddAt(a []int32, i, n int) int32 {
	if i < 0 {
		i = 0
	} else if i >= n {
		i = n - 1
	}
	return a[2*i+1]
}

// pass is the working state of one row or column pass.
type pass struct {
	mem []int32
	dn  int
	sn  int
	cas int
}

// deinterleaveH splits the natural-order signal a into b[:sn] (low) and
// b[sn:sn+dn] (high).
func deinterleaveH(a, b []int32, dn, sn, cas int) {
	for i := 0; i < sn; i++ {
		b[i] = a[2*i+cas]
	}
	for i := 0; i < dn; i++ {
		b[sn+i] = a[2*i+1-cas]
	}
}

// deinterleaveV is deinterleaveH with destination stride x.
func deinterleaveV(a, b []int32, dn, sn, x, cas int) {
	for i := 0; i < sn; i++ {
		b[i*x] = a[2*i+cas]
	}
	for i := 0; i < dn; i++ {
		b[(sn+i)*x] = a[2*i+1-cas]
	}
}

// interleaveH merges a[:sn] (low) and a[sn:sn+dn] (high) into p.mem in
// natural order.
func interleaveH(p *pass, a []int32) {
	for i := 0; i < p.sn; i++ {
		p.mem[2*i+p.cas] = a[i]
	}
	for i := 0; i < p.dn; i++ {
		p.mem[2*i+1-p.cas] = a[p.sn+i]
	}
}

// interleaveV is interleaveH with source stride x.
func interleaveV(p *pass, a []int32, x int) {
	for i := 0; i < p.sn; i++ {
		p.mem[2*i+p.cas] = a[i*x]
	}
	for i := 0; i < p.dn; i++ {
		p.mem[2*i+1-p.cas] = a[(p.sn+i)*x]
	}
}
