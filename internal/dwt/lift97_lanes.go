package dwt

// 9-7 inverse lifting constants.
const (
	alpha97 float32 = 1.586134342
	beta97  float32 = 0.052980118
	gamma97 float32 = -0.882911075
	delta97 float32 = -0.443506852
	k97     float32 = 1.230174105
	c13318  float32 = 1.625732422 // 13318 / 8192, undoes fixHigh
)

// v4 is one sample position across four lanes.
type v4 = [4]float32

// lanes is the working state of a 4-lane pass. Element i of the
// natural-order signal occupies w[4i:4i+4]; the lanes are four rows of a
// horizontal pass or four columns of a vertical pass.
type lanes struct {
	w   []float32
	dn  int
	sn  int
	cas int
}

// at returns element i as a lane group.
func (l *lanes) at(i int) *v4 {
	return (*v4)(l.w[4*i : 4*i+4])
}

// lifter97 runs the two primitive passes of the 4-lane 9-7 inverse. Element
// indices address lane groups in w.
type lifter97 interface {
	// scale multiplies count elements, starting at element start and
	// stepping by two, by c.
	scale(w []float32, start, count int, c float32)

	// lift updates element wi-1+2i for i < k. For i < m it adds
	// (w[t] + w[wi+2i]) * c where t is the previous trailing element,
	// starting at element l; for m <= i < k it adds 2c times the last
	// trailing element.
	lift(w []float32, l, wi, k, m int, c float32)
}

// vecLifter moves a whole lane group per step.
type vecLifter struct{}

func (vecLifter) scale(w []float32, start, count int, c float32) {
	for i := 0; i < count; i++ {
		e := 4 * (start + 2*i)
		p := (*v4)(w[e : e+4])
		p[0] *= c
		p[1] *= c
		p[2] *= c
		p[3] *= c
	}
}

func (vecLifter) lift(w []float32, l, wi, k, m int, c float32) {
	fl := (*v4)(w[4*l : 4*l+4])
	i := 0
	for ; i < m; i++ {
		e := 4 * (wi + 2*i)
		fw := (*v4)(w[e : e+4])
		dst := (*v4)(w[e-4 : e])
		dst[0] += float32((fl[0] + fw[0]) * c)
		dst[1] += float32((fl[1] + fw[1]) * c)
		dst[2] += float32((fl[2] + fw[2]) * c)
		dst[3] += float32((fl[3] + fw[3]) * c)
		fl = fw
	}
	if m < k {
		c += c
		c1 := v4{
			float32(fl[0] * c),
			float32(fl[1] * c),
			float32(fl[2] * c),
			float32(fl[3] * c),
		}
		for ; i < k; i++ {
			e := 4 * (wi + 2*i)
			dst := (*v4)(w[e-4 : e])
			dst[0] += c1[0]
			dst[1] += c1[1]
			dst[2] += c1[2]
			dst[3] += c1[3]
		}
	}
}

// scalarLifter lifts one lane at a time. It performs the same float32
// operations in the same order per lane as vecLifter.
type scalarLifter struct{}

func (scalarLifter) scale(w []float32, start, count int, c float32) {
	for lane := 0; lane < 4; lane++ {
		for i := 0; i < count; i++ {
			w[4*(start+2*i)+lane] *= c
		}
	}
}

func (scalarLifter) lift(w []float32, l, wi, k, m int, c float32) {
	for lane := 0; lane < 4; lane++ {
		fl := w[4*l+lane]
		i := 0
		for ; i < m; i++ {
			fw := w[4*(wi+2*i)+lane]
			w[4*(wi+2*i-1)+lane] += float32((fl + fw) * c)
			fl = fw
		}
		if m < k {
			c1 := float32(fl * (c + c))
			for ; i < k; i++ {
				w[4*(wi+2*i-1)+lane] += c1
			}
		}
	}
}

// selectLifter returns the lifter used when the caller does not force the
// scalar path.
func selectLifter(scalar bool) lifter97 {
	if scalar || !useSIMD() {
		return scalarLifter{}
	}
	return vecLifter{}
}

// decode97 performs the 4-lane 9-7 inverse on an interleaved lane buffer.
// The pass order is fixed: both rescales, then the lifts in reverse of the
// forward order.
func decode97(p *lanes, lf lifter97) {
	var a, b int
	if p.cas == 0 {
		if !(p.dn > 0 || p.sn > 1) {
			return
		}
		a, b = 0, 1
	} else {
		if !(p.sn > 0 || p.dn > 1) {
			return
		}
		a, b = 1, 0
	}
	lf.scale(p.w, a, p.sn, k97)
	lf.scale(p.w, b, p.dn, c13318)
	lf.lift(p.w, b, a+1, p.sn, min(p.sn, p.dn-a), delta97)
	lf.lift(p.w, a, b+1, p.dn, min(p.dn, p.sn-b), gamma97)
	lf.lift(p.w, b, a+1, p.sn, min(p.sn, p.dn-a), beta97)
	lf.lift(p.w, a, b+1, p.dn, min(p.dn, p.sn-b), alpha97)
}

// interleaveH4 loads rows (1 to 4) rows of the tile starting at a, each
// holding sn low then dn high coefficients, into p.w. Lanes past rows are
// zeroed.
func interleaveH4(p *lanes, a []float32, x, rows int) {
	for i := 0; i < p.sn; i++ {
		dst := p.at(p.cas + 2*i)
		for lane := 0; lane < 4; lane++ {
			if lane < rows {
				dst[lane] = a[i+lane*x]
			} else {
				dst[lane] = 0
			}
		}
	}
	for i := 0; i < p.dn; i++ {
		dst := p.at(1 - p.cas + 2*i)
		for lane := 0; lane < 4; lane++ {
			if lane < rows {
				dst[lane] = a[p.sn+i+lane*x]
			} else {
				dst[lane] = 0
			}
		}
	}
}

// interleaveV4 loads cols (1 to 4) adjacent columns of the tile starting at
// a, each holding sn low then dn high coefficients down the column, into
// p.w. Lanes past cols are zeroed.
func interleaveV4(p *lanes, a []float32, x, cols int) {
	for i := 0; i < p.sn; i++ {
		dst := p.at(p.cas + 2*i)
		n := copy(dst[:cols], a[i*x:i*x+cols])
		clear(dst[n:])
	}
	for i := 0; i < p.dn; i++ {
		dst := p.at(1 - p.cas + 2*i)
		row := (p.sn + i) * x
		n := copy(dst[:cols], a[row:row+cols])
		clear(dst[n:])
	}
}
