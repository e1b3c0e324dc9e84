package dwt

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
)

// Stepsize is a quantisation step in the codestream's exponent/mantissa
// form. Mant is 11 bits.
type Stepsize struct {
	Expn int
	Mant int
}

// Float returns the real step the pair encodes for a band with numbps bits
// of dynamic range: 2^(numbps-Expn) * (1 + Mant/2048).
func (s Stepsize) Float(numbps int) float64 {
	return math.Ldexp(1+float64(s.Mant)/2048, numbps-s.Expn)
}

// EncodeStepsize converts stepsize, a real step scaled by 2^13, into its
// exponent/mantissa pair for a band of numbps bits.
func EncodeStepsize(stepsize, numbps int) (Stepsize, error) {
	if stepsize <= 0 {
		return Stepsize{}, errors.Wrapf(ErrStepsize, "stepsize %d", stepsize)
	}
	lg := bits.Len(uint(stepsize)) - 1
	p := lg - 13
	n := 11 - lg
	var mant int
	if n < 0 {
		mant = stepsize >> -n
	} else {
		mant = stepsize << n
	}
	return Stepsize{
		Expn: numbps - p,
		Mant: mant & 0x7ff,
	}, nil
}

// CalcExplicitStepsizes returns one stepsize per subband for a component
// with numResolutions resolutions and prec bits per sample, in codestream
// order: LL, then HL, LH, HH from the coarsest resolution up. With noQuant
// every band gets a unit step.
func CalcExplicitStepsizes(f Filter, numResolutions, prec int, noQuant bool) ([]Stepsize, error) {
	if _, err := f.forward(); err != nil {
		return nil, err
	}
	if numResolutions < 1 {
		return nil, errors.Wrapf(ErrNumResolutions, "%d resolutions", numResolutions)
	}

	numBands := 3*numResolutions - 2
	out := make([]Stepsize, numBands)
	for b := 0; b < numBands; b++ {
		resno, orient := 0, 0
		if b > 0 {
			resno = (b-1)/3 + 1
			orient = (b-1)%3 + 1
		}
		level := numResolutions - 1 - resno
		gain := f.Gain(orient)

		step := 1.0
		if !noQuant {
			step = float64(int(1)<<gain) / Norm97(level, orient)
		}
		s, err := EncodeStepsize(int(math.Floor(step*8192)), prec+gain)
		if err != nil {
			return nil, errors.Wrapf(err, "band %d", b)
		}
		out[b] = s
	}
	return out, nil
}
