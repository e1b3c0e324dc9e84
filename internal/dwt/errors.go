package dwt

import "github.com/pkg/errors"

// Errors returned by the transform entry points. Callers match them with
// errors.Is; the returned values carry the offending level or size as context.
var (
	// ErrInvalidResolutions reports a resolution sequence the driver cannot
	// walk: empty, negative extents, or a level that does not split into a
	// low/high pair matching its origin parity.
	ErrInvalidResolutions = errors.New("invalid resolution rectangles")

	// ErrNumResolutions reports a resolution count outside [1, len(res)].
	ErrNumResolutions = errors.New("resolution count out of range")

	// ErrInvalidBuffer reports a sample buffer or stride that does not cover
	// the tile.
	ErrInvalidBuffer = errors.New("sample buffer does not cover the tile")

	// ErrFilter reports an unknown wavelet filter.
	ErrFilter = errors.New("unknown wavelet filter")

	// ErrScratch reports that a scratch buffer could not be acquired. The
	// tile buffer has not been modified when this is returned.
	ErrScratch = errors.New("scratch buffer unavailable")

	// ErrStepsize reports a non-positive quantization stepsize.
	ErrStepsize = errors.New("stepsize must be positive")
)
