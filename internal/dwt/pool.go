package dwt

import (
	"sync"

	"github.com/pkg/errors"
)

// MaxScratch is the largest scratch request, in elements, the pool allocator
// will honour.
const MaxScratch = 1 << 26

// Allocator supplies the scratch buffers a transform call works in. Buffers
// are handed back through the matching Put method on every exit path.
type Allocator interface {
	Int32s(n int) ([]int32, error)
	Float32s(n int) ([]float32, error)
	PutInt32s(buf []int32)
	PutFloat32s(buf []float32)
}

// Buffer pools for temporary storage to reduce allocations
var (
	intBufPool = sync.Pool{
		New: func() interface{} {
			buf := make([]int32, 4096)
			return &buf
		},
	}
	floatBufPool = sync.Pool{
		New: func() interface{} {
			buf := make([]float32, 4096)
			return &buf
		},
	}
)

// PoolAllocator is the default Allocator, backed by sync.Pool.
type PoolAllocator struct{}

// Int32s returns a buffer of exactly n elements. Contents are unspecified.
func (PoolAllocator) Int32s(n int) ([]int32, error) {
	if err := checkScratch(n); err != nil {
		return nil, err
	}
	bp := intBufPool.Get().(*[]int32)
	buf := *bp
	if cap(buf) < n {
		buf = make([]int32, n)
		*bp = buf
	}
	return buf[:n], nil
}

// PutInt32s returns a buffer to the pool.
func (PoolAllocator) PutInt32s(buf []int32) {
	if buf == nil {
		return
	}
	intBufPool.Put(&buf)
}

// Float32s returns a buffer of exactly n elements. Contents are unspecified.
func (PoolAllocator) Float32s(n int) ([]float32, error) {
	if err := checkScratch(n); err != nil {
		return nil, err
	}
	bp := floatBufPool.Get().(*[]float32)
	buf := *bp
	if cap(buf) < n {
		buf = make([]float32, n)
		*bp = buf
	}
	return buf[:n], nil
}

// PutFloat32s returns a buffer to the pool.
func (PoolAllocator) PutFloat32s(buf []float32) {
	if buf == nil {
		return
	}
	floatBufPool.Put(&buf)
}

func checkScratch(n int) error {
	if n < 0 || n > MaxScratch {
		return errors.Wrapf(ErrScratch, "%d elements requested, limit %d", n, MaxScratch)
	}
	return nil
}
