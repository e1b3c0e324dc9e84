//go:build !amd64 && !arm64

package dwt

// useSIMD reports false on platforms without a known 4-wide float unit.
func useSIMD() bool {
	return false
}
