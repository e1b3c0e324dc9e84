//go:build amd64

package dwt

import "golang.org/x/sys/cpu"

// useSIMD reports whether the 4-lane inverse may use the grouped lifter.
func useSIMD() bool {
	return cpu.X86.HasSSE2
}
