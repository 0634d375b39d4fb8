//go:build amd64

package fastlz

import "golang.org/x/sys/cpu"

func init() {
	// unaligned 8-byte loads are cheap on any SSE2-capable part
	useWideCompare = cpu.X86.HasSSE2
}
