//go:build arm64

package fastlz

import "golang.org/x/sys/cpu"

func init() {
	useWideCompare = cpu.ARM64.HasASIMD
}
