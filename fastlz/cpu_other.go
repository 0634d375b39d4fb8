//go:build !amd64 && !arm64

package fastlz

// Other architectures keep the portable bytewise match extension.
