package fastlz

import (
	"bytes"
	"crypto/rand"
	"testing"
	"testing/quick"
)

func generateRandomData(size int) []byte {
	data := make([]byte, size)
	rand.Read(data)
	return data
}

func generateCompressibleData(size int) []byte {
	data := make([]byte, size)
	pattern := []byte("abcdefghijklmnopqrstuvwxyz0123456789")
	for i := 0; i < size; i += len(pattern) {
		n := copy(data[i:], pattern)
		if n < len(pattern) {
			break
		}
	}
	return data
}

func roundTrip(t *testing.T, level int, data []byte) {
	t.Helper()
	dst := make([]byte, Bound(len(data)))
	n := CompressLevel(level, data, dst)
	if len(data) == 0 {
		if n != 0 {
			t.Fatalf("CompressLevel(%d) on empty input = %d bytes, want 0", level, n)
		}
		return
	}
	if n <= 0 || n > len(dst) {
		t.Fatalf("CompressLevel(%d) = %d bytes, outside (0, %d]", level, n, len(dst))
	}
	out := make([]byte, len(data))
	m := Decompress(dst[:n], out)
	if m != len(data) {
		t.Fatalf("Decompress = %d bytes, want %d", m, len(data))
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("round trip mismatch at level %d, size %d", level, len(data))
	}
}

func TestRoundTrip(t *testing.T) {
	sizes := []int{0, 1, 2, 3, 4, 5, 15, 16, 63, 64, 65, 100, 1000, 4096, 65535, 65536, 1 << 18}
	for _, level := range []int{Level1, Level2} {
		for _, size := range sizes {
			roundTrip(t, level, generateCompressibleData(size))
			roundTrip(t, level, generateRandomData(size))
			roundTrip(t, level, make([]byte, size)) // zeros
		}
	}
}

func TestRoundTripLongRuns(t *testing.T) {
	// runs long enough to force match splitting at level 1 and
	// multi-byte length extension at level 2
	for _, level := range []int{Level1, Level2} {
		data := make([]byte, 100000)
		roundTrip(t, level, data)

		data = bytes.Repeat([]byte{0xAA, 0xBB}, 50000)
		roundTrip(t, level, data)
	}
}

func TestRoundTripFarMatches(t *testing.T) {
	// a repeated segment placed beyond the level-1 window exercises
	// level-2 far distances
	segment := generateRandomData(512)
	filler := generateRandomData(20000)
	data := append(append(append([]byte{}, segment...), filler...), segment...)
	roundTrip(t, Level2, data)
	roundTrip(t, Level1, data)
}

func TestCompressAutoLevel(t *testing.T) {
	small := generateCompressibleData(1024)
	dst := make([]byte, Bound(len(small)))
	n := Compress(small, dst)
	if n == 0 {
		t.Fatal("Compress returned 0 bytes")
	}
	if dst[0]>>5 != 0 {
		t.Errorf("small input should use level 1, first byte %#x", dst[0])
	}

	large := generateCompressibleData(70000)
	dst = make([]byte, Bound(len(large)))
	n = Compress(large, dst)
	if n == 0 {
		t.Fatal("Compress returned 0 bytes")
	}
	if dst[0]>>5 != 1 {
		t.Errorf("large input should use level 2, first byte %#x", dst[0])
	}
	out := make([]byte, len(large))
	if m := Decompress(dst[:n], out); m != len(large) || !bytes.Equal(out, large) {
		t.Fatalf("auto-level round trip failed, got %d bytes", m)
	}
}

func TestCompressLevelInvalid(t *testing.T) {
	data := generateCompressibleData(256)
	dst := make([]byte, Bound(len(data)))
	for _, level := range []int{0, 3, -1, 99} {
		if n := CompressLevel(level, data, dst); n != 0 {
			t.Errorf("CompressLevel(%d) = %d, want 0", level, n)
		}
	}
}

func TestDecompressMalformed(t *testing.T) {
	out := make([]byte, 4096)
	cases := [][]byte{
		{},
		{0xE0},             // match opcode with no operands
		{0xE0, 0xFF},       // truncated match
		{0x1F},             // literal run with no literals
		{0x1F, 0x41, 0x42}, // literal run short of data
		{0x40, 0x00, 0x00}, // level-tag byte out of range
	}
	for i, src := range cases {
		if n := Decompress(src, out); n != 0 {
			t.Errorf("case %d: Decompress = %d, want 0", i, n)
		}
	}

	// truncating valid compressed data must never panic
	data := generateCompressibleData(4096)
	dst := make([]byte, Bound(len(data)))
	n := CompressLevel(Level1, data, dst)
	for cut := 0; cut < n; cut += 7 {
		Decompress(dst[:cut], out)
	}
}

func TestDecompressShortOutput(t *testing.T) {
	data := generateCompressibleData(1024)
	dst := make([]byte, Bound(len(data)))
	n := CompressLevel(Level1, data, dst)
	out := make([]byte, 512)
	if m := Decompress(dst[:n], out); m != 0 {
		t.Errorf("Decompress into short buffer = %d, want 0", m)
	}
}

func TestLevelTag(t *testing.T) {
	data := generateCompressibleData(1024)
	dst := make([]byte, Bound(len(data)))

	n := CompressLevel(Level1, data, dst)
	if n == 0 || dst[0]>>5 != 0 {
		t.Errorf("level 1 tag wrong, first byte %#x", dst[0])
	}
	n = CompressLevel(Level2, data, dst)
	if n == 0 || dst[0]>>5 != 1 {
		t.Errorf("level 2 tag wrong, first byte %#x", dst[0])
	}
}

func TestBound(t *testing.T) {
	for _, n := range []int{0, 1, 31, 32, 33, 1024, 1 << 20} {
		if Bound(n) < n+1 {
			t.Errorf("Bound(%d) = %d, too small", n, Bound(n))
		}
	}
}

func TestQuickRoundTrip(t *testing.T) {
	for _, level := range []int{Level1, Level2} {
		level := level
		f := func(data []byte) bool {
			dst := make([]byte, Bound(len(data)))
			n := CompressLevel(level, data, dst)
			if len(data) == 0 {
				return n == 0
			}
			out := make([]byte, len(data))
			return Decompress(dst[:n], out) == len(data) && bytes.Equal(out, data)
		}
		if err := quick.Check(f, &quick.Config{MaxCount: 200}); err != nil {
			t.Errorf("level %d: %v", level, err)
		}
	}
}
