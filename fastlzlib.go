// Package fastlzlib provides an incremental, zlib-style streaming
// interface over the FastLZ block compressor. A stream is a sequence
// of self-describing blocks, each carrying a 20-byte header and
// either a raw or a compressed payload, terminated by an empty
// end-of-stream marker block. The push/pull Stream API works with
// caller-supplied input and output windows of any size; Reader and
// Writer wrap it for io-style use.
package fastlzlib

import "github.com/misslin1/fastlzlib/fastlz"

// Version of the library.
const Version = "0.1.0"

const (
	// HeaderSize is the size of the per-block header.
	HeaderSize = 20

	// MinBlockSize is the smallest accepted block size; blocks at or
	// below this size are stored raw rather than compressed.
	MinBlockSize = 64

	// DefaultBlockSize is the block size used when none is given.
	DefaultBlockSize = 32768
)

// Status is the result of a stream operation, with zlib-style values.
type Status int

const (
	OK           Status = 0
	StreamEnd    Status = 1
	StreamError  Status = -2
	DataError    Status = -3
	MemError     Status = -4
	BufError     Status = -5
	VersionError Status = -6
)

// String implements fmt.Stringer.
func (st Status) String() string {
	switch st {
	case OK:
		return "OK"
	case StreamEnd:
		return "stream end"
	case StreamError:
		return "stream error"
	case DataError:
		return "data error"
	case MemError:
		return "insufficient memory"
	case BufError:
		return "buffer error"
	case VersionError:
		return "version error"
	}
	return "unknown status"
}

// Flush controls how Compress treats pending input.
type Flush int

const (
	// NoFlush lets the encoder wait for a full block of input.
	NoFlush Flush = 0
	// SyncFlush forces out a (possibly short) block from whatever
	// input has been buffered so far.
	SyncFlush Flush = 2
	// Finish emits the end-of-stream marker once all input has been
	// consumed. Terminal.
	Finish Flush = 4
)

// Compression levels, zlib numbering. Levels at or below BestSpeed
// select the fast block compressor; everything above selects the
// high-compression one.
const (
	NoCompression   = 0
	BestSpeed       = 1
	BestCompression = 9
)

// levelDecompress marks a stream initialized for decoding.
const levelDecompress = -2

// block types on the wire
const (
	blockTypeRaw        = 0xc0
	blockTypeCompressed = 0x0c
	blockTypeBadMagic   = 0xffff
)

// blockMagic is the 7-byte header magic, terminating NUL included.
var blockMagic = [7]byte{'F', 'a', 's', 't', 'L', 'Z', 0}

// Stream is the caller-visible descriptor of one compression or
// decompression stream. NextIn and NextOut are windows into caller
// memory; each processing call consumes from the front of NextIn and
// produces at the front of NextOut, reslicing both forward. TotalIn
// and TotalOut advance by exactly the bytes consumed and produced.
// Msg holds a human-readable description of the last error.
//
// A Stream must not be driven from two goroutines at once; distinct
// Streams are independent.
type Stream struct {
	NextIn   []byte
	NextOut  []byte
	TotalIn  uint64
	TotalOut uint64
	Msg      string

	state *streamState
}

// streamState is the per-stream hidden state.
type streamState struct {
	level int // compression level, or levelDecompress

	blockSize int

	// header staging for headers split across input windows
	inHdr     [HeaderSize]byte
	inHdrOffs int

	// current block descriptors, valid from header parse to payload
	// consumption
	blockType int
	strSize   int
	decSize   int

	// staging buffers, each sized to one worst-case block
	inBuff      []byte
	outBuff     []byte
	inBuffOffs  int
	outBuffOffs int

	// the encoder has emitted the end-of-stream marker
	finished bool
}

// bufferBlockSize is the staging capacity: one block plus worst-case
// expansion plus two headers (block and end marker).
func bufferBlockSize(blockSize int) int {
	return blockSize + blockSize/expansionRatio + HeaderSize*2
}

const (
	expansionRatio    = 10
	expansionSecurity = 66
)

func (s *Stream) init(blockSize int) Status {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	} else if blockSize < MinBlockSize {
		blockSize = MinBlockSize
	}
	n := bufferBlockSize(blockSize)
	s.state = &streamState{
		blockSize: blockSize,
		inBuff:    make([]byte, n),
		outBuff:   make([]byte, n),
	}
	s.reset()
	return OK
}

func (s *Stream) reset() {
	st := s.state
	s.Msg = ""
	st.inHdrOffs = 0
	st.blockType = 0
	st.strSize = 0
	st.decSize = 0
	st.inBuffOffs = 0
	st.outBuffOffs = 0
	st.finished = false
}

// CompressInit prepares s for compression at the given level with the
// default block size. Levels outside [NoCompression, BestCompression]
// are clamped to BestCompression.
func (s *Stream) CompressInit(level int) Status {
	return s.CompressInit2(level, DefaultBlockSize)
}

// CompressInit2 is CompressInit with an explicit block size. Block
// sizes below MinBlockSize are raised to it; zero selects the
// default.
func (s *Stream) CompressInit2(level, blockSize int) Status {
	if st := s.init(blockSize); st != OK {
		return st
	}
	if level < NoCompression || level > BestCompression {
		level = BestCompression
	}
	s.state.level = level
	return OK
}

// DecompressInit prepares s for decompression with the default block
// size.
func (s *Stream) DecompressInit() Status {
	return s.DecompressInit2(DefaultBlockSize)
}

// DecompressInit2 is DecompressInit with an explicit block size,
// which bounds the largest block the decoder will accept.
func (s *Stream) DecompressInit2(blockSize int) Status {
	if st := s.init(blockSize); st != OK {
		return st
	}
	s.state.level = levelDecompress
	return OK
}

// CompressEnd releases the stream's internal state. Safe to call at
// any point and idempotent.
func (s *Stream) CompressEnd() Status {
	if s == nil {
		return StreamError
	}
	s.state = nil
	return OK
}

// DecompressEnd releases the stream's internal state.
func (s *Stream) DecompressEnd() Status {
	return s.CompressEnd()
}

// CompressReset rewinds the stream for a fresh input, keeping the
// level, block size and allocated buffers.
func (s *Stream) CompressReset() Status {
	if s == nil || s.state == nil {
		return StreamError
	}
	s.reset()
	return OK
}

// DecompressReset rewinds the stream for a fresh input.
func (s *Stream) DecompressReset() Status {
	return s.CompressReset()
}

// BlockSize returns the stream's negotiated block size, or 0 if the
// stream is not initialized.
func (s *Stream) BlockSize() int {
	if s == nil || s.state == nil {
		return 0
	}
	return s.state.blockSize
}

// MemoryUsage returns the approximate number of bytes held by the
// stream's internal state, or -1 if the stream is not initialized.
func (s *Stream) MemoryUsage() int {
	if s == nil || s.state == nil {
		return -1
	}
	return len(s.state.inBuff) + len(s.state.outBuff)
}

func (s *Stream) compressing() bool {
	return s.state.level != levelDecompress
}

// Compress runs one compression step, consuming from NextIn and
// producing into NextOut as the windows allow. Input fragments may be
// staged internally across calls.
func (s *Stream) Compress(flush Flush) Status {
	return s.Compress2(flush, true)
}

// Compress2 is Compress with explicit control over staging. With
// mayBuffer false every call either makes one-shot progress or
// returns BufError leaving the windows untouched.
func (s *Stream) Compress2(flush Flush, mayBuffer bool) Status {
	if s == nil || s.state == nil {
		return StreamError
	}
	if !s.compressing() {
		s.Msg = "Compressing function used with a decompressing stream"
		return StreamError
	}
	return s.process(flush, mayBuffer)
}

// Decompress runs one decompression step, consuming from NextIn and
// producing into NextOut as the windows allow.
func (s *Stream) Decompress() Status {
	return s.Decompress2(true)
}

// Decompress2 is Decompress with explicit control over staging.
func (s *Stream) Decompress2(mayBuffer bool) Status {
	if s == nil || s.state == nil {
		return StreamError
	}
	if s.compressing() {
		s.Msg = "Decompressing function used with a compressing stream"
		return StreamError
	}
	return s.process(NoFlush, mayBuffer)
}

// inSeek consumes n bytes from the input window.
func (s *Stream) inSeek(n int) {
	s.NextIn = s.NextIn[n:]
	s.TotalIn += uint64(n)
}

// outSeek claims n bytes of the output window.
func (s *Stream) outSeek(n int) {
	s.NextOut = s.NextOut[n:]
	s.TotalOut += uint64(n)
}

// levelToFastlz maps a zlib-style level onto the block compressor's
// two effort levels.
func levelToFastlz(level int) int {
	if level <= BestSpeed {
		return fastlz.Level1
	}
	return fastlz.Level2
}
