package fastlzlib

import "github.com/misslin1/fastlzlib/fastlz"

// compressBlock frames one input block into dst: a header, then
// either the compressed payload or (for blocks too short to be worth
// compressing) the input verbatim. When flush is Finish the
// end-of-stream marker is appended after the block; with no input at
// all, only the marker is emitted. Returns total bytes written.
//
// dst must have room for len(in) + len(in)/expansionRatio +
// expansionSecurity bytes.
func (st *streamState) compressBlock(in, dst []byte, flush Flush) int {
	done := 0
	if len(in) > 0 {
		blockType := blockTypeRaw
		if len(in) > MinBlockSize {
			done = fastlz.CompressLevel(levelToFastlz(st.level), in, dst[HeaderSize:])
			blockType = blockTypeCompressed
		} else {
			// the compressor has no useful ratio on tiny inputs
			copy(dst[HeaderSize:], in)
			done = len(in)
		}
		done += writeHeader(dst, blockType, st.blockSize, done, len(in))
	}
	if flush == Finish {
		done += writeHeader(dst[done:], blockTypeCompressed, st.blockSize, 0, 0)
		st.finished = true
	}
	return done
}

// process is the streaming state machine driving both directions.
// A call that finds staged output only drains it. Otherwise it works
// through the current block as far as the windows allow: acquire the
// block header, acquire (or stage) the payload, and transform the
// block once its payload is complete. The caller loops on the
// returned status.
func (s *Stream) process(flush Flush, mayBuffer bool) Status {
	st := s.state
	var in []byte
	haveIn := false

	// staged output from a previous block is delivered first
	if st.outBuffOffs < st.decSize {
		size := st.decSize - st.outBuffOffs
		if size > len(s.NextOut) {
			size = len(s.NextOut)
		}
		if size > 0 {
			copy(s.NextOut, st.outBuff[st.outBuffOffs:st.outBuffOffs+size])
			st.outBuffOffs += size
			s.outSeek(size)
		}
		return OK
	}

	// no block in progress: acquire the next block's descriptors
	if st.strSize == 0 {
		// for validation only; stays 0 on the compress side
		declaredBlockSize := 0

		if !s.compressing() {
			if st.inHdrOffs != 0 || len(s.NextIn) < HeaderSize {
				// header split across input windows
				if st.inHdrOffs == 0 && !mayBuffer {
					s.Msg = "Need more data on input"
					return BufError
				}
				for len(s.NextIn) > 0 && st.inHdrOffs < HeaderSize {
					st.inHdr[st.inHdrOffs] = s.NextIn[0]
					st.inHdrOffs++
					s.inSeek(1)
				}
			}
			switch {
			case st.inHdrOffs == 0 && len(s.NextIn) >= HeaderSize:
				// header directly in caller memory
				blockType, blockSize, strSize, decSize := readHeader(s.NextIn)
				if !mayBuffer {
					if len(s.NextIn) < strSize {
						s.Msg = "Need more data on input"
						return BufError
					}
					if len(s.NextOut) < decSize {
						s.Msg = "Need more room on output"
						return BufError
					}
				}
				st.blockType = blockType
				st.strSize = strSize
				st.decSize = decSize
				declaredBlockSize = blockSize
				s.inSeek(HeaderSize)
			case st.inHdrOffs == HeaderSize:
				blockType, blockSize, strSize, decSize := readHeader(st.inHdr[:])
				st.blockType = blockType
				st.strSize = strSize
				st.decSize = decSize
				declaredBlockSize = blockSize
				st.inHdrOffs = 0
			default:
				// header still incomplete
				return OK
			}
		} else {
			if st.finished && flush == Finish && len(s.NextIn) == 0 {
				// end marker already on the wire
				return StreamEnd
			}
			// the encoder synthesizes its own block descriptor
			strSize := st.blockSize
			if strSize > len(s.NextIn) {
				if flush > NoFlush {
					strSize = len(s.NextIn)
				} else if !mayBuffer {
					s.Msg = "Need more data on input"
					return BufError
				}
			}
			st.blockType = blockTypeCompressed
			st.strSize = strSize
			st.decSize = 0 // unknown until the block is built
		}

		// nothing staged for output yet
		st.outBuffOffs = st.decSize

		switch {
		case st.blockType == blockTypeBadMagic:
			s.Msg = "Corrupted compressed stream (bad magic)"
			return DataError
		case st.blockType != blockTypeRaw && st.blockType != blockTypeCompressed:
			s.Msg = "Corrupted compressed stream (illegal block type)"
			return VersionError
		case declaredBlockSize > st.blockSize:
			s.Msg = "Block size too large"
			return VersionError
		case st.decSize > bufferBlockSize(st.blockSize):
			s.Msg = "Corrupted compressed stream (illegal decompressed size)"
			return VersionError
		case st.strSize > bufferBlockSize(st.blockSize):
			s.Msg = "Corrupted compressed stream (illegal stream size)"
			return VersionError
		}

		// an empty block is the end-of-stream marker
		if !s.compressing() && st.strSize == 0 && st.decSize == 0 {
			return StreamEnd
		}

		if len(s.NextIn) >= st.strSize {
			// complete payload available in caller memory
			in = s.NextIn[:st.strSize]
			haveIn = true
			s.inSeek(st.strSize)
		} else {
			st.inBuffOffs = 0
		}
	}

	// stage payload fragments until the block is complete
	if !haveIn {
		if st.inBuffOffs < st.strSize {
			size := st.strSize - st.inBuffOffs
			if size > len(s.NextIn) {
				size = len(s.NextIn)
			}
			if size > 0 {
				copy(st.inBuff[st.inBuffOffs:], s.NextIn[:size])
				st.inBuffOffs += size
				s.inSeek(size)
			}
		}
		if st.inBuffOffs == st.strSize {
			in = st.inBuff[:st.strSize]
			haveIn = true
		} else if flush != NoFlush {
			// forced flush accepts a short block
			st.strSize = st.inBuffOffs
			in = st.inBuff[:st.strSize]
			haveIn = true
		}
	}

	// transform the completed block
	if haveIn {
		inSize := st.strSize

		// a finish with input still pending must not emit a
		// premature end marker
		flushNow := flush
		if flushNow == Finish && len(s.NextIn) > 0 {
			flushNow = NoFlush
		}

		if !s.compressing() {
			outSize := st.decSize
			var out []byte
			if len(s.NextOut) >= outSize {
				out = s.NextOut[:outSize]
				s.outSeek(outSize)
				st.outBuffOffs = st.decSize
			} else {
				out = st.outBuff[:outSize]
				st.outBuffOffs = 0
			}
			st.strSize = 0

			done := 0
			switch st.blockType {
			case blockTypeCompressed:
				done = fastlz.Decompress(in, out)
			case blockTypeRaw:
				if outSize >= inSize {
					copy(out, in)
					done = inSize
				}
			}
			if done != outSize {
				s.Msg = "Unable to decompress block stream"
				return StreamError
			}
		} else {
			estimated := inSize + inSize/expansionRatio + expansionSecurity
			if len(s.NextOut) >= estimated {
				done := st.compressBlock(in, s.NextOut, flushNow)
				s.outSeek(done)
				st.outBuffOffs = st.decSize
			} else {
				done := st.compressBlock(in, st.outBuff, flushNow)
				st.decSize = done
				st.outBuffOffs = 0
			}
			st.strSize = 0
		}
	}

	if flush == Finish && len(s.NextIn) == 0 && st.outBuffOffs >= st.decSize {
		return StreamEnd
	}
	return OK
}
