package fastlzlib

// DecompressSync attempts to resynchronize a decompression stream
// after corruption by scanning the input window forward, byte by
// byte, for the next plausible block header. On success NextIn is
// left pointing at the header and OK is returned; if the stream still
// has staged output to drain, OK is returned without scanning. When
// the window is exhausted without a match the scan returns DataError.
//
// The scan counts its steps in the header staging offset, which is
// reset first and cleared again when the scan ends, so no later call
// consults it; the observable effect is purely the advance of NextIn.
func (s *Stream) DecompressSync() Status {
	if s == nil || s.state == nil {
		return StreamError
	}
	if s.compressing() {
		s.Msg = "Decompressing function used with a compressing stream"
		return StreamError
	}
	st := s.state

	if st.outBuffOffs < st.decSize {
		// not an error state: staged output is still available
		return OK
	}

	if len(s.NextIn) < HeaderSize {
		s.Msg = "Need more data on input"
		return BufError
	}

	if st.inHdrOffs != 0 {
		st.inHdrOffs = 0
	}

	for len(s.NextIn) >= HeaderSize {
		if s.NextIn[0] == blockMagic[0] &&
			s.NextIn[1] == blockMagic[1] &&
			s.NextIn[2] == blockMagic[2] &&
			s.NextIn[3] == blockMagic[3] &&
			s.NextIn[4] == blockMagic[4] &&
			s.NextIn[5] == blockMagic[5] &&
			s.NextIn[6] == blockMagic[6] {
			if GetStreamBlockSize(s.NextIn) != 0 {
				st.inHdrOffs = 0
				return OK
			}
		}
		st.inHdrOffs++
		s.inSeek(1)
	}
	st.inHdrOffs = 0
	s.Msg = "No flush point found"
	return DataError
}
