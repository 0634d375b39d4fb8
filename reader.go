package fastlzlib

import "io"

// Reader is an io.Reader that decompresses a framed stream from an
// underlying reader.
type Reader struct {
	r   io.Reader
	s   Stream
	buf []byte
	err error
	eof bool
}

// NewReader creates a Reader decompressing from r with the default
// block size.
func NewReader(r io.Reader) *Reader {
	return NewReaderBlockSize(r, DefaultBlockSize)
}

// NewReaderBlockSize creates a Reader with an explicit block size,
// which bounds the largest block the stream may carry.
func NewReaderBlockSize(r io.Reader, blockSize int) *Reader {
	z := &Reader{r: r, buf: make([]byte, 8192)}
	z.s.DecompressInit2(blockSize)
	return z
}

// Read implements io.Reader. After the end-of-stream marker has been
// consumed it returns io.EOF; input ending before the marker yields
// io.ErrUnexpectedEOF.
func (z *Reader) Read(p []byte) (int, error) {
	if z.err != nil {
		return 0, z.err
	}
	if z.eof {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		z.s.NextOut = p
		st := z.s.Decompress()
		produced := len(p) - len(z.s.NextOut)
		switch st {
		case StreamEnd:
			z.eof = true
			if produced > 0 {
				return produced, nil
			}
			return 0, io.EOF
		case OK:
			if produced > 0 {
				return produced, nil
			}
			if len(z.s.NextIn) == 0 {
				n, err := z.r.Read(z.buf)
				if n > 0 {
					z.s.NextIn = z.buf[:n]
					continue
				}
				if err == nil {
					continue
				}
				if err == io.EOF {
					// ran out before the end marker
					err = io.ErrUnexpectedEOF
				}
				z.err = err
				return 0, z.err
			}
		default:
			z.err = statusError(&z.s, st)
			return 0, z.err
		}
	}
}

// Reset discards the Reader's state and redirects it to r.
func (z *Reader) Reset(r io.Reader) {
	z.r = r
	z.err = nil
	z.eof = false
	z.s.NextIn = nil
	z.s.NextOut = nil
	z.s.TotalIn = 0
	z.s.TotalOut = 0
	z.s.DecompressReset()
}
