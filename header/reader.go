package header

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
)

// streamReader reads big-endian fields and tracks the offset from where
// parsing started.
type streamReader struct {
	r   *bufio.Reader
	off int64
	buf [8]byte
}

func newStreamReader(r io.Reader) *streamReader {
	return &streamReader{r: bufio.NewReader(r)}
}

func (s *streamReader) eof(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return formatErrorf(s.off, "unexpected end of stream")
	}
	return err
}

func (s *streamReader) readByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		return 0, s.eof(err)
	}
	s.off++
	return b, nil
}

func (s *streamReader) full(p []byte) error {
	n, err := io.ReadFull(s.r, p)
	s.off += int64(n)
	if err != nil {
		return s.eof(err)
	}
	return nil
}

func (s *streamReader) uint16() (uint16, error) {
	if err := s.full(s.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(s.buf[:2]), nil
}

func (s *streamReader) uint32() (uint32, error) {
	if err := s.full(s.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(s.buf[:4]), nil
}

func (s *streamReader) uint64() (uint64, error) {
	if err := s.full(s.buf[:8]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(s.buf[:8]), nil
}

func (s *streamReader) skip(n int64) error {
	if n <= 0 {
		return nil
	}
	m, err := io.CopyN(io.Discard, s.r, n)
	s.off += m
	if err != nil {
		return s.eof(err)
	}
	return nil
}

// segment reads a two byte length and returns the payload that follows.
func (s *streamReader) segment() ([]byte, error) {
	start := s.off
	n, err := s.uint16()
	if err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, formatErrorf(start, "segment length %d", n)
	}
	data := make([]byte, n-2)
	if err := s.full(data); err != nil {
		return nil, err
	}
	return data, nil
}

// marker reads a marker, skipping fill bytes. The first byte must be 0xFF.
func (s *streamReader) marker() (uint16, error) {
	start := s.off
	b, err := s.readByte()
	if err != nil {
		return 0, err
	}
	if b != 0xFF {
		return 0, formatErrorf(start, "expected marker, found 0x%02X", b)
	}
	for b == 0xFF {
		if b, err = s.readByte(); err != nil {
			return 0, err
		}
	}
	if b == 0x00 {
		return 0, formatErrorf(start, "stuffed byte where a marker was expected")
	}
	return 0xFF00 | uint16(b), nil
}
