package common

import (
	"encoding/binary"
	"io"
)

// Reader walks the marker segments of an in-memory JPEG stream
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new JPEG reader
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the offset of the next unread byte
func (r *Reader) Pos() int {
	return r.pos
}

// SetPos moves the read offset
func (r *Reader) SetPos(pos int) {
	r.pos = pos
}

// Bytes returns the unread remainder
func (r *Reader) Bytes() []byte {
	return r.data[r.pos:]
}

// ReadUint16 reads a 16-bit big-endian value
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadMarker reads the next JPEG marker, skipping 0xFF fill bytes
func (r *Reader) ReadMarker() (uint16, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	if r.data[r.pos] != 0xFF {
		return 0, ErrInvalidMarker
	}
	for r.pos < len(r.data) && r.data[r.pos] == 0xFF {
		r.pos++
	}
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	// 0x00 is a stuffed byte (escaped 0xFF in data), not a marker
	if b == 0x00 {
		return 0, ErrInvalidMarker
	}
	return 0xFF00 | uint16(b), nil
}

// ReadSegment reads a segment with its length
// Returns the segment data (without the length field)
func (r *Reader) ReadSegment() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	// Length includes itself (2 bytes)
	if length < 2 {
		return nil, ErrInvalidData
	}
	end := r.pos + int(length) - 2
	if end > len(r.data) {
		return nil, ErrUnexpectedEOF
	}
	data := r.data[r.pos:end]
	r.pos = end
	return data, nil
}

// Writer provides utilities for writing JPEG data
type Writer struct {
	w   io.Writer
	buf [2]byte
}

// NewWriter creates a new JPEG writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteUint16 writes a 16-bit big-endian value
func (w *Writer) WriteUint16(v uint16) error {
	binary.BigEndian.PutUint16(w.buf[:2], v)
	_, err := w.w.Write(w.buf[:2])
	return err
}

// WriteMarker writes a JPEG marker
func (w *Writer) WriteMarker(marker uint16) error {
	return w.WriteUint16(marker)
}

// WriteSegment writes a segment with length
// The length field is automatically calculated and includes itself (2 bytes)
func (w *Writer) WriteSegment(marker uint16, data []byte) error {
	if err := w.WriteMarker(marker); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(len(data) + 2)); err != nil {
		return err
	}
	_, err := w.w.Write(data)
	return err
}

// WriteBytes writes raw bytes
func (w *Writer) WriteBytes(data []byte) error {
	_, err := w.w.Write(data)
	return err
}
