package jpegls

import (
	"bytes"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// GolombWriter writes a JPEG-LS scan. After a 0xFF byte the next byte
// carries only seven bits so that no marker can appear in the data.
type GolombWriter struct {
	buf  bytes.Buffer
	cur  byte
	n    int
	size int
	last byte
}

// NewGolombWriter creates an empty scan writer.
func NewGolombWriter() *GolombWriter {
	return &GolombWriter{size: 8}
}

// WriteBit appends one bit.
func (w *GolombWriter) WriteBit(bit int) {
	w.cur = w.cur<<1 | byte(bit&1)
	w.n++
	if w.n == w.size {
		w.emit()
	}
}

func (w *GolombWriter) emit() {
	w.buf.WriteByte(w.cur)
	w.last = w.cur
	w.size = 8
	if w.cur == 0xFF {
		w.size = 7
	}
	w.cur, w.n = 0, 0
}

// WriteBits appends the low n bits of v, most significant first.
func (w *GolombWriter) WriteBits(v, n int) {
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(v >> uint(i) & 1)
	}
}

// writeUnary appends n zero bits followed by a one.
func (w *GolombWriter) writeUnary(n int) {
	for i := 0; i < n; i++ {
		w.WriteBit(0)
	}
	w.WriteBit(1)
}

// EncodeMappedValue writes a mapped error with the length limited Golomb
// code of T.87 A.5.3.
func (w *GolombWriter) EncodeMappedValue(k, value, limit, qbpp int) {
	high := value >> uint(k)
	if high < limit-qbpp-1 {
		w.writeUnary(high)
		w.WriteBits(value, k)
		return
	}
	w.writeUnary(limit - qbpp - 1)
	w.WriteBits(value-1, qbpp)
}

// Bytes pads the final byte with zeros and returns the scan data.
func (w *GolombWriter) Bytes() []byte {
	for w.n > 0 {
		w.WriteBit(0)
	}
	if w.buf.Len() > 0 && w.last == 0xFF {
		w.buf.WriteByte(0)
		w.last = 0
	}
	return w.buf.Bytes()
}

// GolombReader reads a JPEG-LS scan from data.
type GolombReader struct {
	data   []byte
	pos    int
	cur    byte
	n      int
	prevFF bool
}

// NewGolombReader reads the scan starting at data[0].
func NewGolombReader(data []byte) *GolombReader {
	return &GolombReader{data: data}
}

// ReadBit returns the next bit. Running into a marker is an error.
func (r *GolombReader) ReadBit() (int, error) {
	if r.n == 0 {
		if r.pos >= len(r.data) {
			return 0, common.ErrUnexpectedEOF
		}
		b := r.data[r.pos]
		if r.prevFF {
			if b&0x80 != 0 {
				return 0, common.ErrUnexpectedEOF
			}
			r.n = 7
		} else {
			r.n = 8
		}
		r.pos++
		r.cur = b
		r.prevFF = b == 0xFF
	}
	r.n--
	return int(r.cur>>uint(r.n)) & 1, nil
}

// ReadBits reads n bits, most significant first.
func (r *GolombReader) ReadBits(n int) (int, error) {
	v := 0
	for i := 0; i < n; i++ {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | b
	}
	return v, nil
}

// DecodeMappedValue reads a value written by EncodeMappedValue.
func (r *GolombReader) DecodeMappedValue(k, limit, qbpp int) (int, error) {
	high := 0
	for {
		b, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		if b == 1 {
			break
		}
		high++
		if high > limit-qbpp-1 {
			return 0, common.ErrInvalidData
		}
	}
	if high < limit-qbpp-1 {
		low, err := r.ReadBits(k)
		if err != nil {
			return 0, err
		}
		return high<<uint(k) | low, nil
	}
	v, err := r.ReadBits(qbpp)
	if err != nil {
		return 0, err
	}
	return v + 1, nil
}

// End returns the offset of the first marker after the scan.
func (r *GolombReader) End() int {
	for i := r.pos; i+1 < len(r.data); i++ {
		if r.data[i] == 0xFF && r.data[i+1] >= 0x80 {
			return i
		}
	}
	return len(r.data)
}
