package common

// BitReader reads entropy coded scan data from memory. Stuffed zero bytes
// are removed; at the first marker it stops and supplies zero bits, so a
// decoder that reads past the real data gets ErrUnexpectedEOF.
type BitReader struct {
	data   []byte
	pos    int
	acc    uint64
	n      int // bits in acc
	zeros  int // padding bits at the tail of acc
	marker uint16
}

// NewBitReader creates a reader over scan data
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

func (r *BitReader) fill() {
	for r.n <= 56 {
		if r.marker != 0 || r.pos >= len(r.data) {
			r.acc <<= 8
			r.n += 8
			r.zeros += 8
			continue
		}
		b := r.data[r.pos]
		if b == 0xFF {
			if r.pos+1 >= len(r.data) {
				r.pos = len(r.data)
				continue
			}
			next := r.data[r.pos+1]
			if next != 0x00 {
				r.marker = 0xFF00 | uint16(next)
				continue
			}
			r.pos += 2
		} else {
			r.pos++
		}
		r.acc = r.acc<<8 | uint64(b)
		r.n += 8
	}
}

func (r *BitReader) consume(n int) error {
	r.n -= n
	if r.n < r.zeros {
		return ErrUnexpectedEOF
	}
	return nil
}

func (r *BitReader) peek(n int) uint32 {
	if r.n < n {
		r.fill()
	}
	return uint32(r.acc>>uint(r.n-n)) & (1<<uint(n) - 1)
}

// ReadBits reads n bits, n <= 16
func (r *BitReader) ReadBits(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	v := r.peek(n)
	return v, r.consume(n)
}

// Decode decodes the next Huffman symbol
func (r *BitReader) Decode(t *HuffmanTable) (byte, error) {
	look := r.peek(16)
	if e := t.lookupTable[look>>8]; e >= 0 {
		return byte(e & 0xFF), r.consume(int(e >> 8))
	}
	for l := 8; l < 16; l++ {
		code := int32(look >> uint(15-l))
		if t.maxCode[l] >= 0 && code <= t.maxCode[l] {
			idx := t.valPtr[l] + code - t.minCode[l]
			if idx < 0 || int(idx) >= len(t.Values) {
				break
			}
			return t.Values[idx], r.consume(l + 1)
		}
	}
	return 0, ErrHuffmanDecode
}

// Restart discards buffered bits and consumes the next RSTn marker
func (r *BitReader) Restart() error {
	r.acc, r.n, r.zeros = 0, 0, 0
	if r.marker == 0 {
		for r.pos+1 < len(r.data) && r.data[r.pos] == 0xFF && r.data[r.pos+1] == 0xFF {
			r.pos++
		}
		if r.pos+1 >= len(r.data) || r.data[r.pos] != 0xFF {
			return ErrMissingRestart
		}
		r.marker = 0xFF00 | uint16(r.data[r.pos+1])
	}
	if !IsRST(r.marker) {
		return ErrMissingRestart
	}
	r.pos += 2
	r.marker = 0
	return nil
}

// Marker returns the marker that ended the data read so far, or 0
func (r *BitReader) Marker() uint16 {
	return r.marker
}

// Pos returns the offset of the first byte not yet loaded
func (r *BitReader) Pos() int {
	return r.pos
}
