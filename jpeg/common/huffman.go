package common

import "io"

// HuffmanTable represents a Huffman coding table
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Values for each code, in order of code length
	Values []byte
	// Lookup tables for decoding
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32
	// Lookup table for fast decoding of short codes
	lookupTable [256]int16 // value: (nbits << 8) | value, -1 if not found
}

// Build builds lookup tables for fast Huffman decoding
func (h *HuffmanTable) Build() error {
	total := 0
	for _, n := range h.Bits {
		total += n
	}
	if total > len(h.Values) || total > 256 {
		return ErrInvalidDHT
	}

	for i := range h.lookupTable {
		h.lookupTable[i] = -1
	}

	code := int32(0)
	p := 0
	for l := 0; l < 16; l++ {
		if h.Bits[l] == 0 {
			h.maxCode[l] = -1
		} else {
			h.valPtr[l] = int32(p)
			h.minCode[l] = code
			for i := 0; i < h.Bits[l]; i++ {
				if l < 8 {
					// Extend the code to 8 bits
					shift := uint(7 - l)
					base := int(code) << shift
					for j := 0; j < 1<<shift; j++ {
						h.lookupTable[base+j] = int16((l+1)<<8 | int(h.Values[p]))
					}
				}
				code++
				p++
			}
			h.maxCode[l] = code - 1
		}
		if code > 1<<uint(l+1) {
			return ErrInvalidDHT
		}
		code <<= 1
	}
	return nil
}

// ParseHuffmanTables parses the payload of a DHT segment, which may hold
// several tables. Tables are returned by class (0 DC/lossless, 1 AC) and id.
func ParseHuffmanTables(data []byte, fn func(class, id int, t *HuffmanTable)) error {
	for len(data) > 0 {
		if len(data) < 17 {
			return ErrInvalidDHT
		}
		class := int(data[0] >> 4)
		id := int(data[0] & 0x0F)
		t := &HuffmanTable{}
		total := 0
		for i := 0; i < 16; i++ {
			t.Bits[i] = int(data[1+i])
			total += t.Bits[i]
		}
		if len(data) < 17+total {
			return ErrInvalidDHT
		}
		t.Values = append([]byte(nil), data[17:17+total]...)
		if err := t.Build(); err != nil {
			return err
		}
		fn(class, id, t)
		data = data[17+total:]
	}
	return nil
}

// Segment returns the DHT payload for t
func (h *HuffmanTable) Segment(class, id byte) []byte {
	total := 0
	for _, n := range h.Bits {
		total += n
	}
	data := make([]byte, 1+16+total)
	data[0] = class<<4 | id
	for i := 0; i < 16; i++ {
		data[1+i] = byte(h.Bits[i])
	}
	copy(data[17:], h.Values[:total])
	return data
}

// HuffmanCode represents a Huffman code
type HuffmanCode struct {
	Code uint16 // The Huffman code
	Len  int    // Code length in bits
}

// BuildHuffmanCodes builds Huffman codes from a table
func BuildHuffmanCodes(table *HuffmanTable) []HuffmanCode {
	codes := make([]HuffmanCode, 256)

	code := uint16(0)
	p := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < table.Bits[l]; i++ {
			if p < len(table.Values) {
				codes[table.Values[p]] = HuffmanCode{Code: code, Len: l + 1}
				code++
				p++
			}
		}
		code <<= 1
	}
	return codes
}

// HuffmanEncoder writes entropy coded bits with 0xFF byte stuffing
type HuffmanEncoder struct {
	w     io.Writer
	bits  uint32 // Bit buffer
	nBits int    // Number of bits in buffer
	one   [2]byte
}

// NewHuffmanEncoder creates a new Huffman encoder
func NewHuffmanEncoder(w io.Writer) *HuffmanEncoder {
	return &HuffmanEncoder{w: w}
}

// WriteBits writes the low n bits of bits, n <= 16
func (e *HuffmanEncoder) WriteBits(bits uint32, n int) error {
	if n == 0 {
		return nil
	}
	e.bits = (e.bits << uint(n)) | (bits & ((1 << uint(n)) - 1))
	e.nBits += n
	for e.nBits >= 8 {
		if err := e.writeByte(byte(e.bits >> uint(e.nBits-8))); err != nil {
			return err
		}
		e.nBits -= 8
	}
	return nil
}

// WriteCode writes a Huffman code followed by the category's extra bits
func (e *HuffmanEncoder) WriteCode(code HuffmanCode, extra uint32, extraBits int) error {
	if err := e.WriteBits(uint32(code.Code), code.Len); err != nil {
		return err
	}
	return e.WriteBits(extra, extraBits)
}

func (e *HuffmanEncoder) writeByte(b byte) error {
	e.one[0] = b
	n := 1
	// Byte stuffing: if we write 0xFF, follow with 0x00
	if b == 0xFF {
		e.one[1] = 0x00
		n = 2
	}
	_, err := e.w.Write(e.one[:n])
	return err
}

// Flush pads the last byte with 1 bits
func (e *HuffmanEncoder) Flush() error {
	if e.nBits > 0 {
		pad := 8 - e.nBits
		if err := e.writeByte(byte(e.bits<<uint(pad)) | byte(1<<uint(pad)-1)); err != nil {
			return err
		}
	}
	e.nBits = 0
	e.bits = 0
	return nil
}

// EncodeCategory returns the magnitude category of val and its extra bits
func EncodeCategory(val int) (cat int, bits uint32) {
	if val == 0 {
		return 0, 0
	}
	absVal := val
	if absVal < 0 {
		absVal = -absVal
	}
	cat = 1
	for (1 << uint(cat)) <= absVal {
		cat++
	}
	if val > 0 {
		bits = uint32(val)
	} else {
		bits = uint32((1 << uint(cat)) + val - 1)
	}
	return cat, bits
}

// Extend converts the extra bits of category ssss back to a signed value
func Extend(bits uint32, ssss int) int {
	if ssss == 0 {
		return 0
	}
	val := int(bits)
	if val < (1 << uint(ssss-1)) {
		val += (-1 << uint(ssss)) + 1
	}
	return val
}
