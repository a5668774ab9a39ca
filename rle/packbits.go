package rle

import "bytes"

// packBits appends the PackBits encoding of src to dst. Runs of two or
// more equal bytes are replicated; literals stop before a run of three.
func packBits(dst *bytes.Buffer, src []byte) {
	i := 0
	for i < len(src) {
		run := 1
		for i+run < len(src) && run < 128 && src[i+run] == src[i] {
			run++
		}
		if run >= 2 {
			dst.WriteByte(byte(1 - run))
			dst.WriteByte(src[i])
			i += run
			continue
		}

		start := i
		for i < len(src) && i-start < 128 {
			if i+1 < len(src) && src[i] == src[i+1] && (i+2 >= len(src) || src[i+1] == src[i+2]) {
				break
			}
			i++
		}
		dst.WriteByte(byte(i - start - 1))
		dst.Write(src[start:i])
	}
}

// unpackBits decodes src into exactly n bytes. Output beyond n is dropped.
func unpackBits(src []byte, n int) ([]byte, error) {
	out := make([]byte, 0, n)
	i := 0
	for i < len(src) && len(out) < n {
		h := int8(src[i])
		i++
		switch {
		case h == -128:
		case h >= 0:
			count := int(h) + 1
			if i+count > len(src) {
				return nil, ErrTruncated
			}
			out = append(out, src[i:i+count]...)
			i += count
		default:
			if i >= len(src) {
				return nil, ErrTruncated
			}
			for k := 0; k < int(-h)+1; k++ {
				out = append(out, src[i])
			}
			i++
		}
	}
	if len(out) < n {
		return nil, ErrTruncated
	}
	return out[:n], nil
}
