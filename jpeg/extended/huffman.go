package extended

import (
	"math"

	"github.com/cocosip/go-dicom-imageio/jpeg/common"
)

// optimalTable builds a Huffman table for the symbol counts in freq, with
// code lengths limited to 16 bits (T.81 Annex K.2). The standard Annex K
// tables stop at the 8-bit categories, so 12-bit scans need their own.
func optimalTable(freq [256]int) *common.HuffmanTable {
	var f [257]int
	copy(f[:], freq[:])
	f[256] = 1 // reserved so that no code consists of all 1 bits

	var codesize [257]int
	var others [257]int
	for i := range others {
		others[i] = -1
	}

	for {
		c1, c2 := -1, -1
		v := math.MaxInt
		for i := range f {
			if f[i] > 0 && f[i] <= v {
				v = f[i]
				c1 = i
			}
		}
		v = math.MaxInt
		for i := range f {
			if f[i] > 0 && f[i] <= v && i != c1 {
				v = f[i]
				c2 = i
			}
		}
		if c2 < 0 {
			break
		}

		f[c1] += f[c2]
		f[c2] = 0
		codesize[c1]++
		for others[c1] >= 0 {
			c1 = others[c1]
			codesize[c1]++
		}
		others[c1] = c2
		codesize[c2]++
		for others[c2] >= 0 {
			c2 = others[c2]
			codesize[c2]++
		}
	}

	// a tree over 257 symbols is at most 256 deep
	var bits [257]int
	for _, n := range codesize {
		if n > 0 {
			bits[n]++
		}
	}
	for i := len(bits) - 1; i > 16; i-- {
		for bits[i] > 0 {
			j := i - 2
			for bits[j] == 0 {
				j--
			}
			bits[i] -= 2
			bits[i-1]++
			bits[j+1] += 2
			bits[j]--
		}
	}
	// drop the reserved code, it is always one of the longest
	i := 16
	for bits[i] == 0 {
		i--
	}
	bits[i]--

	t := &common.HuffmanTable{}
	for l := 1; l <= 16; l++ {
		t.Bits[l-1] = bits[l]
	}
	for l := 1; l < len(bits); l++ {
		for s := 0; s < 256; s++ {
			if codesize[s] == l {
				t.Values = append(t.Values, byte(s))
			}
		}
	}
	_ = t.Build() // K.2 output is a complete prefix code
	return t
}
