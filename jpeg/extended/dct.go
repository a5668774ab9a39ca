package extended

import "math"

// cosTable[x][u] = C(u)/2 * cos((2x+1)u*pi/16), C(0) = 1/sqrt(2), otherwise 1.
// With it the 2-D transform of T.81 A.3.3 becomes two passes of 8x8 sums.
var cosTable [8][8]float64

func init() {
	for x := 0; x < 8; x++ {
		for u := 0; u < 8; u++ {
			c := 0.5
			if u == 0 {
				c = 0.5 / math.Sqrt2
			}
			cosTable[x][u] = c * math.Cos(float64((2*x+1)*u)*math.Pi/16)
		}
	}
}

// fdct replaces a level shifted block of samples, row major, with its DCT
// coefficients in natural order (index v*8+u).
//
// Floating point keeps the 12-bit range exact; the fixed point transforms
// tuned for 8-bit samples overflow their scaled intermediates.
func fdct(b *[64]float64) {
	var tmp [64]float64
	for y := 0; y < 8; y++ {
		for u := 0; u < 8; u++ {
			s := 0.0
			for x := 0; x < 8; x++ {
				s += b[y*8+x] * cosTable[x][u]
			}
			tmp[y*8+u] = s
		}
	}
	for u := 0; u < 8; u++ {
		for v := 0; v < 8; v++ {
			s := 0.0
			for y := 0; y < 8; y++ {
				s += tmp[y*8+u] * cosTable[y][v]
			}
			b[v*8+u] = s
		}
	}
}

// idct is the inverse of fdct.
func idct(b *[64]float64) {
	var tmp [64]float64
	for v := 0; v < 8; v++ {
		for x := 0; x < 8; x++ {
			s := 0.0
			for u := 0; u < 8; u++ {
				s += b[v*8+u] * cosTable[x][u]
			}
			tmp[v*8+x] = s
		}
	}
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			s := 0.0
			for v := 0; v < 8; v++ {
				s += tmp[v*8+x] * cosTable[y][v]
			}
			b[y*8+x] = s
		}
	}
}
