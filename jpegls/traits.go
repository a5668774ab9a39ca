// Package jpegls implements JPEG-LS (ITU-T T.87) lossless and near-lossless
// coding of one or more components, each in its own scan.
package jpegls

const (
	basicT1 = 3
	basicT2 = 7
	basicT3 = 21

	// DefaultReset is the context reset threshold of T.87 Annex C.
	DefaultReset = 64
)

// J is the run length order table of T.87 A.2.1.
var J = [32]int{
	0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// Traits captures the coding parameters derived from MAXVAL and NEAR.
type Traits struct {
	MaxVal int
	Near   int
	Range  int
	Qbpp   int
	Bpp    int
	Limit  int
	Reset  int
	T1     int
	T2     int
	T3     int
}

// NewTraits computes the default thresholds for maxVal and near. Zero
// values in preset override the defaults.
func NewTraits(maxVal, near int, preset *Preset) Traits {
	t := Traits{MaxVal: maxVal, Near: near, Reset: DefaultReset}
	if preset != nil && preset.MaxVal > 0 {
		t.MaxVal = preset.MaxVal
	}
	t.Range = (t.MaxVal+2*near)/(2*near+1) + 1
	t.Qbpp = bitLength(t.Range - 1)
	t.Bpp = max(2, bitLength(t.MaxVal))
	t.Limit = 2 * (t.Bpp + max(8, t.Bpp))
	t.T1, t.T2, t.T3 = defaultThresholds(t.MaxVal, near)
	if preset != nil {
		if preset.T1 > 0 {
			t.T1 = preset.T1
		}
		if preset.T2 > 0 {
			t.T2 = preset.T2
		}
		if preset.T3 > 0 {
			t.T3 = preset.T3
		}
		if preset.Reset > 0 {
			t.Reset = preset.Reset
		}
	}
	return t
}

// bitLength returns the number of bits needed to hold v.
func bitLength(v int) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

func defaultThresholds(maxVal, near int) (t1, t2, t3 int) {
	clamp := func(i, j int) int {
		if i > maxVal || i < j {
			return j
		}
		return i
	}
	if maxVal >= 128 {
		factor := (min(maxVal, 4095) + 128) / 256
		t1 = clamp(factor*(basicT1-2)+2+3*near, near+1)
		t2 = clamp(factor*(basicT2-3)+3+5*near, t1)
		t3 = clamp(factor*(basicT3-4)+4+7*near, t2)
		return t1, t2, t3
	}
	factor := 256 / (maxVal + 1)
	t1 = clamp(max(2, basicT1/factor+3*near), near+1)
	t2 = clamp(max(3, basicT2/factor+5*near), t1)
	t3 = clamp(max(4, basicT3/factor+7*near), t2)
	return t1, t2, t3
}

// Preset holds the LSE preset coding parameters (ID 1).
type Preset struct {
	MaxVal int
	T1     int
	T2     int
	T3     int
	Reset  int
}

// QuantizeGradient maps a local gradient to one of nine regions.
func (t Traits) QuantizeGradient(d int) int {
	switch {
	case d <= -t.T3:
		return -4
	case d <= -t.T2:
		return -3
	case d <= -t.T1:
		return -2
	case d < -t.Near:
		return -1
	case d <= t.Near:
		return 0
	case d < t.T1:
		return 1
	case d < t.T2:
		return 2
	case d < t.T3:
		return 3
	}
	return 4
}

// CorrectPrediction clamps a prediction to [0, MaxVal].
func (t Traits) CorrectPrediction(p int) int {
	if p < 0 {
		return 0
	}
	if p > t.MaxVal {
		return t.MaxVal
	}
	return p
}

// Quantize applies the near-lossless error quantization. It is the
// identity when Near is 0.
func (t Traits) Quantize(e int) int {
	if t.Near == 0 {
		return e
	}
	if e > 0 {
		return (e + t.Near) / (2*t.Near + 1)
	}
	return -(t.Near - e) / (2*t.Near + 1)
}

// ModuloRange folds an error value into [-(Range-1)/2, Range/2].
func (t Traits) ModuloRange(e int) int {
	if e < 0 {
		e += t.Range
	}
	if e >= (t.Range+1)/2 {
		e -= t.Range
	}
	return e
}

// ErrorValue quantizes and folds a prediction residual.
func (t Traits) ErrorValue(e int) int {
	return t.ModuloRange(t.Quantize(e))
}

// Reconstruct returns the decoded sample for a prediction and error value.
func (t Traits) Reconstruct(prediction, e int) int {
	v := prediction + e*(2*t.Near+1)
	if v < -t.Near {
		v += t.Range * (2*t.Near + 1)
	} else if v > t.MaxVal+t.Near {
		v -= t.Range * (2*t.Near + 1)
	}
	return t.CorrectPrediction(v)
}

// IsNear reports whether two samples are within the NEAR tolerance.
func (t Traits) IsNear(a, b int) bool {
	return abs(a-b) <= t.Near
}

// Predict is the median edge detector of T.87 A.4.
func Predict(ra, rb, rc int) int {
	if rc >= max(ra, rb) {
		return min(ra, rb)
	}
	if rc <= min(ra, rb) {
		return max(ra, rb)
	}
	return ra + rb - rc
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x < 0 {
		return -1
	}
	return 1
}
